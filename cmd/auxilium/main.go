package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Negativehue/Auxilium/internal/config"
	"github.com/Negativehue/Auxilium/internal/gemini"
	"github.com/Negativehue/Auxilium/internal/inflight"
	"github.com/Negativehue/Auxilium/internal/logx"
	"github.com/Negativehue/Auxilium/internal/metrics"
	"github.com/Negativehue/Auxilium/internal/relay"
	"github.com/Negativehue/Auxilium/internal/server"
	"github.com/Negativehue/Auxilium/internal/serverstate"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	fs := flag.CommandLine
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "auxilium version=%s sha=%s date=%s\n\n", version, buildSHA, buildDate)
		fs.PrintDefaults()
	}
	cfg, err := config.Load(fs, os.Args[1:])
	if *showVersion {
		fmt.Printf("auxilium version=%s sha=%s date=%s\n", version, buildSHA, buildDate)
		return
	}
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			logx.Log.Fatal().Msg(err.Error())
		}
		logx.Log.Fatal().Err(err).Msg("load config")
	}
	logx.Configure(cfg.LogLevel)

	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rs, err := serverstate.NewRedisStore(ctx, cfg.RedisAddr, cfg.DrainTimeout)
		cancel()
		if err != nil {
			logx.Log.Fatal().Err(err).Msg("connect redis")
		}
		defer func() { _ = rs.Close() }()
		serverstate.UseStore(rs)
		logx.Log.Info().Msg("using redis state store")
	}

	client, err := gemini.New(gemini.Options{
		BaseURL: cfg.GeminiURL,
		Model:   cfg.GeminiModel,
		APIKey:  cfg.GeminiAPIKey,
		Timeout: cfg.UpstreamTimeout,
	})
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("configure upstream")
	}

	reg := metrics.NewRegistry()
	metrics.SetBuildInfo(version, buildSHA, buildDate)
	counter := &inflight.Counter{}

	handler := server.New(cfg, relay.New(client), server.Options{
		Version:  version,
		Registry: reg,
		Inflight: counter,
	})
	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	var metricsSrv *http.Server
	if !cfg.MetricsOnAPIPort() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", server.MetricsHandler(reg))
		metricsSrv = &http.Server{Addr: cfg.MetricsListenAddr(), Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		draining := false
		for range sigCh {
			if draining || cfg.DrainTimeout == 0 {
				logx.Log.Warn().Msg("termination requested")
				cancel()
				return
			}
			draining = true
			serverstate.StartDrain()
			logx.Log.Info().Dur("timeout", cfg.DrainTimeout).Int64("inflight", counter.Load()).
				Msg("draining; send SIGTERM again to terminate immediately")
			go func(d time.Duration) {
				wctx := ctx
				if d > 0 {
					var wcancel context.CancelFunc
					wctx, wcancel = context.WithTimeout(ctx, d)
					defer wcancel()
				}
				if counter.WaitForZero(wctx) {
					logx.Log.Info().Msg("drain complete")
				} else if ctx.Err() == nil {
					logx.Log.Warn().Int64("inflight", counter.Load()).Msg("drain timeout exceeded; terminating")
				}
				cancel()
			}(cfg.DrainTimeout)
		}
	}()
	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), time.Second)
		defer scancel()
		if err := srv.Shutdown(sctx); err != nil {
			logx.Log.Error().Err(err).Msg("server shutdown")
			_ = srv.Close()
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(sctx); err != nil {
				logx.Log.Error().Err(err).Msg("metrics server shutdown")
			}
		}
	}()

	if metricsSrv != nil {
		go func() {
			logx.Log.Info().Str("addr", metricsSrv.Addr).Msg("metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logx.Log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	if !serverstate.MarkReady() {
		logx.Log.Warn().Msg("shared state is draining; healthz reports 503 until it clears")
	}
	logx.Log.Info().
		Str("addr", srv.Addr).
		Str("upstream", client.Endpoint()).
		Str("version", version).
		Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Log.Fatal().Err(err).Msg("server error")
	}
	<-ctx.Done()
	logx.Log.Info().Msg("server stopped")
}
