package serverstate

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Negativehue/Auxilium/internal/logx"
)

// redisStore implements Store backed by a Redis instance.
type redisStore struct {
	client   redis.UniversalClient
	key      string
	timeout  time.Duration
	drainTTL time.Duration
}

const redisKey = "auxilium:state"

// NewRedisStore connects to the given Redis URL and returns a Store shared by
// every relay replica pointed at the same instance. The key is initialized to
// not_ready if it does not exist. A draining state expires after drainTTL so
// a drain left behind by a replica that exited does not outlive it; zero or
// negative keeps it until overwritten.
func NewRedisStore(ctx context.Context, addr string, drainTTL time.Duration) (*redisStore, error) {
	opts, err := parseRedisURL(addr)
	if err != nil {
		return nil, err
	}
	c := redis.NewUniversalClient(opts)
	rs := &redisStore{client: c, key: redisKey, timeout: 2 * time.Second}
	if drainTTL > 0 {
		rs.drainTTL = drainTTL
	}
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	b, err := json.Marshal(State{Status: StatusNotReady})
	if err != nil {
		return nil, err
	}
	if err := c.SetNX(ctx, rs.key, b, 0).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis init state: %w", err)
	}
	return rs, nil
}

// Close releases the underlying connection pool.
func (r *redisStore) Close() error {
	return r.client.Close()
}

// parseRedisURL parses addr into UniversalOptions supporting single, cluster,
// and sentinel Redis deployments. If no scheme is present, addr is treated as
// a plain host:port string.
func parseRedisURL(addr string) (*redis.UniversalOptions, error) {
	if !strings.Contains(addr, "://") {
		return &redis.UniversalOptions{Addrs: []string{addr}}, nil
	}

	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}

	opts := &redis.UniversalOptions{}
	if u.User != nil {
		opts.Username = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			opts.Password = pw
		}
	}
	opts.Addrs = strings.Split(u.Host, ",")

	q := u.Query()
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	switch u.Scheme {
	case "redis", "rediss":
		if u.Path != "" && u.Path != "/" {
			if db, err := strconv.Atoi(strings.TrimPrefix(u.Path, "/")); err == nil {
				opts.DB = db
			} else {
				return nil, fmt.Errorf("redis: invalid db: %v", err)
			}
		} else if dbStr := q.Get("db"); dbStr != "" {
			if db, err := strconv.Atoi(dbStr); err == nil {
				opts.DB = db
			} else {
				return nil, fmt.Errorf("redis: invalid db: %v", err)
			}
		}
		if u.Scheme == "rediss" {
			opts.TLSConfig = tlsCfg
		}
	case "redis-sentinel", "rediss-sentinel":
		opts.MasterName = strings.TrimPrefix(u.Path, "/")
		if dbStr := q.Get("db"); dbStr != "" {
			if db, err := strconv.Atoi(dbStr); err == nil {
				opts.DB = db
			} else {
				return nil, fmt.Errorf("redis: invalid db: %v", err)
			}
		}
		if v := q.Get("sentinel_username"); v != "" {
			opts.SentinelUsername = v
		}
		if v := q.Get("sentinel_password"); v != "" {
			opts.SentinelPassword = v
		}
		if u.Scheme == "rediss-sentinel" {
			opts.TLSConfig = tlsCfg
		}
	default:
		return nil, fmt.Errorf("redis: invalid URL scheme: %s", u.Scheme)
	}

	return opts, nil
}

func (r *redisStore) Load() State {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	b, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{Status: StatusNotReady}
		}
		logx.Log.Warn().Err(err).Msg("load server state")
		return State{Status: StatusUnknown}
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return State{Status: StatusUnknown}
	}
	return st
}

func (r *redisStore) Store(s State) {
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	var ttl time.Duration
	if s.Draining {
		ttl = r.drainTTL
	}
	if err := r.client.Set(ctx, r.key, b, ttl).Err(); err != nil {
		logx.Log.Warn().Err(err).Str("status", s.Status).Msg("store server state")
	}
}
