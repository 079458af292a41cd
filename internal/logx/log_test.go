package logx_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Negativehue/Auxilium/internal/logx"
)

func TestConfigureLogLevel(t *testing.T) {
	defer logx.Configure("info")

	logx.Configure("all")
	if zerolog.GlobalLevel() != zerolog.TraceLevel {
		t.Fatalf("expected trace level, got %s", zerolog.GlobalLevel())
	}

	logx.Configure("WARNING")
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %s", zerolog.GlobalLevel())
	}

	logx.Configure(" error ")
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("expected error level, got %s", zerolog.GlobalLevel())
	}

	logx.Configure("none")
	if zerolog.GlobalLevel() != zerolog.Disabled {
		t.Fatalf("expected disabled level, got %s", zerolog.GlobalLevel())
	}

	logx.Configure("bogus")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", zerolog.GlobalLevel())
	}
}

func TestConfigureOutputWritesJSON(t *testing.T) {
	defer logx.Configure("info")

	var buf bytes.Buffer
	logx.ConfigureOutput("debug", &buf)
	logx.Log.Debug().Str("call_id", "abc").Msg("upstream call")

	out := buf.String()
	if !strings.Contains(out, `"call_id":"abc"`) {
		t.Fatalf("missing field in %q", out)
	}
	if !strings.Contains(out, `"service":"auxilium"`) {
		t.Fatalf("missing service field in %q", out)
	}
}
