package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/northpier/northpier-web/internal/xerrors"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"verbose", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q): want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func newJSONLogger(t *testing.T, buf *bytes.Buffer, lvl slog.Level) Logger {
	t.Helper()
	L, err := New(Options{
		App:        "northpier-web",
		Version:    "test",
		Level:      lvl,
		JsonFormat: true,
		Writer:     buf,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return L
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &rec); err != nil {
		t.Fatalf("not JSON: %v\n%s", err, buf.String())
	}
	return rec
}

func TestJSONOutput_BaseFields(t *testing.T) {
	var buf bytes.Buffer
	L := newJSONLogger(t, &buf, slog.LevelInfo)

	L.Info(context.Background(), "server started", "port", 3000)

	rec := lastLine(t, &buf)
	if rec["msg"] != "server started" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["app"] != "northpier-web" {
		t.Errorf("app = %v", rec["app"])
	}
	if rec["version"] != "test" {
		t.Errorf("version = %v", rec["version"])
	}
	if rec["port"] != float64(3000) {
		t.Errorf("port = %v", rec["port"])
	}
	if rec["level"] != "INFO" {
		t.Errorf("level = %v", rec["level"])
	}
}

func TestWith_InheritsAndExtends(t *testing.T) {
	var buf bytes.Buffer
	L := newJSONLogger(t, &buf, slog.LevelInfo)

	child := L.With("component", "server")
	child.Info(context.Background(), "hello")

	rec := lastLine(t, &buf)
	if rec["component"] != "server" {
		t.Errorf("component = %v", rec["component"])
	}
	if rec["app"] != "northpier-web" {
		t.Errorf("app = %v, base attrs lost", rec["app"])
	}

	// parent unchanged
	buf.Reset()
	L.Info(context.Background(), "parent")
	rec = lastLine(t, &buf)
	if _, ok := rec["component"]; ok {
		t.Error("parent logger gained child attrs")
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	L := newJSONLogger(t, &buf, slog.LevelWarn)

	L.Debug(context.Background(), "noise")
	L.Info(context.Background(), "noise")
	if buf.Len() != 0 {
		t.Fatalf("sub-threshold records emitted: %s", buf.String())
	}

	L.Warn(context.Background(), "kept")
	if buf.Len() == 0 {
		t.Fatal("warn record dropped")
	}
}

func TestError_AttachesErrAndStack(t *testing.T) {
	var buf bytes.Buffer
	L := newJSONLogger(t, &buf, slog.LevelInfo)

	err := xerrors.New("disk on fire")
	L.Error(context.Background(), err, "request failed")

	rec := lastLine(t, &buf)
	if rec["err"] != "disk on fire" {
		t.Errorf("err = %v", rec["err"])
	}
	stack, ok := rec["stack"].(string)
	if !ok || stack == "" {
		t.Fatal("missing stack on error record")
	}
	if !strings.Contains(stack, "log.TestError_AttachesErrAndStack") {
		t.Errorf("stack does not reach the call site:\n%s", stack)
	}
}

func TestError_Chain(t *testing.T) {
	var buf bytes.Buffer
	L := newJSONLogger(t, &buf, slog.LevelInfo)

	inner := xerrors.New("root cause")
	err := xerrors.Wrap(inner, "while serving")
	L.Error(context.Background(), err, "request failed")

	rec := lastLine(t, &buf)
	chain, ok := rec["error_chain"].([]any)
	if !ok || len(chain) < 2 {
		t.Fatalf("error_chain = %v", rec["error_chain"])
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	L := Nop()
	ctx := context.Background()
	L.Debug(ctx, "x")
	L.Info(ctx, "x")
	L.Warn(ctx, "x")
	L.Error(ctx, xerrors.New("x"), "x")
	if err := L.With("a", 1).Sync(); err != nil {
		t.Fatalf("Sync = %v", err)
	}
}

func TestFromContext_FallsBackToNop(t *testing.T) {
	L := FromContext(context.Background())
	if L == nil {
		t.Fatal("FromContext returned nil")
	}
	L.Info(context.Background(), "safe")
}

func TestWithContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	L := newJSONLogger(t, &buf, slog.LevelInfo)

	ctx := WithContext(context.Background(), L.With("request_id", "abc"))
	FromContext(ctx).Info(ctx, "from context")

	rec := lastLine(t, &buf)
	if rec["request_id"] != "abc" {
		t.Errorf("request_id = %v", rec["request_id"])
	}
}
