package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestTimedOperation_RecordsOutcome(t *testing.T) {
	ResetMetrics()
	ctx := context.Background()

	_ = TimedOperation(ctx, "aliyun", "list_records", func() error { return nil })
	_ = TimedOperation(ctx, "aliyun", "list_records", func() error { return errors.New("boom") })
	_ = TimedOperation(ctx, "cloudflare", "list_domains", func() error { return nil })

	stats := Snapshot()
	if len(stats) != 2 {
		t.Fatalf("Snapshot() returned %d entries, want 2", len(stats))
	}
	if stats[0].Operation != "aliyun.list_records" {
		t.Errorf("first key = %q, want aliyun.list_records", stats[0].Operation)
	}
	if stats[0].Total != 2 || stats[0].Failed != 1 {
		t.Errorf("aliyun.list_records = %+v, want total 2 failed 1", stats[0])
	}
	if stats[1].Failed != 0 {
		t.Errorf("cloudflare.list_domains failed = %d, want 0", stats[1].Failed)
	}
}

func TestTimedOperation_ReturnsError(t *testing.T) {
	ResetMetrics()
	want := errors.New("boom")
	got := TimedOperation(context.Background(), "huawei", "test", func() error { return want })
	if !errors.Is(got, want) {
		t.Errorf("TimedOperation() = %v, want %v", got, want)
	}
}

func TestSecret_Masked(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	l.Info("saving", "api_key", Secret("super-secret"))

	if strings.Contains(buf.String(), "super-secret") {
		t.Errorf("log output leaked secret: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "api_key=***") {
		t.Errorf("log output = %s, want masked api_key", buf.String())
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvDebug, "1")
	t.Setenv(EnvLogFormat, "JSON")

	cfg := ConfigFromEnv()
	if cfg.Level != slog.LevelDebug || !cfg.AddSource {
		t.Errorf("ConfigFromEnv() level=%v addSource=%v, want debug with source", cfg.Level, cfg.AddSource)
	}
	if cfg.Format != "json" {
		t.Errorf("ConfigFromEnv() format = %q, want json", cfg.Format)
	}
}
