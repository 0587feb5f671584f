package logger

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
)

const (
	EnvDebug     = "DNSDESK_DEBUG"
	EnvLogFormat = "DNSDESK_LOG_FORMAT"
)

type Logger struct {
	*slog.Logger
}

var (
	defaultLogger *Logger
	mu            sync.RWMutex
)

type Config struct {
	Level     slog.Level
	Format    string
	Output    io.Writer
	AddSource bool
}

func DefaultConfig() *Config {
	return &Config{
		Level:  slog.LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies DNSDESK_DEBUG and
// DNSDESK_LOG_FORMAT.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if debug, err := strconv.ParseBool(os.Getenv(EnvDebug)); err == nil && debug {
		cfg.Level = slog.LevelDebug
		cfg.AddSource = true
	}
	if format := strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogFormat))); format != "" {
		cfg.Format = format
	}
	return cfg
}

// Init replaces the process logger. The CLI calls it once per invocation.
func Init(cfg *Config) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	mu.Lock()
	defaultLogger = &Logger{slog.New(handler)}
	mu.Unlock()
}

func L() *Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		Init(DefaultConfig())
		return L()
	}
	return l
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

// ForProvider tags every line with the provider name.
func (l *Logger) ForProvider(provider string) *Logger {
	return l.With("provider", provider)
}

// Secret wraps a credential value so it always renders masked.
type Secret string

func (Secret) LogValue() slog.Value {
	return slog.StringValue("***")
}

func (Secret) String() string {
	return "***"
}
