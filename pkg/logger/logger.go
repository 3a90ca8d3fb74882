package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wonny/tokenscout/pkg/config"
)

// ServiceName is stamped on every line written by New
const ServiceName = "tokenscout"

// Logger is a structured logger wrapper around zerolog
// ⭐ SSOT: 모든 로깅은 이 패키지를 통해서만 수행
type Logger struct {
	zlog zerolog.Logger
}

// New creates a Logger from config.
// LOG_FORMAT=console|pretty writes human-readable lines to stdout, anything
// else writes JSON. LOG_FILE adds a rolling JSON file next to stdout.
// ⭐ SSOT: zerolog 인스턴스는 여기서만 생성
func New(cfg *config.Config) *Logger {
	var output io.Writer = os.Stdout
	if cfg.LogFormat == "console" || cfg.LogFormat == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	if cfg.LogFile != "" {
		output = zerolog.MultiLevelWriter(output, newFileSink(cfg.LogFile))
	}

	zerolog.SetGlobalLevel(parseLogLevel(cfg.LogLevel))

	return &Logger{zlog: zerolog.New(output).
		With().
		Timestamp().
		Str("service", ServiceName).
		Str("env", cfg.Env).
		Logger()}
}

// NewWithWriter creates a JSON logger writing to w (tests, captured output)
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{zlog: zerolog.New(w).With().Timestamp().Logger()}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// 로그 파일: 50MB 단위 회전, 최근 5개 / 14일 보관
func newFileSink(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	}
}

// parseLogLevel maps LOG_LEVEL to a zerolog level; unknown values mean info
func parseLogLevel(levelStr string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(levelStr))
	if s == "warning" {
		s = "warn"
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return level
}

func (l *Logger) Debug(msg string) {
	l.zlog.Debug().Msg(msg)
}

func (l *Logger) Info(msg string) {
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Warn(msg string) {
	l.zlog.Warn().Msg(msg)
}

func (l *Logger) Error(msg string) {
	l.zlog.Error().Msg(msg)
}

// WithField returns a new logger with an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Interface(key, value).Logger()}
}

// WithFields returns a new logger with multiple fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zlog: ctx.Logger()}
}

// WithError returns a new logger with an error field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zlog: l.zlog.With().Err(err).Logger()}
}

// WithComponent tags every line with the emitting component
// (s1_discovery, alert_bridge, scheduler, ...)
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("component", name).Logger()}
}
