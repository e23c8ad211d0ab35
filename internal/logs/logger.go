package logs

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry is one recorded log line, kept for the diagnostics endpoint.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// Logger writes structured logs through zap and keeps a bounded ring of
// recent entries so the API can serve them without touching log files.
//
// The logger is injected everywhere; no package configures a global one.
type Logger struct {
	zap *zap.Logger

	mu      sync.Mutex
	entries []Entry
	maxSize int
}

// Options controls log output.
type Options struct {
	Level      string // debug | info | warn | error
	File       string // optional log file, rotated; empty means stderr only
	MaxSizeMB  int    // rotation threshold for File
	MaxBackups int    // rotated files to keep
	RingSize   int    // recent entries kept in memory
}

// New builds a Logger from options.
func New(opts Options) (*Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", opts.Level, err)
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	sink := zapcore.AddSync(os.Stderr)
	if opts.File != "" {
		rotated := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		})
		sink = zapcore.NewMultiWriteSyncer(sink, rotated)
	}

	ringSize := opts.RingSize
	if ringSize <= 0 {
		ringSize = 256
	}

	return &Logger{
		zap:     zap.New(zapcore.NewCore(encoder, sink, level)),
		entries: make([]Entry, 0, ringSize),
		maxSize: ringSize,
	}, nil
}

// NewNop returns a logger that records to the ring but writes nowhere.
// Used in tests.
func NewNop() *Logger {
	return &Logger{
		zap:     zap.NewNop(),
		entries: make([]Entry, 0, 128),
		maxSize: 128,
	}
}

func (l *Logger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.maxSize {
		// drop oldest entry (ring behavior)
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
	})
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.record("debug", msg)
	l.zap.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.record("info", msg)
	l.zap.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.record("warn", msg)
	l.zap.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.record("error", msg)
	l.zap.Error(msg, fields...)
}

// GetLast returns up to n most recent entries, oldest first.
func (l *Logger) GetLast(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.entries) {
		n = len(l.entries)
	}
	start := len(l.entries) - n
	out := make([]Entry, n)
	copy(out, l.entries[start:])
	return out
}

// Sync flushes buffered log output.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}
