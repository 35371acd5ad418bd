// Package logger wraps zap with per-module loggers, file rotation and trace id enrichment.
package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager owns one logger per module name.
type Manager struct {
	cfg     ManagerConfig
	mu      sync.RWMutex
	loggers map[string]*CtxZapLogger
	bases   map[string]*zap.Logger
	writers []*lumberjack.Logger
}

var (
	globalManager *Manager
	globalMu      sync.Mutex
)

// NewManager creates a Manager; zero fields of cfg take defaults.
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		cfg:     cfg,
		loggers: make(map[string]*CtxZapLogger),
		bases:   make(map[string]*zap.Logger),
	}
}

// InitManager replaces the process-wide manager used by GetLogger.
// The previous manager, if any, is closed.
func InitManager(cfg ManagerConfig) *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalManager != nil {
		globalManager.CloseAll()
	}
	globalManager = NewManager(cfg)
	return globalManager
}

// Config returns the effective configuration.
func (m *Manager) Config() ManagerConfig {
	return m.cfg
}

// GetLogger returns the logger bound to module, creating it on first use.
func (m *Manager) GetLogger(module string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[module]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[module]; ok {
		return l
	}

	base := m.build(module).With(zap.String("module", module))
	l := &CtxZapLogger{
		base:   base.WithOptions(zap.AddCallerSkip(1)),
		module: module,
		config: &m.cfg,
	}
	m.loggers[module] = l
	m.bases[module] = base
	return l
}

func (m *Manager) build(module string) *zap.Logger {
	encoder := newEncoder(m.cfg.Encoding)
	level := ParseLevel(m.cfg.Level)
	var cores []zapcore.Core

	if m.cfg.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level))
	}

	if m.cfg.EnableFile {
		info := m.fileWriter(m.cfg.filePath(module, "info"))
		cores = append(cores, zapcore.NewCore(encoder, info, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= level && l < zapcore.ErrorLevel
		})))

		errw := m.fileWriter(m.cfg.filePath(module, "error"))
		cores = append(cores, zapcore.NewCore(encoder, errw, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapcore.ErrorLevel
		})))
	}

	var opts []zap.Option
	if m.cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

func (m *Manager) fileWriter(path string) zapcore.WriteSyncer {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    m.cfg.MaxSize,
		MaxBackups: m.cfg.MaxBackups,
		MaxAge:     m.cfg.MaxAge,
		Compress:   m.cfg.Compress,
		LocalTime:  true,
	}
	m.writers = append(m.writers, w)
	return zapcore.AddSync(w)
}

// CloseAll flushes every logger and closes rotated files.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bases {
		_ = b.Sync()
	}
	for _, w := range m.writers {
		_ = w.Close()
	}
	m.loggers = make(map[string]*CtxZapLogger)
	m.bases = make(map[string]*zap.Logger)
	m.writers = nil
}

func newEncoder(encoding string) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if encoding == "console" {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

// GetLogger returns a module logger from the process-wide manager,
// initializing it with DefaultManagerConfig when InitManager was never called.
func GetLogger(module string) *CtxZapLogger {
	globalMu.Lock()
	if globalManager == nil {
		globalManager = NewManager(DefaultManagerConfig())
	}
	m := globalManager
	globalMu.Unlock()
	return m.GetLogger(module)
}

// CloseAll closes the process-wide manager.
func CloseAll() {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalManager != nil {
		globalManager.CloseAll()
	}
}
