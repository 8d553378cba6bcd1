// Package logging builds the zap logger used by ecflow-light tools.
//
// Outputs named "stdout" and "stderr" write to the process streams; any
// other output is a file path, rotated with lumberjack when
// rotation.enabled is set.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ecmwf/ecflow-light/config"
)

// ParseLevel maps a configured level name to a zap level. Unknown names
// select info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a logger from cfg. The returned func closes the log files
// opened for file outputs; call it after logger.Sync().
func New(cfg config.LogConfig) (*zap.Logger, func() error, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "timestamp"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	cores := make([]zapcore.Core, 0, len(outputs))
	var files []io.Closer
	closeFiles := func() error {
		var errs []error
		for _, f := range files {
			if err := f.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		files = nil
		return errors.Join(errs...)
	}
	for _, out := range outputs {
		ws, closer, err := writer(out, cfg.Rotation)
		if err != nil {
			_ = closeFiles()
			return nil, nil, err
		}
		if closer != nil {
			files = append(files, closer)
		}
		cores = append(cores, zapcore.NewCore(encoder, ws, level))
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(zapcore.NewTee(cores...), opts...), closeFiles, nil
}

// writer returns the sink for out and, for file outputs, the file to close.
func writer(out string, rotation config.RotationConfig) (zapcore.WriteSyncer, io.Closer, error) {
	switch strings.ToLower(out) {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil, nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil, nil
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	if rotation.Enabled {
		lj := &lumberjack.Logger{
			Filename:   out,
			MaxSize:    max(rotation.MaxSizeMB, 1),
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAgeDays,
			Compress:   rotation.Compress,
		}
		return zapcore.AddSync(lj), lj, nil
	}

	f, err := os.OpenFile(out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return zapcore.Lock(f), f, nil
}
