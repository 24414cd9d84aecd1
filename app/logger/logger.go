// Package logger builds the zap logger used across the application.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"yatube/app/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger writing JSON to a rotated file. In "dev" mode a
// console encoder on stdout is added alongside the file.
func New(cfg config.LogConfig, mode string) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	fileCore := zapcore.NewCore(jsonEncoder(), fileWriter(cfg), level)

	core := fileCore
	if mode == "dev" {
		consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zapcore.DebugLevel)
		core = zapcore.NewTee(fileCore, consoleCore)
	}

	return zap.New(core, zap.AddCaller()), nil
}

// NewConsole logs to stderr only. The CLI uses it before a config exists.
func NewConsole(level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

func fileWriter(cfg config.LogConfig) zapcore.WriteSyncer {
	name := cfg.FileName
	if name == "" {
		name = "yatube.log"
	}
	if !filepath.IsAbs(name) && cfg.Path != "" {
		name = filepath.Join(cfg.Path, name)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   name,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	})
}

func jsonEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}
