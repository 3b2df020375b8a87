// Package logging provides the default statsdproxy.Logger backed by zap.
package logging

import (
	"go.uber.org/zap"
)

// ZapLogger adapts a *zap.SugaredLogger to the statsdproxy.Logger
// interface's alternating key/value argument shape.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a ZapLogger. development selects zap's human-friendly console
// encoder and debug level; production selects the JSON encoder suited to
// log aggregation.
func New(development bool) (*ZapLogger, error) {
	var logger *zap.Logger
	var err error
	if development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: logger.Sugar()}, nil
}

func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *ZapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// Sync flushes any buffered log entries; callers should defer it in main.
func (l *ZapLogger) Sync() error { return l.sugar.Sync() }
