// Package logging provides the engine's centralized zap logger,
// grounded on chrissnell-remoteweather's internal/log package: a
// package-level sugared logger initialized once at startup, with a
// lazy fallback for callers (tests, library use) that never call Init.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger
var baseLogger *zap.Logger

// Init initializes the package-level logger. debug selects zap's
// development encoder (human-readable, caller-annotated); otherwise the
// production JSON encoder is used.
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("logging: can't initialize zap logger: %w", err)
	}

	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

// GetZapLogger returns the base zap logger, initializing a production
// fallback if Init was never called.
func GetZapLogger() *zap.Logger {
	if baseLogger == nil {
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		log = baseLogger.Sugar()
	}
	return baseLogger
}

// GetSugaredLogger returns the package's sugared logger, initializing a
// production fallback if Init was never called.
func GetSugaredLogger() *zap.SugaredLogger {
	if log == nil {
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		log = baseLogger.Sugar()
	}
	return log
}

// Sync flushes any buffered log entries. Callers should defer this in
// main after a successful Init.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func Debug(args ...interface{})                        { GetSugaredLogger().Debug(args...) }
func Debugf(template string, args ...interface{})      { GetSugaredLogger().Debugf(template, args...) }
func Debugw(msg string, keysAndValues ...interface{})   { GetSugaredLogger().Debugw(msg, keysAndValues...) }
func Info(args ...interface{})                          { GetSugaredLogger().Info(args...) }
func Infof(template string, args ...interface{})        { GetSugaredLogger().Infof(template, args...) }
func Infow(msg string, keysAndValues ...interface{})    { GetSugaredLogger().Infow(msg, keysAndValues...) }
func Warn(args ...interface{})                          { GetSugaredLogger().Warn(args...) }
func Warnf(template string, args ...interface{})        { GetSugaredLogger().Warnf(template, args...) }
func Warnw(msg string, keysAndValues ...interface{})    { GetSugaredLogger().Warnw(msg, keysAndValues...) }
func Error(args ...interface{})                         { GetSugaredLogger().Error(args...) }
func Errorf(template string, args ...interface{})       { GetSugaredLogger().Errorf(template, args...) }
func Errorw(msg string, keysAndValues ...interface{})   { GetSugaredLogger().Errorw(msg, keysAndValues...) }

func Fatal(args ...interface{}) {
	GetSugaredLogger().Fatal(args...)
	os.Exit(1)
}

func Fatalf(template string, args ...interface{}) {
	GetSugaredLogger().Fatalf(template, args...)
	os.Exit(1)
}
