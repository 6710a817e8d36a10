package main

import (
	"log/slog"
	"os"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger creates a JSON logger for CLI use.
//
// The core is a zap production encoder; the SDK wants an *slog.Logger so
// the zap core is wrapped with a slog handler bridge. Returns the slog
// logger and the underlying zap logger for the deferred Sync.
func newLogger(verbose bool) (*slog.Logger, *zap.Logger) {
	zapencCfg := zap.NewProductionEncoderConfig()
	zapencCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	zapLvl := zap.InfoLevel
	slogLvl := slog.LevelInfo
	if verbose {
		zapLvl = zap.DebugLevel
		slogLvl = slog.LevelDebug
	}

	zaplog := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zapencCfg),
		zapcore.AddSync(os.Stderr),
		zapLvl,
	))

	logger := slog.New(slogzap.Option{Level: slogLvl, Logger: zaplog}.NewZapHandler())
	return logger, zaplog
}
