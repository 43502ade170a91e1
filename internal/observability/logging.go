// Package observability builds the structured logger shared by the game and its tools.
package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/cloudranger/internal/config"
)

// LoggerName prefixes every logger built here.
const LoggerName = "cloudranger"

// NewLogger builds a logger from cfg. Logs go to cfg.Output, never stdout,
// because stdout belongs to the game screen. A file output's directory is
// created if missing.
//
// Precondition: cfg.Level is one of "debug", "info", "warn", "error";
// cfg.Format is "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
		// Every dice roll is logged at debug; sampling would drop the sequence.
		zapCfg.Sampling = nil
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	sink, err := outputPath(cfg.Output)
	if err != nil {
		return nil, err
	}
	zapCfg.OutputPaths = []string{sink}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Named(LoggerName), nil
}

func outputPath(out string) (string, error) {
	switch out {
	case "", "stderr":
		return "stderr", nil
	case "stdout":
		return "", fmt.Errorf("logging.output must not be stdout")
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating log dir: %w", err)
		}
	}
	return out, nil
}

// Install makes logger the process-wide zap logger and routes the standard
// library logger through it. The returned function undoes both.
func Install(logger *zap.Logger) func() {
	restoreGlobals := zap.ReplaceGlobals(logger)
	restoreStd := zap.RedirectStdLog(logger)
	return func() {
		restoreStd()
		restoreGlobals()
	}
}
