package config

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger: production JSON on stderr, or debug
// level with an extra copy in <dataDir>/debug.log when debug is set.
func NewLogger(debug bool, dataDir string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		if dataDir != "" {
			if err := EnsureDir(dataDir); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
			cfg.OutputPaths = append(cfg.OutputPaths, filepath.Join(dataDir, "debug.log"))
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if debug {
		logger.Debug("Debug logging started", zap.String("data_dir", dataDir))
	}
	return logger, nil
}
