package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"tinygen/analyzer"
	"tinygen/codebase"
	"tinygen/config"
	"tinygen/model"
	"tinygen/provider"
	"tinygen/repo"
	"tinygen/storage"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	provider model.Provider
	records  *storage.RecordStorage // Nil when records are disabled
	workDir  string                 // This process's clone directory, once created
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	p, err := provider.NewProvider(cfg.ProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Provider.Type, err)
	}
	logger.Debug("Provider ready",
		zap.String("provider", cfg.Provider.Type),
		zap.String("model", p.GetModel()))

	a := &app{cfg: cfg, logger: logger, provider: p}
	if cfg.Records.Enabled {
		a.records, err = storage.NewRecordStorage(cfg.DataDir())
		if err != nil {
			return nil, fmt.Errorf("failed to open analysis records: %w", err)
		}
	}
	return a, nil
}

// prepareCloneRoot removes directories left by processes that are no longer
// running and creates this process's own clone directory.
func (a *app) prepareCloneRoot() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	root := a.cfg.CloneRoot()
	if err := config.CleanupTempDir(root); err != nil {
		a.logger.Warn("Failed to clean up stale clone directories", zap.String("dir", root), zap.Error(err))
	}
	dir, err := config.CreateProcessDir(root)
	if err != nil {
		return "", fmt.Errorf("failed to create clone directory under %s: %w", root, err)
	}
	a.workDir = dir
	return dir, nil
}

func (a *app) newService(onChunk analyzer.ChunkFunc) (*analyzer.Service, error) {
	root, err := a.prepareCloneRoot()
	if err != nil {
		return nil, err
	}

	driver, err := analyzer.NewDriver(analyzer.Config{
		Provider: a.provider,
		OnChunk:  onChunk,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, err
	}

	cloner := repo.NewGitCloner(
		repo.WithDepth(a.cfg.Clone.Depth),
		repo.WithToken(a.cfg.Clone.Token),
		repo.WithLogger(a.logger),
	)

	svcCfg := analyzer.ServiceConfig{
		Cloner:     cloner,
		Serializer: codebase.NewSerializer(a.logger),
		Driver:     driver,
		WorkDir:    root,
		Logger:     a.logger,

		KeepTranscripts: a.cfg.Debug,
	}
	if a.records != nil {
		svcCfg.Records = a.records
	}
	return analyzer.NewService(svcCfg)
}

func (a *app) Close() {
	if a.workDir != "" {
		if err := os.RemoveAll(a.workDir); err != nil {
			a.logger.Warn("Failed to remove clone directory", zap.String("dir", a.workDir), zap.Error(err))
		}
	}
	if a.records != nil {
		if err := a.records.Close(); err != nil {
			a.logger.Warn("Failed to close analysis records", zap.Error(err))
		}
	}
}
