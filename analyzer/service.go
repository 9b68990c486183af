package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tinygen/codebase"
	"tinygen/repo"
	"tinygen/storage"
)

// RecordStore persists the outcome of each analysis.
type RecordStore interface {
	Create(ctx context.Context, rec *storage.Record) error
	Finish(ctx context.Context, rec *storage.Record) error
}

// ServiceConfig wires the collaborators of a Service.
type ServiceConfig struct {
	Cloner     repo.Cloner
	Serializer *codebase.Serializer
	Driver     *Driver
	Records    RecordStore // Optional
	WorkDir    string      // Parent of per-request clone directories; empty means os.TempDir()
	Logger     *zap.Logger

	// KeepTranscripts stores the full conversation, context blob included,
	// in each record.
	KeepTranscripts bool
}

// Result is a completed analysis.
type Result struct {
	ID         string
	Diff       string
	Snapshot   *codebase.Snapshot
	Transcript *Transcript
}

// Service clones a repository, runs the pipeline over it and extracts the diff.
// It holds no per-request state, so one Service serves concurrent requests.
type Service struct {
	cloner     repo.Cloner
	serializer *codebase.Serializer
	driver     *Driver
	records    RecordStore
	workDir    string
	logger     *zap.Logger

	keepTranscripts bool
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Cloner == nil {
		return nil, errors.New("analyzer: cloner is required")
	}
	if cfg.Driver == nil {
		return nil, errors.New("analyzer: driver is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	serializer := cfg.Serializer
	if serializer == nil {
		serializer = codebase.NewSerializer(logger)
	}

	return &Service{
		cloner:     cfg.Cloner,
		serializer: serializer,
		driver:     cfg.Driver,
		records:    cfg.Records,
		workDir:    cfg.WorkDir,
		logger:     logger,

		keepTranscripts: cfg.KeepTranscripts,
	}, nil
}

// AnalyzeRepo returns the unified diff suggested for prompt against the
// repository at repoURL. Clone failures are returned as *repo.CloneError.
func (s *Service) AnalyzeRepo(ctx context.Context, repoURL, prompt string) (string, error) {
	res, err := s.Analyze(ctx, repoURL, prompt)
	if err != nil {
		return "", err
	}
	return res.Diff, nil
}

// Analyze is AnalyzeRepo with the intermediate artifacts kept.
func (s *Service) Analyze(ctx context.Context, repoURL, prompt string) (*Result, error) {
	res := &Result{ID: uuid.NewString()}
	logger := s.logger.With(zap.String("analysis_id", res.ID), zap.String("repo_url", repoURL))

	rec := s.startRecord(ctx, logger, res.ID, repoURL, prompt)
	err := s.run(ctx, logger, res, repoURL, prompt)
	s.finishRecord(ctx, logger, rec, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// run owns the clone directory: it is removed on every return path.
func (s *Service) run(ctx context.Context, logger *zap.Logger, res *Result, repoURL, prompt string) error {
	dir, err := os.MkdirTemp(s.workDir, "clone-*")
	if err != nil {
		return fmt.Errorf("failed to create clone directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			logger.Warn("Failed to remove clone directory", zap.String("dir", dir), zap.Error(rmErr))
		}
	}()

	logger.Info("Cloning repository", zap.String("dir", dir))
	if err := s.cloner.Clone(ctx, repoURL, dir); err != nil {
		return err
	}

	snap, err := s.serializer.Serialize(dir)
	if err != nil {
		return fmt.Errorf("failed to serialize repository: %w", err)
	}
	res.Snapshot = snap

	transcript, err := s.driver.Run(ctx, Input{Context: snap.Text, Prompt: prompt})
	res.Transcript = transcript
	if err != nil {
		return err
	}

	diff, err := ExtractDiff(transcript.Final())
	if err != nil {
		return fmt.Errorf("failed to extract diff: %w", err)
	}
	res.Diff = diff

	logger.Info("Analysis complete", zap.Int("diff_bytes", len(diff)))
	return nil
}

func (s *Service) startRecord(ctx context.Context, logger *zap.Logger, id, repoURL, prompt string) *storage.Record {
	if s.records == nil {
		return nil
	}
	rec := &storage.Record{
		ID:      id,
		RepoURL: repoURL,
		Prompt:  prompt,
		Model:   s.driver.Model(),
		Status:  storage.StatusRunning,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		logger.Warn("Failed to create analysis record", zap.Error(err))
		return nil
	}
	return rec
}

func (s *Service) finishRecord(ctx context.Context, logger *zap.Logger, rec *storage.Record, res *Result, err error) {
	if rec == nil {
		return
	}

	rec.FinishedAt = time.Now()
	if s.keepTranscripts && res.Transcript != nil {
		rec.History = res.Transcript.History
		rec.Replies = res.Transcript.Replies
	}
	if err != nil {
		rec.Status = storage.StatusFailed
		rec.Error = err.Error()
	} else {
		rec.Status = storage.StatusSucceeded
		rec.Diff = res.Diff
	}

	// The record outlives a canceled request.
	if ferr := s.records.Finish(context.WithoutCancel(ctx), rec); ferr != nil {
		logger.Warn("Failed to finish analysis record", zap.Error(ferr))
	}
}
