package server

//go:generate mockgen -destination=./service_mock_test.go -package=server -source=service.go

import (
	"context"

	"tinygen/storage"
)

// Analyzer turns a repository and a change request into a unified diff.
type Analyzer interface {
	AnalyzeRepo(ctx context.Context, repoURL, prompt string) (string, error)
}

// RecordReader exposes stored analyses.
type RecordReader interface {
	Load(ctx context.Context, id string) (*storage.Record, error)
	List(ctx context.Context, limit int) ([]storage.RecordMetadata, error)
}

// Pinger reports whether the model backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
