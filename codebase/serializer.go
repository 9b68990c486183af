// Package codebase turns a checked-out repository into the single text blob
// ("context") that the analysis passes read.
package codebase

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// SkippedFile records a file that was left out of the context and why.
type SkippedFile struct {
	Path   string
	Reason string
}

// Snapshot is the serialized form of a repository.
type Snapshot struct {
	Text    string
	Files   []string // repository-relative, forward slashes, walk order
	Skipped []SkippedFile
}

// Serializer walks a directory tree and concatenates every eligible file.
//
// Hidden files and directories (leading ".") and .zip archives are excluded.
// A file that cannot be read, or whose content is not UTF-8 text, is logged and
// skipped; serialization itself only fails when the root cannot be walked.
type Serializer struct {
	logger   *zap.Logger
	readFile func(name string) ([]byte, error)
}

// NewSerializer creates a Serializer. A nil logger disables logging.
func NewSerializer(logger *zap.Logger) *Serializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Serializer{
		logger:   logger,
		readFile: os.ReadFile,
	}
}

// Serialize walks root in lexical order and returns the context blob.
func (s *Serializer) Serialize(root string) (*Snapshot, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat repository root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", root)
	}

	snap := &Snapshot{}
	var sb strings.Builder

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			s.skip(snap, path, root, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == root {
			return nil
		}

		if d.IsDir() {
			if isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !Eligible(d.Name()) {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		content, err := s.readFile(path)
		if err != nil {
			s.skip(snap, path, root, err)
			return nil
		}
		if !utf8.Valid(content) {
			s.skip(snap, path, root, fmt.Errorf("content is not valid UTF-8 text"))
			return nil
		}

		rel := relPath(root, path)
		sb.WriteString(FileBlock(rel, string(content)))
		snap.Files = append(snap.Files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk repository: %w", err)
	}

	snap.Text = sb.String()
	s.logger.Debug("Serialized repository",
		zap.String("root", root),
		zap.Int("files", len(snap.Files)),
		zap.Int("skipped", len(snap.Skipped)),
		zap.Int("bytes", len(snap.Text)))

	return snap, nil
}

func (s *Serializer) skip(snap *Snapshot, path, root string, err error) {
	rel := relPath(root, path)
	s.logger.Warn("Skipping unreadable file", zap.String("path", path), zap.Error(err))
	snap.Skipped = append(snap.Skipped, SkippedFile{Path: rel, Reason: err.Error()})
}

// Eligible reports whether a file name may be included in the context.
func Eligible(name string) bool {
	return !isHidden(name) && !strings.HasSuffix(name, ".zip")
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
