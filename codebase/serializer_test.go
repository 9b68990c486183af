package codebase

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func TestSerializeFiltersHiddenAndZip(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md":            "# demo",
		"main.go":              "package main",
		"src/util/helpers.py":  "def f(): pass",
		".env":                 "SECRET=1",
		".git/config":          "[core]",
		"src/.cache/blob.txt":  "cached",
		"assets/bundle.zip":    "PK",
		"assets/logo.txt":      "logo",
		"docs/.hidden.md":      "hidden",
		"docs/guide/intro.txt": "intro",
	})

	snap, err := NewSerializer(nil).Serialize(root)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	want := []string{
		"README.md",
		"assets/logo.txt",
		"docs/guide/intro.txt",
		"main.go",
		"src/util/helpers.py",
	}
	if diff := cmp.Diff(want, snap.Files); diff != "" {
		t.Errorf("included files mismatch (-want +got):\n%s", diff)
	}

	for _, excluded := range []string{"SECRET=1", "[core]", "cached", "bundle.zip", "hidden"} {
		if strings.Contains(snap.Text, excluded) {
			t.Errorf("context unexpectedly contains %q", excluded)
		}
	}

	for _, rel := range want {
		header := "REPO FILE PATH: \n" + rel + "\n"
		if n := strings.Count(snap.Text, header); n != 1 {
			t.Errorf("path %s appears %d times, want 1", rel, n)
		}
	}
	if len(snap.Skipped) != 0 {
		t.Errorf("unexpected skipped files: %v", snap.Skipped)
	}
}

func TestSerializeFileBlockFormat(t *testing.T) {
	root := writeTree(t, map[string]string{"src/main.py": "print('hi')"})

	snap, err := NewSerializer(nil).Serialize(root)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	want := "\n_____  \n\nREPO FILE PATH: \nsrc/main.py\n\nFILE CONTENT:\n```\nprint('hi')\n```\n\n____\n\n"
	if snap.Text != want {
		t.Errorf("Text = %q, want %q", snap.Text, want)
	}
}

func TestSerializeSkipsUnreadableFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.txt":        "alpha",
		"broken.txt":   "never read",
		"nested/c.txt": "gamma",
	})

	core, logs := observer.New(zap.WarnLevel)
	s := NewSerializer(zap.New(core))
	s.readFile = func(name string) ([]byte, error) {
		if filepath.Base(name) == "broken.txt" {
			return nil, errors.New("permission denied")
		}
		return os.ReadFile(name)
	}

	snap, err := s.Serialize(root)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	if diff := cmp.Diff([]string{"a.txt", "nested/c.txt"}, snap.Files); diff != "" {
		t.Errorf("included files mismatch (-want +got):\n%s", diff)
	}
	wantSkipped := []SkippedFile{{Path: "broken.txt", Reason: "permission denied"}}
	if diff := cmp.Diff(wantSkipped, snap.Skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
	if logs.Len() != 1 {
		t.Errorf("expected 1 warning, got %d", logs.Len())
	}
}

func TestSerializeSkipsNonUTF8(t *testing.T) {
	root := writeTree(t, map[string]string{
		"text.txt":  "plain",
		"image.bin": string([]byte{0xff, 0xfe, 0x00, 0x81}),
	})

	snap, err := NewSerializer(nil).Serialize(root)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if diff := cmp.Diff([]string{"text.txt"}, snap.Files); diff != "" {
		t.Errorf("included files mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Skipped) != 1 || snap.Skipped[0].Path != "image.bin" {
		t.Errorf("Skipped = %v, want image.bin", snap.Skipped)
	}
}

func TestSerializeSkipsSymlinks(t *testing.T) {
	root := writeTree(t, map[string]string{"real.txt": "real"})
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	snap, err := NewSerializer(nil).Serialize(root)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if diff := cmp.Diff([]string{"real.txt"}, snap.Files); diff != "" {
		t.Errorf("included files mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeHiddenRootIsWalked(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, ".checkout")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	snap, err := NewSerializer(nil).Serialize(root)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if len(snap.Files) != 1 {
		t.Errorf("Files = %v, want [main.go]", snap.Files)
	}
}

func TestSerializeEmptyTree(t *testing.T) {
	snap, err := NewSerializer(nil).Serialize(t.TempDir())
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if snap.Text != "" || len(snap.Files) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestSerializeMissingRoot(t *testing.T) {
	if _, err := NewSerializer(nil).Serialize(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestEligible(t *testing.T) {
	tests := map[string]bool{
		"main.go":      true,
		"archive.zip":  false,
		".gitignore":   false,
		"zip.txt":      true,
		"notes.ZIP":    true,
		"a.tar.gz":     true,
		".hidden.zip":  false,
		"Makefile":     true,
		"weird name.c": true,
	}
	for name, want := range tests {
		if got := Eligible(name); got != want {
			t.Errorf("Eligible(%q) = %v, want %v", name, got, want)
		}
	}
}
