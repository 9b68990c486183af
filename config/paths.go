package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// GetConfigDir returns the platform-specific configuration directory
// Linux/Mac: ~/.config/tinygen
// Windows: C:\Users\username\.config\tinygen
func GetConfigDir() string {
	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		return filepath.Join(userProfile, ".config", "tinygen")
	}

	home := os.Getenv("HOME")
	return filepath.Join(home, ".config", "tinygen")
}

// GetCacheDir returns the platform-specific cache directory for tinygen
// This is where cloned repositories live while they are analyzed
// Linux/Mac: ~/.cache/tinygen
// Windows: C:\Users\username\AppData\Local\tinygen
func GetCacheDir() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			localAppData = filepath.Join(userProfile, "AppData", "Local")
		}
		return filepath.Join(localAppData, "tinygen")
	}

	home := os.Getenv("HOME")
	return filepath.Join(home, ".cache", "tinygen")
}

// GetSettingsFilePath returns the path to settings.toml
func GetSettingsFilePath() string {
	return filepath.Join(GetConfigDir(), "settings.toml")
}

// GetHomeDir returns the user's home directory across platforms
// Windows: %USERPROFILE% (C:\Users\username)
// Linux/Mac: $HOME (/home/username)
func GetHomeDir() string {
	if runtime.GOOS == "windows" {
		home := os.Getenv("USERPROFILE")
		if home == "" {
			// Fallback: HOMEDRIVE + HOMEPATH
			home = os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		}
		if home == "" {
			// Last resort fallback
			home = "C:\\"
		}
		return home
	}
	home := os.Getenv("HOME")
	if home == "" {
		home = "/"
	}
	return home
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand ~
	if strings.HasPrefix(path, "~/") {
		home := GetHomeDir()
		path = filepath.Join(home, path[2:])
	}

	// Expand environment variables
	path = os.ExpandEnv(path)

	// Clean the path
	return filepath.Clean(path)
}

// EnsureDir creates a directory if it doesn't exist (0700 - user-only access)
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GetTempDir returns the root of per-request clone directories
// Always uses cache directory, never data directory (to avoid cloud sync)
func GetTempDir() string {
	return filepath.Join(GetCacheDir(), "tmp")
}

// EnsureDataDirPermissions ensures data directory has 0700 permissions
func EnsureDataDirPermissions(dataDir string) error {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dataDir, 0700)
		}
		return err
	}

	// Check permissions (mask with 0777 to get permission bits)
	currentPerms := info.Mode().Perm()
	if currentPerms != 0700 {
		return os.Chmod(dataDir, 0700)
	}
	return nil
}

// ProcessDirPattern names the per-process directories under the clone root.
// Each process clones only inside its own directory.
const ProcessDirPattern = "tinygen-*"

// StaleProcessDirAge is how old a process directory without a readable pid
// file must be before CleanupTempDir removes it.
const StaleProcessDirAge = 24 * time.Hour

const pidFileName = "pid"

// CreateProcessDir creates a directory owned by the current process under
// root and records the pid in it.
func CreateProcessDir(root string) (string, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp(root, ProcessDirPattern)
	if err != nil {
		return "", err
	}
	pid := []byte(strconv.Itoa(os.Getpid()))
	if err := os.WriteFile(filepath.Join(dir, pidFileName), pid, 0600); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

// CleanupTempDir removes process directories left behind by processes that
// are no longer running. Directories of live processes and entries not
// matching ProcessDirPattern are never touched.
func CleanupTempDir(root string) error {
	dirs, err := filepath.Glob(filepath.Join(root, ProcessDirPattern))
	if err != nil {
		return err
	}
	var errs []error
	for _, dir := range dirs {
		if !isStaleProcessDir(dir) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// A directory without a pid file may still be in the middle of
// CreateProcessDir, so only age makes it stale.
func isStaleProcessDir(dir string) bool {
	data, err := os.ReadFile(filepath.Join(dir, pidFileName))
	if err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			return pid != os.Getpid() && !processAlive(pid)
		}
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir() && time.Since(info.ModTime()) > StaleProcessDirAge
}

func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	defer p.Release()
	// FindProcess only succeeds for live processes on Windows
	if runtime.GOOS == "windows" {
		return true
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
