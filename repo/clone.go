// Package repo clones remote repositories into local directories.
package repo

import (
	"context"
	"fmt"
	neturl "net/url"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"
)

// Cloner fetches the repository at url into dest.
type Cloner interface {
	Clone(ctx context.Context, url, dest string) error
}

// CloneError collapses every clone failure (network, auth, not found) into a
// single kind that callers can match with errors.As.
type CloneError struct {
	URL string
	Err error
}

func (e *CloneError) Error() string {
	return e.Err.Error()
}

func (e *CloneError) Unwrap() error {
	return e.Err
}

// GitCloner clones with go-git, without requiring a git binary.
type GitCloner struct {
	depth  int
	token  string
	logger *zap.Logger
}

// GitClonerOption configures a GitCloner.
type GitClonerOption func(*GitCloner)

// WithDepth limits history to the given number of commits. Zero clones the
// full history.
func WithDepth(depth int) GitClonerOption {
	return func(c *GitCloner) {
		c.depth = depth
	}
}

// WithToken authenticates HTTPS clones from github.com with a personal access
// token.
func WithToken(token string) GitClonerOption {
	return func(c *GitCloner) {
		c.token = token
	}
}

// WithLogger sets the logger used for clone diagnostics. Nil is ignored.
func WithLogger(logger *zap.Logger) GitClonerOption {
	return func(c *GitCloner) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewGitCloner creates a cloner that fetches only the latest commit by default.
func NewGitCloner(opts ...GitClonerOption) *GitCloner {
	c := &GitCloner{
		depth:  1,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone implements Cloner.
func (c *GitCloner) Clone(ctx context.Context, url, dest string) error {
	if url == "" {
		return &CloneError{URL: url, Err: fmt.Errorf("repository URL is empty")}
	}
	if err := checkRemoteURL(url); err != nil {
		return &CloneError{URL: url, Err: err}
	}
	if err := os.MkdirAll(dest, 0700); err != nil {
		return &CloneError{URL: url, Err: fmt.Errorf("failed to create clone directory: %w", err)}
	}

	opts := &git.CloneOptions{
		URL:          url,
		Depth:        c.depth,
		SingleBranch: c.depth > 0,
		Tags:         git.NoTags,
	}
	if c.token != "" && isGitHubURL(url) {
		opts.Auth = &http.BasicAuth{
			Username: "x-access-token",
			Password: c.token,
		}
	}

	c.logger.Debug("Cloning repository", zap.String("url", url), zap.Int("depth", c.depth))

	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		c.logger.Debug("Clone failed", zap.String("url", url), zap.Error(err))
		return &CloneError{URL: url, Err: err}
	}

	return nil
}

// allowedProtocols are the transports a request may name. Local paths and
// file:// URLs would expose repositories on the serving host.
var allowedProtocols = map[string]bool{
	"https": true,
	"http":  true,
	"ssh":   true,
	"git":   true,
}

func checkRemoteURL(url string) error {
	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return fmt.Errorf("invalid repository URL: %w", err)
	}
	if !allowedProtocols[ep.Protocol] {
		return fmt.Errorf("unsupported repository URL scheme %q: only remote repositories can be cloned", ep.Protocol)
	}
	if ep.Host == "" {
		return fmt.Errorf("repository URL has no host")
	}
	return nil
}

// The token is only ever sent to GitHub, never to a host named in a request.
func isGitHubURL(rawURL string) bool {
	u, err := neturl.Parse(rawURL)
	if err != nil || u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "github.com" || strings.HasSuffix(host, ".github.com")
}
