package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrPathNotAtRevision is returned when a path does not exist at a revision.
var ErrPathNotAtRevision = errors.New("path does not exist at revision")

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRevisionsForPath implements the GitClient interface.
// Deletions of the path are listed too, so the caller sees the gap.
func (c *LocalGitClient) GetRevisionsForPath(ctx context.Context, repoPath, path, ref string, n int) ([]RevisionRef, error) {
	if ref == "" {
		ref = "HEAD"
	}
	args := []string{
		"log",
		fmt.Sprintf("-n%d", n),
		"--pretty=format:%H|%ad",
		"--date=iso-strict",
		ref,
		"--",
		path,
	}
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	return parseRevisionLog(string(out))
}

// parseRevisionLog parses "hash|date" lines as printed by GetRevisionsForPath.
func parseRevisionLog(out string) ([]RevisionRef, error) {
	var refs []RevisionRef
	for line := range strings.SplitSeq(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		hash, date, ok := strings.Cut(line, "|")
		if !ok {
			return nil, fmt.Errorf("unexpected git log line %q", line)
		}
		when, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("invalid commit date %q: %w", date, err)
		}
		refs = append(refs, RevisionRef{Hash: hash, Time: when})
	}
	return refs, nil
}

// ShowFileAtRevision implements the GitClient interface.
func (c *LocalGitClient) ShowFileAtRevision(ctx context.Context, repoPath, rev, path string) ([]byte, error) {
	// cat-file -e distinguishes a missing path from other failures
	if _, err := c.Run(ctx, repoPath, "cat-file", "-e", rev+":"+path); err != nil {
		return nil, fmt.Errorf("%w: %s at %s", ErrPathNotAtRevision, path, rev)
	}
	return c.Run(ctx, repoPath, "show", rev+":"+path)
}

// ListFilesAtRevision implements the GitClient interface.
func (c *LocalGitClient) ListFilesAtRevision(ctx context.Context, repoPath, rev, dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	out, err := c.Run(ctx, repoPath, "ls-tree", "-r", "-z", "--name-only", rev, "--", dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for path := range strings.SplitSeq(string(out), "\x00") {
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}
