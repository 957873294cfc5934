package contract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mkohari/skillscope/schema"
	"github.com/stretchr/testify/mock"
)

// commitLogFormat yields one line per commit. The subject goes last because
// it may itself contain the separator.
const commitLogFormat = "%H|%aI|%an|%s"

// --- LocalGitClient Implementation ---

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// run executes a git command rooted at repoPath and returns stdout.
func (c *LocalGitClient) run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.Stderr != nil {
			errMsg := strings.TrimSpace(string(exitErr.Stderr))
			return nil, fmt.Errorf("git command '%s' failed: %s: %w", strings.Join(fullArgs, " "), errMsg, err)
		}
		return nil, fmt.Errorf("could not execute git command (is git installed and in PATH?): %w", err)
	}
	return out, nil
}

// IsRepo implements the GitClient interface.
func (c *LocalGitClient) IsRepo(ctx context.Context, path string) bool {
	out, err := c.run(ctx, path, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// RecentCommits implements the GitClient interface. It lists non-merge
// commits in [since, until), newest first.
func (c *LocalGitClient) RecentCommits(ctx context.Context, repoPath string, since, until time.Time) ([]schema.Commit, error) {
	args := []string{
		"log",
		"--no-merges",
		"--pretty=format:" + commitLogFormat,
	}
	if !since.IsZero() {
		args = append(args, "--since="+since.Format(DateTimeFormat))
	}
	if !until.IsZero() {
		args = append(args, "--until="+until.Format(DateTimeFormat))
	}
	out, err := c.run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	return parseCommitLog(string(out))
}

// parseCommitLog parses 'git log' output in commitLogFormat. The subject is
// the final field and keeps any embedded separators.
func parseCommitLog(out string) ([]schema.Commit, error) {
	var commits []schema.Commit
	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			return nil, fmt.Errorf("malformed git log line: %q", line)
		}
		when, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("failed to parse commit time '%s': %w", parts[1], err)
		}
		commits = append(commits, schema.Commit{
			Hash:    parts[0],
			Time:    when,
			Author:  parts[2],
			Subject: parts[3],
		})
	}
	return commits, nil
}

// --- MockGitClient Implementation ---

// MockGitClient is an autogenerated mock type for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// IsRepo implements the GitClient interface.
func (m *MockGitClient) IsRepo(ctx context.Context, path string) bool {
	ret := m.Called(ctx, path)
	ok, _ := ret.Get(0).(bool)
	return ok
}

// RecentCommits implements the GitClient interface.
func (m *MockGitClient) RecentCommits(ctx context.Context, repoPath string, since, until time.Time) ([]schema.Commit, error) {
	ret := m.Called(ctx, repoPath, since, until)
	commits, _ := ret.Get(0).([]schema.Commit)
	return commits, ret.Error(1)
}
