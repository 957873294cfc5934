// Package contract defines the interfaces and configuration shared across
// skillscope's reader, scoring, and storage layers.
package contract

import (
	"context"
	"time"

	"github.com/mkohari/skillscope/schema"
)

// Window bounds an analysis run. Start is inclusive, End is exclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// SessionReader normalizes one agent's transcripts into Conversations.
// Implementations must treat unreadable files as per-file ParseErrors and
// keep going; only environmental failures (e.g. the transcript root being
// unreadable) surface through the error return.
type SessionReader interface {
	// Tool identifies the agent this reader handles.
	Tool() schema.AgentTool

	// ReadSessions returns all conversations whose start time falls inside
	// the window, sorted by start time, deduplicated by session id.
	ReadSessions(ctx context.Context, window Window) ([]schema.Conversation, []*ParseError, error)
}

// RuleReader discovers and analyzes instruction files for a workspace.
type RuleReader interface {
	ReadRuleFiles(ctx context.Context, workspacePath string) ([]schema.RuleFile, []*ParseError, error)
}

// TrendStore is the append-only score history. Writes happen through
// AppendRun only, which commits run metadata and all points atomically.
type TrendStore interface {
	// AppendRun inserts the run record and its trend points in a single
	// transaction and returns the new run id. A failure leaves no rows.
	AppendRun(run schema.RunRecord, points []schema.TrendPoint) (int64, error)

	// LatestPoint returns the most recent point for a dimension computed
	// strictly before the given time, or nil when history is empty.
	LatestPoint(dimension schema.DimensionKey, before time.Time) (*schema.TrendPoint, error)

	// RangePoints returns points for a dimension within [from, to), ordered
	// by computed_at ascending.
	RangePoints(dimension schema.DimensionKey, from, to time.Time) ([]schema.TrendPoint, error)

	// AllRuns and AllPoints feed the export command.
	AllRuns() ([]schema.RunRecord, error)
	AllPoints() ([]schema.TrendPoint, error)

	// Prune removes points and runs older than the cutoff, returning the
	// number of deleted points.
	Prune(olderThan time.Time) (int64, error)

	GetStatus() (schema.TrendStoreStatus, error)
	Close() error
}

// TrendManager provides scoped access to the trend store. Exactly one writer
// exists per process; everything else reaches the store through this.
type TrendManager interface {
	GetTrendStore() TrendStore
}

// GitClient reads commit history for outcome correlation.
type GitClient interface {
	// IsRepo reports whether path is inside a git work tree.
	IsRepo(ctx context.Context, path string) bool

	// RecentCommits lists non-merge commits in [since, until), newest first.
	RecentCommits(ctx context.Context, repoPath string, since, until time.Time) ([]schema.Commit, error)
}
