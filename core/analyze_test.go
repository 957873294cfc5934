package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test fakes ---

type fakeReader struct {
	tool      schema.AgentTool
	convs     []schema.Conversation
	parseErrs []*contract.ParseError
	err       error
}

var _ contract.SessionReader = &fakeReader{} // Compile-time check

func (r *fakeReader) Tool() schema.AgentTool { return r.tool }

func (r *fakeReader) ReadSessions(_ context.Context, _ contract.Window) ([]schema.Conversation, []*contract.ParseError, error) {
	return r.convs, r.parseErrs, r.err
}

type fakeStore struct {
	points     []schema.TrendPoint
	runs       []schema.RunRecord
	nextRunID  int64
	failRead   bool
	failAppend bool
}

var _ contract.TrendStore = &fakeStore{} // Compile-time check

func (s *fakeStore) AppendRun(run schema.RunRecord, points []schema.TrendPoint) (int64, error) {
	if s.failAppend {
		return 0, errors.New("disk full")
	}
	s.nextRunID++
	run.RunID = s.nextRunID
	s.runs = append(s.runs, run)
	for _, p := range points {
		p.RunID = s.nextRunID
		s.points = append(s.points, p)
	}
	return s.nextRunID, nil
}

func (s *fakeStore) LatestPoint(dim schema.DimensionKey, before time.Time) (*schema.TrendPoint, error) {
	if s.failRead {
		return nil, errors.New("connection refused")
	}
	var latest *schema.TrendPoint
	for i := range s.points {
		p := &s.points[i]
		if p.Dimension != dim || !p.ComputedAt.Before(before) {
			continue
		}
		if latest == nil || p.ComputedAt.After(latest.ComputedAt) {
			latest = p
		}
	}
	return latest, nil
}

func (s *fakeStore) RangePoints(dim schema.DimensionKey, from, to time.Time) ([]schema.TrendPoint, error) {
	var out []schema.TrendPoint
	for _, p := range s.points {
		if p.Dimension == dim && !p.ComputedAt.Before(from) && p.ComputedAt.Before(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) AllRuns() ([]schema.RunRecord, error)    { return s.runs, nil }
func (s *fakeStore) AllPoints() ([]schema.TrendPoint, error) { return s.points, nil }

func (s *fakeStore) Prune(olderThan time.Time) (int64, error) {
	kept := s.points[:0]
	var deleted int64
	for _, p := range s.points {
		if p.ComputedAt.Before(olderThan) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	s.points = kept
	return deleted, nil
}

func (s *fakeStore) GetStatus() (schema.TrendStoreStatus, error) {
	return schema.TrendStoreStatus{Backend: "fake", Connected: true}, nil
}

func (s *fakeStore) Close() error { return nil }

// --- Helpers ---

func engineConfig(t *testing.T) *contract.Config {
	t.Helper()
	cfg := testConfig(t)
	cfg.WindowStart = testWindow.Start
	cfg.WindowEnd = testWindow.End
	return cfg
}

func sampleConvs(base time.Time) []schema.Conversation {
	return []schema.Conversation{
		makeConversation("s1", base, 35, []schema.Turn{
			userTurn("Refactor parser.go to extract the tokenizer", base),
			assistantTurn(base.Add(time.Minute), schema.ToolCall{Name: "Edit"}),
		}),
		makeConversation("s2", base.Add(3*time.Hour), 40, []schema.Turn{
			userTurn("Add tests for store.go covering the prune path", base.Add(3*time.Hour)),
			assistantTurn(base.Add(3*time.Hour+time.Minute), schema.ToolCall{Name: "Write"}),
		}),
	}
}

// --- Tests ---

func TestEngineRunZeroConversations(t *testing.T) {
	cfg := engineConfig(t)
	engine := NewEngine([]contract.SessionReader{
		&fakeReader{tool: schema.ClaudeCodeTool},
	}, nil, nil, &fakeStore{})

	report, info, err := engine.Run(t.Context(), cfg)
	require.NoError(t, err)

	// No usable data: overall is null, never zero.
	assert.Nil(t, report.OverallScore)
	assert.Equal(t, 0, info.SessionCount)
	require.Len(t, report.Dimensions, len(schema.AllDimensions))
	for _, d := range report.Dimensions {
		assert.Equal(t, schema.StatusInsufficientData, d.Status)
	}
	assert.Empty(t, report.Trends)
	assert.Empty(t, report.Evidence)
}

func TestEngineRunParseFailureDegrades(t *testing.T) {
	cfg := engineConfig(t)
	base := testWindow.Start.Add(time.Hour)

	// Three transcript files, one unreadable: the other two still analyze and
	// the failure surfaces as exactly one warning.
	reader := &fakeReader{
		tool:  schema.ClaudeCodeTool,
		convs: sampleConvs(base),
		parseErrs: []*contract.ParseError{
			contract.NewParseError("/home/dev/.claude/projects/x/broken.jsonl", errors.New("unexpected end of JSON input")),
		},
	}
	engine := NewEngine([]contract.SessionReader{reader}, nil, nil, &fakeStore{})

	report, info, err := engine.Run(t.Context(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, info.SessionCount)
	require.NotNil(t, report.OverallScore)
	require.Len(t, info.Warnings, 1)
	assert.Contains(t, info.Warnings[0], "broken.jsonl")
}

func TestEngineRunReaderUnavailable(t *testing.T) {
	cfg := engineConfig(t)
	base := testWindow.Start.Add(time.Hour)

	engine := NewEngine([]contract.SessionReader{
		&fakeReader{tool: schema.ClaudeCodeTool, convs: sampleConvs(base)},
		&fakeReader{tool: schema.CursorTool, err: errors.New("state.vscdb locked")},
	}, nil, nil, &fakeStore{})

	report, info, err := engine.Run(t.Context(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, info.SessionCount)
	require.NotNil(t, report.OverallScore)
	require.Len(t, info.Warnings, 1)
	assert.Contains(t, info.Warnings[0], "cursor")
}

func TestEngineRunStoreFailureDegrades(t *testing.T) {
	cfg := engineConfig(t)
	base := testWindow.Start.Add(time.Hour)
	reader := &fakeReader{tool: schema.ClaudeCodeTool, convs: sampleConvs(base)}

	t.Run("read failure omits trends, keeps scores", func(t *testing.T) {
		engine := NewEngine([]contract.SessionReader{reader}, nil, nil, &fakeStore{failRead: true})
		report, info, err := engine.Run(t.Context(), cfg)
		require.NoError(t, err)

		require.NotNil(t, report.OverallScore)
		assert.Empty(t, report.Trends)
		assert.NotEmpty(t, info.Warnings)
		assert.Contains(t, strings.Join(info.Warnings, "\n"), "trend store")
	})

	t.Run("append failure omits trends, keeps scores", func(t *testing.T) {
		engine := NewEngine([]contract.SessionReader{reader}, nil, nil, &fakeStore{failAppend: true})
		report, info, err := engine.Run(t.Context(), cfg)
		require.NoError(t, err)

		require.NotNil(t, report.OverallScore)
		assert.Empty(t, report.Trends)
		assert.Contains(t, strings.Join(info.Warnings, "\n"), "trend store append")
	})
}

func TestEngineRunTrendsAcrossRuns(t *testing.T) {
	cfg := engineConfig(t)
	base := testWindow.Start.Add(time.Hour)
	reader := &fakeReader{tool: schema.ClaudeCodeTool, convs: sampleConvs(base)}
	store := &fakeStore{}
	engine := NewEngine([]contract.SessionReader{reader}, nil, nil, store)

	// First run: no history, so no trend summaries, but points are stored.
	first, _, err := engine.Run(t.Context(), cfg)
	require.NoError(t, err)
	assert.Empty(t, first.Trends)
	assert.NotEmpty(t, store.points)
	require.Len(t, store.runs, 1)

	// Second run over identical input: identical scores, so every trend is
	// stable with zero magnitude.
	second, _, err := engine.Run(t.Context(), cfg)
	require.NoError(t, err)
	require.NotEmpty(t, second.Trends)
	for _, tr := range second.Trends {
		assert.Equal(t, schema.TrendStable, tr.Direction, tr.Dimension)
		assert.InDelta(t, 0.0, tr.Magnitude, 1e-9)
	}
	assert.Len(t, store.runs, 2)

	// Scores are bit-for-bit reproducible across runs.
	assert.Equal(t, first.Dimensions, second.Dimensions)
	assert.Equal(t, *first.OverallScore, *second.OverallScore)
}

func TestEngineRunSkipStore(t *testing.T) {
	cfg := engineConfig(t)
	cfg.SkipStore = true
	base := testWindow.Start.Add(time.Hour)
	store := &fakeStore{}
	engine := NewEngine([]contract.SessionReader{
		&fakeReader{tool: schema.ClaudeCodeTool, convs: sampleConvs(base)},
	}, nil, nil, store)

	report, _, err := engine.Run(t.Context(), cfg)
	require.NoError(t, err)
	assert.Empty(t, report.Trends)
	assert.Empty(t, store.points)
}

func TestEngineRunMinSessions(t *testing.T) {
	cfg := engineConfig(t)
	cfg.MinSessions = 5
	base := testWindow.Start.Add(time.Hour)
	engine := NewEngine([]contract.SessionReader{
		&fakeReader{tool: schema.ClaudeCodeTool, convs: sampleConvs(base)},
	}, nil, nil, &fakeStore{})

	report, info, err := engine.Run(t.Context(), cfg)
	require.NoError(t, err)

	assert.Nil(t, report.OverallScore)
	assert.Equal(t, 2, info.SessionCount)
	assert.Contains(t, strings.Join(info.Warnings, "\n"), "minimum 5")
}

func TestDedupeConversations(t *testing.T) {
	base := testWindow.Start.Add(time.Hour)
	short := makeConversation("dup", base, 10, []schema.Turn{userTurn("first pass", base)})
	long := makeConversation("dup", base, 30, []schema.Turn{
		userTurn("first pass", base),
		assistantTurn(base.Add(time.Minute)),
		userTurn("second pass", base.Add(2*time.Minute)),
	})
	otherTool := long
	otherTool.Tool = schema.CursorTool

	got := dedupeConversations([]schema.Conversation{short, long, otherTool})
	require.Len(t, got, 2)

	// The more complete copy wins within a (tool, id) pair.
	assert.Len(t, got[0].Turns, 3)
	assert.Equal(t, schema.ClaudeCodeTool, got[0].Tool)
	assert.Equal(t, schema.CursorTool, got[1].Tool)
}

func TestEngineRunWindowFilter(t *testing.T) {
	cfg := engineConfig(t)
	inside := makeConversation("in", testWindow.Start.Add(time.Hour), 30, []schema.Turn{
		userTurn("Update the readme", testWindow.Start.Add(time.Hour)),
	})
	before := makeConversation("before", testWindow.Start.Add(-time.Hour), 30, []schema.Turn{
		userTurn("Old session", testWindow.Start.Add(-time.Hour)),
	})
	atEnd := makeConversation("at-end", testWindow.End, 30, []schema.Turn{
		userTurn("Boundary session", testWindow.End),
	})

	engine := NewEngine([]contract.SessionReader{
		&fakeReader{tool: schema.ClaudeCodeTool, convs: []schema.Conversation{inside, before, atEnd}},
	}, nil, nil, &fakeStore{})

	_, info, err := engine.Run(t.Context(), cfg)
	require.NoError(t, err)

	// Start is inclusive, end is exclusive: only the inside session remains.
	assert.Equal(t, 1, info.SessionCount)
}
