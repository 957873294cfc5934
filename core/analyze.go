package core

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// Engine wires the analysis pipeline together: session readers, rule file
// discovery, git correlation, extraction, aggregation, and trend persistence.
type Engine struct {
	Readers    []contract.SessionReader
	RuleReader contract.RuleReader
	Git        contract.GitClient
	Store      contract.TrendStore // nil disables trend persistence
}

// NewEngine builds an engine from its collaborators.
func NewEngine(readers []contract.SessionReader, ruleReader contract.RuleReader, git contract.GitClient, store contract.TrendStore) *Engine {
	return &Engine{Readers: readers, RuleReader: ruleReader, Git: git, Store: store}
}

// Run executes one analysis over the configured window and returns the report
// plus run metadata. Trend store failures degrade the run: scores are still
// returned, trend summaries are omitted, and the failure surfaces as a
// warning in RunInfo.
func (e *Engine) Run(ctx context.Context, cfg *contract.Config) (*schema.Report, *schema.RunInfo, error) {
	started := time.Now()
	window := cfg.Window()
	var warnings []string

	// --- 1. Read and normalize sessions ---
	convs, readWarnings := e.readSessions(ctx, cfg, window)
	warnings = append(warnings, readWarnings...)

	// --- 2. Build extractor input ---
	in := &ExtractorInput{Window: window}
	if len(convs) >= cfg.MinSessions {
		in.Conversations = convs
		in.RuleFiles, in.Commits = e.gatherWorkspaceSignals(ctx, cfg, window, &warnings)
	} else if len(convs) > 0 {
		warnings = append(warnings, fmt.Sprintf("only %d sessions in window (minimum %d); reporting insufficient data", len(convs), cfg.MinSessions))
	}

	// --- 3. Fork-join extraction ---
	dims, extractWarnings := extractAll(cfg, in)
	warnings = append(warnings, extractWarnings...)

	// --- 4. Aggregate and collect evidence ---
	overall := aggregateOverall(dims)
	evidence := collectEvidence(in, dims, cfg)

	// --- 5. Trend persistence and deltas ---
	finished := time.Now()
	trends := e.recordTrends(cfg, dims, window, started, finished, len(convs), &warnings)

	report := &schema.Report{
		OverallScore: overall,
		Dimensions:   dims,
		Trends:       trends,
		Evidence:     evidence,
	}
	info := &schema.RunInfo{
		StartedAt:    started,
		FinishedAt:   finished,
		WindowStart:  window.Start,
		WindowEnd:    window.End,
		SessionCount: len(convs),
		Warnings:     warnings,
	}
	return report, info, nil
}

// readSessions pulls conversations from every configured reader, degrades
// per-file parse failures to warnings, deduplicates, filters to the window
// and workspace, and sorts by start time.
func (e *Engine) readSessions(ctx context.Context, cfg *contract.Config, window contract.Window) ([]schema.Conversation, []string) {
	enabled := make(map[schema.AgentTool]bool, len(cfg.Tools))
	for _, t := range cfg.Tools {
		enabled[t] = true
	}

	var all []schema.Conversation
	var warnings []string
	for _, r := range e.Readers {
		if !enabled[r.Tool()] {
			continue
		}
		convs, parseErrs, err := r.ReadSessions(ctx, window)
		if err != nil {
			// A broken reader environment skips that tool, not the run.
			warnings = append(warnings, fmt.Sprintf("reader %s unavailable: %v", r.Tool(), err))
			continue
		}
		for _, pe := range parseErrs {
			warnings = append(warnings, pe.Error())
		}
		all = append(all, convs...)
	}

	all = dedupeConversations(all)

	filtered := all[:0]
	for _, c := range all {
		if !window.Contains(c.StartTime) {
			continue
		}
		if cfg.WorkspacePath != "" && c.WorkspacePath != "" && !strings.HasPrefix(c.WorkspacePath, cfg.WorkspacePath) {
			continue
		}
		filtered = append(filtered, c)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartTime.Before(filtered[j].StartTime)
	})
	return filtered, warnings
}

// dedupeConversations collapses duplicate (tool, session id) pairs, keeping
// the most complete copy.
func dedupeConversations(convs []schema.Conversation) []schema.Conversation {
	type dedupKey struct {
		tool schema.AgentTool
		id   string
	}

	best := make(map[dedupKey]int, len(convs))
	var out []schema.Conversation
	for _, c := range convs {
		key := dedupKey{tool: c.Tool, id: c.SessionID}
		if idx, seen := best[key]; seen {
			if len(c.Turns) > len(out[idx].Turns) {
				out[idx] = c
			}
			continue
		}
		best[key] = len(out)
		out = append(out, c)
	}
	return out
}

// gatherWorkspaceSignals reads rule files and git history for the extractors
// that need them. Failures degrade to warnings.
func (e *Engine) gatherWorkspaceSignals(ctx context.Context, cfg *contract.Config, window contract.Window, warnings *[]string) ([]schema.RuleFile, []schema.Commit) {
	enabled := make(map[schema.DimensionKey]bool, len(cfg.Dimensions))
	for _, d := range cfg.Dimensions {
		enabled[d] = true
	}

	var ruleFiles []schema.RuleFile
	if e.RuleReader != nil && cfg.WorkspacePath != "" && (enabled[schema.DimRuleFile] || enabled[schema.DimToolUsage]) {
		files, parseErrs, err := e.RuleReader.ReadRuleFiles(ctx, cfg.WorkspacePath)
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("rule file discovery failed: %v", err))
		} else {
			for _, pe := range parseErrs {
				*warnings = append(*warnings, pe.Error())
			}
			ruleFiles = files
		}
	}

	var commits []schema.Commit
	if e.Git != nil && cfg.WorkspacePath != "" && enabled[schema.DimOutcomeTracking] && e.Git.IsRepo(ctx, cfg.WorkspacePath) {
		got, err := e.Git.RecentCommits(ctx, cfg.WorkspacePath,
			window.Start.Add(-commitCorrelationSlack), window.End.Add(commitCorrelationSlack))
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("git history unavailable: %v", err))
		} else if got == nil {
			commits = []schema.Commit{}
		} else {
			commits = got
		}
	}

	return ruleFiles, commits
}

// recordTrends computes per-dimension deltas against stored history and
// appends this run's points atomically. Any store failure drops trend
// summaries from the report and surfaces as a warning; scores are unaffected.
func (e *Engine) recordTrends(cfg *contract.Config, dims []schema.DimensionScore, window contract.Window, started, finished time.Time, sessionCount int, warnings *[]string) []schema.TrendSummary {
	if e.Store == nil || cfg.SkipStore {
		return []schema.TrendSummary{}
	}

	trends := make([]schema.TrendSummary, 0, len(dims))
	storeHealthy := true

	for _, d := range dims {
		if d.Status != schema.StatusOK {
			continue
		}
		prev, err := e.Store.LatestPoint(d.Dimension, started)
		if err != nil {
			*warnings = append(*warnings, contract.NewStoreError("read", err).Error())
			storeHealthy = false
			break
		}
		if prev == nil {
			continue // first run for this dimension
		}
		delta := computeDelta(prev.Score, d.Score, cfg.NoiseThreshold)
		trends = append(trends, schema.TrendSummary{
			Dimension:  d.Dimension,
			Direction:  delta.Direction,
			Magnitude:  delta.Magnitude,
			Previous:   prev.Score,
			Current:    d.Score,
			PreviousAt: prev.ComputedAt,
		})
	}

	// Append this run. The store commits run metadata and all points in one
	// transaction; a failure leaves history untouched.
	run := schema.RunRecord{
		StartedAt:    started,
		FinishedAt:   &finished,
		WindowStart:  window.Start,
		WindowEnd:    window.End,
		SessionCount: sessionCount,
	}
	// Persist the run's configuration so exported history can be segmented
	// when weights or dimension sets change between runs.
	params := struct {
		Tools      []schema.AgentTool              `json:"tools"`
		Dimensions []schema.DimensionKey           `json:"dimensions"`
		Weights    map[schema.DimensionKey]float64 `json:"weights"`
		Noise      float64                         `json:"noise_threshold"`
	}{cfg.Tools, cfg.Dimensions, cfg.DimensionWeights, cfg.NoiseThreshold}
	if encoded, err := json.Marshal(params); err == nil {
		s := string(encoded)
		run.ConfigParams = &s
	}
	tool := "all"
	if len(cfg.Tools) == 1 {
		tool = string(cfg.Tools[0])
	}
	points := make([]schema.TrendPoint, 0, len(dims))
	for _, d := range dims {
		if d.Status != schema.StatusOK {
			continue
		}
		points = append(points, schema.TrendPoint{
			Dimension:  d.Dimension,
			Score:      d.Score,
			ComputedAt: finished,
			Tool:       tool,
		})
	}
	if _, err := e.Store.AppendRun(run, points); err != nil {
		*warnings = append(*warnings, contract.NewStoreError("append", err).Error())
		storeHealthy = false
	}

	if !storeHealthy {
		return []schema.TrendSummary{}
	}
	return trends
}

// computeDelta classifies the movement between two scores. Movement within
// the noise threshold is stable; beyond it the sign decides the direction.
// Identical scores are always stable with magnitude zero.
func computeDelta(previous, current, noiseThreshold float64) schema.TrendDelta {
	magnitude := current - previous
	direction := schema.TrendStable
	if math.Abs(magnitude) > noiseThreshold {
		if magnitude > 0 {
			direction = schema.TrendImproving
		} else {
			direction = schema.TrendDeclining
		}
	}
	return schema.TrendDelta{Direction: direction, Magnitude: magnitude}
}
