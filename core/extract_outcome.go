package core

import (
	"regexp"
	"sync"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// commitCorrelationSlack extends session windows when matching commits, since
// commits usually land shortly after the session that produced them.
const commitCorrelationSlack = 30 * time.Minute

// minTrendCommits is the per-half commit count needed before the rework trend
// is considered measurable.
const minTrendCommits = 2

var (
	conventionalOnce sync.Once
	conventionalRe   *regexp.Regexp
)

// conventionalCommitPattern matches conventional-commit subjects.
func conventionalCommitPattern() *regexp.Regexp {
	conventionalOnce.Do(func() {
		conventionalRe = regexp.MustCompile(`^(feat|fix|docs|style|refactor|perf|test|build|ci|chore|revert)(\(.+\))?!?:`)
	})
	return conventionalRe
}

// outcomeTrackingExtractor correlates sessions with git commits to score
// shipped outcomes: commit rate, productivity, rework churn, commit hygiene,
// and whether rework is trending down.
type outcomeTrackingExtractor struct{}

var _ Extractor = &outcomeTrackingExtractor{} // Compile-time check

func (e *outcomeTrackingExtractor) Dimension() schema.DimensionKey {
	return schema.DimOutcomeTracking
}

func (e *outcomeTrackingExtractor) Extract(in *ExtractorInput, cfg *contract.Config) schema.DimensionScore {
	weights := schema.GetDefaultSubWeights(schema.DimOutcomeTracking)

	// A nil commit slice means no git history was available at all (not a
	// repo, or git unreachable). An empty slice is a real zero.
	if in.Commits == nil || len(in.Conversations) == 0 {
		return insufficientDimension(schema.DimOutcomeTracking, []schema.SubKey{
			schema.SubCommitRate, schema.SubProductivity, schema.SubRework,
			schema.SubQuality, schema.SubOutcomeTrend,
		})
	}

	correlated := correlateCommits(in.Conversations, in.Commits)

	var sessionsWithCommits int
	var totalCorrelated, reworkCount, conventional int
	var sessionHours float64
	for _, c := range in.Conversations {
		commits := correlated[c.SessionID]
		if len(commits) > 0 {
			sessionsWithCommits++
		}
		totalCorrelated += len(commits)
		sessionHours += c.Duration().Hours()
		for _, cm := range commits {
			if schema.ReworkPattern().MatchString(cm.Subject) {
				reworkCount++
			}
			if conventionalCommitPattern().MatchString(cm.Subject) {
				conventional++
			}
		}
	}

	commitRateRaw := float64(sessionsWithCommits) / float64(len(in.Conversations))

	var productivityRaw *float64
	if sessionHours > 0 {
		productivityRaw = raw(float64(totalCorrelated) / sessionHours)
	}

	var reworkRaw, qualityRaw *float64
	if totalCorrelated > 0 {
		reworkRaw = raw(float64(reworkCount) / float64(totalCorrelated))
		qualityRaw = raw(float64(conventional) / float64(totalCorrelated))
	}

	trendRaw := reworkTrend(in.Commits, in.Window)

	subs := []schema.SubScore{
		buildSubScore(schema.SubCommitRate, raw(commitRateRaw), cfg.Curves[schema.CurveOutcomeCommitRate], weights[schema.SubCommitRate]),
		buildSubScore(schema.SubProductivity, productivityRaw, cfg.Curves[schema.CurveOutcomeProductivity], weights[schema.SubProductivity]),
		buildSubScore(schema.SubRework, reworkRaw, cfg.Curves[schema.CurveOutcomeRework], weights[schema.SubRework]),
		qualitySubScore(qualityRaw, weights[schema.SubQuality]),
		buildSubScore(schema.SubOutcomeTrend, trendRaw, cfg.Curves[schema.CurveOutcomeTrend], weights[schema.SubOutcomeTrend]),
	}
	return finishDimension(schema.DimOutcomeTracking, subs)
}

// qualitySubScore maps conventional-commit adherence linearly onto 0-100.
func qualitySubScore(adherence *float64, weight float64) schema.SubScore {
	if adherence == nil {
		return schema.SubScore{Key: schema.SubQuality, Weight: weight, Status: schema.StatusInsufficientData}
	}
	return schema.SubScore{
		Key:    schema.SubQuality,
		Score:  clampScore(*adherence * 100.0),
		Weight: weight,
		Status: schema.StatusOK,
	}
}

// correlateCommits assigns each commit to the sessions whose padded time
// window contains it. A commit can correlate with more than one overlapping
// session.
func correlateCommits(convs []schema.Conversation, commits []schema.Commit) map[string][]schema.Commit {
	out := make(map[string][]schema.Commit, len(convs))
	for _, c := range convs {
		if c.StartTime.IsZero() || c.EndTime.IsZero() {
			continue
		}
		lo := c.StartTime.Add(-commitCorrelationSlack)
		hi := c.EndTime.Add(commitCorrelationSlack)
		for _, cm := range commits {
			if !cm.Time.Before(lo) && !cm.Time.After(hi) {
				out[c.SessionID] = append(out[c.SessionID], cm)
			}
		}
	}
	return out
}

// reworkTrend compares rework rates between the older and newer halves of the
// window. Positive values mean rework is shrinking. Nil when either half has
// too few commits to compare.
func reworkTrend(commits []schema.Commit, window contract.Window) *float64 {
	mid := window.Start.Add(window.End.Sub(window.Start) / 2)

	var oldTotal, oldRework, newTotal, newRework int
	for _, cm := range commits {
		rework := schema.ReworkPattern().MatchString(cm.Subject)
		if cm.Time.Before(mid) {
			oldTotal++
			if rework {
				oldRework++
			}
		} else {
			newTotal++
			if rework {
				newRework++
			}
		}
	}

	if oldTotal < minTrendCommits || newTotal < minTrendCommits {
		return nil
	}
	oldRate := float64(oldRework) / float64(oldTotal)
	newRate := float64(newRework) / float64(newTotal)
	return raw(oldRate - newRate)
}
