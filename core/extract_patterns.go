package core

import (
	"sort"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// Deep-work detection constraints.
const (
	deepWorkMinBlock = 120 * time.Minute // a block this long counts as deep work
	deepWorkMaxGap   = 15 * time.Minute  // sessions chained within this gap form a block
	fatigueMinTurns  = 4                 // sessions need this many user turns to measure fatigue
)

// sessionPatternsExtractor scores working habits: session length, cadence,
// task diversity, fatigue signals, and deep-work blocks.
type sessionPatternsExtractor struct{}

var _ Extractor = &sessionPatternsExtractor{} // Compile-time check

func (e *sessionPatternsExtractor) Dimension() schema.DimensionKey {
	return schema.DimSessionPatterns
}

func (e *sessionPatternsExtractor) Extract(in *ExtractorInput, cfg *contract.Config) schema.DimensionScore {
	weights := schema.GetDefaultSubWeights(schema.DimSessionPatterns)

	if len(in.Conversations) == 0 {
		return insufficientDimension(schema.DimSessionPatterns, []schema.SubKey{
			schema.SubDuration, schema.SubFrequency, schema.SubDiversity,
			schema.SubFatigue, schema.SubDeepWork,
		})
	}

	// Duration: average session minutes over sessions with usable timestamps.
	var durationSum time.Duration
	var timed int
	for _, c := range in.Conversations {
		if d := c.Duration(); d > 0 {
			timed++
			durationSum += d
		}
	}
	var durationRaw *float64
	if timed > 0 {
		durationRaw = raw(durationSum.Minutes() / float64(timed))
	}

	// Frequency: sessions per day over the analysis window.
	var frequencyRaw *float64
	if windowDays := in.Window.End.Sub(in.Window.Start).Hours() / 24; windowDays > 0 {
		frequencyRaw = raw(float64(len(in.Conversations)) / windowDays)
	}

	// Diversity: distinct session types seen.
	types := make(map[schema.SessionType]bool)
	for _, c := range in.Conversations {
		types[c.SessionType] = true
	}
	diversityRaw := float64(len(types))

	fatigueRaw := fatigueRate(in.Conversations)
	deepWorkRaw := deepWorkRatio(in.Conversations)

	subs := []schema.SubScore{
		buildSubScore(schema.SubDuration, durationRaw, cfg.Curves[schema.CurvePatternDuration], weights[schema.SubDuration]),
		buildSubScore(schema.SubFrequency, frequencyRaw, cfg.Curves[schema.CurvePatternFrequency], weights[schema.SubFrequency]),
		buildSubScore(schema.SubDiversity, raw(diversityRaw), cfg.Curves[schema.CurvePatternDiversity], weights[schema.SubDiversity]),
		buildSubScore(schema.SubFatigue, fatigueRaw, cfg.Curves[schema.CurvePatternFatigue], weights[schema.SubFatigue]),
		buildSubScore(schema.SubDeepWork, deepWorkRaw, cfg.Curves[schema.CurvePatternDeepWork], weights[schema.SubDeepWork]),
	}
	return finishDimension(schema.DimSessionPatterns, subs)
}

// fatigueRate returns the fraction of sessions whose prompts collapse in the
// second half: average word count dropping below half of the first half's.
// Nil when no session has enough user turns to measure.
func fatigueRate(convs []schema.Conversation) *float64 {
	var eligible, fatigued int
	for _, c := range convs {
		users := c.UserTurns()
		if len(users) < fatigueMinTurns {
			continue
		}
		eligible++

		half := len(users) / 2
		firstAvg := averageWords(users[:half])
		secondAvg := averageWords(users[half:])
		if firstAvg > 0 && secondAvg < 0.5*firstAvg {
			fatigued++
		}
	}
	if eligible == 0 {
		return nil
	}
	return raw(float64(fatigued) / float64(eligible))
}

// averageWords returns the mean word count across turns.
func averageWords(turns []schema.Turn) float64 {
	if len(turns) == 0 {
		return 0
	}
	total := 0
	for _, t := range turns {
		total += wordCount(t.Content)
	}
	return float64(total) / float64(len(turns))
}

// deepWorkRatio returns the fraction of timed session minutes spent inside
// deep-work blocks: chains of sessions separated by short gaps whose combined
// span reaches the deep-work threshold. Nil when no session has timestamps.
func deepWorkRatio(convs []schema.Conversation) *float64 {
	timed := make([]schema.Conversation, 0, len(convs))
	for _, c := range convs {
		if c.Duration() > 0 {
			timed = append(timed, c)
		}
	}
	if len(timed) == 0 {
		return nil
	}
	sort.Slice(timed, func(i, j int) bool { return timed[i].StartTime.Before(timed[j].StartTime) })

	var totalMinutes, deepMinutes float64
	blockStart := 0
	for i := 1; i <= len(timed); i++ {
		chained := i < len(timed) && timed[i].StartTime.Sub(timed[i-1].EndTime) <= deepWorkMaxGap
		if chained {
			continue
		}

		// Block closed: [blockStart, i)
		var blockDur time.Duration
		for _, c := range timed[blockStart:i] {
			blockDur += c.Duration()
		}
		totalMinutes += blockDur.Minutes()
		if blockDur >= deepWorkMinBlock {
			deepMinutes += blockDur.Minutes()
		}
		blockStart = i
	}

	if totalMinutes == 0 {
		return nil
	}
	return raw(deepMinutes / totalMinutes)
}
