package core

import (
	"math"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// Suggestion-fit signal shaping.
const (
	fitLineSweetLow   = 2
	fitLineSweetHigh  = 10
	fitVolumeSaturate = 20.0 // completions per session for full volume credit
	fitConsistencyMin = 10   // events needed before consistency is measured
)

// completionPatternsExtractor scores inline completion effectiveness from
// completion telemetry: acceptance rate, suggestion fit, language spread, and
// suggestion latency. Sessions without completion events (everything except
// Copilot today) leave the dimension unmeasured so it renormalizes out of the
// overall score.
type completionPatternsExtractor struct{}

var _ Extractor = &completionPatternsExtractor{} // Compile-time check

func (e *completionPatternsExtractor) Dimension() schema.DimensionKey {
	return schema.DimCompletionPatterns
}

func (e *completionPatternsExtractor) Extract(in *ExtractorInput, cfg *contract.Config) schema.DimensionScore {
	weights := schema.GetDefaultSubWeights(schema.DimCompletionPatterns)

	var events []schema.CompletionEvent
	sessions := 0
	for _, c := range in.Conversations {
		if len(c.Completions) == 0 {
			continue
		}
		events = append(events, c.Completions...)
		sessions++
	}

	if len(events) == 0 {
		return insufficientDimension(schema.DimCompletionPatterns, []schema.SubKey{
			schema.SubAcceptRate, schema.SubSuggestionFit,
			schema.SubLanguageSpread, schema.SubLatency,
		})
	}

	accepted := 0
	languages := make(map[string]bool)
	var latencySum float64
	latencyCount := 0
	for _, ev := range events {
		if ev.Accepted {
			accepted++
		}
		if ev.Language != "" && ev.Language != "unknown" {
			languages[ev.Language] = true
		}
		if ev.LatencyMS > 0 {
			latencySum += ev.LatencyMS
			latencyCount++
		}
	}

	acceptRaw := float64(accepted) / float64(len(events))

	// Latency is optional telemetry; traces without it leave the sub-metric
	// unmeasured rather than scoring an imaginary zero.
	var latencyRaw *float64
	if latencyCount > 0 {
		latencyRaw = raw(latencySum / float64(latencyCount))
	}

	subs := []schema.SubScore{
		buildSubScore(schema.SubAcceptRate, raw(acceptRaw), cfg.Curves[schema.CurveCompletionAcceptance], weights[schema.SubAcceptRate]),
		buildSubScore(schema.SubSuggestionFit, raw(suggestionFit(events, sessions)), cfg.Curves[schema.CurveCompletionFit], weights[schema.SubSuggestionFit]),
		buildSubScore(schema.SubLanguageSpread, raw(float64(len(languages))), cfg.Curves[schema.CurveCompletionLanguages], weights[schema.SubLanguageSpread]),
		buildSubScore(schema.SubLatency, latencyRaw, cfg.Curves[schema.CurveCompletionLatency], weights[schema.SubLatency]),
	}

	return finishDimension(schema.DimCompletionPatterns, subs)
}

// suggestionFit blends three usefulness signals into one 0-1 fraction: the
// line-count fit of accepted suggestions, acceptance consistency across the
// period, and completion volume per session.
func suggestionFit(events []schema.CompletionEvent, sessions int) float64 {
	var lengthFit float64
	accepted := 0
	for _, ev := range events {
		if !ev.Accepted {
			continue
		}
		accepted++
		lengthFit += lineFit(ev.SuggestionLines)
	}
	if accepted > 0 {
		lengthFit /= float64(accepted)
	}

	// Acceptance that collapses in the second half of the period signals
	// suggestions drifting off target.
	consistency := 1.0
	if len(events) >= fitConsistencyMin {
		half := len(events) / 2
		consistency = 1.0 - math.Abs(acceptShare(events[:half])-acceptShare(events[half:]))
	}

	volume := math.Min(1, float64(len(events))/float64(sessions)/fitVolumeSaturate)

	return 0.4*lengthFit + 0.3*consistency + 0.3*volume
}

// lineFit credits accepted suggestions of a reviewable size: full credit in
// the sweet spot, partial credit up to twenty lines, a sliver beyond that.
func lineFit(lines int) float64 {
	switch {
	case lines >= fitLineSweetLow && lines <= fitLineSweetHigh:
		return 1.0
	case lines >= 1 && lines <= 20:
		return 0.6
	case lines > 0:
		return 0.2
	default:
		return 0
	}
}

// acceptShare is the accepted fraction of a slice of events.
func acceptShare(events []schema.CompletionEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	n := 0
	for _, ev := range events {
		if ev.Accepted {
			n++
		}
	}
	return float64(n) / float64(len(events))
}
