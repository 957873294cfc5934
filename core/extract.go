package core

import (
	"fmt"
	"sync"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// ExtractorInput is the immutable data every extractor works from. Extractors
// never mutate it, which is what makes the fork-join phase safe.
type ExtractorInput struct {
	Conversations []schema.Conversation
	RuleFiles     []schema.RuleFile
	Commits       []schema.Commit
	Window        contract.Window
}

// Extractor computes one dimension's score from the shared input. Extractors
// are pure functions of their input and config; they must not touch disk,
// network, or shared state.
type Extractor interface {
	Dimension() schema.DimensionKey
	Extract(in *ExtractorInput, cfg *contract.Config) schema.DimensionScore
}

// extractorRegistry maps each dimension to its extractor.
var extractorRegistry = map[schema.DimensionKey]Extractor{
	schema.DimPromptQuality:      &promptQualityExtractor{},
	schema.DimConversationFlow:   &conversationFlowExtractor{},
	schema.DimContextManagement:  &contextManagementExtractor{},
	schema.DimSessionPatterns:    &sessionPatternsExtractor{},
	schema.DimToolUsage:          &toolUsageExtractor{},
	schema.DimRuleFile:           &ruleFileExtractor{},
	schema.DimCompletionPatterns: &completionPatternsExtractor{},
	schema.DimOutcomeTracking:    &outcomeTrackingExtractor{},
}

// extractAll runs the enabled extractors in parallel over a worker pool and
// returns dimension scores in canonical order. A panicking extractor is
// contained: its dimension reports insufficient data and the panic surfaces
// as a warning instead of taking down the run.
func extractAll(cfg *contract.Config, in *ExtractorInput) ([]schema.DimensionScore, []string) {
	type extractResult struct {
		score   schema.DimensionScore
		warning string
	}

	dimCh := make(chan schema.DimensionKey, len(cfg.Dimensions))
	resultCh := make(chan extractResult, len(cfg.Dimensions))
	var wg sync.WaitGroup

	// Start worker pool
	workers := min(cfg.Workers, len(cfg.Dimensions))
	for range workers {
		wg.Go(func() {
			for dim := range dimCh {
				score, warning := runExtractor(dim, cfg, in)
				resultCh <- extractResult{score: score, warning: warning}
			}
		})
	}

	for _, dim := range cfg.Dimensions {
		dimCh <- dim
	}
	close(dimCh)

	wg.Wait()
	close(resultCh)

	byDim := make(map[schema.DimensionKey]schema.DimensionScore, len(cfg.Dimensions))
	var warnings []string
	for r := range resultCh {
		byDim[r.score.Dimension] = r.score
		if r.warning != "" {
			warnings = append(warnings, r.warning)
		}
	}

	// Re-assemble in canonical order so output is deterministic regardless of
	// worker scheduling.
	results := make([]schema.DimensionScore, 0, len(cfg.Dimensions))
	for _, dim := range cfg.Dimensions {
		results = append(results, byDim[dim])
	}
	return results, warnings
}

// runExtractor executes one extractor with panic containment and stamps the
// configured dimension weight onto the result.
func runExtractor(dim schema.DimensionKey, cfg *contract.Config, in *ExtractorInput) (score schema.DimensionScore, warning string) {
	defer func() {
		if r := recover(); r != nil {
			score = schema.DimensionScore{
				Dimension: dim,
				Status:    schema.StatusInsufficientData,
				Weight:    cfg.DimensionWeights[dim],
			}
			warning = fmt.Sprintf("extractor %s panicked: %v", dim, r)
		}
	}()

	ext, ok := extractorRegistry[dim]
	if !ok {
		score = schema.DimensionScore{
			Dimension: dim,
			Status:    schema.StatusInsufficientData,
			Weight:    cfg.DimensionWeights[dim],
		}
		warning = fmt.Sprintf("no extractor registered for dimension %s", dim)
		return score, warning
	}

	score = ext.Extract(in, cfg)
	score.Weight = cfg.DimensionWeights[dim]
	return score, ""
}

// finishDimension folds sub-scores into the final DimensionScore.
func finishDimension(dim schema.DimensionKey, subs []schema.SubScore) schema.DimensionScore {
	score, status := aggregateSubScores(subs)
	return schema.DimensionScore{
		Dimension: dim,
		Score:     score,
		Status:    status,
		SubScores: subs,
	}
}

// insufficientDimension builds a dimension score where every sub-metric
// lacked data.
func insufficientDimension(dim schema.DimensionKey, keys []schema.SubKey) schema.DimensionScore {
	weights := schema.GetDefaultSubWeights(dim)
	subs := make([]schema.SubScore, 0, len(keys))
	for _, k := range keys {
		subs = append(subs, schema.SubScore{Key: k, Weight: weights[k], Status: schema.StatusInsufficientData})
	}
	return finishDimension(dim, subs)
}

// neutralSubScore records a sub-metric at a neutral prior when the signal is
// genuinely absent but treating it as missing data would be too harsh.
func neutralSubScore(key schema.SubKey, neutral01, weight float64) schema.SubScore {
	return schema.SubScore{
		Key:    key,
		Score:  clampScore(neutral01 * 100.0),
		Weight: weight,
		Status: schema.StatusOK,
	}
}

// raw wraps a measurable metric value for buildSubScore.
func raw(v float64) *float64 { return &v }
