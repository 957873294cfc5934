package core

import (
	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// contextManagementExtractor scores how well the user feeds the agent
// context: file references, pasted errors and code, clear initial scope, and
// sensible context-window utilization.
type contextManagementExtractor struct{}

var _ Extractor = &contextManagementExtractor{} // Compile-time check

func (e *contextManagementExtractor) Dimension() schema.DimensionKey {
	return schema.DimContextManagement
}

func (e *contextManagementExtractor) Extract(in *ExtractorInput, cfg *contract.Config) schema.DimensionScore {
	weights := schema.GetDefaultSubWeights(schema.DimContextManagement)

	userTurns := collectUserTurns(in.Conversations)
	if len(userTurns) == 0 {
		return insufficientDimension(schema.DimContextManagement, []schema.SubKey{
			schema.SubFileRefs, schema.SubErrorContext, schema.SubCodeContext,
			schema.SubScope, schema.SubBudget,
		})
	}

	var withRefs, withCode int
	for _, t := range userTurns {
		if len(t.FileRefs) > 0 {
			withRefs++
		}
		if t.HasCodeSnippet {
			withCode++
		}
	}
	n := float64(len(userTurns))

	// Error-context inclusion only makes sense where errors are the subject,
	// so it is measured over debugging sessions.
	var debugTurns, debugWithErrors int
	for _, c := range in.Conversations {
		if c.SessionType != schema.DebuggingSession {
			continue
		}
		for _, t := range c.UserTurns() {
			debugTurns++
			if t.HasErrorContext {
				debugWithErrors++
			}
		}
	}
	var errorRaw *float64
	if debugTurns > 0 {
		errorRaw = raw(float64(debugWithErrors) / float64(debugTurns))
	}

	// Scope clarity: does the opening prompt name concrete files?
	var scoped int
	for _, c := range in.Conversations {
		users := c.UserTurns()
		if len(users) > 0 && len(users[0].FileRefs) > 0 {
			scoped++
		}
	}
	scopeRaw := float64(scoped) / float64(len(in.Conversations))

	// Context budget: average utilization of the assumed context window.
	// Only sessions that carry token usage participate.
	var utilizationSum float64
	var withTokens int
	for _, c := range in.Conversations {
		if c.TotalTokens() > 0 {
			withTokens++
			utilizationSum += float64(c.TotalTokens()) / float64(schema.DefaultContextWindowTokens)
		}
	}
	var budgetRaw *float64
	if withTokens > 0 {
		budgetRaw = raw(utilizationSum / float64(withTokens))
	}

	subs := []schema.SubScore{
		buildSubScore(schema.SubFileRefs, raw(float64(withRefs)/n), cfg.Curves[schema.CurveContextFileRefs], weights[schema.SubFileRefs]),
		buildSubScore(schema.SubErrorContext, errorRaw, cfg.Curves[schema.CurveContextErrors], weights[schema.SubErrorContext]),
		buildSubScore(schema.SubCodeContext, raw(float64(withCode)/n), cfg.Curves[schema.CurveContextCode], weights[schema.SubCodeContext]),
		buildSubScore(schema.SubScope, raw(scopeRaw), cfg.Curves[schema.CurveContextScope], weights[schema.SubScope]),
		buildSubScore(schema.SubBudget, budgetRaw, cfg.Curves[schema.CurveContextBudget], weights[schema.SubBudget]),
	}
	return finishDimension(schema.DimContextManagement, subs)
}
