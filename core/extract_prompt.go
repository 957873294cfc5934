package core

import (
	"regexp"
	"strings"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// promptQualityExtractor scores how well the user's prompts are written:
// specific, contextualized, clear, efficiently sized, and reasoned.
type promptQualityExtractor struct{}

var _ Extractor = &promptQualityExtractor{} // Compile-time check

func (e *promptQualityExtractor) Dimension() schema.DimensionKey {
	return schema.DimPromptQuality
}

func (e *promptQualityExtractor) Extract(in *ExtractorInput, cfg *contract.Config) schema.DimensionScore {
	weights := schema.GetDefaultSubWeights(schema.DimPromptQuality)

	userTurns := collectUserTurns(in.Conversations)
	if len(userTurns) == 0 {
		return insufficientDimension(schema.DimPromptQuality, []schema.SubKey{
			schema.SubSpecificity, schema.SubContext, schema.SubClarity,
			schema.SubEfficiency, schema.SubReasoning,
		})
	}

	var specificitySum, contextSum, claritySum, wordSum float64
	for _, t := range userTurns {
		specificitySum += specificitySignals(t.Content)
		contextSum += contextSignals(t)
		claritySum += float64(sentenceCount(t.Content))
		wordSum += float64(wordCount(t.Content))
	}
	n := float64(len(userTurns))

	// Reasoning signals are sparse, so they count per conversation rather than
	// per turn.
	var reasoningSum float64
	for _, c := range in.Conversations {
		hits := 0
		for _, t := range c.UserTurns() {
			hits += countPatternHits(schema.ReasoningPatterns(), t.Content)
		}
		reasoningSum += float64(hits)
	}

	subs := []schema.SubScore{
		buildSubScore(schema.SubSpecificity, raw(specificitySum/n), cfg.Curves[schema.CurvePromptSpecificity], weights[schema.SubSpecificity]),
		buildSubScore(schema.SubContext, raw(contextSum/n), cfg.Curves[schema.CurvePromptContext], weights[schema.SubContext]),
		buildSubScore(schema.SubClarity, raw(claritySum/n), cfg.Curves[schema.CurvePromptClarity], weights[schema.SubClarity]),
		buildSubScore(schema.SubEfficiency, raw(wordSum/n), cfg.Curves[schema.CurvePromptEfficiency], weights[schema.SubEfficiency]),
		buildSubScore(schema.SubReasoning, raw(reasoningSum/float64(len(in.Conversations))), cfg.Curves[schema.CurvePromptReasoning], weights[schema.SubReasoning]),
	}
	return finishDimension(schema.DimPromptQuality, subs)
}

// specificitySignals counts concrete-request markers in a prompt: action
// verbs, technology mentions, file and line references, minus vague language.
func specificitySignals(content string) float64 {
	signals := len(schema.SpecificVerbPattern().FindAllString(content, -1)) +
		len(schema.TechMentionPattern().FindAllString(content, -1)) +
		len(schema.FileRefPattern().FindAllString(content, -1)) +
		len(schema.LineRefPattern().FindAllString(content, -1))
	signals -= countPatternHits(schema.VaguePatterns(), content)
	return float64(max(signals, 0))
}

// contextSignals counts attached context per turn: file references plus
// pasted errors and code.
func contextSignals(t schema.Turn) float64 {
	n := len(t.FileRefs)
	if t.HasErrorContext {
		n++
	}
	if t.HasCodeSnippet {
		n++
	}
	return float64(n)
}

// collectUserTurns flattens user turns across all conversations.
func collectUserTurns(convs []schema.Conversation) []schema.Turn {
	var out []schema.Turn
	for _, c := range convs {
		out = append(out, c.UserTurns()...)
	}
	return out
}

// countPatternHits sums matches across a pattern set.
func countPatternHits(patterns []*regexp.Regexp, content string) int {
	n := 0
	for _, re := range patterns {
		n += len(re.FindAllString(content, -1))
	}
	return n
}

var sentenceSplitRe = regexp.MustCompile(`[.!?\n]+`)

// sentenceCount estimates the number of sentences in a prompt.
func sentenceCount(content string) int {
	n := 0
	for _, part := range sentenceSplitRe.Split(content, -1) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}

// wordCount counts whitespace-separated words.
func wordCount(content string) int {
	return len(strings.Fields(content))
}
