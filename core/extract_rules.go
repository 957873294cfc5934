package core

import (
	"strings"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// ruleFileKinds lists the instruction-file kinds coverage is measured over.
var ruleFileKinds = []schema.RuleFileKind{
	schema.PrimaryRuleFile,
	schema.NestedRuleFile,
	schema.SettingsRuleFile,
	schema.MCPConfigFile,
	schema.UserRuleFile,
}

// ruleFileExtractor scores the workspace's instruction files: structural
// completeness, pattern density, actionable guidance, freshness, and coverage
// across file kinds.
type ruleFileExtractor struct{}

var _ Extractor = &ruleFileExtractor{} // Compile-time check

func (e *ruleFileExtractor) Dimension() schema.DimensionKey {
	return schema.DimRuleFile
}

func (e *ruleFileExtractor) Extract(in *ExtractorInput, cfg *contract.Config) schema.DimensionScore {
	weights := schema.GetDefaultSubWeights(schema.DimRuleFile)

	// With no workspace there is nothing to discover; the dimension is
	// unmeasurable. An empty workspace, by contrast, scores low: missing rule
	// files are a real finding.
	if in.RuleFiles == nil {
		return insufficientDimension(schema.DimRuleFile, []schema.SubKey{
			schema.SubCompleteness, schema.SubRuleSpecificity, schema.SubActionability,
			schema.SubCurrency, schema.SubCoverage,
		})
	}

	existing := make([]schema.RuleFile, 0, len(in.RuleFiles))
	for _, f := range in.RuleFiles {
		if f.Exists {
			existing = append(existing, f)
		}
	}

	completenessRaw := completenessSignals(existing)
	specificityRaw, actionabilityRaw := contentSignals(existing)
	currencyRaw := staleness(existing, in.Window.End)
	coverage := kindCoverage(existing)

	subs := []schema.SubScore{
		buildSubScore(schema.SubCompleteness, raw(completenessRaw), cfg.Curves[schema.CurveRuleCompleteness], weights[schema.SubCompleteness]),
		buildSubScore(schema.SubRuleSpecificity, specificityRaw, cfg.Curves[schema.CurveRuleSpecificity], weights[schema.SubRuleSpecificity]),
		buildSubScore(schema.SubActionability, actionabilityRaw, cfg.Curves[schema.CurveRuleActionable], weights[schema.SubActionability]),
		buildSubScore(schema.SubCurrency, currencyRaw, cfg.Curves[schema.CurveRuleCurrency], weights[schema.SubCurrency]),
		// Coverage is already a fraction of kinds present; it maps linearly.
		{Key: schema.SubCoverage, Score: clampScore(coverage * 100.0), Weight: weights[schema.SubCoverage], Status: schema.StatusOK},
	}
	return finishDimension(schema.DimRuleFile, subs)
}

// completenessSignals counts distinct structural sections present across the
// rule files: examples, constraints, project context, style guide, tool
// config. Range 0-5.
func completenessSignals(files []schema.RuleFile) float64 {
	var examples, constraints, project, style, tool bool
	for _, f := range files {
		examples = examples || f.HasExamples
		constraints = constraints || f.HasConstraints
		project = project || f.HasProjectContext
		style = style || f.HasStyleGuide
		tool = tool || f.HasToolConfig
	}

	n := 0
	for _, present := range []bool{examples, constraints, project, style, tool} {
		if present {
			n++
		}
	}
	return float64(n)
}

// contentSignals measures pattern density (specific signal words per word)
// and the count of actionable instruction lines across rule file content.
// Both are nil when no file carries content.
func contentSignals(files []schema.RuleFile) (specificity, actionability *float64) {
	var signalWords, totalWords, actionLines int
	for _, f := range files {
		if f.Content == "" {
			continue
		}
		totalWords += f.WordCount
		signalWords += len(schema.SpecificVerbPattern().FindAllString(f.Content, -1)) +
			len(schema.TechMentionPattern().FindAllString(f.Content, -1)) +
			len(schema.FileRefPattern().FindAllString(f.Content, -1))
		actionLines += countActionableLines(f.Content)
	}

	if totalWords == 0 {
		return nil, nil
	}
	return raw(float64(signalWords) / float64(totalWords)), raw(float64(actionLines))
}

// countActionableLines counts bullet lines that open with an imperative verb.
func countActionableLines(content string) int {
	n := 0
	for line := range strings.Lines(content) {
		trimmed := strings.TrimSpace(line)
		bullet, ok := strings.CutPrefix(trimmed, "- ")
		if !ok {
			bullet, ok = strings.CutPrefix(trimmed, "* ")
		}
		if !ok {
			continue
		}
		if loc := schema.SpecificVerbPattern().FindStringIndex(bullet); loc != nil && loc[0] == 0 {
			n++
		}
	}
	return n
}

// staleness returns days since the most recent rule file modification, or nil
// when no file has a timestamp.
func staleness(files []schema.RuleFile, now time.Time) *float64 {
	var latest time.Time
	for _, f := range files {
		if f.LastModified.After(latest) {
			latest = f.LastModified
		}
	}
	if latest.IsZero() {
		return nil
	}
	days := now.Sub(latest).Hours() / 24
	return raw(max(days, 0))
}

// kindCoverage returns the fraction of rule-file kinds with at least one
// existing file.
func kindCoverage(files []schema.RuleFile) float64 {
	present := make(map[schema.RuleFileKind]bool)
	for _, f := range files {
		present[f.Kind] = true
	}

	n := 0
	for _, kind := range ruleFileKinds {
		if present[kind] {
			n++
		}
	}
	return float64(n) / float64(len(ruleFileKinds))
}
