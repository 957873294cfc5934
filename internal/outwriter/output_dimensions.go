package outwriter

import (
	"fmt"
	"strings"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// dimensionInfo pairs a dimension with its display metadata and the curve
// used for each sub-metric. Sub-metrics without an entry in the curve table
// are plain linear fractions.
type dimensionInfo struct {
	dim     schema.DimensionKey
	purpose string
	subs    []schema.SubKey
	curves  map[schema.SubKey]schema.CurveKey
}

func dimensionCatalog() []dimensionInfo {
	return []dimensionInfo{
		{
			dim:     schema.DimPromptQuality,
			purpose: "How well prompts are written - specific, contextualized, clear",
			subs: []schema.SubKey{
				schema.SubSpecificity, schema.SubContext, schema.SubClarity,
				schema.SubEfficiency, schema.SubReasoning,
			},
			curves: map[schema.SubKey]schema.CurveKey{
				schema.SubSpecificity: schema.CurvePromptSpecificity,
				schema.SubContext:     schema.CurvePromptContext,
				schema.SubClarity:     schema.CurvePromptClarity,
				schema.SubEfficiency:  schema.CurvePromptEfficiency,
				schema.SubReasoning:   schema.CurvePromptReasoning,
			},
		},
		{
			dim:     schema.DimConversationFlow,
			purpose: "How efficiently conversations reach resolution",
			subs: []schema.SubKey{
				schema.SubResolution, schema.SubCorrections,
				schema.SubRestatement, schema.SubAcceptance,
			},
			curves: map[schema.SubKey]schema.CurveKey{
				schema.SubResolution:  schema.CurveFlowResolution,
				schema.SubCorrections: schema.CurveFlowCorrections,
				schema.SubRestatement: schema.CurveFlowRestatement,
				schema.SubAcceptance:  schema.CurveFlowAcceptance,
			},
		},
		{
			dim:     schema.DimContextManagement,
			purpose: "Whether the agent gets the context it needs - files, errors, code",
			subs: []schema.SubKey{
				schema.SubFileRefs, schema.SubErrorContext, schema.SubCodeContext,
				schema.SubScope, schema.SubBudget,
			},
			curves: map[schema.SubKey]schema.CurveKey{
				schema.SubFileRefs:     schema.CurveContextFileRefs,
				schema.SubErrorContext: schema.CurveContextErrors,
				schema.SubCodeContext:  schema.CurveContextCode,
				schema.SubScope:        schema.CurveContextScope,
				schema.SubBudget:       schema.CurveContextBudget,
			},
		},
		{
			dim:     schema.DimSessionPatterns,
			purpose: "Healthy working rhythms - session length, frequency, deep work",
			subs: []schema.SubKey{
				schema.SubDuration, schema.SubFrequency, schema.SubDiversity,
				schema.SubFatigue, schema.SubDeepWork,
			},
			curves: map[schema.SubKey]schema.CurveKey{
				schema.SubDuration:  schema.CurvePatternDuration,
				schema.SubFrequency: schema.CurvePatternFrequency,
				schema.SubDiversity: schema.CurvePatternDiversity,
				schema.SubFatigue:   schema.CurvePatternFatigue,
				schema.SubDeepWork:  schema.CurvePatternDeepWork,
			},
		},
		{
			dim:     schema.DimToolUsage,
			purpose: "Breadth and fit of agent tooling - MCP, slash commands, automation",
			subs: []schema.SubKey{
				schema.SubToolDiversity, schema.SubMCPAdoption, schema.SubSlashCommands,
				schema.SubAutomation, schema.SubAppropriateness,
			},
			curves: map[schema.SubKey]schema.CurveKey{
				schema.SubToolDiversity:   schema.CurveToolDiversity,
				schema.SubMCPAdoption:     schema.CurveToolCoverage,
				schema.SubSlashCommands:   schema.CurveToolSlash,
				schema.SubAutomation:      schema.CurveToolAutomation,
				schema.SubAppropriateness: schema.CurveToolAppropriate,
			},
		},
		{
			dim:     schema.DimRuleFile,
			purpose: "Quality of instruction files - CLAUDE.md, .cursorrules and friends",
			subs: []schema.SubKey{
				schema.SubCompleteness, schema.SubRuleSpecificity, schema.SubActionability,
				schema.SubCurrency, schema.SubCoverage,
			},
			curves: map[schema.SubKey]schema.CurveKey{
				schema.SubCompleteness:    schema.CurveRuleCompleteness,
				schema.SubRuleSpecificity: schema.CurveRuleSpecificity,
				schema.SubActionability:   schema.CurveRuleActionable,
				schema.SubCurrency:        schema.CurveRuleCurrency,
			},
		},
		{
			dim:     schema.DimCompletionPatterns,
			purpose: "Inline completion effectiveness - acceptance, fit, languages, latency",
			subs: []schema.SubKey{
				schema.SubAcceptRate, schema.SubSuggestionFit,
				schema.SubLanguageSpread, schema.SubLatency,
			},
			curves: map[schema.SubKey]schema.CurveKey{
				schema.SubAcceptRate:     schema.CurveCompletionAcceptance,
				schema.SubSuggestionFit:  schema.CurveCompletionFit,
				schema.SubLanguageSpread: schema.CurveCompletionLanguages,
				schema.SubLatency:        schema.CurveCompletionLatency,
			},
		},
		{
			dim:     schema.DimOutcomeTracking,
			purpose: "Whether sessions turn into committed work - commits, rework, quality",
			subs: []schema.SubKey{
				schema.SubCommitRate, schema.SubProductivity, schema.SubRework,
				schema.SubQuality, schema.SubOutcomeTrend,
			},
			curves: map[schema.SubKey]schema.CurveKey{
				schema.SubCommitRate:   schema.CurveOutcomeCommitRate,
				schema.SubProductivity: schema.CurveOutcomeProductivity,
				schema.SubRework:       schema.CurveOutcomeRework,
				schema.SubOutcomeTrend: schema.CurveOutcomeTrend,
			},
		},
	}
}

// formatCurveSpec renders a curve spec as a compact formula fragment.
func formatCurveSpec(spec schema.CurveSpec) string {
	var s string
	switch spec.Shape {
	case schema.SigmoidCurve:
		s = fmt.Sprintf("sigmoid(mid=%g, k=%g)", spec.Midpoint, spec.Steepness)
	case schema.BellCurve:
		s = fmt.Sprintf("bell(center=%g, width=%g)", spec.Center, spec.Width)
	case schema.DiminishingCurve:
		s = fmt.Sprintf("diminishing(scale=%g)", spec.Scale)
	case schema.LinearCurve:
		s = fmt.Sprintf("linear(%g..%g)", spec.Low, spec.High)
	default:
		s = string(spec.Shape)
	}
	if spec.Invert {
		s += " inverted"
	}
	return s
}

// formatSubWeights formats sub-metric weights for display in formulas.
func formatSubWeights(weights map[schema.SubKey]float64, subs []schema.SubKey) string {
	var parts []string
	for _, key := range subs {
		if weight, ok := weights[key]; ok && weight > 0 {
			parts = append(parts, fmt.Sprintf("%.2f*%s", weight, key))
		}
	}
	return strings.Join(parts, " + ")
}

// PrintDimensionDefinitions displays the formal definitions of all scoring
// dimensions: sub-metric weights, scoring curves, and the active dimension
// weights from the resolved config.
func PrintDimensionDefinitions(cfg *contract.Config) error {
	fmt.Println("🎯 Skillscope Scoring Dimensions")
	fmt.Println("================================")
	fmt.Println()
	fmt.Println("Dimension score = weighted sum of curved sub-metrics (0-100)")
	fmt.Println("Overall score   = weighted sum of dimension scores")
	fmt.Println()

	for _, info := range dimensionCatalog() {
		weight := "-"
		if w, ok := cfg.DimensionWeights[info.dim]; ok {
			weight = fmt.Sprintf("%.3f", w)
		}
		fmt.Printf("%s: %s\n", strings.ToUpper(string(info.dim)), info.purpose)
		fmt.Printf("   Weight:  %s\n", weight)

		subWeights := schema.GetDefaultSubWeights(info.dim)
		fmt.Printf("   Formula: Score = %s\n", formatSubWeights(subWeights, info.subs))

		for _, sub := range info.subs {
			curveKey, ok := info.curves[sub]
			if !ok {
				fmt.Printf("   Curve:   %-16s linear fraction\n", sub)
				continue
			}
			spec := cfg.Curves[curveKey]
			fmt.Printf("   Curve:   %-16s %s\n", sub, formatCurveSpec(spec))
		}
		fmt.Println()
	}

	fmt.Println("Dimensions with no usable signal report insufficient data and are")
	fmt.Println("renormalized out of the overall score rather than counted as zero.")

	return nil
}
