package core

import (
	"strings"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// Neutral priors for tool usage signals that are often simply absent.
const (
	neutralMCPAdoption     = 0.6
	neutralAppropriateness = 0.7
)

// toolUsageExtractor scores how the agent's tool surface is exercised: tool
// diversity, MCP adoption, slash commands, automation opportunities, and
// whether tools match the tasks they were used for.
type toolUsageExtractor struct{}

var _ Extractor = &toolUsageExtractor{} // Compile-time check

func (e *toolUsageExtractor) Dimension() schema.DimensionKey {
	return schema.DimToolUsage
}

func (e *toolUsageExtractor) Extract(in *ExtractorInput, cfg *contract.Config) schema.DimensionScore {
	weights := schema.GetDefaultSubWeights(schema.DimToolUsage)

	if len(in.Conversations) == 0 {
		return insufficientDimension(schema.DimToolUsage, []schema.SubKey{
			schema.SubToolDiversity, schema.SubMCPAdoption, schema.SubSlashCommands,
			schema.SubAutomation, schema.SubAppropriateness,
		})
	}

	uniqueTools := make(map[string]bool)
	var totalCalls, mcpCalls, knownCalls int
	sessionsWithMCP := 0

	for _, c := range in.Conversations {
		sawMCP := false
		for _, t := range c.Turns {
			for _, call := range t.ToolCalls {
				totalCalls++
				uniqueTools[call.Name] = true
				if isMCPTool(call.Name) {
					mcpCalls++
					sawMCP = true
					knownCalls++
				} else if schema.BuiltinTools[c.Tool][call.Name] {
					knownCalls++
				}
			}
		}
		if sawMCP {
			sessionsWithMCP++
		}
	}

	// Slash commands live in user turn content, not tool calls.
	userTurns := collectUserTurns(in.Conversations)
	slashTurns := 0
	for _, t := range userTurns {
		if strings.HasPrefix(strings.TrimSpace(t.Content), "/") {
			slashTurns++
		}
	}
	var slashRaw *float64
	if len(userTurns) > 0 {
		slashRaw = raw(float64(slashTurns) / float64(len(userTurns)))
	}

	// Automation: near-duplicate prompts repeated across sessions suggest a
	// task that should have become a slash command or script.
	var automationRaw *float64
	if len(userTurns) > 0 {
		automationRaw = raw(duplicatePromptRate(userTurns))
	}

	var subs []schema.SubScore

	if totalCalls == 0 {
		// No tool telemetry in any transcript; tool-call-derived sub-metrics
		// are unmeasurable rather than zero.
		subs = append(subs,
			schema.SubScore{Key: schema.SubToolDiversity, Weight: weights[schema.SubToolDiversity], Status: schema.StatusInsufficientData},
			schema.SubScore{Key: schema.SubMCPAdoption, Weight: weights[schema.SubMCPAdoption], Status: schema.StatusInsufficientData},
		)
	} else {
		subs = append(subs,
			buildSubScore(schema.SubToolDiversity, raw(float64(len(uniqueTools))), cfg.Curves[schema.CurveToolDiversity], weights[schema.SubToolDiversity]),
			mcpAdoptionScore(in, sessionsWithMCP, mcpCalls, cfg, weights[schema.SubMCPAdoption]),
		)
	}

	subs = append(subs,
		buildSubScore(schema.SubSlashCommands, slashRaw, cfg.Curves[schema.CurveToolSlash], weights[schema.SubSlashCommands]),
		buildSubScore(schema.SubAutomation, automationRaw, cfg.Curves[schema.CurveToolAutomation], weights[schema.SubAutomation]),
	)

	if totalCalls == 0 {
		subs = append(subs, neutralSubScore(schema.SubAppropriateness, neutralAppropriateness, weights[schema.SubAppropriateness]))
	} else {
		appropriateRaw := float64(knownCalls) / float64(totalCalls)
		subs = append(subs, buildSubScore(schema.SubAppropriateness, raw(appropriateRaw), cfg.Curves[schema.CurveToolAppropriate], weights[schema.SubAppropriateness]))
	}

	return finishDimension(schema.DimToolUsage, subs)
}

// mcpAdoptionScore scores MCP usage as the share of sessions that touched an
// MCP tool. When no MCP server is configured anywhere, not using MCP is not a
// fault, so the score falls back to a neutral prior.
func mcpAdoptionScore(in *ExtractorInput, sessionsWithMCP, mcpCalls int, cfg *contract.Config, weight float64) schema.SubScore {
	if mcpCalls == 0 && !hasMCPConfig(in.RuleFiles) {
		return neutralSubScore(schema.SubMCPAdoption, neutralMCPAdoption, weight)
	}
	share := float64(sessionsWithMCP) / float64(len(in.Conversations))
	return buildSubScore(schema.SubMCPAdoption, raw(share), cfg.Curves[schema.CurveToolCoverage], weight)
}

// hasMCPConfig reports whether any discovered rule file configures MCP.
func hasMCPConfig(files []schema.RuleFile) bool {
	for _, f := range files {
		if f.Kind == schema.MCPConfigFile && f.Exists {
			return true
		}
	}
	return false
}

// isMCPTool reports whether a tool name comes from an MCP server.
func isMCPTool(name string) bool {
	for _, prefix := range schema.MCPToolPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// duplicatePromptRate measures how often users retype effectively the same
// prompt. Prompts are normalized to their first few words.
func duplicatePromptRate(turns []schema.Turn) float64 {
	const prefixWords = 6

	seen := make(map[string]int)
	for _, t := range turns {
		words := strings.Fields(strings.ToLower(t.Content))
		if len(words) == 0 {
			continue
		}
		key := strings.Join(words[:min(len(words), prefixWords)], " ")
		seen[key]++
	}

	duplicates := 0
	total := 0
	for _, n := range seen {
		total += n
		if n > 1 {
			duplicates += n - 1
		}
	}
	if total == 0 {
		return 0
	}
	return float64(duplicates) / float64(total)
}
