package core

import (
	"sort"
	"strings"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// fenceCollapseLines is the maximum number of code-fence lines kept in an
// excerpt before the block is collapsed.
const fenceCollapseLines = 5

// evidenceCandidate is a potential evidence pointer before selection.
type evidenceCandidate struct {
	ref      schema.EvidenceRef
	dimScore float64
}

// collectEvidence picks up to cfg.EvidenceLimit concrete moments that
// illustrate the weakest scored dimensions. Selection favors session
// diversity over recency: no session is cited twice until every candidate
// session has been cited once.
func collectEvidence(in *ExtractorInput, dims []schema.DimensionScore, cfg *contract.Config) []schema.EvidenceRef {
	if cfg.EvidenceLimit == 0 || len(in.Conversations) == 0 {
		return []schema.EvidenceRef{}
	}

	candidates := gatherCandidates(in, dims, cfg)

	// Weakest dimensions first; newer moments break ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dimScore != candidates[j].dimScore {
			return candidates[i].dimScore < candidates[j].dimScore
		}
		return candidates[i].ref.Timestamp.After(candidates[j].ref.Timestamp)
	})

	selected := make([]schema.EvidenceRef, 0, cfg.EvidenceLimit)
	usedSessions := make(map[string]bool)

	// First pass: one citation per session.
	for _, c := range candidates {
		if len(selected) == cfg.EvidenceLimit {
			return selected
		}
		if usedSessions[c.ref.SessionID] {
			continue
		}
		usedSessions[c.ref.SessionID] = true
		selected = append(selected, c.ref)
	}

	// Second pass: allow repeats once every session is represented.
	for _, c := range candidates {
		if len(selected) == cfg.EvidenceLimit {
			break
		}
		if containsRef(selected, c.ref) {
			continue
		}
		selected = append(selected, c.ref)
	}

	return selected
}

// gatherCandidates finds one illustrative moment per (dimension, session)
// pair for every dimension that produced a score.
func gatherCandidates(in *ExtractorInput, dims []schema.DimensionScore, cfg *contract.Config) []evidenceCandidate {
	var out []evidenceCandidate
	for _, d := range dims {
		if d.Status != schema.StatusOK {
			continue
		}
		for i := range in.Conversations {
			conv := &in.Conversations[i]
			turn := findIllustrativeTurn(conv, d.Dimension)
			if turn == nil {
				continue
			}
			out = append(out, evidenceCandidate{
				dimScore: d.Score,
				ref: schema.EvidenceRef{
					SessionID: conv.SessionID,
					Tool:      conv.Tool,
					Timestamp: turn.Timestamp,
					Dimension: d.Dimension,
					Excerpt:   buildExcerpt(turn.Content, cfg.ExcerptMaxLen),
				},
			})
		}
	}
	return out
}

// findIllustrativeTurn picks the user turn in a conversation that best shows
// the dimension's signal, or nil when the conversation has nothing relevant.
func findIllustrativeTurn(conv *schema.Conversation, dim schema.DimensionKey) *schema.Turn {
	users := conv.UserTurns()
	if len(users) == 0 {
		return nil
	}

	switch dim {
	case schema.DimPromptQuality:
		// The vaguest prompt is the most instructive one.
		for i := range users {
			if countPatternHits(schema.VaguePatterns(), users[i].Content) > 0 {
				return &users[i]
			}
		}
		return &users[0]

	case schema.DimConversationFlow:
		for i := range users {
			if isCorrection(users[i].Content) {
				return &users[i]
			}
		}
		return nil

	case schema.DimContextManagement:
		// A prompt with no attached context illustrates the gap.
		for i := range users {
			if len(users[i].FileRefs) == 0 && !users[i].HasCodeSnippet && !users[i].HasErrorContext {
				return &users[i]
			}
		}
		return nil

	case schema.DimToolUsage:
		for i := range users {
			if strings.HasPrefix(strings.TrimSpace(users[i].Content), "/") {
				return &users[i]
			}
		}
		return &users[0]

	default:
		// Session-level dimensions cite the opening prompt.
		return &users[0]
	}
}

// containsRef reports whether an equal evidence pointer was already selected.
func containsRef(refs []schema.EvidenceRef, ref schema.EvidenceRef) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}

// buildExcerpt bounds turn content for inclusion in a report: long code
// fences collapse to a marker and the result truncates to maxLen runes.
func buildExcerpt(content string, maxLen int) string {
	collapsed := collapseFences(content)
	collapsed = strings.TrimSpace(collapsed)
	return contract.TruncateText(collapsed, maxLen)
}

// collapseFences replaces code fence bodies longer than fenceCollapseLines
// with an elided marker, keeping excerpts readable.
func collapseFences(content string) string {
	lines := strings.Split(content, "\n")
	var out []string

	inFence := false
	fenceBody := 0
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inFence && fenceBody > fenceCollapseLines {
				out = append(out, "[code elided]")
			}
			inFence = !inFence
			fenceBody = 0
			out = append(out, line)
			continue
		}
		if inFence {
			fenceBody++
			if fenceBody <= fenceCollapseLines {
				out = append(out, line)
			}
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
