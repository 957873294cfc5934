package core

import (
	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// conversationFlowExtractor scores how smoothly sessions progress: short
// paths to resolution, few corrections, little context restatement, and
// first responses that stick.
type conversationFlowExtractor struct{}

var _ Extractor = &conversationFlowExtractor{} // Compile-time check

func (e *conversationFlowExtractor) Dimension() schema.DimensionKey {
	return schema.DimConversationFlow
}

func (e *conversationFlowExtractor) Extract(in *ExtractorInput, cfg *contract.Config) schema.DimensionScore {
	weights := schema.GetDefaultSubWeights(schema.DimConversationFlow)

	var (
		convsWithUsers int
		userTurnSum    int
		corrections    int
		userTurnCount  int
		restated       int
		laterTurns     int
		accepted       int
		acceptEligible int
	)

	for _, c := range in.Conversations {
		users := c.UserTurns()
		if len(users) == 0 {
			continue
		}
		convsWithUsers++
		userTurnSum += len(users)
		userTurnCount += len(users)

		seenRefs := make(map[string]bool)
		for i, t := range users {
			if isCorrection(t.Content) {
				corrections++
			}
			if i > 0 {
				laterTurns++
				if restatesContext(t, seenRefs) {
					restated++
				}
			}
			for _, ref := range t.FileRefs {
				seenRefs[ref] = true
			}
		}

		// A conversation counts as accepted when the turn after the first
		// assistant response is not a correction.
		if ok, elig := firstResponseAccepted(c.Turns); elig {
			acceptEligible++
			if ok {
				accepted++
			}
		}
	}

	if convsWithUsers == 0 {
		return insufficientDimension(schema.DimConversationFlow, []schema.SubKey{
			schema.SubResolution, schema.SubCorrections, schema.SubRestatement, schema.SubAcceptance,
		})
	}

	resolutionRaw := float64(userTurnSum) / float64(convsWithUsers)
	correctionRaw := float64(corrections) / float64(userTurnCount)

	var restatementRaw *float64
	if laterTurns > 0 {
		restatementRaw = raw(float64(restated) / float64(laterTurns))
	}

	var acceptanceRaw *float64
	if acceptEligible > 0 {
		acceptanceRaw = raw(float64(accepted) / float64(acceptEligible))
	}

	subs := []schema.SubScore{
		buildSubScore(schema.SubResolution, raw(resolutionRaw), cfg.Curves[schema.CurveFlowResolution], weights[schema.SubResolution]),
		buildSubScore(schema.SubCorrections, raw(correctionRaw), cfg.Curves[schema.CurveFlowCorrections], weights[schema.SubCorrections]),
		buildSubScore(schema.SubRestatement, restatementRaw, cfg.Curves[schema.CurveFlowRestatement], weights[schema.SubRestatement]),
		buildSubScore(schema.SubAcceptance, acceptanceRaw, cfg.Curves[schema.CurveFlowAcceptance], weights[schema.SubAcceptance]),
	}
	return finishDimension(schema.DimConversationFlow, subs)
}

// isCorrection reports whether a user turn walks back the assistant's work.
func isCorrection(content string) bool {
	for _, re := range schema.CorrectionPatterns() {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// restatesContext reports whether a later user turn re-mentions a file the
// user already referenced, a sign that context fell out of the conversation.
func restatesContext(t schema.Turn, seenRefs map[string]bool) bool {
	for _, ref := range t.FileRefs {
		if seenRefs[ref] {
			return true
		}
	}
	return false
}

// firstResponseAccepted checks whether the user turn following the first
// assistant response is a correction. The second return value is false when
// the conversation never reached that point.
func firstResponseAccepted(turns []schema.Turn) (accepted, eligible bool) {
	sawAssistant := false
	for _, t := range turns {
		if t.Role == schema.AssistantRole {
			sawAssistant = true
			continue
		}
		if sawAssistant && t.Role == schema.UserRole {
			return !isCorrection(t.Content), true
		}
	}
	if sawAssistant {
		// Assistant answered and the user never pushed back.
		return true, true
	}
	return false, false
}
