package schema

// GetPlainLabel returns a plain text label for a 0-100 skill score.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Needs Work"
	}
}

// EnrichDimensions adds rank and label to a list of dimension scores.
func EnrichDimensions(dims []DimensionScore) []EnrichedDimensionScore {
	output := make([]EnrichedDimensionScore, len(dims))
	for i, d := range dims {
		label := GetPlainLabel(d.Score)
		if d.Status == StatusInsufficientData {
			label = "No Data"
		}
		output[i] = EnrichedDimensionScore{
			Rank:           i + 1,
			Label:          label,
			DimensionScore: d,
		}
	}
	return output
}

// DirectionGlyph returns the arrow used for a trend direction in text output.
func DirectionGlyph(d TrendDirection) string {
	switch d {
	case TrendImproving:
		return "↑"
	case TrendDeclining:
		return "↓"
	case TrendStable:
		return "→"
	default:
		return "·"
	}
}

// ClassifySession assigns a session type based on user-turn content, falling
// back to coding when nothing matches.
func ClassifySession(turns []Turn) SessionType {
	counts := make(map[SessionType]int)
	for _, t := range turns {
		if t.Role != UserRole {
			continue
		}
		for st, re := range SessionTypePatterns() {
			if re.MatchString(t.Content) {
				counts[st]++
			}
		}
	}

	best := CodingSession
	bestCount := 0
	// Iterate in a fixed order so ties resolve deterministically.
	for _, st := range []SessionType{DebuggingSession, RefactoringSession, TestingSession, DocumentationSession, ExplorationSession} {
		if counts[st] > bestCount {
			best = st
			bestCount = counts[st]
		}
	}
	return best
}
