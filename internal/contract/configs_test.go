package contract

import (
	"testing"
	"time"

	"github.com/mkohari/skillscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validRawInput returns a raw input that passes the full validation chain.
func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		Tool:           "all",
		Days:           DefaultAnalysisDays,
		Preset:         "full",
		Output:         "text",
		Precision:      DefaultPrecision,
		Workers:        4,
		Color:          "yes",
		EvidenceLimit:  DefaultEvidenceLimit,
		NoiseThreshold: DefaultNoiseThreshold,
		RetentionDays:  DefaultRetentionDays,
		StoreBackend:   "sqlite",
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	input := validRawInput()

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Len(t, cfg.Tools, 3)
	assert.Equal(t, schema.AllDimensions, cfg.Dimensions)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
	assert.Equal(t, DefaultEvidenceLimit, cfg.EvidenceLimit)
	assert.Equal(t, DefaultExcerptMaxLen, cfg.ExcerptMaxLen)
	assert.True(t, cfg.WindowStart.Before(cfg.WindowEnd))

	// Uniform weights over all enabled dimensions, summing to 1.0.
	sum := 0.0
	for _, d := range cfg.Dimensions {
		sum += cfg.DimensionWeights[d]
	}
	assert.InDelta(t, 1.0, sum, 0.001)

	// Merged curve registry carries the defaults.
	assert.Len(t, cfg.Curves, len(schema.GetDefaultCurves()))
}

func TestProcessAndValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
		field  string
	}{
		{"unknown tool", func(in *ConfigRawInput) { in.Tool = "jetbrains" }, "tool"},
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }, "workers"},
		{"bad precision", func(in *ConfigRawInput) { in.Precision = 5 }, "precision"},
		{"bad output", func(in *ConfigRawInput) { in.Output = "xml" }, "output"},
		{"bad color", func(in *ConfigRawInput) { in.Color = "maybe" }, "color"},
		{"negative evidence", func(in *ConfigRawInput) { in.EvidenceLimit = -1 }, "evidence-limit"},
		{"huge evidence", func(in *ConfigRawInput) { in.EvidenceLimit = MaxEvidenceLimit + 1 }, "evidence-limit"},
		{"negative noise", func(in *ConfigRawInput) { in.NoiseThreshold = -0.1 }, "noise-threshold"},
		{"negative retention", func(in *ConfigRawInput) { in.RetentionDays = -1 }, "retention-days"},
		{"bad preset", func(in *ConfigRawInput) { in.Preset = "deep" }, "preset"},
		{"unknown dimension", func(in *ConfigRawInput) { in.Dimensions = "prompt_quality,vibes" }, "dimensions"},
		{"bad start date", func(in *ConfigRawInput) { in.Start = "yesterday-ish" }, "start"},
		{"inverted window", func(in *ConfigRawInput) {
			in.Start = "1 day ago"
			in.End = "3 days ago"
		}, "window"},
		{"bad backend", func(in *ConfigRawInput) { in.StoreBackend = "oracle" }, "trends-backend"},
		{"mysql without connect", func(in *ConfigRawInput) { in.StoreBackend = "mysql" }, "trends-db-connect"},
		{"mysql bad connect", func(in *ConfigRawInput) {
			in.StoreBackend = "mysql"
			in.StoreDBConnect = "user:pass@localhost/db"
		}, "trends-db-connect"},
		{"postgres bad connect", func(in *ConfigRawInput) {
			in.StoreBackend = "postgresql"
			in.StoreDBConnect = "server=localhost"
		}, "trends-db-connect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.mutate(input)

			err := ProcessAndValidate(&Config{}, input)
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestProcessDimensionsPresets(t *testing.T) {
	tests := []struct {
		preset string
		want   int
	}{
		{"quick", 3},
		{"coaching", 5},
		{"full", 8},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			cfg := &Config{}
			input := validRawInput()
			input.Preset = tt.preset

			require.NoError(t, ProcessAndValidate(cfg, input))
			assert.Len(t, cfg.Dimensions, tt.want)
		})
	}
}

func TestProcessDimensionsExplicitListOverridesPreset(t *testing.T) {
	cfg := &Config{}
	input := validRawInput()
	input.Preset = "quick"
	input.Dimensions = "tool_usage, rule_file"

	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, []schema.DimensionKey{schema.DimToolUsage, schema.DimRuleFile}, cfg.Dimensions)
}

func TestProcessDimensionsSkipGit(t *testing.T) {
	cfg := &Config{}
	input := validRawInput()
	input.SkipGit = true

	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.NotContains(t, cfg.Dimensions, schema.DimOutcomeTracking)
	assert.Len(t, cfg.Dimensions, 7)
}

func TestProcessWeightsCustom(t *testing.T) {
	w := func(v float64) *float64 { return &v }

	t.Run("valid custom weights", func(t *testing.T) {
		cfg := &Config{}
		input := validRawInput()
		input.Preset = "quick"
		input.Weights = WeightsRawInput{
			PromptQuality:    w(0.5),
			ConversationFlow: w(0.3),
			SessionPatterns:  w(0.2),
		}

		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.InDelta(t, 0.5, cfg.DimensionWeights[schema.DimPromptQuality], 1e-9)
	})

	t.Run("weights not summing to one", func(t *testing.T) {
		input := validRawInput()
		input.Preset = "quick"
		input.Weights = WeightsRawInput{
			PromptQuality:    w(0.5),
			ConversationFlow: w(0.3),
			SessionPatterns:  w(0.3),
		}

		err := ProcessAndValidate(&Config{}, input)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "weights", cfgErr.Field)
	})

	t.Run("missing weight for enabled dimension", func(t *testing.T) {
		input := validRawInput()
		input.Preset = "quick"
		input.Weights = WeightsRawInput{
			PromptQuality:    w(0.7),
			ConversationFlow: w(0.3),
		}

		err := ProcessAndValidate(&Config{}, input)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "weights", cfgErr.Field)
	})
}

func TestProcessCurvesOverrides(t *testing.T) {
	t.Run("valid override merges onto default", func(t *testing.T) {
		cfg := &Config{}
		input := validRawInput()
		mid := 5.0
		input.Curves = map[string]CurveRawInput{
			string(schema.CurvePromptSpecificity): {Midpoint: &mid},
		}

		require.NoError(t, ProcessAndValidate(cfg, input))
		spec := cfg.Curves[schema.CurvePromptSpecificity]
		assert.Equal(t, 5.0, spec.Midpoint)
		// Untouched params keep their defaults.
		assert.Equal(t, schema.SigmoidCurve, spec.Shape)
	})

	t.Run("unknown curve name", func(t *testing.T) {
		input := validRawInput()
		input.Curves = map[string]CurveRawInput{"prompt_swagger": {}}

		err := ProcessAndValidate(&Config{}, input)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "curves", cfgErr.Field)
	})

	t.Run("unknown shape fails before any store write", func(t *testing.T) {
		input := validRawInput()
		input.Curves = map[string]CurveRawInput{
			string(schema.CurvePromptSpecificity): {Shape: "staircase"},
		}

		err := ProcessAndValidate(&Config{}, input)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "curves", cfgErr.Field)
	})

	t.Run("zero-width bell rejected", func(t *testing.T) {
		input := validRawInput()
		width := 0.0
		input.Curves = map[string]CurveRawInput{
			string(schema.CurveContextBudget): {Width: &width},
		}

		err := ProcessAndValidate(&Config{}, input)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})
}

func TestProcessWindowExplicitBounds(t *testing.T) {
	cfg := &Config{}
	input := validRawInput()
	input.Start = "2026-08-01T00:00:00Z"
	input.End = "2026-08-15T00:00:00Z"

	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), cfg.WindowStart)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), cfg.WindowEnd)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validRawInput()))

	clone := cfg.Clone()
	clone.DimensionWeights[schema.DimPromptQuality] = 0.9
	clone.Dimensions[0] = schema.DimToolUsage

	assert.NotEqual(t, 0.9, cfg.DimensionWeights[schema.DimPromptQuality])
	assert.Equal(t, schema.DimPromptQuality, cfg.Dimensions[0])
}

func TestCloneWithWindow(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validRawInput()))

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 8, 0, 0, 0, 0, time.UTC)
	clone := cfg.CloneWithWindow(start, end)

	assert.Equal(t, start, clone.WindowStart)
	assert.Equal(t, end, clone.WindowEnd)
	assert.NotEqual(t, cfg.WindowStart, clone.WindowStart)
}

func TestWindowContains(t *testing.T) {
	w := Window{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, w.Contains(w.Start), "start is inclusive")
	assert.False(t, w.Contains(w.End), "end is exclusive")
	assert.True(t, w.Contains(w.Start.Add(time.Hour)))
	assert.False(t, w.Contains(w.Start.Add(-time.Nanosecond)))
}
