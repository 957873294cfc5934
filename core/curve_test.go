package core

import (
	"math"
	"testing"

	"github.com/mkohari/skillscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleDomain spans well past every default curve's interesting region.
var sampleDomain = buildSampleDomain()

func buildSampleDomain() []float64 {
	var xs []float64
	for x := -200.0; x <= 200.0; x += 0.5 {
		xs = append(xs, x)
	}
	return xs
}

func TestEvalCurveRange(t *testing.T) {
	// Every default curve stays within [0, 100] over a wide domain, including
	// extreme inputs.
	extremes := []float64{-1e12, -1e6, 1e6, 1e12, math.SmallestNonzeroFloat64}

	for key, spec := range schema.GetDefaultCurves() {
		t.Run(string(key), func(t *testing.T) {
			require.NoError(t, spec.Validate())
			for _, x := range append(sampleDomain, extremes...) {
				y := evalCurve(spec, x)
				assert.GreaterOrEqual(t, y, 0.0, "x=%g", x)
				assert.LessOrEqual(t, y, 100.0, "x=%g", x)
			}
		})
	}
}

func TestEvalCurveMonotonic(t *testing.T) {
	// Sigmoid, diminishing, and linear curves never decrease as the raw value
	// grows (never increase when inverted). Bell curves are deliberately
	// non-monotonic and excluded.
	for key, spec := range schema.GetDefaultCurves() {
		if spec.Shape == schema.BellCurve {
			continue
		}
		t.Run(string(key), func(t *testing.T) {
			prev := evalCurve(spec, sampleDomain[0])
			for _, x := range sampleDomain[1:] {
				y := evalCurve(spec, x)
				if spec.Invert {
					assert.LessOrEqual(t, y, prev+1e-9, "x=%g", x)
				} else {
					assert.GreaterOrEqual(t, y, prev-1e-9, "x=%g", x)
				}
				prev = y
			}
		})
	}
}

func TestEvalCurveContinuity(t *testing.T) {
	// Epsilon-delta check: a tiny step in x never jumps the score. The step
	// bound scales with the curve's steepest possible slope.
	const dx = 1e-6

	for key, spec := range schema.GetDefaultCurves() {
		t.Run(string(key), func(t *testing.T) {
			// Conservative Lipschitz-style bound per shape, in score units.
			var maxSlope float64
			switch spec.Shape {
			case schema.SigmoidCurve:
				maxSlope = 25.0 * spec.Steepness // sigmoid' peaks at k/4
			case schema.BellCurve:
				maxSlope = 100.0 / spec.Width
			case schema.DiminishingCurve:
				maxSlope = 100.0 / spec.Scale
			case schema.LinearCurve:
				maxSlope = 100.0 / (spec.High - spec.Low)
			}
			bound := maxSlope*dx + 1e-9

			for _, x := range sampleDomain {
				y0 := evalCurve(spec, x)
				y1 := evalCurve(spec, x+dx)
				assert.InDelta(t, y0, y1, bound, "x=%g", x)
			}
		})
	}
}

func TestEvalCurveShapes(t *testing.T) {
	t.Run("sigmoid midpoint scores 50", func(t *testing.T) {
		spec := schema.CurveSpec{Shape: schema.SigmoidCurve, Midpoint: 4, Steepness: 0.8}
		assert.InDelta(t, 50.0, evalCurve(spec, 4), 1e-9)
		assert.Greater(t, evalCurve(spec, 10), 90.0)
		assert.Less(t, evalCurve(spec, 0), 10.0)
	})

	t.Run("sigmoid saturates without overflow", func(t *testing.T) {
		spec := schema.CurveSpec{Shape: schema.SigmoidCurve, Midpoint: 0, Steepness: 1000}
		assert.Equal(t, 100.0, evalCurve(spec, 1e9))
		assert.Equal(t, 0.0, evalCurve(spec, -1e9))
	})

	t.Run("inverted sigmoid flips", func(t *testing.T) {
		spec := schema.CurveSpec{Shape: schema.SigmoidCurve, Midpoint: 0.2, Steepness: 8, Invert: true}
		assert.InDelta(t, 50.0, evalCurve(spec, 0.2), 1e-9)
		assert.Greater(t, evalCurve(spec, 0), 50.0)
		assert.Less(t, evalCurve(spec, 1), 50.0)
	})

	t.Run("bell peaks at center and falls off symmetrically", func(t *testing.T) {
		spec := schema.CurveSpec{Shape: schema.BellCurve, Center: 35, Width: 20}
		assert.InDelta(t, 100.0, evalCurve(spec, 35), 1e-9)
		assert.InDelta(t, evalCurve(spec, 25), evalCurve(spec, 45), 1e-9)
		assert.Less(t, evalCurve(spec, 120), evalCurve(spec, 60))
	})

	t.Run("diminishing has diminishing returns", func(t *testing.T) {
		spec := schema.CurveSpec{Shape: schema.DiminishingCurve, Scale: 5}
		assert.Equal(t, 0.0, evalCurve(spec, 0))
		first := evalCurve(spec, 5) - evalCurve(spec, 0)
		second := evalCurve(spec, 10) - evalCurve(spec, 5)
		assert.Greater(t, first, second)
		assert.Less(t, evalCurve(spec, 1e6), 100.0+1e-9)
	})

	t.Run("linear interpolates and clamps", func(t *testing.T) {
		spec := schema.CurveSpec{Shape: schema.LinearCurve, Low: 0, High: 1}
		assert.InDelta(t, 0.0, evalCurve(spec, -0.5), 1e-9)
		assert.InDelta(t, 50.0, evalCurve(spec, 0.5), 1e-9)
		assert.InDelta(t, 100.0, evalCurve(spec, 2), 1e-9)
	})
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-1))
	assert.Equal(t, 1.0, clamp01(2))
	assert.Equal(t, 0.5, clamp01(0.5))
	assert.Equal(t, 0.0, clamp01(math.NaN()))
}

// BenchmarkEvalCurve benchmarks a single sigmoid evaluation, the hot path of
// every sub-metric.
func BenchmarkEvalCurve(b *testing.B) {
	spec := schema.CurveSpec{Shape: schema.SigmoidCurve, Midpoint: 4, Steepness: 0.8}

	for b.Loop() {
		evalCurve(spec, 3.7)
	}
}
