// Package core implements skillscope's analysis pipeline: feature extraction
// over normalized sessions, curve-based scoring, aggregation, and evidence
// collection.
package core

import (
	"math"

	"github.com/mkohari/skillscope/schema"
)

// maxSigmoidZ bounds the sigmoid exponent so extreme raw values saturate
// instead of overflowing.
const maxSigmoidZ = 500.0

// evalCurve maps a raw metric value onto a 0-100 score using the given curve.
// All shapes are continuous over the full float64 domain and the output is
// always within [0, 100].
func evalCurve(spec schema.CurveSpec, x float64) float64 {
	y := curveValue01(spec, x)
	if spec.Invert {
		y = 1.0 - y
	}
	return clamp01(y) * 100.0
}

// curveValue01 computes the un-inverted curve value in [0, 1].
func curveValue01(spec schema.CurveSpec, x float64) float64 {
	switch spec.Shape {
	case schema.SigmoidCurve:
		z := spec.Steepness * (x - spec.Midpoint)
		if z > maxSigmoidZ {
			return 1.0
		}
		if z < -maxSigmoidZ {
			return 0.0
		}
		return 1.0 / (1.0 + math.Exp(-z))

	case schema.BellCurve:
		// Gaussian around Center; Width > 0 is guaranteed by validation.
		d := (x - spec.Center) / spec.Width
		return math.Exp(-0.5 * d * d)

	case schema.DiminishingCurve:
		// Monotonic with diminishing returns: 0 at zero, asymptote at 1.
		if x <= 0 {
			return 0.0
		}
		return 1.0 - math.Exp(-x/spec.Scale)

	case schema.LinearCurve:
		return clamp01((x - spec.Low) / (spec.High - spec.Low))

	default:
		// Unknown shapes are rejected during config validation; this path is
		// unreachable for validated specs.
		return 0.0
	}
}

// clamp01 bounds a value to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
