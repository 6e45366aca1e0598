// Package sketch implements the tiered distributional sketch described for
// per-commit render-time summaries: a trivial counter for sub-threshold
// observations, an exact top-k for the long tail, and a log-binned
// histogram (DDSketch-style, relative error alpha) for everything between.
package sketch

import (
	"errors"
	"math"
)

// ErrInvalidAlpha is returned when alpha is not in the open interval (0, 1).
var ErrInvalidAlpha = errors.New("sketch: alpha must be in the open interval (0, 1)")

// DefaultAlpha is the relative error bound used by the engine unless
// overridden by configuration.
const DefaultAlpha = 0.05

// targetTrivialCutoffMS is the approximate value (in milliseconds) below
// which observations are considered diagnostically uninteresting.
const targetTrivialCutoffMS = 0.5

// Params holds the derived constants of a log-binned histogram with
// relative error Alpha. Params is immutable once computed and is embedded
// verbatim into every exported snapshot so a viewer can reconstruct bin
// boundaries without recomputing them.
type Params struct {
	Alpha         float64
	Gamma         float64
	BinOffset     int
	TrivialCutoff float64
}

// NewParams derives Gamma, BinOffset, and TrivialCutoff from alpha. Returns
// ErrInvalidAlpha if alpha is not in (0, 1).
func NewParams(alpha float64) (Params, error) {
	if alpha <= 0 || alpha >= 1 {
		return Params{}, ErrInvalidAlpha
	}

	gamma := (1 + alpha) / (1 - alpha)
	logGamma := math.Log(gamma)
	offset := int(math.Ceil(math.Log(targetTrivialCutoffMS) / logGamma))
	cutoff := math.Pow(gamma, float64(offset))

	return Params{
		Alpha:         alpha,
		Gamma:         gamma,
		BinOffset:     offset,
		TrivialCutoff: cutoff,
	}, nil
}

// DefaultParams returns Params derived from DefaultAlpha.
func DefaultParams() Params {
	p, err := NewParams(DefaultAlpha)
	if err != nil {
		// DefaultAlpha is a compile-time constant in (0, 1); this cannot fail.
		panic(err)
	}

	return p
}

// logGamma returns log base Gamma of x.
func (p Params) logGamma(x float64) float64 {
	return math.Log(x) / math.Log(p.Gamma)
}

// BinIndex returns the bin index covering x, for x > p.TrivialCutoff. The
// result may be negative; callers that index into a bin vector must shift
// by the vector's own base (see sketchpool for vector sizing) or clamp.
func (p Params) BinIndex(x float64) int {
	n := int(math.Floor(p.logGamma(x)))

	// Rounding in the logarithm can put an exact bin edge just below the
	// integer it belongs to; correct against the edges LeftEdge uses.
	if math.Pow(p.Gamma, float64(n+1)) <= x {
		n++
	} else if math.Pow(p.Gamma, float64(n)) > x {
		n--
	}

	return n - p.BinOffset
}

// LeftEdge returns the left (inclusive) boundary of bin i: the smallest
// value whose BinIndex is i.
func (p Params) LeftEdge(i int) float64 {
	return math.Pow(p.Gamma, float64(i+p.BinOffset))
}

// MaxBinIndex returns the bin index of maxObservationMS, the largest
// observation the engine is sized to track without clamping.
func (p Params) MaxBinIndex(maxObservationMS float64) int {
	return p.BinIndex(maxObservationMS)
}

// BinVector is a fixed-length, zero-initialized vector of per-bin counts.
// Its length is chosen by the sketch pool to cover observations up to the
// configured maximum without resizing; the sketch clamps into the last
// slot rather than grow.
type BinVector []uint64

// Pool provides BinVector instances to sketches. A Pool implementation
// owns amortizing allocation to process start-up; the sketch that calls
// Acquire owns the returned vector for the rest of its lifetime.
type Pool interface {
	Acquire() BinVector
}
