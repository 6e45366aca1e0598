package sketch

import (
	"errors"

	"github.com/Sumatoshi-tech/longtail/pkg/topk"
)

// ErrInvalidOutlierCapacity is returned when the requested outlier capacity
// is not positive.
var ErrInvalidOutlierCapacity = errors.New("sketch: outlier capacity must be positive")

// DefaultOutlierCapacity is the number of exact long-tail samples retained
// per tracker unless overridden by configuration.
const DefaultOutlierCapacity = 10

// TieredSketch summarizes a stream of non-negative observations with three
// modalities: a trivial counter for values at or below Params.TrivialCutoff,
// an exact TopK of outliers above it, and a log-binned histogram for values
// that age out of the outlier set. The bin vector is acquired from a Pool
// lazily, on the first eviction — most trackers never touch it.
type TieredSketch struct {
	params       Params
	pool         Pool
	outliers     *topk.TopK
	bins         BinVector
	count        uint64
	trivialCount uint64
}

// New creates a TieredSketch. pool supplies the bin vector on first
// overflow from the outlier set; it is never consulted if every observation
// stays within the outlier capacity.
func New(params Params, pool Pool, outlierCapacity int) (*TieredSketch, error) {
	if outlierCapacity <= 0 {
		return nil, ErrInvalidOutlierCapacity
	}

	outliers, err := topk.New(outlierCapacity)
	if err != nil {
		return nil, err
	}

	return &TieredSketch{
		params:   params,
		pool:     pool,
		outliers: outliers,
	}, nil
}

// Push records one observation. Values at or below the trivial cutoff only
// increment the trivial counter. Values above it compete for a slot in the
// outlier TopK; whichever value the TopK does not retain (the evicted
// value) is binned — acquiring the bin vector from the pool on first use.
func (s *TieredSketch) Push(x float64) {
	s.count++

	if x <= s.params.TrivialCutoff {
		s.trivialCount++

		return
	}

	evicted, wasEvicted := s.outliers.Push(x)
	if !wasEvicted {
		return
	}

	s.ensureBins()
	s.bins[s.clampedBinIndex(evicted)]++
}

// HasBins reports whether this sketch has ever acquired a bin vector.
func (s *TieredSketch) HasBins() bool {
	return s.bins != nil
}

// Reset zeros count, trivial_count, and every bin in place, and clears the
// outlier set. A previously-acquired bin vector is kept (not returned to
// the pool) so the next encounter reuses it without reallocating.
func (s *TieredSketch) Reset() {
	s.count = 0
	s.trivialCount = 0
	s.outliers.Clear()

	for i := range s.bins {
		s.bins[i] = 0
	}
}

// Export produces a value-semantic snapshot of the sketch's current state.
func (s *TieredSketch) Export() Export {
	var bins []uint64
	if s.bins != nil {
		bins = make([]uint64, len(s.bins))
		copy(bins, s.bins)
	}

	return Export{
		Count:        s.count,
		TrivialCount: s.trivialCount,
		Bins:         bins,
		Outliers:     s.outliers.Contents(),
	}
}

func (s *TieredSketch) ensureBins() {
	if s.bins == nil {
		s.bins = s.pool.Acquire()
	}
}

// clampedBinIndex maps v to an index within the bin vector, clamping to the
// last bin (BinOverflow, per the error taxonomy) rather than growing.
func (s *TieredSketch) clampedBinIndex(v float64) int {
	idx := s.params.BinIndex(v)
	if idx < 0 {
		idx = 0
	}

	maxIdx := len(s.bins) - 1
	if idx > maxIdx {
		idx = maxIdx
	}

	return idx
}

// Export is a value-semantic, serialization-agnostic snapshot of a
// TieredSketch. Bins is nil when the sketch never acquired a bin vector.
type Export struct {
	Count        uint64
	TrivialCount uint64
	Bins         []uint64
	Outliers     []float64
}
