// Package sketchpool amortizes bin-vector allocation for the sketch
// package. Most trackers never overflow into the histogram tier; the ones
// that do should not pay an allocation on the render thread the first time
// they do. Pool preallocates a batch of zeroed vectors up front and hands
// them out on Acquire, falling back to on-demand allocation (and counting
// the fact) only once the preallocated batch is exhausted.
package sketchpool

import "github.com/Sumatoshi-tech/longtail/pkg/sketch"

// DefaultPrealloc is the number of bin vectors eagerly allocated at
// process start unless overridden by configuration.
const DefaultPrealloc = 100

// Pool is a free list of fixed-length sketch.BinVector values. It is not
// safe for concurrent use; the engine it backs is single-threaded.
type Pool struct {
	free      []sketch.BinVector
	vectorLen int
	exhausted uint64
}

// New creates a Pool that hands out vectors of vectorLen uint64s,
// eagerly allocating prealloc of them now so the render loop's first
// overflow never pays for a heap allocation.
func New(vectorLen, prealloc int) *Pool {
	p := &Pool{
		vectorLen: vectorLen,
		free:      make([]sketch.BinVector, 0, prealloc),
	}

	for range prealloc {
		p.free = append(p.free, make(sketch.BinVector, vectorLen))
	}

	return p
}

// Acquire removes and returns a zeroed vector from the free list. If the
// free list is empty, it allocates a fresh vector on the spot and records
// the exhaustion — the engine logs this once per encounter per the error
// taxonomy's PoolExhausted entry.
func (p *Pool) Acquire() sketch.BinVector {
	n := len(p.free)
	if n == 0 {
		p.exhausted++

		return make(sketch.BinVector, p.vectorLen)
	}

	v := p.free[n-1]
	p.free = p.free[:n-1]

	return v
}

// Release zeros v and returns it to the free list. Sketches normally keep
// their vector for their entire lifetime (see sketch.TieredSketch.Reset);
// Release exists for tracker teardown, where the vector can be reclaimed
// for a future tracker instead of left for the garbage collector.
func (p *Pool) Release(v sketch.BinVector) {
	if len(v) != p.vectorLen {
		return
	}

	clear(v)
	p.free = append(p.free, v)
}

// Available returns the number of vectors currently on the free list.
func (p *Pool) Available() int {
	return len(p.free)
}

// ExhaustedCount returns the number of Acquire calls that found the free
// list empty and allocated on demand.
func (p *Pool) ExhaustedCount() uint64 {
	return p.exhausted
}

// VectorLen returns the length of every vector this pool hands out.
func (p *Pool) VectorLen() int {
	return p.vectorLen
}

// FootprintBytes estimates the pool's preallocated memory: the vectors
// currently on the free list, at 8 bytes per uint64 slot.
func (p *Pool) FootprintBytes() uint64 {
	const bytesPerCount = 8

	return uint64(len(p.free)) * uint64(p.vectorLen) * bytesPerCount
}
