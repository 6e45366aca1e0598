// Package topk provides a bounded min-heap of floating-point samples.
//
// TopK keeps the k largest values seen so far. It is array-backed with no
// allocation after construction, sized for the per-call overhead budget of
// an in-process hot path: push is a handful of comparisons and at most
// log2(k) swaps.
package topk

import "errors"

// ErrInvalidCapacity is returned when k is not positive.
var ErrInvalidCapacity = errors.New("topk: capacity must be positive")

// TopK is a fixed-capacity min-heap of float64 samples. The root is always
// the minimum of the currently held values, which makes "is this new value
// among the k largest" a single comparison against index 0.
type TopK struct {
	values []float64
	cap    int
}

// New creates a TopK that retains at most k values. Returns
// ErrInvalidCapacity if k is not positive.
func New(k int) (*TopK, error) {
	if k <= 0 {
		return nil, ErrInvalidCapacity
	}

	return &TopK{
		values: make([]float64, 0, k),
		cap:    k,
	}, nil
}

// Len returns the number of values currently held.
func (t *TopK) Len() int {
	return len(t.values)
}

// IsEmpty reports whether the heap holds no values.
func (t *TopK) IsEmpty() bool {
	return len(t.values) == 0
}

// Top returns the current minimum of the held values (the heap root) and
// whether the heap holds any values at all.
func (t *TopK) Top() (float64, bool) {
	if len(t.values) == 0 {
		return 0, false
	}

	return t.values[0], true
}

// Push inserts v if the heap has spare capacity, returning (0, false): the
// heap grew and nothing was evicted. Once the heap is full, Push compares v
// against the root:
//   - if v is larger than the root, the root is evicted, v takes its place,
//     and the evicted root is returned with evicted=true.
//   - if v is not larger than the root, v itself is returned with
//     evicted=true — it was never stored, but the caller still needs to
//     know a value above the heap's floor was not retained.
//
// The evicted flag distinguishes "the heap had room, nothing left the set"
// from "the heap was full, exactly one value left the set" — callers (the
// tiered sketch) only act in the latter case.
func (t *TopK) Push(v float64) (evicted float64, wasEvicted bool) {
	if len(t.values) < t.cap {
		t.values = append(t.values, v)
		t.siftUp(len(t.values) - 1)

		return 0, false
	}

	if v <= t.values[0] {
		return v, true
	}

	prevRoot := t.values[0]
	t.values[0] = v
	t.siftDown(0)

	return prevRoot, true
}

// Pop removes and returns the current minimum. Returns false if the heap is
// empty.
func (t *TopK) Pop() (float64, bool) {
	n := len(t.values)
	if n == 0 {
		return 0, false
	}

	root := t.values[0]
	t.values[0] = t.values[n-1]
	t.values = t.values[:n-1]

	if len(t.values) > 0 {
		t.siftDown(0)
	}

	return root, true
}

// Contents returns a stable snapshot of the held values. Order is
// unspecified beyond the heap invariant (root is the minimum).
func (t *TopK) Contents() []float64 {
	out := make([]float64, len(t.values))
	copy(out, t.values)

	return out
}

// Clear empties the heap without releasing its backing array.
func (t *TopK) Clear() {
	t.values = t.values[:0]
}

func (t *TopK) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if t.values[parent] <= t.values[i] {
			return
		}

		t.values[parent], t.values[i] = t.values[i], t.values[parent]
		i = parent
	}
}

func (t *TopK) siftDown(i int) {
	n := len(t.values)

	for {
		left := 2*i + 1
		right := 2*i + 2
		smallest := i

		if left < n && t.values[left] < t.values[smallest] {
			smallest = left
		}

		if right < n && t.values[right] < t.values[smallest] {
			smallest = right
		}

		if smallest == i {
			return
		}

		t.values[i], t.values[smallest] = t.values[smallest], t.values[i]
		i = smallest
	}
}
