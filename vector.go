package stretch

import (
	"sort"

	"github.com/pkg/errors"
)

// Vector is the sparse container: an ordered sequence of (Interval, Buffer)
// pairs over one coordinate axis.  Invariants, maintained by every mutating
// operation:
//
//	I1: intervals are strictly increasing by Start;
//	I2: consecutive intervals don't overlap (ivs[i].End <= ivs[i+1].Start);
//	I3: each buffer's length equals its interval's length.
//
// Two runs may be exactly end-to-end and still remain separate entries; runs
// are only merged as a side effect of a write that spans their boundary.
// Check verifies I1-I3 directly.
type Vector struct {
	kind      Kind
	ivs       []Interval
	stretches []Buffer
}

// NewVector returns an empty Vector with the given element kind.  The kind is
// fixed for the Vector's lifetime.  NewVector panics if kind is invalid.
func NewVector(kind Kind) *Vector {
	if !kind.Valid() {
		panic("stretch.NewVector: invalid kind " + kind.String())
	}
	return &Vector{kind: kind}
}

// Kind returns the element kind.
func (v *Vector) Kind() Kind { return v.kind }

// NumRuns returns the number of (interval, buffer) pairs.  Adjacent runs
// written separately are never coalesced, so this is observable structure,
// not just an implementation detail.
func (v *Vector) NumRuns() int { return len(v.ivs) }

// Runs returns a copy of the interval list, in increasing order.
func (v *Vector) Runs() []Interval {
	out := make([]Interval, len(v.ivs))
	copy(out, v.ivs)
	return out
}

// Run returns the i'th run's interval and buffer.  The buffer is the
// vector's own storage, not a copy; the caller must not modify it or hold it
// across a mutation of the vector.
func (v *Vector) Run(i int) (Interval, Buffer) {
	return v.ivs[i], v.stretches[i]
}

// Bounds returns the interval from the first run's start to the last run's
// end, and false if the vector has no runs.
func (v *Vector) Bounds() (Interval, bool) {
	if len(v.ivs) == 0 {
		return Interval{}, false
	}
	return Interval{Start: v.ivs[0].Start, End: v.ivs[len(v.ivs)-1].End}, true
}

// Len returns the total number of defined positions (the sum of run
// lengths), not the span of the bounds.
func (v *Vector) Len() PosType {
	var n PosType
	for _, iv := range v.ivs {
		n += iv.Len()
	}
	return n
}

// locate returns the index of the run containing pos, or -1.  The global
// bounds short-circuit matters: vectors can hold many runs, and most point
// queries on sparse data miss.
func (v *Vector) locate(pos PosType) int {
	n := len(v.ivs)
	if n == 0 {
		return -1
	}
	if pos < v.ivs[0].Start || pos >= v.ivs[n-1].End {
		return -1
	}
	// First run with End > pos; pos is defined iff that run starts at or
	// before it.
	i := sort.Search(n, func(i int) bool { return v.ivs[i].End > pos })
	if v.ivs[i].Contains(pos) {
		return i
	}
	return -1
}

// Get returns the value at pos, or (nil, false) if pos is undefined.  The
// returned interface{} holds float32, int32, int64, or the stored reference,
// per the vector's kind.
func (v *Vector) Get(pos PosType) (interface{}, bool) {
	idx := v.locate(pos)
	if idx < 0 {
		return nil, false
	}
	return v.stretches[idx].At(int(pos - v.ivs[idx].Start)), true
}

// GetFloat32 is Get for the common Float32 kind, without boxing.  It panics
// if the vector holds another kind.
func (v *Vector) GetFloat32(pos PosType) (float32, bool) {
	if v.kind != Float32 {
		panic("stretch.Vector.GetFloat32: vector kind is " + v.kind.String())
	}
	idx := v.locate(pos)
	if idx < 0 {
		return 0, false
	}
	return v.stretches[idx].Float32s()[pos-v.ivs[idx].Start], true
}

// Slice returns a new Vector holding copies of all data within [start, end).
// The result never shares buffer storage with v.  A query overlapping no runs
// yields an empty vector.
func (v *Vector) Slice(start, end PosType) (*Vector, error) {
	if start >= end {
		return nil, errors.Wrapf(ErrInvalidRange, "[%d, %d)", start, end)
	}
	out := NewVector(v.kind)
	query := Interval{Start: start, End: end}
	for i, iv := range v.ivs {
		if iv.End <= start {
			continue
		}
		if iv.Start >= end {
			break
		}
		clip := iv.Intersect(query)
		out.ivs = append(out.ivs, clip)
		out.stretches = append(out.stretches,
			v.stretches[i].Slice(int(clip.Start-iv.Start), int(clip.End-iv.Start)))
	}
	return out, nil
}

// SliceFrom is Slice with the end coordinate defaulted to the last run's end.
// It returns ErrNoRuns when the vector is empty, since no end can be
// inferred.
func (v *Vector) SliceFrom(start PosType) (*Vector, error) {
	if len(v.ivs) == 0 {
		return nil, errors.WithStack(ErrNoRuns)
	}
	return v.Slice(start, v.ivs[len(v.ivs)-1].End)
}

// SliceTo is Slice with the start coordinate defaulted to 0.
func (v *Vector) SliceTo(end PosType) (*Vector, error) {
	return v.Slice(0, end)
}

// SliceSpan is Slice over a coordinate-pair convenience type.
func (v *Vector) SliceSpan(s Span) (*Vector, error) {
	iv := spanInterval(s)
	return v.Slice(iv.Start, iv.End)
}

// checkValue validates val's dynamic type against kind.  Point writes call
// this before materializing a run, so a type error never leaves a
// zero-valued run behind.
func checkValue(kind Kind, val interface{}) error {
	var ok bool
	switch kind {
	case Float32:
		_, ok = val.(float32)
	case Int32:
		_, ok = val.(int32)
	case Int64:
		_, ok = val.(int64)
	case Opaque:
		ok = true
	}
	if !ok {
		return errors.Wrapf(ErrInvalidArgument, "value %T does not match element kind %v", val, kind)
	}
	return nil
}

// Set writes val at pos.  If pos is undefined, a new single-element run is
// materialized at the correct sorted position first; otherwise the element is
// mutated in place.
func (v *Vector) Set(pos PosType, val interface{}) error {
	if err := checkValue(v.kind, val); err != nil {
		return err
	}
	idx := v.locate(pos)
	if idx < 0 {
		idx = v.addRun(pos, pos+1)
	}
	return v.stretches[idx].SetAt(int(pos-v.ivs[idx].Start), val)
}

// addRun inserts a zero-initialized run [start, end) before the first run
// whose start exceeds start (appending if there is none), preserving I1/I2,
// and returns its index.  The caller guarantees [start, end) overlaps no
// existing run.
func (v *Vector) addRun(start, end PosType) int {
	i := sort.Search(len(v.ivs), func(i int) bool { return v.ivs[i].Start > start })
	v.ivs = append(v.ivs, Interval{})
	copy(v.ivs[i+1:], v.ivs[i:])
	v.ivs[i] = Interval{Start: start, End: end}
	v.stretches = append(v.stretches, Buffer{})
	copy(v.stretches[i+1:], v.stretches[i:])
	v.stretches[i] = NewBuffer(v.kind, int(end-start))
	return i
}

// overlapCase tags the disposition of a range write's two endpoints relative
// to existing runs.  Computing it once per SetRange call from two locate
// results keeps each case independently testable.
type overlapCase int

const (
	// overlapNone: neither endpoint is inside a run.  Interior runs, if
	// any, are wholly covered by the write.
	overlapNone overlapCase = iota
	// overlapStart: the write starts inside a run and ends outside all.
	overlapStart
	// overlapEnd: the write starts outside all runs and ends inside one.
	overlapEnd
	// overlapWithin: both endpoints fall in the same run.
	overlapWithin
	// overlapBridge: the endpoints fall in two different runs.
	overlapBridge
)

func classifyOverlap(idxStart, idxEnd int) overlapCase {
	switch {
	case idxStart < 0 && idxEnd < 0:
		return overlapNone
	case idxStart >= 0 && idxEnd < 0:
		return overlapStart
	case idxStart < 0:
		return overlapEnd
	case idxStart == idxEnd:
		return overlapWithin
	}
	return overlapBridge
}

// SetRange writes values over [start, end), updating the run list so that
// I1-I3 still hold.  len(values) must equal end - start and values must have
// the vector's kind.  All validation happens before any run or buffer is
// touched; on error the vector is unchanged.
//
// values is copied; the caller keeps ownership of its buffer.
func (v *Vector) SetRange(start, end PosType, values Buffer) error {
	if start >= end {
		return errors.Wrapf(ErrInvalidRange, "[%d, %d)", start, end)
	}
	if values.Kind() != v.kind {
		return errors.Wrapf(ErrInvalidArgument, "values kind %v does not match vector kind %v", values.Kind(), v.kind)
	}
	if PosType(values.Len()) != end-start {
		return errors.Wrapf(ErrInvalidArgument, "%d values for range [%d, %d) of length %d", values.Len(), start, end, end-start)
	}

	if len(v.ivs) == 0 {
		v.ivs = append(v.ivs, Interval{Start: start, End: end})
		v.stretches = append(v.stretches, values.Clone())
		return nil
	}

	idxStart := v.locate(start)
	idxEnd := v.locate(end - 1)

	var newIv Interval
	var newBuf Buffer
	switch classifyOverlap(idxStart, idxEnd) {
	case overlapWithin:
		// In-place overwrite of a sub-range of one run; no structural
		// change.
		v.stretches[idxStart].CopyFrom(int(start-v.ivs[idxStart].Start), values)
		return nil

	case overlapNone:
		newIv = Interval{Start: start, End: end}
		// Both endpoints outside implies every overlapped run is wholly
		// interior to the write.  A partial overlap here means start/end
		// are inconsistent with locate; fail before touching anything.
		for _, iv := range v.ivs {
			if iv.End <= start {
				continue
			}
			if iv.Start >= end {
				break
			}
			if iv.Start < start || iv.End > end {
				return errors.Wrapf(ErrInvalidArgument, "run %v partially overlaps write [%d, %d) with both endpoints undefined", iv, start, end)
			}
		}
		newBuf = values.Clone()

	case overlapStart:
		r1 := v.ivs[idxStart]
		newIv = Interval{Start: r1.Start, End: end}
		l1 := int(start - r1.Start)
		newBuf = NewBuffer(v.kind, int(newIv.Len()))
		newBuf.copyFromRange(0, v.stretches[idxStart], 0, l1)
		newBuf.CopyFrom(l1, values)

	case overlapEnd:
		r2 := v.ivs[idxEnd]
		newIv = Interval{Start: start, End: r2.End}
		newBuf = NewBuffer(v.kind, int(newIv.Len()))
		newBuf.CopyFrom(0, values)
		// Suffix length degenerates to zero when end == r2.End.
		newBuf.copyFromRange(values.Len(), v.stretches[idxEnd], int(end-r2.Start), int(r2.Len()))

	case overlapBridge:
		r1 := v.ivs[idxStart]
		r2 := v.ivs[idxEnd]
		newIv = Interval{Start: r1.Start, End: r2.End}
		l1 := int(start - r1.Start)
		newBuf = NewBuffer(v.kind, int(newIv.Len()))
		newBuf.copyFromRange(0, v.stretches[idxStart], 0, l1)
		newBuf.CopyFrom(l1, values)
		newBuf.copyFromRange(l1+values.Len(), v.stretches[idxEnd], int(end-r2.Start), int(r2.Len()))
	}

	// Replace every run overlapping newIv with the single new pair.  Runs
	// ending at or before newIv.Start and runs starting at or after
	// newIv.End are kept unchanged; by construction of newIv everything in
	// between is subsumed.
	lo := sort.Search(len(v.ivs), func(i int) bool { return v.ivs[i].End > newIv.Start })
	hi := sort.Search(len(v.ivs), func(i int) bool { return v.ivs[i].Start >= newIv.End })
	v.splice(lo, hi, newIv, newBuf)
	return nil
}

// SetSpan is SetRange over a coordinate-pair convenience type.
func (v *Vector) SetSpan(s Span, values Buffer) error {
	iv := spanInterval(s)
	return v.SetRange(iv.Start, iv.End, values)
}

// splice replaces runs [lo, hi) with the single pair (iv, buf).
func (v *Vector) splice(lo, hi int, iv Interval, buf Buffer) {
	ivs := make([]Interval, 0, len(v.ivs)-(hi-lo)+1)
	stretches := make([]Buffer, 0, cap(ivs))
	ivs = append(ivs, v.ivs[:lo]...)
	stretches = append(stretches, v.stretches[:lo]...)
	ivs = append(ivs, iv)
	stretches = append(stretches, buf)
	ivs = append(ivs, v.ivs[hi:]...)
	stretches = append(stretches, v.stretches[hi:]...)
	v.ivs = ivs
	v.stretches = stretches
}

// Check verifies invariants I1-I3, returning a descriptive error on the
// first violation.  It is intended for tests and debugging; operations
// maintain the invariants without calling it.
func (v *Vector) Check() error {
	if len(v.ivs) != len(v.stretches) {
		return errors.Errorf("stretch: %d intervals vs %d stretches", len(v.ivs), len(v.stretches))
	}
	for i, iv := range v.ivs {
		if iv.Start >= iv.End {
			return errors.Errorf("stretch: run %d has empty interval %v", i, iv)
		}
		if got := PosType(v.stretches[i].Len()); got != iv.Len() {
			return errors.Errorf("stretch: run %d interval %v has buffer length %d", i, iv, got)
		}
		if v.stretches[i].Kind() != v.kind {
			return errors.Errorf("stretch: run %d has kind %v, vector kind %v", i, v.stretches[i].Kind(), v.kind)
		}
		if i > 0 && v.ivs[i-1].End > iv.Start {
			return errors.Errorf("stretch: runs %d and %d overlap or are unsorted: %v, %v", i-1, i, v.ivs[i-1], iv)
		}
	}
	return nil
}
