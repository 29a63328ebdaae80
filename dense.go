package stretch

import (
	"github.com/pkg/errors"
)

// Dense is a materialized view of a Vector: one contiguous buffer spanning
// from the first run's start to the last run's end, with gap positions
// holding a missing marker.
//
// For Float32 the marker is in-band NaN and Defined is nil.  Integer and
// opaque kinds have no value that can safely act as a sentinel, so for those
// kinds Defined carries one bool per position (gap positions hold the zero
// value and Defined[i] == false).  A non-float Dense with a nil Defined mask
// means every position is defined.
type Dense struct {
	Kind    Kind
	Offset  PosType
	Buffer  Buffer
	Defined []bool
}

// missing reports whether position i of the view is a gap.
func (d Dense) missing(i int) bool {
	if d.Defined != nil {
		return !d.Defined[i]
	}
	return d.Buffer.isSentinel(i)
}

// Dense materializes v.  An empty vector yields a zero-length buffer at
// offset 0; a single-run vector yields a direct copy of that run; otherwise
// the full span is allocated, gap-filled, and each run is copied into its
// offset-relative slice.
func (v *Vector) Dense() Dense {
	d := Dense{Kind: v.kind}
	if len(v.ivs) == 0 {
		d.Buffer = NewBuffer(v.kind, 0)
		return d
	}
	base := v.ivs[0].Start
	d.Offset = base
	if len(v.ivs) == 1 {
		d.Buffer = v.stretches[0].Clone()
		if v.kind != Float32 {
			d.Defined = make([]bool, d.Buffer.Len())
			for i := range d.Defined {
				d.Defined[i] = true
			}
		}
		return d
	}
	span := int(v.ivs[len(v.ivs)-1].End - base)
	d.Buffer = NewBuffer(v.kind, span)
	d.Buffer.fillMissing()
	if v.kind != Float32 {
		d.Defined = make([]bool, span)
	}
	for i, iv := range v.ivs {
		off := int(iv.Start - base)
		d.Buffer.CopyFrom(off, v.stretches[i])
		if d.Defined != nil {
			for j := off; j < off+int(iv.Len()); j++ {
				d.Defined[j] = true
			}
		}
	}
	return d
}

// FromDense reconstructs a sparse Vector from a dense view by scanning for
// missing/defined transitions.  It preserves the historical edge-case
// policy: when the transition count after dropping a leading gap is odd, the
// trailing block is cut at the final transition, which discards the dangling
// data there.  Use FromDenseStrict to keep every defined position instead.
func FromDense(d Dense) (*Vector, error) {
	if err := checkDense(d); err != nil {
		return nil, err
	}
	v := NewVector(d.Kind)
	n := d.Buffer.Len()
	if n == 0 {
		return v, nil
	}

	// flips[k] = i means positions i and i+1 are on opposite sides of a
	// defined/missing boundary.
	var flips []int
	for i := 0; i+1 < n; i++ {
		if d.missing(i) != d.missing(i+1) {
			flips = append(flips, i)
		}
	}

	offset := d.Offset
	lo, hi := 0, n // window of d.Buffer still under consideration

	if len(flips) == 0 {
		if d.missing(0) {
			return v, nil // all gap
		}
		v.appendRun(offset, d.Buffer.Slice(0, n))
		return v, nil
	}

	// A leading gap just advances the offset.
	if d.missing(0) {
		skip := flips[0] + 1
		offset += PosType(skip)
		lo = skip
		if len(flips) == 1 {
			v.appendRun(offset, d.Buffer.Slice(lo, hi))
			return v, nil
		}
		flips = flips[1:]
		for i := range flips {
			flips[i] -= skip
		}
	}

	// The window now starts defined; flips are window-relative.  An odd
	// flip count means the window ends in a gap: cut at the last flip and
	// drop it (see the function comment).
	if len(flips)%2 == 1 {
		hi = lo + flips[len(flips)-1]
		flips = flips[:len(flips)-1]
	}
	if hi == lo {
		return v, nil
	}
	if len(flips) == 0 {
		v.appendRun(offset, d.Buffer.Slice(lo, hi))
		return v, nil
	}

	// The window starts and ends defined with an even number of flips;
	// consecutive flip pairs delimit the gaps between runs.  The first and
	// last runs are anchored to the window's own ends.
	v.appendRun(offset, d.Buffer.Slice(lo, lo+flips[0]+1))
	for j := 1; j*2 < len(flips); j++ {
		a := flips[j*2-1] + 1
		b := flips[j*2] + 1
		v.appendRun(offset+PosType(a), d.Buffer.Slice(lo+a, lo+b))
	}
	// When the cut flip was adjacent to the last kept flip, the trimmed
	// window itself ends in a gap and the anchored final run is empty;
	// flips are strictly increasing, so no earlier run can degenerate.
	if last := flips[len(flips)-1] + 1; lo+last < hi {
		v.appendRun(offset+PosType(last), d.Buffer.Slice(lo+last, hi))
	}
	return v, nil
}

// FromDenseStrict reconstructs a sparse Vector keeping every defined
// position, including a trailing run that FromDense's historical policy
// would cut short.
func FromDenseStrict(d Dense) (*Vector, error) {
	if err := checkDense(d); err != nil {
		return nil, err
	}
	v := NewVector(d.Kind)
	n := d.Buffer.Len()
	for i := 0; i < n; {
		if d.missing(i) {
			i++
			continue
		}
		j := i + 1
		for j < n && !d.missing(j) {
			j++
		}
		v.appendRun(d.Offset+PosType(i), d.Buffer.Slice(i, j))
		i = j
	}
	return v, nil
}

// FromDenseFloat32s reconstructs a Float32 vector from a dense slice using
// NaN as the gap marker, the common case for coverage-style data.
func FromDenseFloat32s(vals []float32, offset PosType) *Vector {
	v, err := FromDense(Dense{
		Kind:   Float32,
		Offset: offset,
		Buffer: BufferOfFloat32s(vals),
	})
	if err != nil {
		panic("stretch.FromDenseFloat32s: " + err.Error()) // no invalid input is constructible here
	}
	return v
}

func checkDense(d Dense) error {
	if !d.Kind.Valid() {
		return errors.Wrapf(ErrUnsupportedKind, "kind %d", int(d.Kind))
	}
	if d.Buffer.Kind() != d.Kind {
		return errors.Wrapf(ErrUnsupportedKind, "buffer holds %v, dense view declares %v", d.Buffer.Kind(), d.Kind)
	}
	if d.Defined != nil && len(d.Defined) != d.Buffer.Len() {
		return errors.Wrapf(ErrInvalidArgument, "defined mask length %d vs buffer length %d", len(d.Defined), d.Buffer.Len())
	}
	return nil
}

// appendRun appends a run at the end of the list.  The caller guarantees
// sort order and non-overlap with the existing last run.
func (v *Vector) appendRun(start PosType, buf Buffer) {
	v.ivs = append(v.ivs, Interval{Start: start, End: start + PosType(buf.Len())})
	v.stretches = append(v.stretches, buf)
}
