package stretch

import (
	"math"

	"github.com/pkg/errors"
)

// Buffer is a dense, kind-erased payload: a fixed-length sequence of elements
// of a single Kind.  Exactly one of the backing slices is non-nil (or all are
// nil for a zero-length buffer).  Keeping the four representations behind one
// struct keeps all of the clip/copy/concatenate arithmetic in this file, with
// the typed slices only touched by the accessors below.
type Buffer struct {
	kind Kind
	f32  []float32
	i32  []int32
	i64  []int64
	obj  []interface{}
}

// NewBuffer returns a zero-initialized Buffer of n elements of the given
// kind.  It panics if the kind is invalid or n is negative.
func NewBuffer(kind Kind, n int) Buffer {
	if !kind.Valid() {
		panic("stretch.NewBuffer: invalid kind " + kind.String())
	}
	if n < 0 {
		panic("stretch.NewBuffer: negative length")
	}
	b := Buffer{kind: kind}
	switch kind {
	case Float32:
		b.f32 = make([]float32, n)
	case Int32:
		b.i32 = make([]int32, n)
	case Int64:
		b.i64 = make([]int64, n)
	case Opaque:
		b.obj = make([]interface{}, n)
	}
	return b
}

// BufferOfFloat32s wraps vals in a Float32 Buffer.  The slice is used
// directly, not copied; the caller gives up ownership.
func BufferOfFloat32s(vals []float32) Buffer {
	return Buffer{kind: Float32, f32: vals}
}

// BufferOfInt32s wraps vals in an Int32 Buffer without copying.
func BufferOfInt32s(vals []int32) Buffer {
	return Buffer{kind: Int32, i32: vals}
}

// BufferOfInt64s wraps vals in an Int64 Buffer without copying.
func BufferOfInt64s(vals []int64) Buffer {
	return Buffer{kind: Int64, i64: vals}
}

// BufferOfOpaques wraps vals in an Opaque Buffer without copying.
func BufferOfOpaques(vals []interface{}) Buffer {
	return Buffer{kind: Opaque, obj: vals}
}

// Kind returns the element kind.
func (b Buffer) Kind() Kind { return b.kind }

// Len returns the number of elements.
func (b Buffer) Len() int {
	switch b.kind {
	case Float32:
		return len(b.f32)
	case Int32:
		return len(b.i32)
	case Int64:
		return len(b.i64)
	case Opaque:
		return len(b.obj)
	}
	return 0
}

// Clone returns a copy of b with its own backing storage.
func (b Buffer) Clone() Buffer {
	return b.Slice(0, b.Len())
}

// Slice returns a copy of elements [i, j).  Unlike Go slicing of the backing
// array, the result never aliases b's storage; mutation independence of range
// reads depends on this.
func (b Buffer) Slice(i, j int) Buffer {
	out := NewBuffer(b.kind, j-i)
	switch b.kind {
	case Float32:
		copy(out.f32, b.f32[i:j])
	case Int32:
		copy(out.i32, b.i32[i:j])
	case Int64:
		copy(out.i64, b.i64[i:j])
	case Opaque:
		copy(out.obj, b.obj[i:j])
	}
	return out
}

// CopyFrom copies all of src into b starting at element offset off.  The two
// buffers must have the same kind; this is an internal-consistency condition
// (public entry points validate kinds up front), so a mismatch panics.
func (b Buffer) CopyFrom(off int, src Buffer) {
	if b.kind != src.kind {
		panic("stretch.Buffer.CopyFrom: kind mismatch " + b.kind.String() + " vs " + src.kind.String())
	}
	switch b.kind {
	case Float32:
		copy(b.f32[off:], src.f32)
	case Int32:
		copy(b.i32[off:], src.i32)
	case Int64:
		copy(b.i64[off:], src.i64)
	case Opaque:
		copy(b.obj[off:], src.obj)
	}
}

// copyFromRange copies src's elements [lo, hi) into b starting at element
// offset off.  Kinds must match (internal-consistency condition, as in
// CopyFrom).  lo == hi copies nothing; this is how zero-length prefix/suffix
// remainders degenerate instead of producing a negative slice bound.
func (b Buffer) copyFromRange(off int, src Buffer, lo, hi int) {
	if b.kind != src.kind {
		panic("stretch.Buffer.copyFromRange: kind mismatch " + b.kind.String() + " vs " + src.kind.String())
	}
	switch b.kind {
	case Float32:
		copy(b.f32[off:], src.f32[lo:hi])
	case Int32:
		copy(b.i32[off:], src.i32[lo:hi])
	case Int64:
		copy(b.i64[off:], src.i64[lo:hi])
	case Opaque:
		copy(b.obj[off:], src.obj[lo:hi])
	}
}

// At returns element i as an interface{} holding float32, int32, int64, or
// the stored reference, depending on kind.
func (b Buffer) At(i int) interface{} {
	switch b.kind {
	case Float32:
		return b.f32[i]
	case Int32:
		return b.i32[i]
	case Int64:
		return b.i64[i]
	case Opaque:
		return b.obj[i]
	}
	panic("stretch.Buffer.At: invalid kind")
}

// SetAt stores v at element i.  v's dynamic type must match the buffer's
// kind exactly (float32 for Float32, etc.); Opaque accepts anything.
func (b Buffer) SetAt(i int, v interface{}) error {
	switch b.kind {
	case Float32:
		f, ok := v.(float32)
		if !ok {
			return errors.Wrapf(ErrInvalidArgument, "value %T does not match element kind %v", v, b.kind)
		}
		b.f32[i] = f
	case Int32:
		n, ok := v.(int32)
		if !ok {
			return errors.Wrapf(ErrInvalidArgument, "value %T does not match element kind %v", v, b.kind)
		}
		b.i32[i] = n
	case Int64:
		n, ok := v.(int64)
		if !ok {
			return errors.Wrapf(ErrInvalidArgument, "value %T does not match element kind %v", v, b.kind)
		}
		b.i64[i] = n
	case Opaque:
		b.obj[i] = v
	}
	return nil
}

// Float32s returns the backing slice of a Float32 buffer.  The caller must
// not hold the slice across a mutation of the owning Vector.
func (b Buffer) Float32s() []float32 { return b.f32 }

// Int32s returns the backing slice of an Int32 buffer.
func (b Buffer) Int32s() []int32 { return b.i32 }

// Int64s returns the backing slice of an Int64 buffer.
func (b Buffer) Int64s() []int64 { return b.i64 }

// Opaques returns the backing slice of an Opaque buffer.
func (b Buffer) Opaques() []interface{} { return b.obj }

// fillMissing writes the sentinel value to every element.  Only Float32 has
// an in-band sentinel (NaN); for the other kinds the zero value is left in
// place and missingness travels in a Dense view's Defined mask.
func (b Buffer) fillMissing() {
	if b.kind != Float32 {
		return
	}
	nan := float32(math.NaN())
	for i := range b.f32 {
		b.f32[i] = nan
	}
}

// isSentinel returns whether element i holds the Float32 NaN sentinel.
// Always false for other kinds.
func (b Buffer) isSentinel(i int) bool {
	if b.kind != Float32 {
		return false
	}
	f := b.f32[i]
	return f != f
}
