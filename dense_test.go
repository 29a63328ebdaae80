package stretch_test

import (
	"testing"

	"github.com/grailbio/stretch"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/pkg/errors"
)

func TestDense(t *testing.T) {
	// Empty vector: zero-length buffer.
	d := stretch.NewVector(stretch.Float32).Dense()
	expect.EQ(t, 0, d.Buffer.Len())
	expect.EQ(t, stretch.PosType(0), d.Offset)

	// Single run: direct copy, offset anchored to the run start.
	v := stretch.NewVector(stretch.Float32)
	setF32(t, v, 100, []float32{1, 2, 3})
	d = v.Dense()
	expect.EQ(t, stretch.PosType(100), d.Offset)
	eqF32s(t, []float32{1, 2, 3}, d.Buffer.Float32s())

	// Multiple runs: NaN-filled gaps in between.
	setF32(t, v, 106, []float32{4, 5})
	d = v.Dense()
	expect.EQ(t, stretch.PosType(100), d.Offset)
	eqF32s(t, []float32{1, 2, 3, gap, gap, gap, 4, 5}, d.Buffer.Float32s())
}

func TestDenseMask(t *testing.T) {
	// Integer kinds can't spare a sentinel value, so gaps travel in the
	// Defined mask and hold the zero value in the buffer.
	v := stretch.NewVector(stretch.Int32)
	assert.NoError(t, v.SetRange(0, 2, stretch.BufferOfInt32s([]int32{1, 2})))
	assert.NoError(t, v.SetRange(4, 6, stretch.BufferOfInt32s([]int32{3, 4})))
	d := v.Dense()
	expect.EQ(t, []int32{1, 2, 0, 0, 3, 4}, d.Buffer.Int32s())
	expect.EQ(t, []bool{true, true, false, false, true, true}, d.Defined)

	rt, err := stretch.FromDense(d)
	assert.NoError(t, err)
	assert.NoError(t, rt.Check())
	expect.EQ(t, v.Runs(), rt.Runs())
	expect.EQ(t, rt.Dense().Buffer.Int32s(), d.Buffer.Int32s())
}

func TestFromDense(t *testing.T) {
	tests := []struct {
		name     string
		vals     []float32
		offset   stretch.PosType
		wantRuns []stretch.Interval
	}{
		{
			name: "empty",
		},
		{
			name: "all-gap",
			vals: []float32{gap, gap, gap},
		},
		{
			name:     "all-defined",
			vals:     []float32{1, 2, 3},
			offset:   7,
			wantRuns: []stretch.Interval{{Start: 7, End: 10}},
		},
		{
			name:     "leading-gap",
			vals:     []float32{gap, gap, 1, 2},
			offset:   10,
			wantRuns: []stretch.Interval{{Start: 12, End: 14}},
		},
		{
			name:     "middle-gap",
			vals:     []float32{1, gap, 2, 3},
			wantRuns: []stretch.Interval{{Start: 0, End: 1}, {Start: 2, End: 4}},
		},
		{
			name: "two-gaps",
			vals: []float32{1, 2, 3, gap, gap, 4, 5, gap, 6, 7},
			wantRuns: []stretch.Interval{
				{Start: 0, End: 3}, {Start: 5, End: 7}, {Start: 8, End: 10},
			},
		},
		{
			// Historical policy: a trailing gap cuts the window at the
			// final transition, so the last defined element before it is
			// dropped as well.
			name:     "trailing-gap-cut",
			vals:     []float32{1, 2, gap, gap},
			wantRuns: []stretch.Interval{{Start: 0, End: 1}},
		},
		{
			name: "lone-defined-between-gaps",
			vals: []float32{gap, 1, gap},
		},
		{
			// The cut lands right after a gap here; the anchored final
			// run must vanish rather than come out zero-length.
			name:     "trailing-cut-lands-on-gap",
			vals:     []float32{1, gap, 2, gap},
			wantRuns: []stretch.Interval{{Start: 0, End: 1}},
		},
		{
			name:     "leading-gap-trailing-cut-on-gap",
			vals:     []float32{gap, 1, gap, 2, gap},
			offset:   10,
			wantRuns: []stretch.Interval{{Start: 11, End: 12}},
		},
		{
			name:     "interior-runs-survive-trailing-cut",
			vals:     []float32{1, gap, 2, gap, 3, gap},
			wantRuns: []stretch.Interval{{Start: 0, End: 1}, {Start: 2, End: 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := stretch.FromDense(stretch.Dense{
				Kind:   stretch.Float32,
				Offset: tt.offset,
				Buffer: stretch.BufferOfFloat32s(tt.vals),
			})
			assert.NoError(t, err)
			assert.NoError(t, v.Check())
			var wantRuns []stretch.Interval
			if tt.wantRuns != nil {
				wantRuns = tt.wantRuns
			} else {
				wantRuns = []stretch.Interval{}
			}
			expect.EQ(t, wantRuns, v.Runs())
		})
	}
}

func TestFromDenseStrict(t *testing.T) {
	// Strict mode keeps the dangling trailing run that FromDense cuts.
	v, err := stretch.FromDenseStrict(stretch.Dense{
		Kind:   stretch.Float32,
		Buffer: stretch.BufferOfFloat32s([]float32{1, 2, gap, gap, 3}),
	})
	assert.NoError(t, err)
	expect.EQ(t, []stretch.Interval{{Start: 0, End: 2}, {Start: 4, End: 5}}, v.Runs())

	v, err = stretch.FromDenseStrict(stretch.Dense{
		Kind:   stretch.Float32,
		Buffer: stretch.BufferOfFloat32s([]float32{gap, 1, gap}),
	})
	assert.NoError(t, err)
	expect.EQ(t, []stretch.Interval{{Start: 1, End: 2}}, v.Runs())
}

func TestFromDenseFloat32s(t *testing.T) {
	v := stretch.FromDenseFloat32s([]float32{gap, 1, 2, gap, 3, 4}, 50)
	assert.NoError(t, v.Check())
	expect.EQ(t, []stretch.Interval{{Start: 51, End: 53}, {Start: 54, End: 56}}, v.Runs())
	got, offset := denseF32(v)
	expect.EQ(t, stretch.PosType(51), offset)
	eqF32s(t, []float32{1, 2, gap, 3, 4}, got)
}

// TestDenseRoundTrip checks fromDense(toDense(v)) == v whenever the last
// dense element is defined (the trailing-cut policy only affects buffers
// ending in a gap, and toDense output always ends at a run end).
func TestDenseRoundTrip(t *testing.T) {
	v := stretch.NewVector(stretch.Float32)
	setF32(t, v, 3, []float32{1, 2})
	setF32(t, v, 8, []float32{3})
	setF32(t, v, 12, []float32{4, 5, 6})

	rt, err := stretch.FromDense(v.Dense())
	assert.NoError(t, err)
	expect.EQ(t, v.Runs(), rt.Runs())
	want, wantOffset := denseF32(v)
	got, gotOffset := denseF32(rt)
	expect.EQ(t, wantOffset, gotOffset)
	eqF32s(t, want, got)
}

func TestFromDenseErrors(t *testing.T) {
	// Dense view kind disagreeing with the buffer's representation.
	_, err := stretch.FromDense(stretch.Dense{
		Kind:   stretch.Int32,
		Buffer: stretch.BufferOfFloat32s([]float32{1}),
	})
	expect.EQ(t, stretch.ErrUnsupportedKind, errors.Cause(err))

	_, err = stretch.FromDense(stretch.Dense{
		Kind:   stretch.Kind(99),
		Buffer: stretch.BufferOfFloat32s([]float32{1}),
	})
	expect.EQ(t, stretch.ErrUnsupportedKind, errors.Cause(err))

	// Mask length mismatch.
	_, err = stretch.FromDense(stretch.Dense{
		Kind:    stretch.Int32,
		Buffer:  stretch.BufferOfInt32s([]int32{1, 2}),
		Defined: []bool{true},
	})
	expect.EQ(t, stretch.ErrInvalidArgument, errors.Cause(err))
}
