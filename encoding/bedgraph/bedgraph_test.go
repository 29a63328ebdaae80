package bedgraph_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/stretch"
	"github.com/grailbio/stretch/encoding/bedgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	v := stretch.NewVector(stretch.Float32)
	require.NoError(t, v.SetRange(10, 16, stretch.BufferOfFloat32s([]float32{1, 1, 1, 2.5, 2.5, 3})))
	require.NoError(t, v.SetRange(100, 102, stretch.BufferOfFloat32s([]float32{0, 0})))

	var buf bytes.Buffer
	require.NoError(t, bedgraph.Write(&buf, v, "chr7"))
	assert.Equal(t,
		"chr7\t10\t13\t1\n"+
			"chr7\t13\t15\t2.5\n"+
			"chr7\t15\t16\t3\n"+
			"chr7\t100\t102\t0\n",
		buf.String())
}

func TestWriteNonFloatRejected(t *testing.T) {
	var buf bytes.Buffer
	err := bedgraph.Write(&buf, stretch.NewVector(stretch.Int32), "chr1")
	require.Error(t, err)
}

func TestRead(t *testing.T) {
	const input = "track type=bedGraph name=test\n" +
		"# a comment\n" +
		"chr1\t0\t3\t0.5\n" +
		"chr2\t5\t8\t9\n" + // other chromosome, skipped
		"chr1\t10\t12\t-1\n"
	v, err := bedgraph.Read(strings.NewReader(input), "chr1")
	require.NoError(t, err)
	require.NoError(t, v.Check())
	assert.Equal(t, []stretch.Interval{{Start: 0, End: 3}, {Start: 10, End: 12}}, v.Runs())
	got, ok := v.GetFloat32(1)
	assert.True(t, ok)
	assert.Equal(t, float32(0.5), got)
	got, ok = v.GetFloat32(11)
	assert.True(t, ok)
	assert.Equal(t, float32(-1), got)
	_, ok = v.GetFloat32(5)
	assert.False(t, ok)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too-few-tokens", "chr1\t0\t3\n"},
		{"bad-start", "chr1\tx\t3\t1\n"},
		{"bad-value", "chr1\t0\t3\tnope\n"},
		{"empty-interval", "chr1\t3\t3\t1\n"},
		{"negative-start", "chr1\t-2\t3\t1\n"},
		{"overlap", "chr1\t0\t5\t1\nchr1\t4\t8\t2\n"},
		{"unsorted", "chr1\t10\t12\t1\nchr1\t0\t2\t2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bedgraph.Read(strings.NewReader(tt.input), "chr1")
			require.Error(t, err)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	v := stretch.NewVector(stretch.Float32)
	require.NoError(t, v.SetRange(3, 8, stretch.BufferOfFloat32s([]float32{1, 1, 2, 2, 2})))
	require.NoError(t, v.SetRange(20, 22, stretch.BufferOfFloat32s([]float32{5, 6})))

	var buf bytes.Buffer
	require.NoError(t, bedgraph.Write(&buf, v, "chrX"))
	got, err := bedgraph.Read(&buf, "chrX")
	require.NoError(t, err)

	// Constant blocks within a run come back as separate (touching) runs,
	// but every defined position keeps its value and every gap stays a
	// gap.
	for pos := stretch.PosType(0); pos < 30; pos++ {
		want, wantOK := v.GetFloat32(pos)
		have, haveOK := got.GetFloat32(pos)
		assert.Equal(t, wantOK, haveOK, "pos %d", pos)
		if wantOK {
			assert.Equal(t, want, have, "pos %d", pos)
		}
	}
}
