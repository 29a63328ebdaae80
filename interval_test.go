package stretch_test

import (
	"testing"

	"github.com/grailbio/stretch"
	"github.com/grailbio/testutil/expect"
)

func TestInterval(t *testing.T) {
	iv := stretch.Interval{Start: 5, End: 10}
	expect.EQ(t, stretch.PosType(5), iv.Len())
	expect.EQ(t, true, iv.Contains(5))
	expect.EQ(t, true, iv.Contains(9))
	expect.EQ(t, false, iv.Contains(10))
	expect.EQ(t, false, iv.Contains(4))

	expect.EQ(t, true, iv.Overlaps(stretch.Interval{Start: 9, End: 12}))
	expect.EQ(t, false, iv.Overlaps(stretch.Interval{Start: 10, End: 12}))

	expect.EQ(t, stretch.Interval{Start: 7, End: 10},
		iv.Intersect(stretch.Interval{Start: 7, End: 30}))
	expect.EQ(t, "[5, 10)", iv.String())
}
