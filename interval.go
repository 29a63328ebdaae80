package stretch

import (
	"fmt"
	"math"
)

// PosType is the type used to represent coordinates.  BAM-style int32 runs
// out at 2Gb, which is no longer comfortable for all reference assemblies, so
// this package uses int64 throughout.
type PosType int64

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt64

// Interval is a half-open [Start, End) coordinate range.  It is an immutable
// value type; all functions in this package that return an Interval return a
// new value.
type Interval struct {
	Start PosType
	End   PosType
}

// Len returns End - Start.  Intervals stored in a Vector always have
// positive length.
func (iv Interval) Len() PosType {
	return iv.End - iv.Start
}

// Contains returns whether pos is within [Start, End).
func (iv Interval) Contains(pos PosType) bool {
	return pos >= iv.Start && pos < iv.End
}

// Overlaps returns whether the intersection of iv and other is nonempty.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Intersect returns the intersection of iv and other.  The result has
// nonpositive length when the two intervals don't overlap.
func (iv Interval) Intersect(other Interval) Interval {
	result := Interval{Start: iv.Start, End: iv.End}
	if other.Start > result.Start {
		result.Start = other.Start
	}
	if other.End < result.End {
		result.End = other.End
	}
	return result
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d)", iv.Start, iv.End)
}

// SpanStart implements Span.
func (iv Interval) SpanStart() PosType { return iv.Start }

// SpanEnd implements Span.
func (iv Interval) SpanEnd() PosType { return iv.End }

// Span is the contract for coordinate-pair convenience types (e.g. a genomic
// feature's location): anything exposing a half-open [start, end) pair is
// accepted wherever a Span is accepted.  No validation is performed beyond
// reading the two values.
type Span interface {
	SpanStart() PosType
	SpanEnd() PosType
}

// spanInterval snapshots a Span into an Interval value.
func spanInterval(s Span) Interval {
	return Interval{Start: s.SpanStart(), End: s.SpanEnd()}
}
