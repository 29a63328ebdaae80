package stretch

// Kind identifies the element type of a Vector's payload.  It is chosen once
// at construction and fixed for the container's lifetime.
type Kind int

const (
	// Float32 elements are float32s, with NaN available as a missing-value
	// sentinel in dense views.
	Float32 Kind = iota
	// Int32 elements are int32s.
	Int32
	// Int64 elements are int64s.
	Int64
	// Opaque elements are arbitrary reference values (interface{}).
	Opaque
	nKind
)

// Valid returns whether k is one of the supported element kinds.
func (k Kind) Valid() bool {
	return k >= Float32 && k < nKind
}

func (k Kind) String() string {
	switch k {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Opaque:
		return "opaque"
	}
	return "invalid"
}

// ElemBytes returns the fixed encoded width of one element, or 0 for Opaque
// (reference payloads have no portable encoding).
func (k Kind) ElemBytes() int {
	switch k {
	case Float32, Int32:
		return 4
	case Int64:
		return 8
	}
	return 0
}
