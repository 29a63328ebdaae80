package stretch

import "github.com/pkg/errors"

// Sentinel errors returned (wrapped, with context) by Vector operations.
// Use errors.Cause to test for them.
var (
	// ErrInvalidArgument indicates a malformed argument: a values buffer
	// whose length or kind doesn't match the target range.
	ErrInvalidArgument = errors.New("stretch: invalid argument")

	// ErrInvalidRange indicates start >= end.
	ErrInvalidRange = errors.New("stretch: invalid range")

	// ErrNoRuns is returned by open-ended range reads on an empty vector,
	// where the end coordinate cannot be inferred.
	ErrNoRuns = errors.New("stretch: no runs, cannot infer range end")

	// ErrUnsupportedKind indicates a dense buffer whose element
	// representation has no matching Kind.
	ErrUnsupportedKind = errors.New("stretch: unsupported element kind")
)
