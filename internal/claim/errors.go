package claim

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInput marks a required file that does not exist.
	ErrMissingInput = errors.New("missing input")
	// ErrMalformedInput marks a file that exists but cannot be decoded.
	ErrMalformedInput = errors.New("malformed input")
)

// Warnings collects recoverable problems (skipped rows, unmatched rooms,
// defaulted documents) so callers can count and report them.
type Warnings []string

// Addf records a formatted warning.
func (w *Warnings) Addf(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

// Extend appends other warnings.
func (w *Warnings) Extend(other Warnings) {
	*w = append(*w, other...)
}
