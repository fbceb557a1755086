package loader

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedInput = errors.New("malformed input")
	// ErrAmbiguousOutcome marks a non-draw row without a readable player1_win.
	ErrAmbiguousOutcome = fmt.Errorf("%w: ambiguous outcome", ErrMalformedInput)
)
