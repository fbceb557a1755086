package rating

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedInput = errors.New("malformed input")
	ErrUnknownPlayer  = fmt.Errorf("%w: unknown player", ErrMalformedInput)
	ErrNoData         = errors.New("no rating data")
)
