package renderer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidChannelIndex is matched by every *InvalidChannelIndexError.
	ErrInvalidChannelIndex = errors.New("invalid channel index")
	// ErrDisposed is returned by mutators called after Release.
	ErrDisposed = errors.New("shader resources already released")
)

// InvalidChannelIndexError rejects a swap outside slots 1-4.
type InvalidChannelIndexError struct {
	Index int
}

func (e *InvalidChannelIndexError) Error() string {
	return fmt.Sprintf("invalid channel index %d (must be 1-4)", e.Index)
}

func (e *InvalidChannelIndexError) Is(target error) bool {
	return target == ErrInvalidChannelIndex
}
