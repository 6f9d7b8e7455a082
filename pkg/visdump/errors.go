package visdump

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfig marks invalid dump settings. Always detected before any I/O.
	ErrConfig = errors.New("invalid configuration")
	// ErrShape marks a sample buffer that does not match the observation's dimensions
	ErrShape = errors.New("sample buffer shape mismatch")
	// ErrDestination marks a failure to create or write the output table
	ErrDestination = errors.New("destination I/O error")
)

// destinationError marks err as ErrDestination while keeping err itself in the chain,
// so both errors.Is(err, ErrDestination) and checks such as os.ErrNotExist hold
func destinationError(err error) error {
	return fmt.Errorf("%w: %w", ErrDestination, err)
}
