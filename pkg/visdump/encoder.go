package visdump

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// RadixDisabled selects plain decimal output
const RadixDisabled = 0

// Encoding controls how sample values are rendered in the output table.
//
// Radix 0 writes signed decimal. Radix 2..36 truncates the value to an
// unsigned integer and writes it in that base; negative and fractional
// values lose information unless Absolute is set, and even then the
// fraction is dropped. Absolute replaces each value by its magnitude
// before either rendering.
type Encoding struct {
	Radix    int
	Absolute bool
}

// Validate rejects radix values outside 0 and 2..36
func (e Encoding) Validate() error {
	if e.Radix == RadixDisabled || (e.Radix >= 2 && e.Radix <= 36) {
		return nil
	}
	return errors.Wrapf(ErrConfig, "radix %d: must be 0 (disabled) or between 2 and 36", e.Radix)
}

// Encode renders one sample. The encoding must have been validated.
func (e Encoding) Encode(v float32) string {
	return string(e.AppendEncode(nil, v))
}

// AppendEncode appends the rendering of v to dst
func (e Encoding) AppendEncode(dst []byte, v float32) []byte {
	if e.Absolute {
		v = float32(math.Abs(float64(v)))
	}
	if e.Radix == RadixDisabled {
		return appendDecimal(dst, v)
	}
	return strconv.AppendUint(dst, truncateUint64(v), e.Radix)
}

// appendDecimal writes the shortest decimal that parses back to v, without exponent
func appendDecimal(dst []byte, v float32) []byte {
	switch {
	case math.IsNaN(float64(v)):
		return append(dst, "NaN"...)
	case math.IsInf(float64(v), 1):
		return append(dst, "inf"...)
	case math.IsInf(float64(v), -1):
		return append(dst, "-inf"...)
	}
	return strconv.AppendFloat(dst, float64(v), 'f', -1, 32)
}

// truncateUint64 converts toward zero, saturating at both ends. NaN becomes 0.
func truncateUint64(v float32) uint64 {
	f := float64(v)
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= 1<<64:
		return math.MaxUint64
	}
	return uint64(f)
}
