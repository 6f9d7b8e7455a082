package visdump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBaseline_ThreeAntennas(t *testing.T) {
	want := [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 2}, {2, 2}}
	for bl, pair := range want {
		ant1, ant2, err := DecodeBaseline(bl, 3)
		require.NoError(t, err)
		assert.Equal(t, pair, [2]int{ant1, ant2}, "baseline %d", bl)
	}
}

func TestDecodeBaseline_RoundTrip(t *testing.T) {
	for n := 1; n <= 128; n++ {
		for bl := 0; bl < NumBaselines(n); bl++ {
			ant1, ant2, err := DecodeBaseline(bl, n)
			require.NoError(t, err)
			require.LessOrEqual(t, ant1, ant2)
			require.Less(t, ant2, n)

			back, err := EncodeBaseline(ant1, ant2, n)
			require.NoError(t, err)
			require.Equal(t, bl, back, "n=%d", n)
		}
	}
}

func TestDecodeBaseline_OutOfRange(t *testing.T) {
	for _, tc := range []struct{ index, antennas int }{
		{-1, 3},
		{6, 3},
		{0, 0},
		{8256, 128},
	} {
		_, _, err := DecodeBaseline(tc.index, tc.antennas)
		assert.ErrorIs(t, err, ErrShape, "index %d antennas %d", tc.index, tc.antennas)
	}
}

func TestEncodeBaseline_Invalid(t *testing.T) {
	_, err := EncodeBaseline(2, 1, 3)
	assert.ErrorIs(t, err, ErrShape)
	_, err = EncodeBaseline(0, 3, 3)
	assert.ErrorIs(t, err, ErrShape)
}
