package visdump

import (
	"github.com/pkg/errors"
)

// NumBaselines returns the number of antenna pairs including autocorrelations
func NumBaselines(numAntennas int) int {
	return numAntennas * (numAntennas + 1) / 2
}

// DecodeBaseline maps a linear baseline index to its antenna pair (ant1 <= ant2).
//
// Baselines are enumerated row by row over the upper triangle including the
// diagonal: (0,0), (0,1) .. (0,n-1), (1,1), (1,2) .. (n-1,n-1).
func DecodeBaseline(index, numAntennas int) (int, int, error) {
	if numAntennas < 1 || index < 0 || index >= NumBaselines(numAntennas) {
		return 0, 0, errors.Wrapf(ErrShape, "baseline %d out of range for %d antennas", index, numAntennas)
	}

	remaining := index
	for ant1 := 0; ant1 < numAntennas; ant1++ {
		row := numAntennas - ant1
		if remaining < row {
			return ant1, ant1 + remaining, nil
		}
		remaining -= row
	}

	// unreachable: the range check above bounds the walk
	return 0, 0, errors.Wrapf(ErrShape, "baseline %d out of range for %d antennas", index, numAntennas)
}

// EncodeBaseline is the inverse of DecodeBaseline
func EncodeBaseline(ant1, ant2, numAntennas int) (int, error) {
	if ant1 < 0 || ant1 > ant2 || ant2 >= numAntennas {
		return 0, errors.Wrapf(ErrShape, "antenna pair (%d,%d) invalid for %d antennas", ant1, ant2, numAntennas)
	}
	// rows before ant1 hold n + (n-1) + ... + (n-ant1+1) baselines
	before := ant1*numAntennas - ant1*(ant1-1)/2
	return before + ant2 - ant1, nil
}
