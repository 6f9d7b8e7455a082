package observation

import (
	"fmt"

	"github.com/pkg/errors"
)

// CorrelatorVersion identifies the correlator generation that produced the data
type CorrelatorVersion string

const (
	CorrelatorOldLegacy CorrelatorVersion = "OldLegacy"
	CorrelatorLegacy    CorrelatorVersion = "Legacy"
	CorrelatorV2        CorrelatorVersion = "V2"
)

// CoarseChannel is one receiver sub-band of the observation
type CoarseChannel struct {
	ReceiverChannelNumber int    `yaml:"receiver_channel_number"`
	ChannelCentreHz       uint32 `yaml:"channel_centre_hz"`
}

// CentreMHz returns the channel centre frequency in MHz
func (c CoarseChannel) CentreMHz() float32 {
	return float32(c.ChannelCentreHz) / 1.0e6
}

// TimeStep is one correlator integration
type TimeStep struct {
	UnixTimeMs uint64 `yaml:"unix_time_ms"`
}

// Antenna is a single tile of the array
type Antenna struct {
	TileName string `yaml:"tile_name"`
}

// Metadata describes everything about an observation except the samples themselves.
// It is the content of observation.yaml in an observation directory.
type Metadata struct {
	ObsID                    uint32            `yaml:"obs_id"`
	CorrVersion              CorrelatorVersion `yaml:"corr_version"`
	NumFineChannelsPerCoarse int               `yaml:"num_fine_channels_per_coarse"`
	NumVisibilityPols        int               `yaml:"num_visibility_pols"`
	CoarseChannelWidthHz     uint32            `yaml:"coarse_channel_width_hz"`
	IntegrationTimeMs        uint64            `yaml:"integration_time_ms"`
	Antennas                 []Antenna         `yaml:"antennas"`
	CoarseChannels           []CoarseChannel   `yaml:"coarse_channels"`
	Timesteps                []TimeStep        `yaml:"timesteps"`
}

// Validate checks that the metadata describes a dumpable observation
func (m *Metadata) Validate() error {
	if len(m.Antennas) == 0 {
		return errors.New("no antennas")
	}
	if m.NumFineChannelsPerCoarse <= 0 {
		return errors.Errorf("num_fine_channels_per_coarse must be positive, got %d", m.NumFineChannelsPerCoarse)
	}
	if m.NumVisibilityPols <= 0 {
		return errors.Errorf("num_visibility_pols must be positive, got %d", m.NumVisibilityPols)
	}
	for i, a := range m.Antennas {
		if a.TileName == "" {
			return errors.Errorf("antenna %d has no tile_name", i)
		}
	}
	switch m.CorrVersion {
	case "", CorrelatorOldLegacy, CorrelatorLegacy, CorrelatorV2:
	default:
		return errors.Errorf("unknown corr_version %q", m.CorrVersion)
	}
	return nil
}

// NumBaselines returns the number of baselines including autocorrelations
func (m *Metadata) NumBaselines() int {
	n := len(m.Antennas)
	return n * (n + 1) / 2
}

// FloatsPerSlice returns the number of float32 values in one (timestep, coarse channel) slice
func (m *Metadata) FloatsPerSlice() int {
	return m.NumBaselines() * m.NumFineChannelsPerCoarse * m.NumVisibilityPols * 2
}

// SliceKey addresses one (timestep, coarse channel) slice
type SliceKey struct {
	Timestep   int
	CoarseChan int
}

func (k SliceKey) String() string {
	return fmt.Sprintf("timestep %d, coarse chan %d", k.Timestep, k.CoarseChan)
}
