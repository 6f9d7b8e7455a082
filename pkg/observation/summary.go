package observation

import (
	"gopkg.in/yaml.v2"
)

// Summary is the printable overview of an observation used by dump-context
type Summary struct {
	ObsID             uint32            `yaml:"obs_id"`
	CorrVersion       CorrelatorVersion `yaml:"corr_version"`
	StartUnixTimeMs   uint64            `yaml:"start_unix_time_milliseconds"`
	EndUnixTimeMs     uint64            `yaml:"end_unix_time_milliseconds"`
	DurationMs        uint64            `yaml:"duration_milliseconds"`
	NumTimesteps      int               `yaml:"num_timesteps"`
	Timesteps         []uint64          `yaml:"timesteps"`
	NumCoarseChannels int               `yaml:"num_coarse_channels"`
	CoarseChannels    []CoarseChannel   `yaml:"coarse_channels"`
	BandwidthHz       uint64            `yaml:"bandwidth_hz"`
	NumAntennas       int               `yaml:"num_antennas"`
	Antennas          []Antenna         `yaml:"antennas"`
	NumBaselines      int               `yaml:"num_baselines"`
	NumVisibilityPols int               `yaml:"num_visibility_pols"`
	NumFineChannels   int               `yaml:"num_fine_channels_per_coarse"`
	NumSliceFloats    int               `yaml:"num_timestep_coarse_channel_floats"`
	NumSliceBytes     int               `yaml:"num_timestep_coarse_channel_bytes"`
	NumSliceFiles     int               `yaml:"num_slice_files"`
}

// Summarize builds a Summary from metadata and the number of slice files found on disk.
// The end time is the start of the last timestep plus one integration.
func Summarize(m *Metadata, numSliceFiles int) Summary {
	s := Summary{
		ObsID:             m.ObsID,
		CorrVersion:       m.CorrVersion,
		NumTimesteps:      len(m.Timesteps),
		Timesteps:         make([]uint64, 0, len(m.Timesteps)),
		NumCoarseChannels: len(m.CoarseChannels),
		CoarseChannels:    m.CoarseChannels,
		BandwidthHz:       uint64(len(m.CoarseChannels)) * uint64(m.CoarseChannelWidthHz),
		NumAntennas:       len(m.Antennas),
		Antennas:          m.Antennas,
		NumBaselines:      m.NumBaselines(),
		NumVisibilityPols: m.NumVisibilityPols,
		NumFineChannels:   m.NumFineChannelsPerCoarse,
		NumSliceFloats:    m.FloatsPerSlice(),
		NumSliceBytes:     m.FloatsPerSlice() * 4,
		NumSliceFiles:     numSliceFiles,
	}
	for _, ts := range m.Timesteps {
		s.Timesteps = append(s.Timesteps, ts.UnixTimeMs)
	}
	if len(m.Timesteps) > 0 {
		s.StartUnixTimeMs = m.Timesteps[0].UnixTimeMs
		s.EndUnixTimeMs = m.Timesteps[len(m.Timesteps)-1].UnixTimeMs + m.IntegrationTimeMs
		s.DurationMs = s.EndUnixTimeMs - s.StartUnixTimeMs
	}
	return s
}

// YAML renders the summary as a YAML document
func (s Summary) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
