package observation

import (
	"github.com/pkg/errors"
)

var (
	// ErrMetadata is returned when observation metadata is missing or invalid
	ErrMetadata = errors.New("invalid observation metadata")
	// ErrSliceMissing is returned when no data exists for a (timestep, coarse channel) pair
	ErrSliceMissing = errors.New("slice not found")
	// ErrSliceFormat is returned when slice data is truncated or malformed
	ErrSliceFormat = errors.New("malformed slice")
)

// Memory is an observation held entirely in memory.
// Used for tests and as the staging area for synthetic observations before they are saved.
type Memory struct {
	Meta   *Metadata
	Slices map[SliceKey][]float32
}

// NewMemory creates an empty in-memory observation for the given metadata
func NewMemory(meta *Metadata) *Memory {
	return &Memory{
		Meta:   meta,
		Slices: make(map[SliceKey][]float32),
	}
}

// SetSlice stores the sample buffer for one (timestep, coarse channel) pair
func (m *Memory) SetSlice(timestep, coarseChan int, buf []float32) {
	m.Slices[SliceKey{Timestep: timestep, CoarseChan: coarseChan}] = buf
}

func (m *Memory) CoarseChannels() []CoarseChannel { return m.Meta.CoarseChannels }

func (m *Memory) Timesteps() []TimeStep { return m.Meta.Timesteps }

func (m *Memory) NumAntennas() int { return len(m.Meta.Antennas) }

func (m *Memory) NumVisibilityPols() int { return m.Meta.NumVisibilityPols }

func (m *Memory) NumFineChannelsPerCoarse() int { return m.Meta.NumFineChannelsPerCoarse }

// AntennaName returns the tile name of antenna i
func (m *Memory) AntennaName(i int) string { return m.Meta.Antennas[i].TileName }

// ReadSlice returns a copy of the stored buffer, so callers own what they get
func (m *Memory) ReadSlice(timestep, coarseChan int) ([]float32, error) {
	key := SliceKey{Timestep: timestep, CoarseChan: coarseChan}
	buf, ok := m.Slices[key]
	if !ok {
		return nil, errors.Wrap(ErrSliceMissing, key.String())
	}
	out := make([]float32, len(buf))
	copy(out, buf)
	return out, nil
}
