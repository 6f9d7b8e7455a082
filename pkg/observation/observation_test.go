package observation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestSynthesize(t *testing.T) {
	cfg := SyntheticConfig{ObsID: 10, Antennas: 4, CoarseChannels: 2, Timesteps: 3, FineChannels: 8, Pols: 4, Seed: 99}
	mem, err := Synthesize(cfg)
	require.NoError(t, err)

	assert.Len(t, mem.Slices, 6)
	assert.Equal(t, 10, mem.Meta.NumBaselines())
	for key, buf := range mem.Slices {
		assert.Len(t, buf, mem.Meta.FloatsPerSlice(), key.String())
	}

	// first baseline is the autocorrelation of antenna 0: XX real is positive, imaginary zero
	buf, err := mem.ReadSlice(0, 0)
	require.NoError(t, err)
	assert.Greater(t, buf[0], float32(999))
	assert.Equal(t, float32(0), buf[1])
	assert.Equal(t, float32(0), buf[7], "YY imaginary")

	again, err := Synthesize(cfg)
	require.NoError(t, err)
	assert.Equal(t, mem.Slices, again.Slices, "same seed, same samples")
}

func TestSynthesize_Invalid(t *testing.T) {
	_, err := Synthesize(SyntheticConfig{Antennas: 0, FineChannels: 1, Pols: 1})
	assert.ErrorIs(t, err, ErrMetadata)
}

func TestMemory_ReadSliceReturnsCopy(t *testing.T) {
	mem := NewMemory(&Metadata{})
	mem.SetSlice(0, 0, []float32{1, 2})

	buf, err := mem.ReadSlice(0, 0)
	require.NoError(t, err)
	buf[0] = 42

	again, err := mem.ReadSlice(0, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1), again[0])

	_, err = mem.ReadSlice(1, 0)
	assert.ErrorIs(t, err, ErrSliceMissing)
}

func TestSummarize(t *testing.T) {
	meta := SyntheticMetadata(SyntheticConfig{ObsID: 5, Antennas: 128, CoarseChannels: 24, Timesteps: 4, FineChannels: 128, Pols: 4})
	s := Summarize(meta, 96)

	assert.Equal(t, 8256, s.NumBaselines)
	assert.Equal(t, uint64(24*1_280_000), s.BandwidthHz)
	assert.Equal(t, uint64(8000), s.DurationMs)
	assert.Equal(t, s.StartUnixTimeMs+8000, s.EndUnixTimeMs)
	assert.Equal(t, 8256*128*4*2, s.NumSliceFloats)
	assert.Equal(t, s.NumSliceFloats*4, s.NumSliceBytes)
	assert.Len(t, s.Timesteps, 4)
	require.Len(t, s.Antennas, 128)
	assert.Equal(t, "Tile011", s.Antennas[0].TileName)

	out, err := s.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "antennas:\n- tile_name: Tile011\n- tile_name: Tile012\n")

	var back Summary
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, s, back)
}

func TestSyntheticMetadata_TileNames(t *testing.T) {
	meta := SyntheticMetadata(SyntheticConfig{Antennas: 10, FineChannels: 1, Pols: 1})
	assert.Equal(t, "Tile011", meta.Antennas[0].TileName)
	assert.Equal(t, "Tile018", meta.Antennas[7].TileName)
	assert.Equal(t, "Tile021", meta.Antennas[8].TileName)
}
