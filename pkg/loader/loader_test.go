package loader

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/perbu/visdump/pkg/observation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synthetic(t *testing.T) *observation.Memory {
	t.Helper()
	mem, err := observation.Synthesize(observation.SyntheticConfig{
		ObsID:          1065880128,
		Antennas:       3,
		CoarseChannels: 2,
		Timesteps:      2,
		FineChannels:   4,
		Pols:           4,
		Seed:           7,
	})
	require.NoError(t, err)
	return mem
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	mem := synthetic(t)
	require.NoError(t, Save(dir, mem))

	obs, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, mem.Meta, obs.Meta)
	assert.Equal(t, 4, obs.NumSliceFiles())
	assert.Equal(t, 3, obs.NumAntennas())
	assert.Equal(t, "Tile012", obs.AntennaName(1))

	for key, want := range mem.Slices {
		got, err := obs.ReadSlice(key.Timestep, key.CoarseChan)
		require.NoError(t, err, key.String())
		assert.Equal(t, want, got, key.String())
	}
}

func TestLoad_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	mem := synthetic(t)
	require.NoError(t, Save(dir, mem))

	// other observation, out-of-range slice, unrelated file, nested dir
	for _, name := range []string{
		SliceFileName(42, 0, 0),
		SliceFileName(mem.Meta.ObsID, 9, 0),
		"notes.txt",
		filepath.Join("sub", SliceFileName(mem.Meta.ObsID, 0, 0)),
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0644))
	}

	obs, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, obs.NumSliceFiles())
}

func TestLoad_IgnoresUnparsableNumbers(t *testing.T) {
	dir := t.TempDir()
	mem := synthetic(t)
	mem.Meta.ObsID = math.MaxUint32
	require.NoError(t, Save(dir, mem))
	require.NoError(t, os.Remove(filepath.Join(dir, SliceFileName(mem.Meta.ObsID, 0, 0))))

	// 99999999999 overflows uint32 and must not be read as obs_id 4294967295
	for _, name := range []string{
		"99999999999_ts0000_cc000.vis",
		"4294967295_ts99999999999999999999_cc000.vis",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{1, 2, 3, 4}, 0644))
	}

	obs, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, obs.NumSliceFiles())

	_, err = obs.ReadSlice(0, 0)
	assert.ErrorIs(t, err, observation.ErrSliceMissing)
}

func TestReadSlice_Missing(t *testing.T) {
	dir := t.TempDir()
	mem := synthetic(t)
	require.NoError(t, Save(dir, mem))
	require.NoError(t, os.Remove(filepath.Join(dir, SliceFileName(mem.Meta.ObsID, 1, 1))))

	obs, err := Load(dir)
	require.NoError(t, err)

	_, err = obs.ReadSlice(1, 1)
	assert.ErrorIs(t, err, observation.ErrSliceMissing)
}

func TestReadSlice_Truncated(t *testing.T) {
	dir := t.TempDir()
	mem := synthetic(t)
	require.NoError(t, Save(dir, mem))

	path := filepath.Join(dir, SliceFileName(mem.Meta.ObsID, 0, 1))
	require.NoError(t, os.Truncate(path, 10))

	obs, err := Load(dir)
	require.NoError(t, err)

	_, err = obs.ReadSlice(0, 1)
	assert.ErrorIs(t, err, observation.ErrSliceFormat)
}

func TestLoadMetadata(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name: "valid",
			content: `obs_id: 1
corr_version: Legacy
num_fine_channels_per_coarse: 2
num_visibility_pols: 4
antennas:
  - tile_name: Tile011
`,
		},
		{
			name:    "no antennas",
			content: "obs_id: 1\nnum_fine_channels_per_coarse: 2\nnum_visibility_pols: 4\n",
			wantErr: true,
		},
		{
			name:    "unknown field",
			content: "obs_id: 1\nbogus: 3\n",
			wantErr: true,
		},
		{
			name:    "bad corr version",
			content: "obs_id: 1\ncorr_version: V9\nnum_fine_channels_per_coarse: 2\nnum_visibility_pols: 4\nantennas: [{tile_name: a}]\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte(tt.content), 0644))

			meta, err := LoadMetadata(dir)
			if tt.wantErr {
				assert.ErrorIs(t, err, observation.ErrMetadata)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, observation.CorrelatorLegacy, meta.CorrVersion)
			assert.Equal(t, 1, meta.NumBaselines())
			assert.Equal(t, 16, meta.FloatsPerSlice())
		})
	}
}

func TestLoad_NoMetadata(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
