package loader

import (
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/edsrzf/mmap-go"
	"github.com/perbu/visdump/pkg/observation"
	"github.com/perbu/visdump/pkg/visdump"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// MetadataFile is the name of the metadata document inside an observation directory
const MetadataFile = "observation.yaml"

var sliceFilePattern = regexp.MustCompile(`^(\d+)_ts(\d+)_cc(\d+)\.vis$`)

// SliceFileName returns the file name holding one (timestep, coarse channel) slice
func SliceFileName(obsID uint32, timestep, coarseChan int) string {
	return fmt.Sprintf("%d_ts%04d_cc%03d.vis", obsID, timestep, coarseChan)
}

// Observation is an observation directory opened for reading.
// Slice files are read on demand, one at a time.
type Observation struct {
	Dir    string
	Meta   *observation.Metadata
	slices map[observation.SliceKey]string
}

var _ visdump.Observation = (*Observation)(nil)

// LoadMetadata reads and validates observation.yaml from dir
func LoadMetadata(dir string) (*observation.Metadata, error) {
	path := filepath.Join(dir, MetadataFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	var meta observation.Metadata
	if err := yaml.UnmarshalStrict(content, &meta); err != nil {
		return nil, errors.Wrapf(observation.ErrMetadata, "%s: %v", path, err)
	}
	if err := meta.Validate(); err != nil {
		return nil, errors.Wrapf(observation.ErrMetadata, "%s: %v", path, err)
	}
	return &meta, nil
}

// Load opens an observation directory: the metadata is parsed and the
// slice files are indexed, but no samples are read
func Load(dir string) (*Observation, error) {
	meta, err := LoadMetadata(dir)
	if err != nil {
		return nil, err
	}

	obs := &Observation{
		Dir:    dir,
		Meta:   meta,
		slices: make(map[observation.SliceKey]string),
	}

	err = fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Only the top level holds slices
		if d.IsDir() {
			if path != "." {
				return fs.SkipDir
			}
			return nil
		}

		m := sliceFilePattern.FindStringSubmatch(d.Name())
		if m == nil {
			return nil
		}
		// Names whose numbers do not parse cannot belong to this observation
		obsID, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil || uint32(obsID) != meta.ObsID {
			return nil
		}
		ts, err := strconv.Atoi(m[2])
		if err != nil || ts >= len(meta.Timesteps) {
			return nil
		}
		cc, err := strconv.Atoi(m[3])
		if err != nil || cc >= len(meta.CoarseChannels) {
			return nil
		}

		obs.slices[observation.SliceKey{Timestep: ts, CoarseChan: cc}] = filepath.Join(dir, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "indexing slice files in %s", dir)
	}

	return obs, nil
}

// NumSliceFiles returns how many slice files belong to the observation
func (o *Observation) NumSliceFiles() int {
	return len(o.slices)
}

func (o *Observation) CoarseChannels() []observation.CoarseChannel { return o.Meta.CoarseChannels }

func (o *Observation) Timesteps() []observation.TimeStep { return o.Meta.Timesteps }

func (o *Observation) NumAntennas() int { return len(o.Meta.Antennas) }

func (o *Observation) NumVisibilityPols() int { return o.Meta.NumVisibilityPols }

func (o *Observation) NumFineChannelsPerCoarse() int { return o.Meta.NumFineChannelsPerCoarse }

func (o *Observation) AntennaName(i int) string { return o.Meta.Antennas[i].TileName }

// ReadSlice maps the slice file, decodes it into a new buffer and unmaps it again
func (o *Observation) ReadSlice(timestep, coarseChan int) ([]float32, error) {
	key := observation.SliceKey{Timestep: timestep, CoarseChan: coarseChan}
	path, ok := o.slices[key]
	if !ok {
		return nil, errors.Wrap(observation.ErrSliceMissing, key.String())
	}
	return readSliceFile(path, o.Meta.FloatsPerSlice())
}

func readSliceFile(path string, wantFloats int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if size := info.Size(); size != int64(wantFloats)*4 {
		return nil, errors.Wrapf(observation.ErrSliceFormat, "%s is %d bytes, want %d", path, size, wantFloats*4)
	}
	if wantFloats == 0 {
		return []float32{}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping %s", path)
	}
	buf := make([]float32, wantFloats)
	for i := range buf {
		buf[i] = math.Float32frombits(binary.LittleEndian.Uint32(m[i*4:]))
	}
	if err := m.Unmap(); err != nil {
		return nil, errors.Wrapf(err, "unmapping %s", path)
	}
	return buf, nil
}
