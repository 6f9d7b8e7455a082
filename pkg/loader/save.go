package loader

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"

	"github.com/perbu/visdump/pkg/observation"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Save writes an in-memory observation to dir as observation.yaml plus one
// file per slice. Every file is written to a temporary name and renamed into place.
func Save(dir string, mem *observation.Memory) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	content, err := yaml.Marshal(mem.Meta)
	if err != nil {
		return errors.Wrap(err, "encoding metadata")
	}
	if err := writeAtomic(filepath.Join(dir, MetadataFile), content); err != nil {
		return err
	}

	for key, buf := range mem.Slices {
		raw := make([]byte, len(buf)*4)
		for i, v := range buf {
			binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
		}
		name := SliceFileName(mem.Meta.ObsID, key.Timestep, key.CoarseChan)
		if err := writeAtomic(filepath.Join(dir, name), raw); err != nil {
			return err
		}
	}

	return nil
}

func writeAtomic(path string, content []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	// Atomic rename
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "renaming %s", tmp)
	}
	return nil
}
