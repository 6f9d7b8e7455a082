package visdump

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Selection picks the records of a single baseline in a single slice.
// Fine channels are the half-open range [FineChanFrom, FineChanTo).
type Selection struct {
	Timestep     int
	CoarseChan   int
	Baseline     int
	FineChanFrom int
	FineChanTo   int
}

// SelectionStats extends Stats with the distribution of the selected raw values
type SelectionStats struct {
	Stats
	Mean   float64
	StdDev float64
}

// Validate checks the selection against the observation's dimensions
func (s Selection) Validate(obs Observation) error {
	if s.Timestep < 0 || s.Timestep >= len(obs.Timesteps()) {
		return errors.Wrapf(ErrConfig, "timestep %d out of range [0,%d)", s.Timestep, len(obs.Timesteps()))
	}
	if s.CoarseChan < 0 || s.CoarseChan >= len(obs.CoarseChannels()) {
		return errors.Wrapf(ErrConfig, "coarse chan %d out of range [0,%d)", s.CoarseChan, len(obs.CoarseChannels()))
	}
	if n := NumBaselines(obs.NumAntennas()); s.Baseline < 0 || s.Baseline >= n {
		return errors.Wrapf(ErrConfig, "baseline %d out of range [0,%d)", s.Baseline, n)
	}
	fine := obs.NumFineChannelsPerCoarse()
	if s.FineChanFrom < 0 || s.FineChanTo > fine || s.FineChanFrom >= s.FineChanTo {
		return errors.Wrapf(ErrConfig, "fine chan range [%d,%d) invalid for %d fine channels", s.FineChanFrom, s.FineChanTo, fine)
	}
	return nil
}

func (s Selection) keep(ch Chunk) bool {
	return ch.Baseline == s.Baseline && ch.FineChan >= s.FineChanFrom && ch.FineChan < s.FineChanTo
}

// DumpSelectionToFile validates sel, then creates path and dumps the selected records into it
func (d *Dumper) DumpSelectionToFile(path string, sel Selection) (SelectionStats, error) {
	if err := sel.Validate(d.obs); err != nil {
		return SelectionStats{}, err
	}
	f, err := os.Create(path)
	if err != nil {
		return SelectionStats{}, destinationError(err)
	}
	stats, err := d.dumpSelection(f, fileBufferSize, sel)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = destinationError(cerr)
	}
	return stats, err
}

// DumpSelection writes the header and the selected records to w
func (d *Dumper) DumpSelection(w io.Writer, sel Selection) (SelectionStats, error) {
	if err := sel.Validate(d.obs); err != nil {
		return SelectionStats{}, err
	}
	return d.dumpSelection(w, 0, sel)
}

func (d *Dumper) dumpSelection(w io.Writer, limit int, sel Selection) (SelectionStats, error) {
	var out SelectionStats
	sink := newLineSink(w, limit, &out.Stats)

	if err := sink.writeLine(headerLine(), nil); err != nil {
		return out, err
	}

	var values []float64
	keep := func(ch Chunk) bool {
		if !sel.keep(ch) {
			return false
		}
		for _, v := range ch.Values {
			values = append(values, float64(v))
		}
		return true
	}
	if err := d.dumpSlice(sink, sel.CoarseChan, sel.Timestep, keep, &out.Stats); err != nil {
		return out, err
	}
	if err := sink.flush(); err != nil {
		return out, err
	}

	out.Mean, out.StdDev = stat.MeanStdDev(values, nil)
	d.logger.WithFields(logrus.Fields{
		"action":   "dump_selection_finished",
		"baseline": sel.Baseline,
		"count":    out.Count,
		"mean":     out.Mean,
		"stddev":   out.StdDev,
	}).Info(out.Stats.String())

	return out, nil
}
