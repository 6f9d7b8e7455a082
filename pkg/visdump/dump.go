package visdump

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/perbu/visdump/pkg/observation"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Header lists the output columns. Sample columns follow the XX, XY, YX, YY product order.
var Header = []string{
	"coarse_chan", "timestep", "baseline", "ant1_name", "ant2_name", "fine_chan",
	"xx_re", "xx_im", "xy_re", "xy_im", "yx_re", "yx_im", "yy_re", "yy_im",
}

// fileBufferSize is how many bytes of complete lines are batched per file write
const fileBufferSize = 64 * 1024

// Observation is the read-only view of an observation a dump needs.
// Implementations must keep every value fixed for the duration of a dump.
type Observation interface {
	CoarseChannels() []observation.CoarseChannel
	Timesteps() []observation.TimeStep
	NumAntennas() int
	NumVisibilityPols() int
	NumFineChannelsPerCoarse() int
	AntennaName(i int) string
	// ReadSlice returns the samples of one (timestep, coarse channel) pair.
	// The caller owns the returned buffer.
	ReadSlice(timestep, coarseChan int) ([]float32, error)
}

// Dumper writes the visibilities of one observation as a comma separated table.
// A Dumper is not safe for concurrent use.
type Dumper struct {
	obs      Observation
	encoding Encoding
	logger   logrus.FieldLogger
}

// NewDumper validates the encoding and returns a Dumper for obs
func NewDumper(obs Observation, enc Encoding, logger logrus.FieldLogger) (*Dumper, error) {
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Dumper{obs: obs, encoding: enc, logger: logger}, nil
}

// DumpToFile creates path and dumps every visibility into it.
// On failure the file is left holding whatever complete lines were written.
func (d *Dumper) DumpToFile(path string) (Stats, error) {
	f, err := os.Create(path)
	if err != nil {
		return Stats{}, destinationError(err)
	}
	stats, err := d.dump(f, fileBufferSize)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = destinationError(cerr)
	}
	return stats, err
}

// Dump writes every visibility to w, one Write call per line
func (d *Dumper) Dump(w io.Writer) (Stats, error) {
	return d.dump(w, 0)
}

// dump writes the table to w in batches of up to limit bytes.
// The returned stats cover only records that reached w.
func (d *Dumper) dump(w io.Writer, limit int) (Stats, error) {
	var stats Stats
	start := time.Now()
	sink := newLineSink(w, limit, &stats)

	if err := sink.writeLine(headerLine(), nil); err != nil {
		return stats, err
	}

	coarseChannels := d.obs.CoarseChannels()
	timesteps := d.obs.Timesteps()

	for cci, cc := range coarseChannels {
		for tsi, ts := range timesteps {
			d.logger.WithFields(logrus.Fields{
				"action":        "read_slice",
				"coarse_chan":   cci,
				"receiver_chan": cc.ReceiverChannelNumber,
				"centre_mhz":    fmt.Sprintf("%.3f", cc.CentreMHz()),
				"timestep":      tsi,
				"unix_time_ms":  ts.UnixTimeMs,
			}).Info("reading slice")

			if err := d.dumpSlice(sink, cci, tsi, nil, &stats); err != nil {
				return stats, err
			}
		}
	}

	if err := sink.flush(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	d.logger.WithFields(logrus.Fields{
		"action":  "dump_finished",
		"sum":     stats.Sum,
		"count":   stats.Count,
		"records": stats.Records,
		"slices":  stats.Slices,
	}).Info(stats.String())

	return stats, nil
}

// dumpSlice reads one slice and writes a line per chunk that keep accepts (all when keep is nil)
func (d *Dumper) dumpSlice(sink *lineSink, coarseChan, timestep int, keep func(Chunk) bool, stats *Stats) error {
	buf, err := d.obs.ReadSlice(timestep, coarseChan)
	if err != nil {
		return errors.WithMessagef(err, "read slice (timestep %d, coarse chan %d)", timestep, coarseChan)
	}
	stats.Slices++

	numAntennas := d.obs.NumAntennas()
	chunker, err := NewChunker(buf, d.obs.NumFineChannelsPerCoarse(), d.obs.NumVisibilityPols(), numAntennas)
	if err != nil {
		return errors.WithMessagef(err, "slice (timestep %d, coarse chan %d)", timestep, coarseChan)
	}

	var line []byte
	var ant1Name, ant2Name string
	curBaseline := -1
	for {
		ch, ok := chunker.Next()
		if !ok {
			break
		}
		if keep != nil && !keep(ch) {
			continue
		}
		if ch.Baseline != curBaseline {
			ant1, ant2, err := DecodeBaseline(ch.Baseline, numAntennas)
			if err != nil {
				return err
			}
			ant1Name, ant2Name = d.obs.AntennaName(ant1), d.obs.AntennaName(ant2)
			curBaseline = ch.Baseline
		}

		line = line[:0]
		line = strconv.AppendInt(line, int64(coarseChan), 10)
		line = append(line, ',')
		line = strconv.AppendInt(line, int64(timestep), 10)
		line = append(line, ',')
		line = strconv.AppendInt(line, int64(ch.Baseline), 10)
		line = append(line, ',')
		line = append(line, ant1Name...)
		line = append(line, ',')
		line = append(line, ant2Name...)
		line = append(line, ',')
		line = strconv.AppendInt(line, int64(ch.FineChan), 10)
		for _, v := range ch.Values {
			line = append(line, ',')
			line = d.encoding.AppendEncode(line, v)
		}
		line = append(line, '\n')

		if err := sink.writeLine(line, ch.Values); err != nil {
			return err
		}
	}

	return nil
}

func headerLine() []byte {
	return []byte(strings.Join(Header, ",") + "\n")
}
