package visdump

import (
	"github.com/pkg/errors"
)

// Chunk is the raw content of one visibility record: every polarisation
// product (re, im interleaved) of one fine channel of one baseline.
// Values aliases the slice buffer.
type Chunk struct {
	Baseline int
	FineChan int
	Values   []float32
}

// Chunker walks a slice buffer as two nested fixed-stride partitions:
// one partition per baseline, and inside it one per fine channel.
// It makes a single forward pass; once exhausted it stays exhausted.
type Chunker struct {
	buf          []float32
	floatsPerBl  int
	floatsPerFc  int
	numBaselines int

	pos int
}

// NewChunker validates buf against the slice dimensions and returns a chunker over it.
// numAntennas may be 0 to skip the baseline count check.
func NewChunker(buf []float32, fineChans, pols, numAntennas int) (*Chunker, error) {
	if fineChans <= 0 || pols <= 0 {
		return nil, errors.Wrapf(ErrShape, "fine channels (%d) and pols (%d) must be positive", fineChans, pols)
	}
	floatsPerFc := pols * 2
	floatsPerBl := fineChans * floatsPerFc
	if len(buf)%floatsPerBl != 0 {
		return nil, errors.Wrapf(ErrShape, "buffer of %d floats is not a multiple of %d floats per baseline", len(buf), floatsPerBl)
	}
	numBaselines := len(buf) / floatsPerBl
	if numAntennas > 0 && numBaselines != NumBaselines(numAntennas) {
		return nil, errors.Wrapf(ErrShape, "buffer holds %d baselines, %d antennas need %d", numBaselines, numAntennas, NumBaselines(numAntennas))
	}

	return &Chunker{
		buf:          buf,
		floatsPerBl:  floatsPerBl,
		floatsPerFc:  floatsPerFc,
		numBaselines: numBaselines,
	}, nil
}

// Len returns the total number of chunks the buffer partitions into
func (c *Chunker) Len() int {
	return len(c.buf) / c.floatsPerFc
}

// NumBaselines returns the number of baseline partitions in the buffer
func (c *Chunker) NumBaselines() int {
	return c.numBaselines
}

// Next returns the next chunk, or false when the buffer is consumed
func (c *Chunker) Next() (Chunk, bool) {
	if c.pos >= len(c.buf) {
		return Chunk{}, false
	}
	ch := Chunk{
		Baseline: c.pos / c.floatsPerBl,
		FineChan: (c.pos % c.floatsPerBl) / c.floatsPerFc,
		Values:   c.buf[c.pos : c.pos+c.floatsPerFc : c.pos+c.floatsPerFc],
	}
	c.pos += c.floatsPerFc
	return ch, true
}
