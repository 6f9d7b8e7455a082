package visdump

import (
	"bytes"
	"io"
)

// truncater is implemented by *os.File
type truncater interface {
	Truncate(size int64) error
}

// pendingRecord is a queued record line not yet acknowledged by the destination
type pendingRecord struct {
	end   int // offset in buf just past the line
	sum   float64
	count uint64
}

// lineSink hands complete lines to the destination, batching up to limit bytes.
// A line is never split across two writes. When a write fails the destination
// is cut back to the last complete line, if it supports truncation.
// Records reach stats only once their line is in the destination.
type lineSink struct {
	w     io.Writer
	limit int
	buf   []byte
	stats *Stats

	pending []pendingRecord
	written int64 // bytes acknowledged by w
}

func newLineSink(w io.Writer, limit int, stats *Stats) *lineSink {
	return &lineSink{w: w, limit: limit, buf: make([]byte, 0, limit+256), stats: stats}
}

// writeLine queues line, which must end in '\n'. A nil values marks a line
// that is not a record, such as the header.
func (s *lineSink) writeLine(line []byte, values []float32) error {
	s.buf = append(s.buf, line...)
	if values != nil {
		r := pendingRecord{end: len(s.buf), count: uint64(len(values))}
		for _, v := range values {
			r.sum += float64(v)
		}
		s.pending = append(s.pending, r)
	}
	if len(s.buf) >= s.limit {
		return s.flush()
	}
	return nil
}

func (s *lineSink) flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	n, err := s.w.Write(s.buf)
	if err == nil && n < len(s.buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		kept := 0
		if n > 0 {
			kept = bytes.LastIndexByte(s.buf[:n], '\n') + 1
		}
		if t, ok := s.w.(truncater); ok && n != kept {
			_ = t.Truncate(s.written + int64(kept))
		}
		s.commit(kept)
		return destinationError(err)
	}
	s.commit(n)
	return nil
}

// commit credits the records that end within the first n bytes of buf and drops the batch
func (s *lineSink) commit(n int) {
	for _, r := range s.pending {
		if r.end > n {
			break
		}
		s.stats.addRecord(r.sum, r.count)
	}
	s.written += int64(n)
	s.buf = s.buf[:0]
	s.pending = s.pending[:0]
}
