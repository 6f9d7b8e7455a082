package visdump

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortFile accepts at most room more bytes, then fails
type shortFile struct {
	*os.File
	room int
}

func (f *shortFile) Write(p []byte) (int, error) {
	if len(p) <= f.room {
		f.room -= len(p)
		return f.File.Write(p)
	}
	n, _ := f.File.Write(p[:f.room])
	f.room = 0
	return n, errors.New("no space left on device")
}

func TestLineSink_BatchesCompleteLines(t *testing.T) {
	w := &failingWriter{}
	var stats Stats
	s := newLineSink(w, 10, &stats)

	require.NoError(t, s.writeLine([]byte("aaaa\n"), nil))
	assert.Equal(t, 0, w.calls)
	require.NoError(t, s.writeLine([]byte("bbbbbb\n"), []float32{1, 2}))
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, uint64(1), stats.Records)
	require.NoError(t, s.writeLine([]byte("c\n"), []float32{3}))
	assert.Equal(t, uint64(1), stats.Records, "queued lines are not counted")
	require.NoError(t, s.flush())

	assert.Equal(t, "aaaa\nbbbbbb\nc\n", w.String())
	assert.Equal(t, Stats{Sum: 6, Count: 3, Records: 2}, stats)
}

func TestLineSink_TruncatesPartialLine(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.csv"))
	require.NoError(t, err)
	defer f.Close()

	// room for the first batch and part of the second, which splits "four"
	var stats Stats
	s := newLineSink(&shortFile{File: f, room: 8 + 8}, 8, &stats)
	require.NoError(t, s.writeLine([]byte("one\n"), []float32{1}))
	require.NoError(t, s.writeLine([]byte("two\n"), []float32{2}))
	require.NoError(t, s.writeLine([]byte("three\n"), []float32{3}))
	err = s.writeLine([]byte("four\n"), []float32{4})
	require.ErrorIs(t, err, ErrDestination)

	content, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", string(content))
	assert.Equal(t, Stats{Sum: 6, Count: 3, Records: 3}, stats, "only lines left in the file are counted")
}

func TestLineSink_FailedBatchCountsNothing(t *testing.T) {
	w := &failingWriter{failAt: 1}
	var stats Stats
	s := newLineSink(w, 1024, &stats)

	require.NoError(t, s.writeLine([]byte("header\n"), nil))
	require.NoError(t, s.writeLine([]byte("1,2\n"), []float32{1, 2}))
	require.NoError(t, s.writeLine([]byte("3,4\n"), []float32{3, 4}))
	assert.ErrorIs(t, s.flush(), errDiskFull)

	assert.Empty(t, w.String())
	assert.Equal(t, Stats{}, stats)
}
