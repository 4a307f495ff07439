package mmap

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSegment(t *testing.T) {
	dir := t.TempDir()

	seg, err := CreateSegment(dir, 4096)
	require.NoError(t, err)
	assert.Equal(t, 4096, seg.Size())

	fi, err := os.Stat(seg.Path())
	require.NoError(t, err)
	assert.Equal(t, int64(4096), fi.Size())

	require.NoError(t, seg.Close())
	_, err = os.Stat(seg.Path())
	assert.True(t, os.IsNotExist(err), "backing file is removed on close")

	require.NoError(t, seg.Close(), "close is idempotent")
}

func TestCreateSegment_InvalidSize(t *testing.T) {
	_, err := CreateSegment(t.TempDir(), 0)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestSegment_ReadWrite(t *testing.T) {
	seg, err := CreateSegment(t.TempDir(), 1<<16)
	require.NoError(t, err)
	defer seg.Close()

	dst, err := seg.Slice(100, 5)
	require.NoError(t, err)
	copy(dst, "hello")

	got, err := seg.Slice(100, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
	assert.Equal(t, byte('h'), seg.Bytes()[100])

	require.NoError(t, seg.Advise(0, 1<<16, AccessRandom))
	require.NoError(t, seg.Advise(100, 5, AccessSequential))
}

func TestSegment_Bounds(t *testing.T) {
	seg, err := CreateSegment(t.TempDir(), 64)
	require.NoError(t, err)

	_, err = seg.Slice(60, 8)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = seg.Slice(-1, 1)
	require.ErrorIs(t, err, ErrOutOfBounds)

	require.NoError(t, seg.Close())
	_, err = seg.Slice(0, 1)
	require.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, seg.Bytes())
}
