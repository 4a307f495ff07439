package store

import (
	"math"
	"math/rand"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/mzarray/errs"
	"github.com/arloliu/mzarray/format"
)

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()

	s, err := NewStore(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newSpillingStore(t *testing.T, opts ...StoreOption) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	base := []StoreOption{WithMemoryLimit(1), WithSpillDir(dir), WithSegmentSize(4096)}

	return newTestStore(t, append(base, opts...)...), dir
}

func ramp(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 300 + float64(i)*0.5
	}

	return values
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	mz := []float64{100.5, 200.25, math.MaxFloat64, -1}
	h64, err := s.StoreFloat64(mz)
	require.NoError(t, err)

	intensity := []float32{1, 2.5, math.MaxFloat32}
	h32, err := s.StoreFloat32(intensity)
	require.NoError(t, err)
	require.NotEqual(t, h64, h32)

	got64, n, err := s.LoadFloat64(h64, nil)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, mz, got64[:n])

	got32, n, err := s.LoadFloat32(h32, nil)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, intensity, got32[:n])

	require.Equal(t, 2, s.Len())
	require.Equal(t, int64(4*8+3*4), s.Stats().HeapBytes)
}

func TestStore_CopiesInput(t *testing.T) {
	s := newTestStore(t)

	values := []float64{1, 2, 3}
	h, err := s.StoreFloat64(values)
	require.NoError(t, err)

	values[0] = 99

	got, _, err := s.LoadFloat64(h, nil)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, got)
}

func TestStore_EmptyArray(t *testing.T) {
	s := newTestStore(t)

	h, err := s.StoreFloat64(nil)
	require.NoError(t, err)
	require.True(t, h.IsValid())

	dst := []float64{7, 8}
	got, n, err := s.LoadFloat64(h, dst)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, []float64{7, 8}, got, "dst is returned untouched")

	h32, err := s.StoreFloat32([]float32{})
	require.NoError(t, err)
	_, n, err = s.LoadFloat32(h32, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestStore_LoadBufferPolicy(t *testing.T) {
	s := newTestStore(t)

	h, err := s.StoreFloat32([]float32{1, 2, 3})
	require.NoError(t, err)

	t.Run("oversized dst is reused and not shrunk", func(t *testing.T) {
		dst := make([]float32, 10)
		got, n, err := s.LoadFloat32(h, dst)
		require.NoError(t, err)
		require.Equal(t, 3, n)
		require.Len(t, got, 10)
		require.Same(t, &dst[0], &got[0])
		require.Equal(t, []float32{1, 2, 3}, got[:n])
	})

	t.Run("short dst is replaced", func(t *testing.T) {
		dst := make([]float32, 2)
		got, n, err := s.LoadFloat32(h, dst)
		require.NoError(t, err)
		require.Equal(t, 3, n)
		require.Len(t, got, 3)
		require.Equal(t, []float32{0, 0}, dst, "short dst is not written")
	})
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t)

	h, err := s.StoreFloat64([]float64{1})
	require.NoError(t, err)

	require.NoError(t, s.Remove(h))
	require.ErrorIs(t, s.Remove(h), errs.ErrInvalidHandle, "second removal")

	_, _, err = s.LoadFloat64(h, nil)
	require.ErrorIs(t, err, errs.ErrInvalidHandle)

	// the slot is reused with a new generation
	h2, err := s.StoreFloat64([]float64{2})
	require.NoError(t, err)
	require.Equal(t, h.index(), h2.index())
	require.NotEqual(t, h, h2)

	_, _, err = s.LoadFloat64(h, nil)
	require.ErrorIs(t, err, errs.ErrInvalidHandle, "stale handle stays invalid")

	got, _, err := s.LoadFloat64(h2, nil)
	require.NoError(t, err)
	require.Equal(t, []float64{2}, got)

	require.Zero(t, s.Stats().HeapBytes-8)
}

func TestStore_InvalidHandles(t *testing.T) {
	s := newTestStore(t)

	for _, h := range []Handle{InvalidHandle, newHandle(5, 1), newHandle(0, 3)} {
		_, _, err := s.LoadFloat64(h, nil)
		require.ErrorIs(t, err, errs.ErrInvalidHandle, h.String())
		require.ErrorIs(t, s.Remove(h), errs.ErrInvalidHandle)
	}
}

func TestStore_GenerationRetirement(t *testing.T) {
	s := newTestStore(t)

	h, err := s.StoreFloat64([]float64{1})
	require.NoError(t, err)
	require.NoError(t, s.Remove(h))

	s.mu.Lock()
	s.slots[h.index()].gen = math.MaxUint32
	s.mu.Unlock()

	last, err := s.StoreFloat64([]float64{2})
	require.NoError(t, err)
	require.Equal(t, h.index(), last.index())
	require.Equal(t, uint32(math.MaxUint32), last.gen())

	require.NoError(t, s.Remove(last))
	require.Equal(t, 1, s.Stats().RetiredSlots)

	next, err := s.StoreFloat64([]float64{3})
	require.NoError(t, err)
	require.NotEqual(t, h.index(), next.index(), "retired slot is never reused")
}

func TestStore_Spill(t *testing.T) {
	s, dir := newSpillingStore(t)

	values := ramp(100)
	h, err := s.StoreFloat64(values)
	require.NoError(t, err)

	stats := s.Stats()
	require.Equal(t, 1, stats.SpilledArrays)
	require.Equal(t, 1, stats.SpillSegments)
	require.Zero(t, stats.HeapBytes)

	got, n, err := s.LoadFloat64(h, nil)
	require.NoError(t, err)
	require.Equal(t, values, got[:n])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, s.Remove(h))
	require.Zero(t, s.Stats().SpilledArrays)
}

func TestStore_SpillCodecs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	noise := make([]float64, 200)
	for i := range noise {
		noise[i] = rng.NormFloat64()
	}

	for _, codec := range []format.CodecType{format.CodecNone, format.CodecZlib, format.CodecZstd, format.CodecS2, format.CodecLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			s, _ := newSpillingStore(t, WithSpillCodec(codec))

			for _, values := range [][]float64{ramp(300), noise} {
				h, err := s.StoreFloat64(values)
				require.NoError(t, err)

				got, n, err := s.LoadFloat64(h, nil)
				require.NoError(t, err)
				require.Equal(t, values, got[:n])
			}

			stats := s.Stats()
			require.Equal(t, codec, stats.SpillCompression.Algorithm)
			require.Equal(t, int64(300*8+200*8), stats.SpillCompression.OriginalSize)
			require.LessOrEqual(t, stats.SpillCompression.CompressedSize, stats.SpillCompression.OriginalSize)
		})
	}
}

func TestStore_InvalidSpillCodec(t *testing.T) {
	_, err := NewStore(WithSpillCodec(format.CodecType(99)))
	require.Error(t, err)
}

func TestStore_SpillSegmentRollover(t *testing.T) {
	s, dir := newSpillingStore(t)

	// 400 values = 3200 bytes plus header: one record per 4KiB segment
	h1, err := s.StoreFloat64(ramp(400))
	require.NoError(t, err)
	h2, err := s.StoreFloat64(ramp(400))
	require.NoError(t, err)
	require.Equal(t, 2, s.Stats().SpillSegments)

	// larger than a segment: dedicated segment
	big := ramp(2000)
	h3, err := s.StoreFloat64(big)
	require.NoError(t, err)
	require.Equal(t, 3, s.Stats().SpillSegments)

	got, _, err := s.LoadFloat64(h3, nil)
	require.NoError(t, err)
	require.Equal(t, big, got)

	require.NoError(t, s.Remove(h1))
	require.NoError(t, s.Remove(h3))
	require.Equal(t, 1, s.Stats().SpillSegments, "segments without live records are removed")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// the active segment is rewound and reused once empty
	require.NoError(t, s.Remove(h2))
	_, err = s.StoreFloat64(ramp(10))
	require.NoError(t, err)
	require.Equal(t, 1, s.Stats().SpillSegments)
}

func TestStore_SpillDisabled(t *testing.T) {
	s := newTestStore(t, WithMemoryLimit(16), WithSpill(false))

	h, err := s.StoreFloat64([]float64{1, 2})
	require.NoError(t, err)

	_, err = s.StoreFloat64([]float64{3})
	require.ErrorIs(t, err, errs.ErrStorageExhausted)

	require.NoError(t, s.Remove(h))
	_, err = s.StoreFloat64([]float64{3})
	require.NoError(t, err, "budget is returned on removal")
}

func TestStore_CorruptSpillRecord(t *testing.T) {
	s, _ := newSpillingStore(t)

	h, err := s.StoreFloat64(ramp(50))
	require.NoError(t, err)

	s.mu.RLock()
	ref := s.slots[h.index()].rec
	s.mu.RUnlock()

	data := s.spill.segments[ref.segment].seg.Bytes()
	data[ref.offset+recordHeaderSize+3] ^= 0xff

	_, _, err = s.LoadFloat64(h, nil)
	require.ErrorIs(t, err, errs.ErrCorruptData)
}

func TestStore_Close(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(WithMemoryLimit(8), WithSpillDir(dir), WithSegmentSize(4096))
	require.NoError(t, err)

	h, err := s.StoreFloat64(ramp(64))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	_, err = s.StoreFloat64([]float64{1})
	require.ErrorIs(t, err, errs.ErrStoreClosed)
	_, _, err = s.LoadFloat64(h, nil)
	require.ErrorIs(t, err, errs.ErrStoreClosed)
	require.ErrorIs(t, s.Remove(h), errs.ErrStoreClosed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "spill files are removed")
}

func TestStore_Concurrent(t *testing.T) {
	s, _ := newSpillingStore(t, WithMemoryLimit(64*1024), WithSpillCodec(format.CodecS2))

	const workers = 8
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				values := ramp(10 + (w*100+i)%150)
				h, err := s.StoreFloat64(values)
				if !assert.NoError(t, err) {
					return
				}

				got, n, err := s.LoadFloat64(h, nil)
				if !assert.NoError(t, err) || !assert.Equal(t, values, got[:n]) {
					return
				}

				if i%2 == 0 {
					assert.NoError(t, s.Remove(h))
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, workers*50, s.Len())
}

func TestHandle_String(t *testing.T) {
	assert.Equal(t, "Handle(invalid)", InvalidHandle.String())
	assert.Equal(t, "Handle(3@7)", newHandle(3, 7).String())
	assert.False(t, InvalidHandle.IsValid())
}
