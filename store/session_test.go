package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/mzarray/errs"
)

func TestSession_Release(t *testing.T) {
	s := newTestStore(t)

	direct, err := s.StoreFloat64([]float64{1})
	require.NoError(t, err)

	ss := s.NewSession()
	require.Same(t, s, ss.Store())

	var handles []Handle
	for i := range 5 {
		h, err := ss.StoreFloat32([]float32{float32(i)})
		require.NoError(t, err)
		handles = append(handles, h)
	}
	require.Equal(t, 5, ss.Len())
	require.Equal(t, 6, s.Len())

	require.NoError(t, ss.Remove(handles[0]))
	require.Equal(t, 4, ss.Len())

	// removed behind the session's back
	require.NoError(t, s.Remove(handles[1]))

	require.Equal(t, 3, ss.Release())
	require.Zero(t, ss.Release(), "second release is a no-op")
	require.Equal(t, 1, s.Len())

	for _, h := range handles {
		_, _, err := s.LoadFloat32(h, nil)
		require.ErrorIs(t, err, errs.ErrInvalidHandle)
	}

	got, _, err := s.LoadFloat64(direct, nil)
	require.NoError(t, err)
	require.Equal(t, []float64{1}, got)
}

func TestSession_Released(t *testing.T) {
	s := newTestStore(t)
	ss := s.NewSession()

	h, err := ss.StoreFloat64([]float64{1})
	require.NoError(t, err)
	ss.Release()

	_, err = ss.StoreFloat64([]float64{1})
	require.ErrorIs(t, err, errs.ErrStoreClosed)
	_, err = ss.StoreFloat32([]float32{1})
	require.ErrorIs(t, err, errs.ErrStoreClosed)
	_, _, err = ss.LoadFloat64(h, nil)
	require.ErrorIs(t, err, errs.ErrStoreClosed)
	_, _, err = ss.LoadFloat32(h, nil)
	require.ErrorIs(t, err, errs.ErrStoreClosed)
	require.ErrorIs(t, ss.Remove(h), errs.ErrStoreClosed)
}

func TestSession_Ownership(t *testing.T) {
	s := newTestStore(t)
	a, b := s.NewSession(), s.NewSession()
	require.NotEqual(t, a.ID(), b.ID())

	ha, err := a.StoreFloat64([]float64{1})
	require.NoError(t, err)

	require.ErrorIs(t, b.Remove(ha), errs.ErrInvalidHandle)

	// sessions can read any live handle
	got, n, err := b.LoadFloat64(ha, nil)
	require.NoError(t, err)
	require.Equal(t, []float64{1}, got[:n])

	require.Zero(t, b.Release())
	require.Equal(t, 1, a.Release())
}

func TestSession_SlotReusedByOtherOwner(t *testing.T) {
	s := newTestStore(t)
	ss := s.NewSession()

	h, err := ss.StoreFloat64([]float64{1})
	require.NoError(t, err)
	require.NoError(t, s.Remove(h))

	// the freed slot now belongs to a direct store call
	other, err := s.StoreFloat64([]float64{2})
	require.NoError(t, err)
	require.Equal(t, h.index(), other.index())

	require.Zero(t, ss.Release())

	got, _, err := s.LoadFloat64(other, nil)
	require.NoError(t, err)
	require.Equal(t, []float64{2}, got)
}

func TestSession_ReleaseAfterStoreClose(t *testing.T) {
	s, err := NewStore()
	require.NoError(t, err)

	ss := s.NewSession()
	_, err = ss.StoreFloat64([]float64{1})
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.Zero(t, ss.Release())
}

func TestSession_ConcurrentStores(t *testing.T) {
	s, _ := newSpillingStore(t, WithMemoryLimit(4096))
	ss := s.NewSession()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_, err := ss.StoreFloat64(ramp(20))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 200, ss.Len())
	require.Equal(t, 200, ss.Release())
	require.Zero(t, s.Len())
	require.Zero(t, s.Stats().SpilledArrays)
	require.Zero(t, s.Stats().HeapBytes)
}

func TestSession_ConcurrentRemoveAndStore(t *testing.T) {
	s := newTestStore(t)
	ss := s.NewSession()

	const (
		workers = 8
		rounds  = 200
	)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rounds {
				// freed slots are handed straight to the other workers
				h, err := ss.StoreFloat64([]float64{float64(w), float64(i)})
				if !assert.NoError(t, err) {
					return
				}
				if !assert.NoError(t, ss.Remove(h)) {
					return
				}
				_, err = ss.StoreFloat32([]float32{float32(i)})
				if !assert.NoError(t, err) {
					return
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, workers*rounds, ss.Len())
	require.Equal(t, workers*rounds, s.Len())
	require.Equal(t, workers*rounds, ss.Release())
	require.Zero(t, s.Len(), "every array stored through the session is released")
	require.Zero(t, ss.Len())
}
