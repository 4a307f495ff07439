package model

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arloliu/mzarray/errs"
	"github.com/arloliu/mzarray/store"
)

// putFunc stores one array and returns its handle.
type putFunc func(ds store.DataPointStore) (store.Handle, error)

func putFloat64(values []float64) putFunc {
	if values == nil {
		return nil
	}

	return func(ds store.DataPointStore) (store.Handle, error) { return ds.StoreFloat64(values) }
}

func putFloat32(values []float32) putFunc {
	return func(ds store.DataPointStore) (store.Handle, error) { return ds.StoreFloat32(values) }
}

// storeAll stores every array in order. A nil putFunc yields InvalidHandle.
// When a store fails, the arrays stored so far are removed again.
func storeAll(ds store.DataPointStore, puts ...putFunc) ([]store.Handle, error) {
	handles := make([]store.Handle, len(puts))
	for i, put := range puts {
		if put == nil {
			continue
		}

		h, err := put(ds)
		if err != nil {
			for _, stored := range handles[:i] {
				_ = removeHandle(ds, stored)
			}

			return nil, err
		}
		handles[i] = h
	}

	return handles, nil
}

// removeHandle removes h, treating an already removed handle as success.
func removeHandle(ds store.DataPointStore, h store.Handle) error {
	if !h.IsValid() {
		return nil
	}
	if err := ds.Remove(h); err != nil && !errors.Is(err, errs.ErrInvalidHandle) {
		return err
	}

	return nil
}

func removeHandles(ds store.DataPointStore, handles ...store.Handle) error {
	var errList []error
	for _, h := range handles {
		if err := removeHandle(ds, h); err != nil {
			errList = append(errList, err)
		}
	}

	return errors.Join(errList...)
}

// checkSize validates that every present array holds at least size points.
func checkSize(size int, lengths ...int) error {
	if size < 0 {
		return fmt.Errorf("%w: negative point count %d", errs.ErrInconsistentArrays, size)
	}
	for _, n := range lengths {
		if n < size {
			return fmt.Errorf("%w: array of %d values for %d points", errs.ErrInconsistentArrays, n, size)
		}
	}

	return nil
}

// resolve loads the array that pick selects from the published point set.
//
// A SetDataPoints running concurrently removes the old handles before it
// publishes new ones, so a lock-free reader holding the old set can see
// ErrInvalidHandle. The reader then retries while holding writer, which
// waits for the new set and keeps it from being replaced during the load.
func resolve[P any, T float32 | float64](
	published *atomic.Pointer[P],
	writer *sync.Mutex,
	pick func(*P) (store.Handle, int),
	load func(store.Handle, []T) ([]T, int, error),
	buf []T,
) ([]T, error) {
	out, err := loadPublished(published.Load(), pick, load, buf)
	if err == nil || !errors.Is(err, errs.ErrInvalidHandle) {
		return out, err
	}

	writer.Lock()
	defer writer.Unlock()

	return loadPublished(published.Load(), pick, load, buf)
}

func loadPublished[P any, T float32 | float64](
	set *P,
	pick func(*P) (store.Handle, int),
	load func(store.Handle, []T) ([]T, int, error),
	buf []T,
) ([]T, error) {
	h, size := pick(set)
	if size == 0 || !h.IsValid() {
		if buf != nil {
			return buf[:0], nil
		}

		return []T{}, nil
	}

	out, n, err := load(h, buf)
	if err != nil {
		return nil, err
	}

	return out[:min(n, size)], nil
}
