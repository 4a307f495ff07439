package store

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"go.uber.org/zap"

	"github.com/arloliu/mzarray/errs"
)

// Session scopes store handles to one ingestion run.
//
// Handles stored through a session are tracked in a bitmap of slot indices.
// Remove leaves the bit set, since a concurrent store may already have reused
// the slot; Release removes every tracked array that is still live and still
// owned by the session. A released session rejects further calls with
// ErrStoreClosed.
type Session struct {
	store *Store
	id    uint64

	// state guards released; operations hold it shared so Release waits for them.
	state    sync.RWMutex
	released bool

	mu    sync.Mutex
	slots *roaring.Bitmap
	count int // stored minus removed through this session
}

func newSession(s *Store, id uint64) *Session {
	return &Session{store: s, id: id, slots: roaring.New()}
}

// ID returns the session identifier, unique within its store.
func (ss *Session) ID() uint64 {
	return ss.id
}

// Store returns the store the session belongs to.
func (ss *Session) Store() *Store {
	return ss.store
}

// StoreFloat64 copies values into the store and tracks the handle.
func (ss *Session) StoreFloat64(values []float64) (Handle, error) {
	return ss.track(func() (Handle, error) { return ss.store.storeFloat64(values, ss.id) })
}

// StoreFloat32 copies values into the store and tracks the handle.
func (ss *Session) StoreFloat32(values []float32) (Handle, error) {
	return ss.track(func() (Handle, error) { return ss.store.storeFloat32(values, ss.id) })
}

func (ss *Session) track(put func() (Handle, error)) (Handle, error) {
	ss.state.RLock()
	defer ss.state.RUnlock()

	if ss.released {
		return InvalidHandle, errs.ErrStoreClosed
	}

	h, err := put()
	if err != nil {
		return InvalidHandle, err
	}

	ss.mu.Lock()
	ss.slots.Add(h.index())
	ss.count++
	ss.mu.Unlock()

	return h, nil
}

// LoadFloat64 loads a float64 array. See Store.LoadFloat64.
func (ss *Session) LoadFloat64(h Handle, dst []float64) ([]float64, int, error) {
	if ss.isReleased() {
		return dst, 0, errs.ErrStoreClosed
	}

	return ss.store.LoadFloat64(h, dst)
}

// LoadFloat32 loads a float32 array. See Store.LoadFloat32.
func (ss *Session) LoadFloat32(h Handle, dst []float32) ([]float32, int, error) {
	if ss.isReleased() {
		return dst, 0, errs.ErrStoreClosed
	}

	return ss.store.LoadFloat32(h, dst)
}

// Remove releases an array stored through this session.
// Handles of other sessions are reported as ErrInvalidHandle.
func (ss *Session) Remove(h Handle) error {
	ss.state.RLock()
	defer ss.state.RUnlock()

	if ss.released {
		return errs.ErrStoreClosed
	}

	if err := ss.store.remove(h, ss.id, true); err != nil {
		return err
	}

	ss.mu.Lock()
	ss.count--
	ss.mu.Unlock()

	return nil
}

// Len returns the number of arrays stored through the session and not yet
// removed through it.
func (ss *Session) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.count
}

// Release removes every live array stored through the session and returns
// how many were removed. Releasing twice is a no-op.
func (ss *Session) Release() int {
	ss.state.Lock()
	defer ss.state.Unlock()

	if ss.released {
		return 0
	}
	ss.released = true

	ss.mu.Lock()
	tracked := ss.slots
	ss.slots = roaring.New()
	ss.count = 0
	ss.mu.Unlock()

	removed := 0
	it := tracked.Iterator()
	for it.HasNext() {
		if ss.store.removeOwned(it.Next(), ss.id) {
			removed++
		}
	}

	ss.store.logger.Info("data point session released",
		zap.Uint64("session", ss.id),
		zap.Uint64("tracked", tracked.GetCardinality()),
		zap.Int("removed", removed),
	)

	return removed
}

func (ss *Session) isReleased() bool {
	ss.state.RLock()
	defer ss.state.RUnlock()

	return ss.released
}
