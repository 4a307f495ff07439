package store

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arloliu/mzarray/compress"
	"github.com/arloliu/mzarray/endian"
	"github.com/arloliu/mzarray/errs"
	"github.com/arloliu/mzarray/internal/options"
	"github.com/arloliu/mzarray/internal/pool"
	"github.com/arloliu/mzarray/internal/resource"
)

// Arrays are stored little-endian in both tiers.
var le = endian.GetLittleEndianEngine()

// DataPointStore is the contract between array-owning entities and a store.
// Both *Store and *Session implement it.
type DataPointStore interface {
	// StoreFloat64 copies values into the store and returns their handle.
	StoreFloat64(values []float64) (Handle, error)
	// StoreFloat32 copies values into the store and returns their handle.
	StoreFloat32(values []float32) (Handle, error)
	// LoadFloat64 writes the array into dst, allocating only if dst is too short,
	// and returns the buffer and the element count.
	LoadFloat64(h Handle, dst []float64) ([]float64, int, error)
	// LoadFloat32 writes the array into dst, allocating only if dst is too short,
	// and returns the buffer and the element count.
	LoadFloat32(h Handle, dst []float32) ([]float32, int, error)
	// Remove releases the array. A second removal reports ErrInvalidHandle.
	Remove(h Handle) error
}

var (
	_ DataPointStore = (*Store)(nil)
	_ DataPointStore = (*Session)(nil)
)

type slot struct {
	gen     uint32
	live    bool
	retired bool
	owner   uint64 // session id, 0 for direct store calls
	size    int    // raw bytes
	heap    []byte
	spilled bool
	rec     recordRef
}

// Stats is a snapshot of a store.
type Stats struct {
	LiveArrays    int
	HeapBytes     int64
	SpilledArrays int
	SpillSegments int
	SegmentBytes  int64
	RetiredSlots  int
	// SpillCompression covers every record spilled since the store was opened.
	SpillCompression compress.CompressionStats
}

// Store is the out-of-core data point store.
type Store struct {
	*StoreConfig

	mem   *resource.Controller
	spill *spillTier

	mu      sync.RWMutex
	slots   []slot
	free    []uint32
	live    int
	retired int
	closed  bool

	nextSession atomic.Uint64
}

// NewStore creates a Store.
//
// Parameters:
//   - opts: Optional configuration (memory limit, spill settings, logger)
//
// Returns:
//   - *Store: The store; callers must Close it to remove spill files
//   - error: Configuration error if an option is invalid
func NewStore(opts ...StoreOption) (*Store, error) {
	cfg := newStoreConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	mem := cfg.controller
	if mem == nil {
		mem = resource.NewController(resource.Config{MemoryLimitBytes: cfg.memoryLimit})
	}

	s := &Store{StoreConfig: cfg, mem: mem}

	if cfg.spillEnabled {
		spill, err := newSpillTier(cfg.spillDir, cfg.segmentSize, cfg.spillCodec, cfg.logger)
		if err != nil {
			return nil, err
		}
		s.spill = spill
	}

	return s, nil
}

// StoreFloat64 copies values into the store. Empty input yields a valid handle
// to zero elements.
func (s *Store) StoreFloat64(values []float64) (Handle, error) {
	return s.storeFloat64(values, 0)
}

// StoreFloat32 copies values into the store. Empty input yields a valid handle
// to zero elements.
func (s *Store) StoreFloat32(values []float32) (Handle, error) {
	return s.storeFloat32(values, 0)
}

func (s *Store) storeFloat64(values []float64, owner uint64) (Handle, error) {
	return s.put(len(values)*8, owner, func(dst []byte) []byte {
		return endian.AppendFloat64s(le, dst, values)
	})
}

func (s *Store) storeFloat32(values []float32, owner uint64) (Handle, error) {
	return s.put(len(values)*4, owner, func(dst []byte) []byte {
		return endian.AppendFloat32s(le, dst, values)
	})
}

// put encodes size bytes with encode into the heap tier, or the spill tier when
// the memory budget is exhausted, and installs the result in a slot.
func (s *Store) put(size int, owner uint64, encode func([]byte) []byte) (Handle, error) {
	if s.isClosed() {
		return InvalidHandle, errs.ErrStoreClosed
	}

	sl := slot{owner: owner, size: size}

	switch err := s.mem.AcquireMemory(int64(size)); {
	case err == nil:
		if size > 0 {
			sl.heap = encode(make([]byte, 0, size))
		}
	case errors.Is(err, resource.ErrMemoryLimitExceeded) && s.spill != nil:
		buf := pool.Default().AcquireSize(size)
		buf.B = encode(buf.B)
		ref, werr := s.spill.write(buf.B)
		pool.Default().Release(buf)
		if werr != nil {
			return InvalidHandle, werr
		}
		sl.spilled, sl.rec = true, ref
	default:
		return InvalidHandle, fmt.Errorf("%w: %d bytes over a %d byte memory limit with spilling disabled",
			errs.ErrStorageExhausted, size, s.mem.MemoryLimit())
	}

	h, err := s.install(sl)
	if err != nil {
		s.release(&sl)
		return InvalidHandle, err
	}

	return h, nil
}

func (s *Store) install(sl slot) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return InvalidHandle, errs.ErrStoreClosed
	}

	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
		sl.gen = s.slots[index].gen
	} else {
		if uint64(len(s.slots)) > math.MaxUint32 {
			return InvalidHandle, fmt.Errorf("%w: slot table full", errs.ErrStorageExhausted)
		}
		index = uint32(len(s.slots)) //nolint:gosec // bounded above
		sl.gen = 1
		s.slots = append(s.slots, slot{})
	}

	sl.live = true
	s.slots[index] = sl
	s.live++

	return newHandle(index, sl.gen), nil
}

// LoadFloat64 writes the float64 array of h into dst.
//
// Parameters:
//   - h: Handle returned by StoreFloat64
//   - dst: Destination buffer; a new one is allocated only if len(dst) is
//     smaller than the stored element count, an oversized dst is not shrunk
//
// Returns:
//   - []float64: The buffer holding the values in its first count elements
//   - int: Number of stored elements
//   - error: ErrInvalidHandle, ErrStoreClosed, or ErrCorruptData for a damaged spill record
func (s *Store) LoadFloat64(h Handle, dst []float64) ([]float64, int, error) {
	var count int
	err := s.view(h, func(raw []byte) {
		count = len(raw) / 8
		if len(dst) < count {
			dst = make([]float64, count)
		}
		endian.DecodeFloat64s(le, dst[:count], raw)
	})
	if err != nil {
		return dst, 0, err
	}

	return dst, count, nil
}

// LoadFloat32 writes the float32 array of h into dst. See LoadFloat64.
func (s *Store) LoadFloat32(h Handle, dst []float32) ([]float32, int, error) {
	var count int
	err := s.view(h, func(raw []byte) {
		count = len(raw) / 4
		if len(dst) < count {
			dst = make([]float32, count)
		}
		endian.DecodeFloat32s(le, dst[:count], raw)
	})
	if err != nil {
		return dst, 0, err
	}

	return dst, count, nil
}

// view calls fn with the raw bytes of h while holding the read lock.
func (s *Store) view(h Handle, fn func(raw []byte)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return errs.ErrStoreClosed
	}

	sl, err := s.lookup(h)
	if err != nil {
		return err
	}

	raw := sl.heap
	if sl.spilled {
		if raw, err = s.spill.read(sl.rec); err != nil {
			return fmt.Errorf("%s: %w", h, err)
		}
	}

	fn(raw)

	return nil
}

// lookup returns the live slot of h. Callers hold s.mu.
func (s *Store) lookup(h Handle) (*slot, error) {
	idx := h.index()
	if !h.IsValid() || int(idx) >= len(s.slots) {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidHandle, h)
	}

	sl := &s.slots[idx]
	if !sl.live || sl.gen != h.gen() {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidHandle, h)
	}

	return sl, nil
}

// Remove releases the array of h. Removing it again reports ErrInvalidHandle.
func (s *Store) Remove(h Handle) error {
	return s.remove(h, 0, false)
}

// remove releases h, checking ownership when checkOwner is set.
func (s *Store) remove(h Handle, owner uint64, checkOwner bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errs.ErrStoreClosed
	}

	sl, err := s.lookup(h)
	if err != nil {
		return err
	}
	if checkOwner && sl.owner != owner {
		return fmt.Errorf("%w: %s belongs to another session", errs.ErrInvalidHandle, h)
	}

	s.vacate(h.index())

	return nil
}

// removeOwned releases slot index if it is live and owned by owner.
func (s *Store) removeOwned(index uint32, owner uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || int(index) >= len(s.slots) {
		return false
	}

	sl := &s.slots[index]
	if !sl.live || sl.owner != owner {
		return false
	}

	s.vacate(index)

	return true
}

// vacate frees a live slot and bumps its generation. Callers hold s.mu.
func (s *Store) vacate(index uint32) {
	sl := &s.slots[index]
	s.release(sl)

	gen := sl.gen
	*sl = slot{gen: gen + 1}
	s.live--

	if gen == math.MaxUint32 {
		sl.retired = true
		s.retired++

		return
	}

	s.free = append(s.free, index)
}

// release returns the storage held by sl to its tier.
func (s *Store) release(sl *slot) {
	if sl.spilled {
		s.spill.free(sl.rec)
		return
	}

	s.mem.ReleaseMemory(int64(sl.size))
}

// Len returns the number of live arrays.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.live
}

// NewSession creates a session whose handles can be released together.
func (s *Store) NewSession() *Session {
	return newSession(s, s.nextSession.Add(1))
}

// Stats returns a snapshot of the store.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	st := Stats{
		LiveArrays:   s.live,
		HeapBytes:    s.mem.MemoryUsage(),
		RetiredSlots: s.retired,
	}
	s.mu.RUnlock()

	if s.spill != nil {
		sp := s.spill.stats()
		st.SpilledArrays = sp.records
		st.SpillSegments = sp.segments
		st.SegmentBytes = sp.segmentBytes
		st.SpillCompression = compress.CompressionStats{
			Algorithm:      s.spillCodec,
			OriginalSize:   sp.originalBytes,
			CompressedSize: sp.storedBytes,
		}
	}

	return st
}

// Close releases every array and removes the spill files. Further calls
// report ErrStoreClosed. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for i := range s.slots {
		if sl := &s.slots[i]; sl.live && !sl.spilled {
			s.mem.ReleaseMemory(int64(sl.size))
		}
	}

	if s.spill != nil {
		s.spill.close()
	}

	s.logger.Info("data point store closed",
		zap.Int("live_arrays", s.live),
		zap.Int("slots", len(s.slots)),
		zap.Int("retired_slots", s.retired),
	)

	s.slots, s.free, s.live = nil, nil, 0

	return nil
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.closed
}
