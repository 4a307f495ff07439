package pool

import (
	"io"
	"sync"
	"sync/atomic"
)

const (
	// DefaultBufferSize is the initial capacity of buffers handed out by a new pool.
	DefaultBufferSize = 1024 * 16 // 16KiB
	// MaxRetainedBufferSize is the default capacity above which released buffers
	// are dropped instead of pooled, unless the pool's default size is larger.
	MaxRetainedBufferSize = 1024 * 1024 * 64 // 64MiB
)

// ByteBuffer is a growable scratch byte slice owned by one caller at a time.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified capacity.
func NewByteBuffer(size int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, size)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// SetLength sets the length of the buffer to n.
// Panics if n is negative or greater than the capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("SetLength: invalid length")
	}
	bb.B = bb.B[:n]
}

// Grow ensures the buffer can hold requiredBytes more bytes without reallocating.
//
// Small buffers grow by at least DefaultBufferSize, larger ones by 25% of
// their capacity, and never by less than requiredBytes.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	if cap(bb.B)-len(bb.B) >= requiredBytes {
		return
	}

	growBy := DefaultBufferSize
	if cap(bb.B) > 4*DefaultBufferSize {
		growBy = cap(bb.B) / 4
	}
	growBy = max(growBy, requiredBytes)

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data to the buffer. It never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// ReadFrom appends everything r yields until io.EOF.
func (bb *ByteBuffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		bb.Grow(512)
		n, err := r.Read(bb.B[len(bb.B):cap(bb.B)])
		bb.B = bb.B[:len(bb.B)+n]
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Stats is a snapshot of pool activity.
type Stats struct {
	Acquired    uint64 // buffers handed out
	Released    uint64 // buffers returned
	Allocated   uint64 // buffers or backing arrays newly allocated
	Discarded   uint64 // released buffers dropped for exceeding the retention limit
	DefaultSize int    // current default buffer size
}

// ByteBufferPool hands out scratch buffers sized to the largest request seen so far.
//
// The default size only ever grows: every Reserve or AcquireSize call with a
// larger size raises it, so a stream of similarly sized blocks settles on
// buffers that never need to reallocate. When a retention limit is set,
// AcquireSize never raises the default past it; larger requests get a one-off
// buffer that Release drops. Acquired buffers are owned by the caller until
// Release; the pool never shares a buffer between two holders.
//
// It is safe for concurrent use.
type ByteBufferPool struct {
	pool        sync.Pool
	defaultSize atomic.Int64
	maxRetain   int

	acquired  atomic.Uint64
	released  atomic.Uint64
	allocated atomic.Uint64
	discarded atomic.Uint64
}

// NewByteBufferPool creates a pool with the given initial default size.
//
// Parameters:
//   - defaultSize: Initial capacity of acquired buffers
//   - maxRetain: Released buffers larger than both maxRetain and the current
//     default size are dropped; 0 retains everything
//
// Returns:
//   - *ByteBufferPool: The new pool
func NewByteBufferPool(defaultSize int, maxRetain int) *ByteBufferPool {
	p := &ByteBufferPool{maxRetain: maxRetain}
	p.defaultSize.Store(int64(max(defaultSize, 0)))
	p.pool.New = func() any {
		p.allocated.Add(1)
		return NewByteBuffer(p.DefaultSize())
	}

	return p
}

// DefaultSize returns the current default buffer capacity.
func (p *ByteBufferPool) DefaultSize() int {
	return int(p.defaultSize.Load())
}

// Reserve raises the default size to at least size. It never lowers it.
func (p *ByteBufferPool) Reserve(size int) {
	for {
		cur := p.defaultSize.Load()
		if int64(size) <= cur {
			return
		}
		if p.defaultSize.CompareAndSwap(cur, int64(size)) {
			return
		}
	}
}

// Acquire returns an empty buffer with capacity of at least DefaultSize.
func (p *ByteBufferPool) Acquire() *ByteBuffer {
	return p.acquire(p.DefaultSize())
}

// AcquireSize raises the default size to size and returns an empty buffer
// with at least that capacity. A size above the retention limit leaves the
// default size alone and is served by a buffer allocated for this call only.
func (p *ByteBufferPool) AcquireSize(size int) *ByteBuffer {
	if p.maxRetain > 0 && size > p.maxRetain && size > p.DefaultSize() {
		p.acquired.Add(1)
		p.allocated.Add(1)

		return NewByteBuffer(size)
	}

	p.Reserve(size)

	return p.acquire(p.DefaultSize())
}

func (p *ByteBufferPool) acquire(size int) *ByteBuffer {
	p.acquired.Add(1)

	bb, _ := p.pool.Get().(*ByteBuffer)
	if bb == nil {
		p.allocated.Add(1)
		return NewByteBuffer(size)
	}

	bb.Reset()
	if cap(bb.B) < size {
		p.allocated.Add(1)
		bb.B = make([]byte, 0, size)
	}

	return bb
}

// Release resets bb and returns it to the pool. The caller must not use bb afterwards.
func (p *ByteBufferPool) Release(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	p.released.Add(1)

	if p.maxRetain > 0 && cap(bb.B) > max(p.maxRetain, p.DefaultSize()) {
		p.discarded.Add(1)
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

// Stats returns a snapshot of the pool counters.
func (p *ByteBufferPool) Stats() Stats {
	return Stats{
		Acquired:    p.acquired.Load(),
		Released:    p.released.Load(),
		Allocated:   p.allocated.Load(),
		Discarded:   p.discarded.Load(),
		DefaultSize: p.DefaultSize(),
	}
}

var defaultPool = NewByteBufferPool(DefaultBufferSize, MaxRetainedBufferSize)

// Default returns the process-wide scratch buffer pool.
func Default() *ByteBufferPool {
	return defaultPool
}
