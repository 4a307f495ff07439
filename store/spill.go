package store

import (
	"encoding/binary"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/arloliu/mzarray/compress"
	"github.com/arloliu/mzarray/errs"
	"github.com/arloliu/mzarray/format"
	"github.com/arloliu/mzarray/internal/hash"
	"github.com/arloliu/mzarray/internal/mmap"
)

// Spill record layout, little-endian:
//
//	| rawLen (4) | payloadLen (4) | codec (1) | reserved (7) | checksum (8) | payload |
//
// The checksum is the xxHash64 of the first 16 header bytes followed by the payload.
const (
	recordHeaderSize = 24
	recordSumOffset  = 16
)

// recordRef locates a spill record.
type recordRef struct {
	segment uint32
	offset  int
	length  int
}

type spillSegment struct {
	id   uint32
	seg  *mmap.Segment
	off  int // next write offset
	live int // live records
}

// spillTier appends arrays to memory-mapped segment files.
type spillTier struct {
	mu          sync.Mutex
	dir         string
	segmentSize int
	codecType   format.CodecType
	codec       compress.Codec
	logger      *zap.Logger

	segments map[uint32]*spillSegment
	active   *spillSegment
	nextID   uint32

	records       int
	originalBytes int64
	storedBytes   int64
	segmentBytes  int64
}

func newSpillTier(dir string, segmentSize int, codecType format.CodecType, logger *zap.Logger) (*spillTier, error) {
	codec, err := compress.CreateCodec(codecType, "spill")
	if err != nil {
		return nil, err
	}

	return &spillTier{
		dir:         dir,
		segmentSize: segmentSize,
		codecType:   codecType,
		codec:       codec,
		logger:      logger,
		segments:    make(map[uint32]*spillSegment),
	}, nil
}

// write appends raw as one record.
func (t *spillTier) write(raw []byte) (recordRef, error) {
	payload, codecType := raw, format.CodecNone
	if t.codecType != format.CodecNone {
		// incompressible data is stored raw
		if c, err := t.codec.Compress(raw); err == nil && len(c) > 0 && len(c) < len(raw) {
			payload, codecType = c, t.codecType
		}
	}

	recLen := recordHeaderSize + len(payload)

	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.segmentFor(recLen)
	if err != nil {
		return recordRef{}, err
	}

	rec, err := s.seg.Slice(s.off, recLen)
	if err != nil {
		return recordRef{}, fmt.Errorf("%w: spill segment %d: %w", errs.ErrStorageExhausted, s.id, err)
	}

	binary.LittleEndian.PutUint32(rec[0:], uint32(len(raw)))     //nolint:gosec // arrays are < 4GiB
	binary.LittleEndian.PutUint32(rec[4:], uint32(len(payload))) //nolint:gosec // arrays are < 4GiB
	rec[8] = byte(codecType)
	clear(rec[9:recordSumOffset])
	copy(rec[recordHeaderSize:], payload)
	binary.LittleEndian.PutUint64(rec[recordSumOffset:], hash.ChecksumParts(rec[:recordSumOffset], payload))

	ref := recordRef{segment: s.id, offset: s.off, length: recLen}
	s.off += recLen
	s.live++

	t.records++
	t.originalBytes += int64(len(raw))
	t.storedBytes += int64(len(payload))

	return ref, nil
}

// segmentFor returns a segment with room for n bytes. Callers hold t.mu.
func (t *spillTier) segmentFor(n int) (*spillSegment, error) {
	if t.active != nil && t.active.off+n <= t.active.seg.Size() {
		return t.active, nil
	}

	size := max(t.segmentSize, n)
	seg, err := mmap.CreateSegment(t.dir, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStorageExhausted, err)
	}

	s := &spillSegment{id: t.nextID, seg: seg}
	t.nextID++
	t.segments[s.id] = s
	t.segmentBytes += int64(size)

	// a retired active segment with live records stays mapped until they are freed
	if t.active != nil && t.active.live == 0 {
		t.closeSegment(t.active)
	}
	if size == t.segmentSize || t.active == nil {
		t.active = s
	}

	t.logger.Info("spill segment created",
		zap.Uint32("segment", s.id),
		zap.String("path", seg.Path()),
		zap.Int("size", size),
	)

	return s, nil
}

// read returns the raw bytes of a record. For uncompressed records the
// returned slice aliases the mapping and is valid until the record is freed.
func (t *spillTier) read(ref recordRef) ([]byte, error) {
	t.mu.Lock()
	s := t.segments[ref.segment]
	t.mu.Unlock()

	if s == nil {
		return nil, fmt.Errorf("%w: spill segment %d is gone", errs.ErrCorruptData, ref.segment)
	}

	rec, err := s.seg.Slice(ref.offset, ref.length)
	if err != nil {
		return nil, fmt.Errorf("%w: spill record: %w", errs.ErrCorruptData, err)
	}

	rawLen := int(binary.LittleEndian.Uint32(rec[0:]))
	payloadLen := int(binary.LittleEndian.Uint32(rec[4:]))
	codecType := format.CodecType(rec[8])

	if recordHeaderSize+payloadLen != ref.length {
		return nil, fmt.Errorf("%w: spill record length %d, want %d", errs.ErrCorruptData, payloadLen, ref.length-recordHeaderSize)
	}

	payload := rec[recordHeaderSize:]
	if sum := binary.LittleEndian.Uint64(rec[recordSumOffset:]); hash.ChecksumParts(rec[:recordSumOffset], payload) != sum {
		return nil, fmt.Errorf("%w: spill record checksum mismatch in segment %d", errs.ErrCorruptData, ref.segment)
	}

	if codecType == format.CodecNone {
		return payload, nil
	}

	codec, err := compress.GetCodec(codecType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptData, err)
	}

	var raw []byte
	if ad, ok := codec.(compress.AppendDecompressor); ok {
		raw, err = ad.DecompressAppend(make([]byte, 0, rawLen), payload)
	} else {
		raw, err = codec.Decompress(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: spill record: %w", errs.ErrCorruptData, err)
	}
	if len(raw) != rawLen {
		return nil, fmt.Errorf("%w: spill record inflated to %d bytes, want %d", errs.ErrCorruptData, len(raw), rawLen)
	}

	return raw, nil
}

// free releases a record. Segments without live records are reused or removed.
func (t *spillTier) free(ref recordRef) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.segments[ref.segment]
	if s == nil {
		return
	}

	s.live--
	t.records--
	if s.live > 0 {
		return
	}

	if s == t.active {
		s.off = 0
		_ = s.seg.Advise(0, s.seg.Size(), mmap.AccessDontNeed)

		return
	}

	t.closeSegment(s)
}

// closeSegment unmaps and removes a segment. Callers hold t.mu.
func (t *spillTier) closeSegment(s *spillSegment) {
	delete(t.segments, s.id)
	t.segmentBytes -= int64(s.seg.Size())
	if t.active == s {
		t.active = nil
	}

	if err := s.seg.Close(); err != nil {
		t.logger.Warn("spill segment close failed", zap.Uint32("segment", s.id), zap.Error(err))
		return
	}

	t.logger.Debug("spill segment removed", zap.Uint32("segment", s.id))
}

func (t *spillTier) close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.segments {
		t.closeSegment(s)
	}
	t.records = 0
}

type spillStats struct {
	records       int
	segments      int
	segmentBytes  int64
	originalBytes int64
	storedBytes   int64
}

func (t *spillTier) stats() spillStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	return spillStats{
		records:       t.records,
		segments:      len(t.segments),
		segmentBytes:  t.segmentBytes,
		originalBytes: t.originalBytes,
		storedBytes:   t.storedBytes,
	}
}
