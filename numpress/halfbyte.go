package numpress

import (
	"fmt"

	"github.com/arloliu/mzarray/errs"
)

// halfByteReader reads half-byte packed integers, high nibble first.
type halfByteReader struct {
	data []byte
	pos  int
	half int // 0: next half-byte is the high nibble of data[pos]
}

func (r *halfByteReader) next() byte {
	var hb byte
	if r.half == 0 {
		hb = r.data[r.pos] >> 4
	} else {
		hb = r.data[r.pos] & 0xf
		r.pos++
	}
	r.half ^= 1

	return hb
}

// available returns the number of unread half-bytes.
func (r *halfByteReader) available() int {
	return (len(r.data)-r.pos)*2 - r.half
}

// done reports whether the stream is exhausted, treating a zero padding nibble
// in the last byte as end of stream.
func (r *halfByteReader) done() bool {
	if r.pos >= len(r.data) {
		return true
	}

	return r.pos == len(r.data)-1 && r.half == 1 && r.data[r.pos]&0xf == 0
}

func (r *halfByteReader) decodeInt() (uint32, error) {
	if r.available() < 1 {
		return 0, fmt.Errorf("%w: numpress: missing integer header at byte %d", errs.ErrCorruptData, r.pos)
	}

	head := r.next()

	var (
		res uint32
		n   int
	)
	if head <= 8 {
		n = int(head)
	} else {
		n = int(head - 8)
		for i := range n {
			res |= 0xf0000000 >> (4 * i)
		}
	}

	if n == 8 {
		return res, nil
	}

	if r.available() < 8-n {
		return 0, fmt.Errorf("%w: numpress: truncated integer at byte %d", errs.ErrCorruptData, r.pos)
	}

	for i := n; i < 8; i++ {
		res |= uint32(r.next()) << ((i - n) * 4)
	}

	return res, nil
}

// halfByteWriter appends half-bytes to a byte slice, high nibble first.
type halfByteWriter struct {
	buf     []byte
	pending bool
}

func (w *halfByteWriter) put(hb byte) {
	if !w.pending {
		w.buf = append(w.buf, hb<<4)
		w.pending = true

		return
	}

	w.buf[len(w.buf)-1] |= hb & 0xf
	w.pending = false
}

// encodeInt writes x as a half-byte packed integer.
func (w *halfByteWriter) encodeInt(x uint32) {
	const mask = uint32(0xf0000000)

	switch x & mask {
	case 0:
		l := 8
		for i := range 8 {
			if x&(mask>>(4*i)) != 0 {
				l = i
				break
			}
		}
		w.put(byte(l))
		w.putLow(x, 8-l)
	case mask:
		l := 7
		for i := range 8 {
			m := mask >> (4 * i)
			if x&m != m {
				l = i
				break
			}
		}
		w.put(byte(l + 8))
		w.putLow(x, 8-l)
	default:
		w.put(0)
		w.putLow(x, 8)
	}
}

// putLow writes the n least significant half-bytes of x, least significant first.
func (w *halfByteWriter) putLow(x uint32, n int) {
	for i := range n {
		w.put(byte(x>>(4*i)) & 0xf)
	}
}
