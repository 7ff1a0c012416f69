// Package bitio implements the LSB-first bit reservoir used by the
// DEFLATE block decoder.
//
// Unlike a pull-style bit reader that owns its input stream, the
// reservoir operates against a caller-supplied byte slice and cursor.
// When the slice runs dry the decoder suspends with all pending bits
// still in the reservoir, and resumes against the caller's next buffer
// with no data loss.
package bitio

// MaxBits is the reservoir capacity. DEFLATE never requires more than
// 32 bits to be pending at once (the stored-block LEN/NLEN word).
const MaxBits = 32

// Reservoir accumulates input bytes into a little-endian bit register.
// Bits are appended at position n; the first input byte supplies the
// lowest-indexed bits. The zero value is an empty reservoir.
type Reservoir struct {
	bits uint64 // pending bits, LSB-first; only the low n bits are valid
	n    uint32 // number of valid bits (0..MaxBits+7)
}

// Len returns the number of pending bits.
func (r *Reservoir) Len() uint32 { return r.n }

// Need pulls bytes from buf starting at pos until at least want bits
// are pending. It returns the advanced cursor and whether the request
// was satisfied; on a short buffer the cursor reflects every byte
// consumed so the caller can suspend and resume losslessly.
// want must not exceed MaxBits.
func (r *Reservoir) Need(buf []byte, pos int, want uint32) (int, bool) {
	for r.n < want {
		if pos >= len(buf) {
			return pos, false
		}
		r.bits |= uint64(buf[pos]) << r.n
		r.n += 8
		pos++
	}
	return pos, true
}

// PullByte unconditionally loads one byte from buf at pos. It returns
// the advanced cursor and whether a byte was available.
func (r *Reservoir) PullByte(buf []byte, pos int) (int, bool) {
	if pos >= len(buf) {
		return pos, false
	}
	r.bits |= uint64(buf[pos]) << r.n
	r.n += 8
	return pos + 1, true
}

// Peek returns the low n pending bits without consuming them. Bits
// beyond Len() read as zero.
func (r *Reservoir) Peek(n uint32) uint32 {
	return uint32(r.bits) & bitMask[n]
}

// Drop discards the low n pending bits.
func (r *Reservoir) Drop(n uint32) {
	r.bits >>= n
	r.n -= n
}

// AlignByte discards pending bits up to the next byte boundary.
func (r *Reservoir) AlignByte() {
	r.Drop(r.n & 7)
}

// DropAll empties the reservoir. Stored blocks are byte-exact after
// their length word, so the decoder clears every pending bit at once.
func (r *Reservoir) DropAll() {
	r.bits = 0
	r.n = 0
}

// ReturnByte logically hands one whole unconsumed byte back to the
// input cursor by discarding the newest 8 pending bits. It reports
// whether a full byte was pending; the caller is responsible for
// rewinding its own cursor.
func (r *Reservoir) ReturnByte() bool {
	if r.n < 8 {
		return false
	}
	r.n -= 8
	r.bits &= 1<<r.n - 1
	return true
}

// Reset empties the reservoir.
func (r *Reservoir) Reset() {
	r.bits = 0
	r.n = 0
}

// bitMask maps n (0..32) to the corresponding mask (2^n - 1).
var bitMask = [MaxBits + 1]uint32{
	0x00000000, 0x00000001, 0x00000003, 0x00000007,
	0x0000000f, 0x0000001f, 0x0000003f, 0x0000007f,
	0x000000ff, 0x000001ff, 0x000003ff, 0x000007ff,
	0x00000fff, 0x00001fff, 0x00003fff, 0x00007fff,
	0x0000ffff, 0x0001ffff, 0x0003ffff, 0x0007ffff,
	0x000fffff, 0x001fffff, 0x003fffff, 0x007fffff,
	0x00ffffff, 0x01ffffff, 0x03ffffff, 0x07ffffff,
	0x0fffffff, 0x1fffffff, 0x3fffffff, 0x7fffffff,
	0xffffffff,
}
