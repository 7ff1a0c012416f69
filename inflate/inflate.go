// Package inflate implements a resumable block-level decoder for the
// DEFLATE compressed data format (RFC 1951).
//
// The decoder is push-style: the caller owns the input and output
// buffers and invokes Step repeatedly. Every invocation runs until
// input exhaustion, output exhaustion, stream end, or a fatal error,
// committing all intermediate state to the session so the next call
// resumes exactly where the last one stopped. Output flows through a
// sliding window (typically 32 KiB) that also serves the format's
// back-references, and is flushed incrementally to the caller.
//
// Callers that prefer a pull API can wrap a stream in NewReader. The
// zlib envelope around raw DEFLATE data is handled by the parent
// package.
package inflate

import (
	"hash"

	"github.com/vlx-tech/zlib/internal/bitio"
	"github.com/vlx-tech/zlib/internal/huffman"
)

// DefaultWindowSize is the full DEFLATE back-reference range. Streams
// produced by ordinary compressors need the full window; a smaller one
// only suits streams known to have been encoded with bounded
// distances.
const DefaultWindowSize = 1 << 15

// mode enumerates the block decoder's states. The mode field is the
// sole resumption token: every suspension point records it together
// with the bit reservoir and cursors.
type mode uint8

const (
	modeType   mode = iota // at a block header
	modeLens               // reading a stored block's LEN/NLEN word
	modeStored             // copying a stored block's bytes
	modeTable              // reading HLIT/HDIST/HCLEN
	modeBTree              // reading the meta-alphabet code lengths
	modeDTree              // decoding the main alphabets' code lengths
	modeCodes              // inside a compressed block's body
	modeDry                // final block done, draining the window
	modeDone               // stream complete
	modeBad                // corrupt stream, terminal
)

// codeOrder is the order in which the meta-alphabet code lengths are
// transmitted, from the format.
var codeOrder = [19]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// Stream carries the caller's buffers and cursors through Step. Step
// consumes In from InPos and produces into Out from OutPos, advancing
// both. After the final block, at most one unconsumed whole byte is
// handed back by rewinding InPos.
type Stream struct {
	In     []byte
	InPos  int
	Out    []byte
	OutPos int
}

// Session is a single decompression context. It is not safe for
// concurrent use; callers may run many sessions, one goroutine each.
type Session struct {
	mode mode
	last bool // current block had BFINAL set
	err  error

	res   bitio.Reservoir
	win   window
	check hash.Hash // fed every delivered byte; nil disables

	left int // stored block: bytes remaining

	// Dynamic-block header decoding (modeTable..modeDTree).
	header   uint32 // 14-bit HLIT/HDIST/HCLEN word
	lens     []uint16
	index    int
	metaTab  []huffman.Entry
	metaBits uint32

	codes codes
}

// NewSession creates a decompression session with the given window
// size. Every byte delivered to the caller is also written to check,
// when non-nil; the caller reads the final value from its own hash
// after StreamEnd.
func NewSession(windowSize int, check hash.Hash) (*Session, error) {
	if windowSize < 1 {
		return nil, ErrWindowSize
	}
	s := &Session{
		win:   window{buf: make([]byte, windowSize)},
		check: check,
	}
	return s, nil
}

// Err returns the corrupt-stream condition behind a DataError, or nil.
func (s *Session) Err() error { return s.err }

// Reset restores the session to its initial state, keeping the window
// allocation and resetting the checksum, so another stream can be
// decoded.
func (s *Session) Reset() {
	s.mode = modeType
	s.last = false
	s.err = nil
	s.left = 0
	s.header = 0
	s.index = 0
	s.lens = nil
	s.metaTab = nil
	s.metaBits = 0
	s.res.Reset()
	s.win.reset()
	s.codes.release()
	if s.check != nil {
		s.check.Reset()
	}
}

// Close releases everything the session owns. Further Step calls
// return StreamError.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.lens = nil
	s.metaTab = nil
	s.codes.release()
	s.win.buf = nil
	return nil
}

// needBits tops the reservoir up to n bits from the stream's input,
// advancing its cursor, and reports whether n bits are pending.
func (s *Session) needBits(st *Stream, n uint32) bool {
	pos, ok := s.res.Need(st.In, st.InPos, n)
	st.InPos = pos
	return ok
}

// leave flushes the window and suspends with the given status.
func (s *Session) leave(st *Stream, r Status) Status {
	s.flush(st)
	return r
}

// fail records a corrupt-stream condition and makes it sticky.
func (s *Session) fail(st *Stream, err error) Status {
	s.err = err
	s.mode = modeBad
	s.flush(st)
	return DataError
}

// Step decodes until input exhaustion (NeedInput), output exhaustion
// (NeedOutput), the end of the final block (StreamEnd), or a fatal
// error. The stream's cursors are advanced by the bytes consumed and
// produced; on suspension all progress is committed to the session.
func (s *Session) Step(st *Stream) Status {
	if s == nil || st == nil || s.win.buf == nil {
		return StreamError
	}
	for {
		switch s.mode {
		case modeType:
			if !s.needBits(st, 3) {
				return s.leave(st, NeedInput)
			}
			t := s.res.Peek(3)
			s.last = t&1 != 0
			switch t >> 1 {
			case 0: // stored
				s.res.Drop(3)
				s.res.AlignByte()
				s.mode = modeLens
			case 1: // fixed Huffman
				lit, lb, dist, db := huffman.Fixed()
				s.codes.init(lit, lb, dist, db)
				s.res.Drop(3)
				s.mode = modeCodes
			case 2: // dynamic Huffman
				s.res.Drop(3)
				s.mode = modeTable
			default: // reserved
				s.res.Drop(3)
				return s.fail(st, ErrBlockType)
			}

		case modeLens:
			if !s.needBits(st, 32) {
				return s.leave(st, NeedInput)
			}
			v := s.res.Peek(32)
			if v>>16 != ^v&0xffff {
				return s.fail(st, ErrStoredLengths)
			}
			s.left = int(v & 0xffff)
			// Stored blocks are byte-exact from here on.
			s.res.DropAll()
			s.mode = s.nextBlock()
			if s.left > 0 {
				s.mode = modeStored
			}

		case modeStored:
			for s.left > 0 {
				if st.InPos >= len(st.In) {
					return s.leave(st, NeedInput)
				}
				if s.win.avail() == 0 {
					s.flush(st)
					if s.win.avail() == 0 {
						return NeedOutput
					}
				}
				s.win.put(st.In[st.InPos])
				st.InPos++
				s.left--
			}
			s.mode = s.nextBlock()

		case modeTable:
			if !s.needBits(st, 14) {
				return s.leave(st, NeedInput)
			}
			s.header = s.res.Peek(14)
			if s.header&0x1f > 29 || s.header>>5&0x1f > 29 {
				return s.fail(st, ErrSymbolCounts)
			}
			n := s.lenTarget()
			if n < huffman.MetaSyms {
				n = huffman.MetaSyms
			}
			s.lens = make([]uint16, n)
			s.res.Drop(14)
			s.index = 0
			s.mode = modeBTree
			fallthrough

		case modeBTree:
			for s.index < int(4+s.header>>10) {
				if !s.needBits(st, 3) {
					return s.leave(st, NeedInput)
				}
				s.lens[codeOrder[s.index]] = uint16(s.res.Peek(3))
				s.res.Drop(3)
				s.index++
			}
			for s.index < huffman.MetaSyms {
				s.lens[codeOrder[s.index]] = 0
				s.index++
			}
			tab, bits, err := huffman.Build(huffman.Meta, s.lens[:huffman.MetaSyms], huffman.MetaCodeBits)
			if err != nil {
				return s.fail(st, err)
			}
			s.metaTab, s.metaBits = tab, bits
			s.index = 0
			s.mode = modeDTree
			fallthrough

		case modeDTree:
			if r, ok := s.stepDTree(st); !ok {
				return r
			}

		case modeCodes:
			r := s.codes.step(s, st)
			if r != StreamEnd {
				if r == DataError {
					s.mode = modeBad
				}
				s.flush(st)
				return r
			}
			s.codes.release()
			if !s.last {
				s.mode = modeType
				break
			}
			// Hand back one whole pre-fetched byte so the container
			// can read its trailer. Bits past that byte stay pending.
			if s.res.Len() >= 8 && st.InPos > 0 {
				s.res.ReturnByte()
				st.InPos--
			}
			s.mode = modeDry
			fallthrough

		case modeDry:
			s.flush(st)
			if s.win.read != s.win.write {
				return NeedOutput
			}
			s.mode = modeDone
			fallthrough

		case modeDone:
			return StreamEnd

		case modeBad:
			return DataError

		default:
			return StreamError
		}
	}
}

// TrailingBytes drains whole bytes left pre-fetched in the bit
// reservoir after the final block. Step hands one such byte back
// through the input cursor when it can; a byte pre-fetched in an
// earlier call has no cursor to rewind, so the surrounding container
// must take it from here before reading its trailer from the input.
// The final block's padding bits are discarded first. Returns nil
// before the stream has ended.
func (s *Session) TrailingBytes() []byte {
	if s.mode != modeDry && s.mode != modeDone {
		return nil
	}
	s.res.AlignByte()
	var b []byte
	for s.res.Len() >= 8 {
		b = append(b, byte(s.res.Peek(8)))
		s.res.Drop(8)
	}
	return b
}

// nextBlock picks the state after a completed block.
func (s *Session) nextBlock() mode {
	if s.last {
		return modeDry
	}
	return modeType
}

// lenTarget is the total number of code lengths a dynamic header
// declares: 257+HLIT literal/length codes plus 1+HDIST distance codes.
func (s *Session) lenTarget() int {
	return 258 + int(s.header&0x1f) + int(s.header>>5&0x1f)
}

// stepDTree decodes the main alphabets' code lengths with the meta
// tree, builds the literal/length and distance tables, and arms the
// codes decoder. Repeat codes are decoded against the single
// contiguous length list, so a repeat may cross from the
// literal/length lengths into the distance lengths. Returns ok=false
// with a status when the caller should return.
func (s *Session) stepDTree(st *Stream) (Status, bool) {
	target := s.lenTarget()
	for s.index < target {
		// Resolve the next meta symbol without consuming it, so the
		// symbol and its repeat bits commit atomically.
		var here huffman.Entry
		for {
			here = s.metaTab[s.res.Peek(s.metaBits)]
			if uint32(here.Bits) <= s.res.Len() {
				break
			}
			var ok bool
			if st.InPos, ok = s.res.PullByte(st.In, st.InPos); !ok {
				return s.leave(st, NeedInput), false
			}
		}
		c := int(here.Val)
		if here.Op != 0 {
			return s.fail(st, ErrLengthRepeat), false
		}
		if c < 16 {
			s.res.Drop(uint32(here.Bits))
			s.lens[s.index] = uint16(c)
			s.index++
			continue
		}

		var extra, base uint32
		switch c {
		case 16: // copy previous length 3-6 times
			extra, base = 2, 3
		case 17: // 3-10 zeros
			extra, base = 3, 3
		default: // 18: 11-138 zeros
			extra, base = 7, 11
		}
		if !s.needBits(st, uint32(here.Bits)+extra) {
			return s.leave(st, NeedInput), false
		}
		s.res.Drop(uint32(here.Bits))
		n := int(base + s.res.Peek(extra))
		s.res.Drop(extra)

		if s.index+n > target || (c == 16 && s.index < 1) {
			return s.fail(st, ErrLengthRepeat), false
		}
		var v uint16
		if c == 16 {
			v = s.lens[s.index-1]
		}
		for ; n > 0; n-- {
			s.lens[s.index] = v
			s.index++
		}
	}

	// Length lists complete: release the meta tree and build the main
	// tables. The partition into the two alphabets happens only now.
	s.metaTab = nil
	nlit := 257 + int(s.header&0x1f)
	ndist := 1 + int(s.header>>5&0x1f)
	litTab, litBits, err := huffman.Build(huffman.LitLen, s.lens[:nlit], 9)
	if err != nil {
		return s.fail(st, err), false
	}
	distTab, distBits, err := huffman.Build(huffman.Dist, s.lens[nlit:nlit+ndist], 6)
	if err != nil {
		return s.fail(st, err), false
	}
	s.lens = nil
	s.codes.init(litTab, litBits, distTab, distBits)
	s.mode = modeCodes
	return 0, true
}
