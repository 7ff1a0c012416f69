package inflate

import "github.com/vlx-tech/zlib/internal/huffman"

// codesMode enumerates the inner state machine that decodes one
// compressed block's payload.
type codesMode uint8

const (
	codeLen     codesMode = iota // at the start of a literal/length code
	codeLenExt                   // length decoded, extra bits pending
	codeDist                     // at the start of a distance code
	codeDistExt                  // distance decoded, extra bits pending
	codeCopy                     // copying a match from the window
	codeLit                      // one literal byte waiting for window space
	codeBad                      // invalid code seen
)

// codes decodes the compressed body of a single block: literal bytes
// and length/distance back-references, emitted through the session
// window. Like the block decoder around it, every operation can
// suspend on input or output exhaustion and resume losslessly.
type codes struct {
	mode     codesMode
	lit      []huffman.Entry
	dist     []huffman.Entry
	litBits  uint32
	distBits uint32

	length  uint32 // match length; doubles as the pending literal in codeLit
	distVal uint32 // match distance
	extra   uint32 // extra-bit count for the pending base
}

// init arms the decoder with freshly built (or fixed) tables. The
// tables are owned by the codes decoder until release.
func (c *codes) init(lit []huffman.Entry, litBits uint32, dist []huffman.Entry, distBits uint32) {
	*c = codes{
		mode:     codeLen,
		lit:      lit,
		dist:     dist,
		litBits:  litBits,
		distBits: distBits,
	}
}

// release drops the table references.
func (c *codes) release() {
	*c = codes{}
}

// step runs the codes decoder until end-of-block, input or output
// exhaustion, or a data error. StreamEnd here means end of this
// block, not of the stream.
func (c *codes) step(s *Session, st *Stream) Status {
	for {
		switch c.mode {
		case codeLen:
			here, ok := s.decodeSym(st, c.lit, c.litBits)
			if !ok {
				return NeedInput
			}
			switch {
			case here.Op == 0:
				c.length = uint32(here.Val)
				c.mode = codeLit
			case here.Op&32 != 0:
				// End-of-block code.
				c.mode = codeLen
				return StreamEnd
			case here.Op&64 != 0:
				s.err = ErrLitLenCode
				c.mode = codeBad
				return DataError
			default:
				c.length = uint32(here.Val)
				c.extra = uint32(here.Op & 15)
				c.mode = codeLenExt
			}

		case codeLenExt:
			if c.extra > 0 {
				if !s.needBits(st, c.extra) {
					return NeedInput
				}
				c.length += s.res.Peek(c.extra)
				s.res.Drop(c.extra)
			}
			c.mode = codeDist

		case codeDist:
			here, ok := s.decodeSym(st, c.dist, c.distBits)
			if !ok {
				return NeedInput
			}
			if here.Op&64 != 0 || here.Op&16 == 0 {
				s.err = ErrDistCode
				c.mode = codeBad
				return DataError
			}
			c.distVal = uint32(here.Val)
			c.extra = uint32(here.Op & 15)
			c.mode = codeDistExt

		case codeDistExt:
			if c.extra > 0 {
				if !s.needBits(st, c.extra) {
					return NeedInput
				}
				c.distVal += s.res.Peek(c.extra)
				s.res.Drop(c.extra)
			}
			if int(c.distVal) > s.win.have {
				s.err = ErrDistTooFar
				c.mode = codeBad
				return DataError
			}
			c.mode = codeCopy

		case codeCopy:
			for c.length > 0 {
				if s.win.avail() == 0 {
					s.flush(st)
					if s.win.avail() == 0 {
						return NeedOutput
					}
				}
				s.win.copyFrom(int(c.distVal))
				c.length--
			}
			c.mode = codeLen

		case codeLit:
			if s.win.avail() == 0 {
				s.flush(st)
				if s.win.avail() == 0 {
					return NeedOutput
				}
			}
			s.win.put(byte(c.length))
			c.mode = codeLen

		case codeBad:
			return DataError

		default:
			return StreamError
		}
	}
}

// decodeSym resolves one Huffman code from the given table, pulling
// input bytes as needed, and consumes its bits. It reports false on
// input exhaustion with no bits consumed, so the lookup restarts
// cleanly on resume.
func (s *Session) decodeSym(st *Stream, table []huffman.Entry, rootBits uint32) (huffman.Entry, bool) {
	for {
		here := table[s.res.Peek(rootBits)]
		if uint32(here.Bits) <= s.res.Len() {
			if !here.IsLink() {
				s.res.Drop(uint32(here.Bits))
				return here, true
			}
			// Second-level table: index with the bits beyond the root.
			last := here
			for {
				idx := uint32(last.Val) +
					(s.res.Peek(uint32(last.Bits)+uint32(last.Op)) >> last.Bits)
				here = table[idx]
				if uint32(last.Bits)+uint32(here.Bits) <= s.res.Len() {
					s.res.Drop(uint32(last.Bits))
					s.res.Drop(uint32(here.Bits))
					return here, true
				}
				var ok bool
				if st.InPos, ok = s.res.PullByte(st.In, st.InPos); !ok {
					return huffman.Entry{}, false
				}
			}
		}
		var ok bool
		if st.InPos, ok = s.res.PullByte(st.In, st.InPos); !ok {
			return huffman.Entry{}, false
		}
	}
}
