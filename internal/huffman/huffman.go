// Package huffman builds the canonical Huffman decoding tables used by
// the DEFLATE block decoder.
//
// A table is a root array of 1<<root entries indexed by the low root
// bits of the stream, followed by second-level sub-tables for codes
// longer than the root width. Each entry tells the codes decoder what
// the matched bits mean: a literal, a length/distance base with extra
// bits, the end-of-block marker, a sub-table link, or an invalid code.
package huffman

import "errors"

// MaxCodeBits is the longest Huffman code DEFLATE permits in the
// literal/length and distance alphabets. The code-length meta-alphabet
// is limited to 7 bits.
const (
	MaxCodeBits  = 15
	MetaCodeBits = 7
)

// Alphabet sizes fixed by the format.
const (
	MaxLitLenSyms = 288
	MaxDistSyms   = 30
	MetaSyms      = 19
)

// Table size limits. Computed over all permissible code-length sets;
// a build that would exceed them indicates an internal error, not bad
// input.
const (
	enoughLitLen = 852
	enoughDist   = 592
)

// Entry is a single decoding-table entry.
//
// Op encodes the entry kind:
//
//	0         literal (Val is the symbol)
//	16 + e    length or distance base in Val, with e extra bits (e in 0..13)
//	32 + 64   end-of-block marker
//	64        invalid code
//	1..15     sub-table link: Op is the sub-table's index width and
//	          Val its offset within the table slice
//
// Bits is the number of stream bits the entry consumes (for a link
// entry, the root width).
type Entry struct {
	Op   uint8
	Bits uint8
	Val  uint16
}

// IsLink reports whether the entry points at a second-level table.
func (e Entry) IsLink() bool { return e.Op != 0 && e.Op&0xf0 == 0 }

// Kind selects the alphabet a table is built for. The kind determines
// how symbols map to entry operations.
type Kind int

const (
	// Meta is the 19-symbol code-length alphabet of a dynamic block
	// header. Every symbol is a literal.
	Meta Kind = iota
	// LitLen is the literal/length alphabet: symbols below 256 are
	// literals, 256 is end-of-block, and 257+ carry length bases.
	LitLen
	// Dist is the distance alphabet: every symbol carries a distance
	// base.
	Dist
)

// Errors returned by Build.
var (
	// ErrOversubscribed means the code lengths describe more codes
	// than the bit space can hold.
	ErrOversubscribed = errors.New("huffman: over-subscribed code length set")
	// ErrIncomplete means the code lengths leave part of the bit space
	// unused. DEFLATE permits this only for a single-code set in the
	// literal/length and distance alphabets.
	ErrIncomplete = errors.New("huffman: incomplete code length set")
	// ErrTableSize means the build would exceed the precomputed table
	// bound for the alphabet.
	ErrTableSize = errors.New("huffman: table size exceeds bound")
)

// Length and distance symbol decode tables from the format. Entries
// are pre-encoded as Entry.Op (16 + extra bits) and Entry.Val (base).
// The two out-of-range symbols at the end of each alphabet map to
// invalid-code entries.
var (
	lengthBase = [29]uint16{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtra = [29]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
	distBase = [30]uint16{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193,
		12289, 16385, 24577,
	}
	distExtra = [30]uint8{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)

const (
	opEndOfBlock = 32 + 64
	opInvalid    = 64
)

// symbolEntry returns the Op/Val pair for a decoded symbol of the
// given kind.
func symbolEntry(kind Kind, sym int) (uint8, uint16) {
	switch kind {
	case LitLen:
		switch {
		case sym < 256:
			return 0, uint16(sym)
		case sym == 256:
			return opEndOfBlock, 0
		case sym-257 < len(lengthBase):
			return 16 + lengthExtra[sym-257], lengthBase[sym-257]
		default:
			// Symbols 286 and 287 exist only to fill out the static
			// tree and must not appear in the data.
			return opInvalid, 0
		}
	case Dist:
		if sym < len(distBase) {
			return 16 + distExtra[sym], distBase[sym]
		}
		return opInvalid, 0
	default:
		return 0, uint16(sym)
	}
}

// Build constructs a decoding table for the given code lengths,
// indexed by symbol. root is the requested root-table width; the
// returned width may be smaller when the longest code is shorter.
//
// An over-subscribed or incomplete set is rejected, except that a
// single-code set is accepted for the LitLen and Dist alphabets (the
// format has no way to express zero distance codes other than a lone
// zero-length or one-bit code).
func Build(kind Kind, lens []uint16, root uint32) ([]Entry, uint32, error) {
	// Count codes per length.
	var count [MaxCodeBits + 1]uint16
	for _, l := range lens {
		count[l]++
	}

	// Bound root by the shortest and longest code in use.
	max := uint32(MaxCodeBits)
	for max >= 1 && count[max] == 0 {
		max--
	}
	if max == 0 {
		// No symbols at all: return a one-bit table of invalid codes
		// so the decoder trips on the first lookup.
		table := []Entry{
			{Op: opInvalid, Bits: 1},
			{Op: opInvalid, Bits: 1},
		}
		return table, 1, nil
	}
	if root > max {
		root = max
	}
	min := uint32(1)
	for min < max && count[min] == 0 {
		min++
	}
	if root < min {
		root = min
	}

	// Check for an over-subscribed or incomplete set.
	left := 1
	for l := uint32(1); l <= MaxCodeBits; l++ {
		left <<= 1
		left -= int(count[l])
		if left < 0 {
			return nil, 0, ErrOversubscribed
		}
	}
	if left > 0 && (kind == Meta || max != 1) {
		return nil, 0, ErrIncomplete
	}

	// Sort symbols by code length, then by symbol order within each
	// length (canonical ordering).
	var offs [MaxCodeBits + 1]uint16
	for l := uint32(1); l < MaxCodeBits; l++ {
		offs[l+1] = offs[l] + count[l]
	}
	work := make([]uint16, len(lens))
	for sym, l := range lens {
		if l != 0 {
			work[offs[l]] = uint16(sym)
			offs[l]++
		}
	}

	bound := tableBound(kind)
	table := make([]Entry, 1<<root)

	var (
		huff uint32 // bit-reversed code value, incremented per symbol
		sym  int    // index into work
		next uint32 // offset of the current sub-table
		low  = ^uint32(0)
		curr = root // index width of the current (sub-)table
		drop uint32 // root bits dropped before sub-table indexing
		used = uint32(1) << root
	)
	if used > uint32(bound) {
		return nil, 0, ErrTableSize
	}

	for l := min; ; {
		op, val := symbolEntry(kind, int(work[sym]))
		here := Entry{Op: op, Bits: uint8(l - drop), Val: val}

		// Replicate the entry across every table slot whose low bits
		// match the code.
		incr := uint32(1) << (l - drop)
		for fill := uint32(1) << curr; fill >= incr; {
			fill -= incr
			table[next+(huff>>drop)+fill] = here
		}

		// Backwards-increment the code of length l.
		step := uint32(1) << (l - 1)
		for huff&step != 0 {
			step >>= 1
		}
		if step != 0 {
			huff = (huff & (step - 1)) + step
		} else {
			huff = 0
		}

		sym++
		count[l]--
		if count[l] == 0 {
			if l == max {
				break
			}
			l = uint32(lens[work[sym]])
		}

		// Open a new sub-table when the code outgrows the root and the
		// root-indexed prefix changes.
		if l > root && huff&bitMask(root) != low {
			if drop == 0 {
				drop = root
			}
			next += uint32(1) << curr

			// Size the sub-table to the longest code sharing this
			// prefix.
			curr = l - drop
			subLeft := 1 << curr
			for curr+drop < max {
				subLeft -= int(count[curr+drop])
				if subLeft <= 0 {
					break
				}
				curr++
				subLeft <<= 1
			}

			used += uint32(1) << curr
			if used > uint32(bound) {
				return nil, 0, ErrTableSize
			}
			if int(used) > len(table) {
				table = append(table, make([]Entry, int(used)-len(table))...)
			}

			low = huff & bitMask(root)
			table[low] = Entry{
				Op:   uint8(curr),
				Bits: uint8(root),
				Val:  uint16(next),
			}
		}
	}

	// An incomplete single-code set leaves exactly one slot pattern
	// unfilled; mark it invalid.
	if huff != 0 {
		table[next+(huff>>drop)] = Entry{Op: opInvalid, Bits: uint8(max - drop)}
	}
	return table, root, nil
}

func tableBound(kind Kind) int {
	switch kind {
	case LitLen:
		return enoughLitLen
	case Dist:
		return enoughDist
	default:
		return 1 << MetaCodeBits
	}
}

func bitMask(n uint32) uint32 { return 1<<n - 1 }
