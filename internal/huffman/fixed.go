package huffman

import "sync"

// Static (fixed-Huffman) tables, built once on first use.
//
// The static literal/length tree defines 288 codes: lengths 8 for
// 0..143, 9 for 144..255, 7 for 256..279, and 8 for 280..287. The
// static distance tree defines 32 five-bit codes; the last two fill
// out the code space and decode as invalid.
var (
	fixedOnce     sync.Once
	fixedLit      []Entry
	fixedLitBits  uint32
	fixedDist     []Entry
	fixedDistBits uint32
)

// Fixed returns the decoding tables for fixed-Huffman blocks along
// with their root widths. The tables are shared constants; callers
// must not modify them.
func Fixed() (lit []Entry, litBits uint32, dist []Entry, distBits uint32) {
	fixedOnce.Do(func() {
		lens := make([]uint16, MaxLitLenSyms)
		for i := range lens {
			switch {
			case i < 144:
				lens[i] = 8
			case i < 256:
				lens[i] = 9
			case i < 280:
				lens[i] = 7
			default:
				lens[i] = 8
			}
		}
		var err error
		fixedLit, fixedLitBits, err = Build(LitLen, lens, 9)
		if err != nil {
			panic("huffman: static literal/length tree: " + err.Error())
		}

		lens = lens[:32]
		for i := range lens {
			lens[i] = 5
		}
		fixedDist, fixedDistBits, err = Build(Dist, lens, 5)
		if err != nil {
			panic("huffman: static distance tree: " + err.Error())
		}
	})
	return fixedLit, fixedLitBits, fixedDist, fixedDistBits
}
