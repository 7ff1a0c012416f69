package inflate

import "errors"

// Status is the result of a single Step call.
type Status int

const (
	// NeedInput means the input buffer was exhausted mid-stream. The
	// session is valid; resume with more input.
	NeedInput Status = iota
	// NeedOutput means the output buffer filled (or the window cannot
	// drain). The session is valid; resume with more output space.
	NeedOutput
	// StreamEnd means the final block has been decoded and every
	// output byte delivered. The session should be closed.
	StreamEnd
	// DataError means the bitstream is corrupt. The condition is
	// sticky: every further Step returns DataError, and Err reports
	// the offending construct.
	DataError
	// MemError is reserved for allocation failure building tables or
	// sub-decoders. The Go runtime aborts on allocation failure, so
	// the value exists for API parity and is never returned.
	MemError
	// StreamError means caller misuse: a nil session or stream, or a
	// session used after Close.
	StreamError
)

// String returns the zlib-style name of the status.
func (s Status) String() string {
	switch s {
	case NeedInput:
		return "need input"
	case NeedOutput:
		return "need output"
	case StreamEnd:
		return "stream end"
	case DataError:
		return "data error"
	case MemError:
		return "mem error"
	case StreamError:
		return "stream error"
	}
	return "unknown status"
}

// Corrupt-stream conditions reported through (*Session).Err. Tree
// construction failures surface the internal/huffman sentinels
// verbatim.
var (
	// ErrBlockType means a block header carried the reserved type 11.
	ErrBlockType = errors.New("inflate: invalid block type")
	// ErrStoredLengths means a stored block's LEN and NLEN words are
	// not one's complements of each other.
	ErrStoredLengths = errors.New("inflate: invalid stored block lengths")
	// ErrSymbolCounts means a dynamic header declared more than 286
	// literal/length or 30 distance codes.
	ErrSymbolCounts = errors.New("inflate: too many length or distance symbols")
	// ErrLengthRepeat means a code-length repeat had no previous code
	// to copy or ran past the end of the length lists.
	ErrLengthRepeat = errors.New("inflate: invalid bit length repeat")
	// ErrLitLenCode means a compressed block used a literal/length
	// code outside the declared alphabet.
	ErrLitLenCode = errors.New("inflate: invalid literal/length code")
	// ErrDistCode means a compressed block used a distance code
	// outside the declared alphabet.
	ErrDistCode = errors.New("inflate: invalid distance code")
	// ErrDistTooFar means a back-reference reached past the start of
	// the output produced this session, or past the window.
	ErrDistTooFar = errors.New("inflate: invalid distance too far back")
	// ErrWindowSize is returned by NewSession for a window below one
	// byte.
	ErrWindowSize = errors.New("inflate: window size must be at least 1")
)
