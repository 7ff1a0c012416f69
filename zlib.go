package zlib

import (
	"encoding/binary"
	"errors"
	"hash"
	"hash/adler32"
	"io"

	"github.com/vlx-tech/zlib/inflate"
)

const (
	zlibDeflate   = 8 // the only compression method the format defines
	zlibMaxWindow = 7 // CINFO limit: window bits 8..15
)

// Errors returned by the reader.
var (
	// ErrChecksum means the Adler-32 trailer does not match the
	// decompressed data.
	ErrChecksum = errors.New("zlib: invalid checksum")
	// ErrDictionary means the stream requires a preset dictionary,
	// which this decoder does not support.
	ErrDictionary = errors.New("zlib: preset dictionary not supported")
	// ErrHeader means the two-byte stream header is invalid.
	ErrHeader = errors.New("zlib: invalid header")
)

// readerBufSize is the input chunk pulled from the source per refill.
const readerBufSize = 1 << 14

// Resetter is implemented by the ReadCloser returned by NewReader, to
// switch it to a new stream without reallocating the window.
type Resetter interface {
	// Reset discards the reader's state and makes it read from r.
	Reset(r io.Reader) error
}

type reader struct {
	r     io.Reader
	sess  *inflate.Session
	adler hash.Hash32
	buf   []byte
	st    inflate.Stream
	err   error
}

// NewReader creates a ReadCloser decompressing the zlib stream from r.
// The header is read and validated immediately; the Adler-32 trailer
// is verified when the stream ends, after which Read returns io.EOF.
// The returned ReadCloser also implements Resetter.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	z := &reader{
		adler: adler32.New(),
		buf:   make([]byte, readerBufSize),
	}
	z.sess, _ = inflate.NewSession(inflate.DefaultWindowSize, z.adler)
	if err := z.readHeader(r); err != nil {
		return nil, err
	}
	return z, nil
}

// Reset implements Resetter.
func (z *reader) Reset(r io.Reader) error {
	z.sess.Reset()
	z.st = inflate.Stream{}
	z.err = nil
	return z.readHeader(r)
}

// readHeader consumes and validates the CMF/FLG word.
func (z *reader) readHeader(r io.Reader) error {
	z.r = r
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	if hdr[0]&0x0f != zlibDeflate || hdr[0]>>4 > zlibMaxWindow {
		return ErrHeader
	}
	if (uint16(hdr[0])<<8|uint16(hdr[1]))%31 != 0 {
		return ErrHeader
	}
	if hdr[1]&0x20 != 0 {
		return ErrDictionary
	}
	return nil
}

func (z *reader) Read(p []byte) (int, error) {
	if z.err != nil {
		return 0, z.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	st := &z.st
	st.Out, st.OutPos = p, 0
	for {
		switch status := z.sess.Step(st); status {
		case inflate.StreamEnd:
			z.err = z.verifyTrailer()
			if st.OutPos > 0 && z.err == io.EOF {
				return st.OutPos, nil
			}
			return st.OutPos, z.err
		case inflate.NeedOutput:
			return st.OutPos, nil
		case inflate.NeedInput:
			if st.OutPos > 0 {
				return st.OutPos, nil
			}
			n, err := z.r.Read(z.buf)
			if n == 0 {
				if err == nil {
					continue
				}
				if err == io.EOF {
					err = io.ErrUnexpectedEOF
				}
				z.err = err
				return 0, err
			}
			st.In, st.InPos = z.buf[:n], 0
		case inflate.DataError:
			z.err = z.sess.Err()
			return st.OutPos, z.err
		default:
			z.err = errors.New("zlib: reader used after Close")
			return st.OutPos, z.err
		}
	}
}

// verifyTrailer reads the four-byte big-endian Adler-32 trailer —
// first any whole bytes still held in the block layer's bit
// reservoir, then the input from the cursor on (which includes a byte
// the block layer handed back) — and checks it against the running
// checksum. It returns
// io.EOF on success so Read can surface end-of-stream directly.
func (z *reader) verifyTrailer() error {
	var tr [4]byte
	n := copy(tr[:], z.sess.TrailingBytes())
	m := copy(tr[n:], z.st.In[z.st.InPos:])
	z.st.InPos += m
	n += m
	if n < 4 {
		if _, err := io.ReadFull(z.r, tr[n:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
	}
	if binary.BigEndian.Uint32(tr[:]) != z.adler.Sum32() {
		return ErrChecksum
	}
	return io.EOF
}

// Close releases the decompression session. It does not close the
// source reader, and it does not verify a trailer the stream never
// reached.
func (z *reader) Close() error {
	if z.err != nil && z.err != io.EOF {
		return z.err
	}
	z.err = errors.New("zlib: reader used after Close")
	return z.sess.Close()
}
