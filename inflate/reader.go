package inflate

import (
	"errors"
	"io"
)

// readerBufSize is the input chunk the Reader pulls from its source.
const readerBufSize = 1 << 14

// Reader adapts a Session to io.Reader for callers that do not need
// the push-style API. It decodes a raw DEFLATE stream with the full
// window and no checksum.
type Reader struct {
	r    io.Reader
	sess *Session
	buf  []byte
	st   Stream
	err  error
}

// NewReader returns a Reader decompressing the raw DEFLATE stream
// from r.
func NewReader(r io.Reader) *Reader {
	sess, _ := NewSession(DefaultWindowSize, nil)
	return &Reader{
		r:    r,
		sess: sess,
		buf:  make([]byte, readerBufSize),
	}
}

// Reset discards the Reader's state and makes it read a new stream
// from r, reusing the session's window allocation.
func (z *Reader) Reset(r io.Reader) {
	z.r = r
	z.sess.Reset()
	z.st = Stream{}
	z.err = nil
}

func (z *Reader) Read(p []byte) (int, error) {
	if z.err != nil {
		return 0, z.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	st := &z.st
	st.Out = p
	st.OutPos = 0
	for {
		switch status := z.sess.Step(st); status {
		case StreamEnd:
			z.err = io.EOF
			if st.OutPos > 0 {
				return st.OutPos, nil
			}
			return 0, io.EOF
		case NeedOutput:
			return st.OutPos, nil
		case NeedInput:
			if st.OutPos > 0 {
				// Hand back what we have before blocking on the
				// source again.
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
			st.In = z.buf[:n]
			st.InPos = 0
		case DataError:
			z.err = z.sess.Err()
			return st.OutPos, z.err
		default:
			z.err = errors.New("inflate: session misuse: " + status.String())
			return st.OutPos, z.err
		}
	}
}

// Close releases the underlying session. It does not close the
// source reader.
func (z *Reader) Close() error {
	if z.err == nil {
		z.err = errors.New("inflate: reader closed")
	}
	return z.sess.Close()
}
