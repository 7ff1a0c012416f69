package zlib

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	kzlib "github.com/klauspost/compress/zlib"
	"gotest.tools/v3/assert"
)

// compress produces a zlib stream for data at the given level.
func compress(t *testing.T, data []byte, level int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := kzlib.NewWriterLevel(&buf, level)
	assert.NilError(t, err)
	_, err = w.Write(data)
	assert.NilError(t, err)
	assert.NilError(t, w.Close())
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"short", "hello, zlib"},
		{"repetitive", strings.Repeat("compress me. ", 10000)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stream := compress(t, []byte(tc.data), kzlib.BestCompression)
			rc, err := NewReader(bytes.NewReader(stream))
			assert.NilError(t, err)
			out, err := io.ReadAll(rc)
			assert.NilError(t, err)
			assert.Equal(t, string(out), tc.data)
			assert.NilError(t, rc.Close())
		})
	}
}

func TestKnownVectors(t *testing.T) {
	// Hand-checked streams: default header, one fixed block, big-endian
	// Adler-32 trailer.
	cases := []struct {
		name   string
		stream []byte
		want   string
	}{
		{"empty", []byte{0x78, 0x9c, 0x03, 0x00, 0x00, 0x00, 0x00, 0x01}, ""},
		{"a", []byte{0x78, 0x9c, 0x4b, 0x04, 0x00, 0x00, 0x62, 0x00, 0x62}, "a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rc, err := NewReader(bytes.NewReader(tc.stream))
			assert.NilError(t, err)
			out, err := io.ReadAll(rc)
			assert.NilError(t, err)
			assert.Equal(t, string(out), tc.want)
		})
	}
}

func TestOneByteSource(t *testing.T) {
	data := strings.Repeat("tiny reads, same bytes. ", 500)
	stream := compress(t, []byte(data), kzlib.DefaultCompression)
	rc, err := NewReader(iotest.OneByteReader(bytes.NewReader(stream)))
	assert.NilError(t, err)
	out, err := io.ReadAll(iotest.OneByteReader(rc))
	assert.NilError(t, err)
	assert.Equal(t, string(out), data)
}

func TestBadHeader(t *testing.T) {
	cases := []struct {
		name   string
		stream []byte
		want   error
	}{
		{"method", []byte{0x79, 0x9c}, ErrHeader},
		{"window", []byte{0x88, 0x98}, ErrHeader},
		{"fcheck", []byte{0x78, 0x9d}, ErrHeader},
		{"dictionary", []byte{0x78, 0xbb}, ErrDictionary},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(tc.stream))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestShortHeader(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{0x78}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBadChecksum(t *testing.T) {
	stream := compress(t, []byte("checksummed"), kzlib.BestCompression)
	stream[len(stream)-1] ^= 0x01
	rc, err := NewReader(bytes.NewReader(stream))
	assert.NilError(t, err)
	_, err = io.ReadAll(rc)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestTruncatedStream(t *testing.T) {
	stream := compress(t, []byte(strings.Repeat("cut short ", 100)), kzlib.BestCompression)
	rc, err := NewReader(bytes.NewReader(stream[:len(stream)-6]))
	assert.NilError(t, err)
	_, err = io.ReadAll(rc)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestCorruptBody(t *testing.T) {
	// A reserved block type right after the header.
	stream := []byte{0x78, 0x9c, 0x07}
	rc, err := NewReader(bytes.NewReader(stream))
	assert.NilError(t, err)
	_, err = io.ReadAll(rc)
	assert.Assert(t, err != nil)
	assert.Assert(t, err != io.ErrUnexpectedEOF, "got %v", err)
}

func TestTrailingGarbageIgnored(t *testing.T) {
	stream := compress(t, []byte("payload"), kzlib.BestCompression)
	stream = append(stream, "not part of the stream"...)
	rc, err := NewReader(bytes.NewReader(stream))
	assert.NilError(t, err)
	out, err := io.ReadAll(rc)
	assert.NilError(t, err)
	assert.Equal(t, string(out), "payload")
}

func TestReset(t *testing.T) {
	first := compress(t, []byte("first stream"), kzlib.BestCompression)
	second := compress(t, []byte("second stream"), kzlib.BestSpeed)

	rc, err := NewReader(bytes.NewReader(first))
	assert.NilError(t, err)
	out, err := io.ReadAll(rc)
	assert.NilError(t, err)
	assert.Equal(t, string(out), "first stream")

	r, ok := rc.(Resetter)
	assert.Assert(t, ok)
	assert.NilError(t, r.Reset(bytes.NewReader(second)))
	out, err = io.ReadAll(rc)
	assert.NilError(t, err)
	assert.Equal(t, string(out), "second stream")
}

func TestReadAfterClose(t *testing.T) {
	stream := compress(t, []byte("done"), kzlib.BestCompression)
	rc, err := NewReader(bytes.NewReader(stream))
	assert.NilError(t, err)
	assert.NilError(t, rc.Close())
	_, err = rc.Read(make([]byte, 8))
	assert.Assert(t, err != nil)
}

func FuzzReader(f *testing.F) {
	f.Add([]byte{0x78, 0x9c, 0x03, 0x00, 0x00, 0x00, 0x00, 0x01})
	f.Add(compressBytes([]byte("seed data for the fuzzer")))
	f.Add([]byte{0x78, 0x9c, 0x07})
	f.Add([]byte{0x78})
	f.Fuzz(func(t *testing.T, data []byte) {
		rc, err := NewReader(bytes.NewReader(data))
		if err != nil {
			return
		}
		// Must terminate without panicking; errors are fine.
		_, _ = io.Copy(io.Discard, rc)
		_ = rc.Close()
	})
}

func compressBytes(data []byte) []byte {
	var buf bytes.Buffer
	w := kzlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}
