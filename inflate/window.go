package inflate

// window is the circular output buffer shared by the block decoder,
// the codes decoder, and the flush controller. Bytes accumulate
// between read and write; read==write means empty. The write pointer
// wraps to the start only while read is elsewhere, so full and empty
// stay distinguishable.
type window struct {
	buf   []byte
	read  int // next byte to deliver
	write int // next byte to fill
	have  int // history available for back-references, capped at len(buf)
}

func (w *window) reset() {
	w.read = 0
	w.write = 0
	w.have = 0
}

// avail returns the number of bytes writable before the next flush
// boundary: up to the end of the buffer, or up to one short of read.
func (w *window) avail() int {
	if w.write < w.read {
		return w.read - w.write - 1
	}
	return len(w.buf) - w.write
}

// put stores one byte at the write pointer. The caller must have
// checked avail; put wraps the pointer when it reaches the end and
// read has moved off the start.
func (w *window) put(b byte) {
	w.buf[w.write] = b
	w.write++
	if w.have < len(w.buf) {
		w.have++
	}
	if w.write == len(w.buf) && w.read != 0 {
		w.write = 0
	}
}

// copyFrom emits one byte from dist bytes back in the window. The
// caller has already validated dist against have.
func (w *window) copyFrom(dist int) {
	from := w.write - dist
	if from < 0 {
		from += len(w.buf)
	}
	w.put(w.buf[from])
}

// flush delivers window bytes into the caller's output buffer, in
// window order with at most one wrap, updating the checksum over
// exactly the delivered bytes and advancing the read pointer. Bytes
// that do not fit stay in the window.
func (s *Session) flush(st *Stream) {
	w := &s.win
	for pass := 0; pass < 2; pass++ {
		n := w.write - w.read
		if w.read > w.write {
			n = len(w.buf) - w.read
		}
		if space := len(st.Out) - st.OutPos; n > space {
			n = space
		}
		if n <= 0 {
			return
		}
		chunk := w.buf[w.read : w.read+n]
		copy(st.Out[st.OutPos:], chunk)
		if s.check != nil {
			s.check.Write(chunk)
		}
		st.OutPos += n
		w.read += n
		if w.read == len(w.buf) {
			w.read = 0
			if w.write == len(w.buf) {
				w.write = 0
			}
		}
	}
}
