package hdlc

// State of the streaming frame handler.
type State int

const (
	Idle State = iota
	Receiving
	Ready
)

// Handler reassembles frames from a serial byte stream, one byte at
// a time. Bytes outside flag delimiters are discarded.
type Handler struct {
	state  State
	buf    []byte
	escape bool
}

// State returns the handler's current state.
func (h *Handler) State() State {
	return h.state
}

// HandleByte feeds one received byte and reports whether a complete
// frame is ready to be read with Payload.
func (h *Handler) HandleByte(b byte) bool {
	switch {
	case h.state != Receiving && b == Flag:
		h.buf = h.buf[:0]
		h.escape = false
		h.state = Receiving
	case h.state == Receiving && b == Flag:
		// Back-to-back flags are idle fill between frames.
		if len(h.buf) > 0 {
			h.state = Ready
		}
	case h.state == Receiving:
		switch {
		case b == Escape:
			h.escape = true
		case h.escape:
			switch b {
			case escapeEscaped:
				h.buf = append(h.buf, Escape)
			case flagEscaped:
				h.buf = append(h.buf, Flag)
			}
			h.escape = false
		default:
			h.buf = append(h.buf, b)
		}
	}
	return h.state == Ready
}

// Payload returns the payload of the completed frame and resets the
// handler for the next one.
func (h *Handler) Payload() ([]byte, error) {
	if h.state != Ready {
		return nil, ErrIncompleteFrame
	}
	h.state = Idle
	return checkFCS(h.buf)
}
