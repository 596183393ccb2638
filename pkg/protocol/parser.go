package protocol

// Parser is a streaming frame parser. Feed it one byte at a
// time in any chunking; the results do not depend on how the
// underlying stream was split.
type Parser struct {
	state   parseState
	cmd     CommandID
	length  uint16
	payload []byte
	pos     int
}

type parseState int

const (
	stateIdle    parseState = iota // discarding until head byte
	stateCommand                   // waiting for command id
	stateLenLo                     // waiting for length low byte
	stateLenHi                     // waiting for length high byte
	statePayload                   // waiting for payload bytes
	stateSum                       // waiting for checksum byte
)

// Result reports the outcome of one parsing step. At most one
// frame attempt completes per step; a Frame is emitted exactly
// once whether its checksum matched or not.
type Result struct {
	// Frame is non-nil when a frame attempt completed.
	Frame *Frame
	// Valid is set when the received checksum matched.
	Valid bool
	// Discarded is set when the in-progress frame was abandoned
	// because its length field claimed more than MaxPayload.
	Discarded bool
}

// Complete reports whether a frame attempt completed this step.
func (r Result) Complete() bool {
	return r.Frame != nil
}

// Reset abandons any in-progress frame and returns to idle.
func (p *Parser) Reset() {
	p.state = stateIdle
	p.payload = nil
	p.pos = 0
}

// Feed consumes one byte.
func (p *Parser) Feed(b byte) (r Result) {
	switch p.state {
	case stateIdle:
		if b == FrameHead {
			p.state = stateCommand
		}
	case stateCommand:
		p.cmd = CommandID(b)
		p.state = stateLenLo
	case stateLenLo:
		p.length = uint16(b)
		p.state = stateLenHi
	case stateLenHi:
		p.length |= uint16(b) << 8
		if p.length > MaxPayload {
			// Corrupted length field. Discard silently and
			// resynchronize on the next head byte.
			p.Reset()
			r.Discarded = true
			return
		}
		p.payload = make([]byte, p.length)
		p.pos = 0
		if p.length == 0 {
			p.state = stateSum
		} else {
			p.state = statePayload
		}
	case statePayload:
		p.payload[p.pos] = b
		p.pos++
		if p.pos == int(p.length) {
			p.state = stateSum
		}
	case stateSum:
		frame := &Frame{Command: p.cmd, Payload: p.payload}
		r.Frame = frame
		r.Valid = frame.Sum() == b
		p.Reset()
	}
	return
}
