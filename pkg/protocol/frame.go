package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FrameHead is the synchronization byte opening every frame.
const FrameHead byte = 0xAA

// MaxPayload is the largest payload a frame may carry.
const MaxPayload = 1024

// headerSize covers head, command and the 16-bit length.
const headerSize = 4

// CommandID identifies the operation a frame requests or reports.
type CommandID byte

// Command identifiers. Values are part of the wire contract.
const (
	CmdHeartbeat     CommandID = 0x01
	CmdSetExpression CommandID = 0x02
	CmdSetServo      CommandID = 0x03
	CmdPlayAudio     CommandID = 0x04
	CmdRecordAudio   CommandID = 0x05
	CmdSendImage     CommandID = 0x06
	CmdSetState      CommandID = 0x07
	CmdGetStatus     CommandID = 0x08
	CmdSensorData    CommandID = 0x09
	CmdRecordControl CommandID = 0x0A
	CmdCameraControl CommandID = 0x0B
	CmdSetGaze       CommandID = 0x0C
	CmdError         CommandID = 0xFF
)

var commandNames = map[CommandID]string{
	CmdHeartbeat:     "heartbeat",
	CmdSetExpression: "set-expression",
	CmdSetServo:      "set-servo",
	CmdPlayAudio:     "play-audio",
	CmdRecordAudio:   "record-audio",
	CmdSendImage:     "send-image",
	CmdSetState:      "set-state",
	CmdGetStatus:     "get-status",
	CmdSensorData:    "sensor-data",
	CmdRecordControl: "record-control",
	CmdCameraControl: "camera-control",
	CmdSetGaze:       "set-gaze",
	CmdError:         "error",
}

// IsValid checks the id against the closed command set.
func (c CommandID) IsValid() bool {
	_, ok := commandNames[c]
	return ok
}

// String returns the command name, or hex for unknown ids.
func (c CommandID) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", byte(c))
}

// Frame is a single protocol message. Head, length and checksum
// exist only on the wire; they are derived during encoding.
type Frame struct {
	Command CommandID
	Payload []byte
}

// New creates a Frame after validating the payload bound.
func New(cmd CommandID, payload []byte) (*Frame, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	return &Frame{Command: cmd, Payload: payload}, nil
}

func (f *Frame) header() [headerSize]byte {
	var h [headerSize]byte
	h[0] = FrameHead
	h[1] = byte(f.Command)
	binary.LittleEndian.PutUint16(h[2:], uint16(len(f.Payload)))
	return h
}

// Sum computes the frame checksum over the serialized header
// and payload, independent of any in-memory layout.
func (f *Frame) Sum() byte {
	h := f.header()
	return crcUpdate(crcUpdate(0, h[:]), f.Payload)
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() []byte {
	n := len(f.Payload)
	b := make([]byte, headerSize+n+1)
	h := f.header()
	copy(b, h[:])
	copy(b[headerSize:], f.Payload)
	b[headerSize+n] = Checksum(b[:headerSize+n])
	return b
}

// WriteTo writes encoded bytes.
func (f *Frame) WriteTo(w io.Writer) (n int, err error) {
	return w.Write(f.Bytes())
}

// Checksum computes the 8-bit CRC (polynomial 0x07) over data.
func Checksum(data []byte) byte {
	return crcUpdate(0, data)
}

func crcUpdate(crc byte, data []byte) byte {
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
