package protocol

import "encoding/binary"

// Fixed positional payload layouts. Multi-byte fields are
// little-endian, matching the wire contract.

// Heartbeat reports liveness of the robot core.
type Heartbeat struct {
	Uptime     uint32 // seconds since core start
	FreeMemory uint32 // bytes
}

// Marshal encodes the heartbeat payload.
func (h Heartbeat) Marshal() []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], h.Uptime)
	binary.LittleEndian.PutUint32(b[4:8], h.FreeMemory)
	return b
}

// UnmarshalHeartbeat decodes a heartbeat payload.
func UnmarshalHeartbeat(p []byte) (h Heartbeat, err error) {
	if len(p) < 8 {
		return h, ErrShortPayload
	}
	h.Uptime = binary.LittleEndian.Uint32(p[0:4])
	h.FreeMemory = binary.LittleEndian.Uint32(p[4:8])
	return
}

// Status summarizes the externally visible robot state.
type Status struct {
	State      byte
	Battery    byte
	Expression byte
	ServoH     uint16
	ServoV     uint16
}

// Marshal encodes the status payload.
func (s Status) Marshal() []byte {
	b := make([]byte, 7)
	b[0] = s.State
	b[1] = s.Battery
	b[2] = s.Expression
	binary.LittleEndian.PutUint16(b[3:5], s.ServoH)
	binary.LittleEndian.PutUint16(b[5:7], s.ServoV)
	return b
}

// UnmarshalStatus decodes a status payload.
func UnmarshalStatus(p []byte) (s Status, err error) {
	if len(p) < 7 {
		return s, ErrShortPayload
	}
	s.State = p[0]
	s.Battery = p[1]
	s.Expression = p[2]
	s.ServoH = binary.LittleEndian.Uint16(p[3:5])
	s.ServoV = binary.LittleEndian.Uint16(p[5:7])
	return
}

// SensorReading carries one distance/proximity/light sample.
type SensorReading struct {
	Distance  uint16 // centimeters
	Proximity byte   // 1 when an object is within threshold
	Light     byte   // 0-255 ambient level
}

// Marshal encodes the sensor-data payload.
func (r SensorReading) Marshal() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint16(b[0:2], r.Distance)
	b[2] = r.Proximity
	b[3] = r.Light
	return b
}

// UnmarshalSensorReading decodes a sensor-data payload.
func UnmarshalSensorReading(p []byte) (r SensorReading, err error) {
	if len(p) < 4 {
		return r, ErrShortPayload
	}
	r.Distance = binary.LittleEndian.Uint16(p[0:2])
	r.Proximity = p[2]
	r.Light = p[3]
	return
}

// SetExpression asks the display for an expression.
type SetExpression struct {
	Expression byte
	Brightness byte
	Duration   uint16 // milliseconds, 0 keeps it until replaced
}

// Marshal encodes the set-expression payload.
func (e SetExpression) Marshal() []byte {
	b := make([]byte, 4)
	b[0] = e.Expression
	b[1] = e.Brightness
	binary.LittleEndian.PutUint16(b[2:4], e.Duration)
	return b
}

// UnmarshalSetExpression decodes a set-expression payload.
func UnmarshalSetExpression(p []byte) (e SetExpression, err error) {
	if len(p) < 4 {
		return e, ErrShortPayload
	}
	e.Expression = p[0]
	e.Brightness = p[1]
	e.Duration = binary.LittleEndian.Uint16(p[2:4])
	return
}

// SetServo asks one gimbal axis for a target angle.
type SetServo struct {
	Servo byte // axis id
	Angle uint16
	Speed uint16 // degrees per tick, 0 selects a default
}

// Marshal encodes the set-servo payload.
func (s SetServo) Marshal() []byte {
	b := make([]byte, 5)
	b[0] = s.Servo
	binary.LittleEndian.PutUint16(b[1:3], s.Angle)
	binary.LittleEndian.PutUint16(b[3:5], s.Speed)
	return b
}

// UnmarshalSetServo decodes a set-servo payload.
func UnmarshalSetServo(p []byte) (s SetServo, err error) {
	if len(p) < 5 {
		return s, ErrShortPayload
	}
	s.Servo = p[0]
	s.Angle = binary.LittleEndian.Uint16(p[1:3])
	s.Speed = binary.LittleEndian.Uint16(p[3:5])
	return
}

// PlayAudio carries audio samples to play.
type PlayAudio struct {
	Format     byte
	SampleRate uint16
	Channels   byte
	Samples    []byte
}

// Marshal encodes the play-audio payload.
func (a PlayAudio) Marshal() []byte {
	b := make([]byte, 4+len(a.Samples))
	b[0] = a.Format
	binary.LittleEndian.PutUint16(b[1:3], a.SampleRate)
	b[3] = a.Channels
	copy(b[4:], a.Samples)
	return b
}

// UnmarshalPlayAudio decodes a play-audio payload.
func UnmarshalPlayAudio(p []byte) (a PlayAudio, err error) {
	if len(p) < 4 {
		return a, ErrShortPayload
	}
	a.Format = p[0]
	a.SampleRate = binary.LittleEndian.Uint16(p[1:3])
	a.Channels = p[3]
	a.Samples = p[4:]
	return
}

// RecordControl starts or stops audio recording.
type RecordControl struct {
	Action   byte // ActionStop or ActionStart
	Duration byte // seconds, 0 until stopped
}

// Marshal encodes the record-control payload.
func (r RecordControl) Marshal() []byte {
	return []byte{r.Action, r.Duration}
}

// UnmarshalRecordControl decodes a record-control payload.
func UnmarshalRecordControl(p []byte) (r RecordControl, err error) {
	if len(p) < 2 {
		return r, ErrShortPayload
	}
	r.Action = p[0]
	r.Duration = p[1]
	return
}

// CameraControl starts, stops or triggers the camera.
type CameraControl struct {
	Action   byte // ActionStop, ActionStart or ActionCapture
	Interval byte // seconds between automatic captures
}

// Marshal encodes the camera-control payload.
func (c CameraControl) Marshal() []byte {
	return []byte{c.Action, c.Interval}
}

// UnmarshalCameraControl decodes a camera-control payload.
func UnmarshalCameraControl(p []byte) (c CameraControl, err error) {
	if len(p) < 2 {
		return c, ErrShortPayload
	}
	c.Action = p[0]
	c.Interval = p[1]
	return
}

// Control actions shared by record-control and camera-control.
const (
	ActionStop    byte = 0
	ActionStart   byte = 1
	ActionCapture byte = 2 // camera only
)

// Gaze points the display pupils at a position.
type Gaze struct {
	X int16
	Y int16
}

// Marshal encodes the set-gaze payload.
func (g Gaze) Marshal() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint16(b[0:2], uint16(g.X))
	binary.LittleEndian.PutUint16(b[2:4], uint16(g.Y))
	return b
}

// UnmarshalGaze decodes a set-gaze payload.
func UnmarshalGaze(p []byte) (g Gaze, err error) {
	if len(p) < 4 {
		return g, ErrShortPayload
	}
	g.X = int16(binary.LittleEndian.Uint16(p[0:2]))
	g.Y = int16(binary.LittleEndian.Uint16(p[2:4]))
	return
}

// ErrorCode categorizes error frames.
type ErrorCode byte

// Error codes carried by error frames.
const (
	ErrCodeOK           ErrorCode = 0
	ErrCodeMemory       ErrorCode = 1
	ErrCodeTimeout      ErrorCode = 2
	ErrCodeSensor       ErrorCode = 3
	ErrCodeActuator     ErrorCode = 4
	ErrCodeBatteryLow   ErrorCode = 5
	ErrCodeOverheat     ErrorCode = 6
	ErrCodeInvalidParam ErrorCode = 7
)

// ErrorFrame builds an error frame for a code.
func ErrorFrame(code ErrorCode) *Frame {
	return &Frame{Command: CmdError, Payload: []byte{byte(code)}}
}
