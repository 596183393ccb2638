// Package media is the audio/camera collaborator. It owns the
// playback, recording and capture command surface and emits
// record-audio and send-image telemetry frames.
package media

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/yry1816186-pixel/ButlerX/pkg/framework"
	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

// AudioDevice is the narrow codec interface. The I2S wiring is
// out of scope; Stub implementations ship for tests.
type AudioDevice interface {
	Play(audio protocol.PlayAudio) error
	StartRecording() error
	StopRecording() ([]byte, error)
}

// CameraDevice captures one JPEG frame per call.
type CameraDevice interface {
	Capture() ([]byte, error)
}

// Controller drives both devices from dispatched commands.
type Controller struct {
	Audio     AudioDevice
	Camera    CameraDevice
	Transport *protocol.Transport

	recording      bool
	recordLimit    time.Duration // zero means record until stopped
	recordStarted  time.Time     // stamped on the first tick after start

	streaming       bool
	captureInterval time.Duration
	lastCapture     time.Time
}

// NewController creates a media Controller.
func NewController(audio AudioDevice, camera CameraDevice, transport *protocol.Transport) *Controller {
	return &Controller{Audio: audio, Camera: camera, Transport: transport}
}

// Bind installs the media command handlers.
func (c *Controller) Bind(d *protocol.Dispatcher) error {
	binds := []struct {
		cmd protocol.CommandID
		h   protocol.HandlerFunc
	}{
		{protocol.CmdPlayAudio, c.onPlayAudio},
		{protocol.CmdRecordControl, c.onRecordControl},
		{protocol.CmdCameraControl, c.onCameraControl},
		{protocol.CmdRecordAudio, c.onInboundAudio},
		{protocol.CmdSendImage, c.onInboundImage},
	}
	for _, b := range binds {
		if err := d.Bind(b.cmd, b.h); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) onPlayAudio(payload []byte) {
	audio, err := protocol.UnmarshalPlayAudio(payload)
	if err != nil {
		glog.Warningf("play-audio: %v", err)
		return
	}
	if err := c.Audio.Play(audio); err != nil {
		glog.Warningf("play-audio: %v", err)
	}
}

func (c *Controller) onRecordControl(payload []byte) {
	cmd, err := protocol.UnmarshalRecordControl(payload)
	if err != nil {
		glog.Warningf("record-control: %v", err)
		return
	}
	switch cmd.Action {
	case protocol.ActionStart:
		if err := c.Audio.StartRecording(); err != nil {
			glog.Warningf("record-control start: %v", err)
			return
		}
		c.recording = true
		c.recordLimit = time.Duration(cmd.Duration) * time.Second
		c.recordStarted = time.Time{}
	case protocol.ActionStop:
		c.finishRecording()
	default:
		glog.Warningf("record-control: unknown action %d", cmd.Action)
	}
}

func (c *Controller) onCameraControl(payload []byte) {
	cmd, err := protocol.UnmarshalCameraControl(payload)
	if err != nil {
		glog.Warningf("camera-control: %v", err)
		return
	}
	switch cmd.Action {
	case protocol.ActionStart:
		c.streaming = true
		c.captureInterval = time.Duration(cmd.Interval) * time.Second
		if c.captureInterval == 0 {
			c.captureInterval = time.Second
		}
		c.lastCapture = time.Time{}
	case protocol.ActionStop:
		c.streaming = false
	case protocol.ActionCapture:
		c.capture()
	default:
		glog.Warningf("camera-control: unknown action %d", cmd.Action)
	}
}

// Inbound telemetry commands arriving on the robot side are a
// host-direction contract; acknowledge them as diagnostics only.
func (c *Controller) onInboundAudio(payload []byte) {
	glog.V(1).Infof("inbound record-audio frame: %d bytes", len(payload))
}

func (c *Controller) onInboundImage(payload []byte) {
	glog.V(1).Infof("inbound send-image frame: %d bytes", len(payload))
}

// Control implements framework.Controller: timed recording stop
// and periodic capture.
func (c *Controller) Control(cc fx.ControlContext) error {
	now := cc.Time()
	if c.recording {
		if c.recordStarted.IsZero() {
			c.recordStarted = now
		}
		if c.recordLimit > 0 && now.Sub(c.recordStarted) >= c.recordLimit {
			c.finishRecording()
		}
	}
	if c.streaming && (c.lastCapture.IsZero() || now.Sub(c.lastCapture) >= c.captureInterval) {
		c.lastCapture = now
		c.capture()
	}
	return nil
}

// Recording reports whether a recording is in progress.
func (c *Controller) Recording() bool {
	return c.recording
}

// Streaming reports whether periodic captures are active.
func (c *Controller) Streaming() bool {
	return c.streaming
}

func (c *Controller) finishRecording() {
	if !c.recording {
		return
	}
	c.recording = false
	samples, err := c.Audio.StopRecording()
	if err != nil {
		glog.Warningf("record-control stop: %v", err)
		return
	}
	c.sendChunked(protocol.CmdRecordAudio, samples)
}

func (c *Controller) capture() {
	image, err := c.Camera.Capture()
	if err != nil {
		glog.Warningf("camera capture: %v", err)
		return
	}
	c.sendChunked(protocol.CmdSendImage, image)
}

// sendChunked splits data into frame-sized pieces. Delivery is
// best-effort under queue back-pressure.
func (c *Controller) sendChunked(cmd protocol.CommandID, data []byte) {
	for len(data) > 0 {
		n := len(data)
		if n > protocol.MaxPayload {
			n = protocol.MaxPayload
		}
		if err := c.Transport.SendPayload(cmd, data[:n]); err != nil {
			glog.V(1).Infof("%s chunk dropped: %v", cmd, err)
			return
		}
		data = data[n:]
	}
}

// StubAudio is an AudioDevice for tests and simulation.
type StubAudio struct {
	Played   []protocol.PlayAudio
	Recorded []byte
}

// Play implements AudioDevice.
func (s *StubAudio) Play(audio protocol.PlayAudio) error {
	s.Played = append(s.Played, audio)
	return nil
}

// StartRecording implements AudioDevice.
func (s *StubAudio) StartRecording() error { return nil }

// StopRecording implements AudioDevice.
func (s *StubAudio) StopRecording() ([]byte, error) {
	return s.Recorded, nil
}

// StubCamera is a CameraDevice for tests and simulation.
type StubCamera struct {
	Image []byte
}

// Capture implements CameraDevice.
func (s *StubCamera) Capture() ([]byte, error) {
	return s.Image, nil
}
