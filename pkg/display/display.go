// Package display is the expression collaborator: it owns the
// LED matrix command surface and tracks what face the robot shows.
package display

import (
	"github.com/golang/glog"

	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

// Driver is the narrow hardware interface. The real matrix driver
// lives outside this repository; Recorder ships for tests and
// simulation.
type Driver interface {
	Show(expression byte) error
	Look(x, y int16) error
	SetBrightness(level byte) error
}

// DefaultBrightness is used until a set-expression command
// overrides it.
const DefaultBrightness byte = 255

// Matrix tracks expression state and forwards it to the driver.
type Matrix struct {
	drv        Driver
	expression byte
	brightness byte
	gazeX      int16
	gazeY      int16
}

// New creates a Matrix over a driver.
func New(drv Driver) *Matrix {
	return &Matrix{drv: drv, brightness: DefaultBrightness}
}

// SetExpression shows an expression. Implements behavior.Display.
func (m *Matrix) SetExpression(id byte) error {
	m.expression = id
	return m.drv.Show(id)
}

// Expression returns the expression currently shown.
func (m *Matrix) Expression() byte {
	return m.expression
}

// SetGaze points the pupils at a position.
func (m *Matrix) SetGaze(x, y int16) error {
	m.gazeX, m.gazeY = x, y
	return m.drv.Look(x, y)
}

// Gaze returns the current gaze position.
func (m *Matrix) Gaze() (x, y int16) {
	return m.gazeX, m.gazeY
}

// SetBrightness adjusts the matrix brightness.
func (m *Matrix) SetBrightness(level byte) error {
	m.brightness = level
	return m.drv.SetBrightness(level)
}

// Brightness returns the current brightness.
func (m *Matrix) Brightness() byte {
	return m.brightness
}

// Bind installs the display command handlers.
func (m *Matrix) Bind(d *protocol.Dispatcher) error {
	if err := d.Bind(protocol.CmdSetExpression, m.onSetExpression); err != nil {
		return err
	}
	return d.Bind(protocol.CmdSetGaze, m.onSetGaze)
}

func (m *Matrix) onSetExpression(payload []byte) {
	cmd, err := protocol.UnmarshalSetExpression(payload)
	if err != nil {
		glog.Warningf("set-expression: %v", err)
		return
	}
	if cmd.Brightness != m.brightness {
		if err := m.SetBrightness(cmd.Brightness); err != nil {
			glog.Warningf("set-expression brightness: %v", err)
		}
	}
	if err := m.SetExpression(cmd.Expression); err != nil {
		glog.Warningf("set-expression: %v", err)
	}
}

func (m *Matrix) onSetGaze(payload []byte) {
	cmd, err := protocol.UnmarshalGaze(payload)
	if err != nil {
		glog.Warningf("set-gaze: %v", err)
		return
	}
	if err := m.SetGaze(cmd.X, cmd.Y); err != nil {
		glog.Warningf("set-gaze: %v", err)
	}
}

// Recorder is a Driver that records calls. Used in tests and by
// the simulated robot.
type Recorder struct {
	Expressions []byte
	Brightness  []byte
	GazeX       []int16
	GazeY       []int16
}

// Show implements Driver.
func (r *Recorder) Show(expression byte) error {
	r.Expressions = append(r.Expressions, expression)
	return nil
}

// Look implements Driver.
func (r *Recorder) Look(x, y int16) error {
	r.GazeX = append(r.GazeX, x)
	r.GazeY = append(r.GazeY, y)
	return nil
}

// SetBrightness implements Driver.
func (r *Recorder) SetBrightness(level byte) error {
	r.Brightness = append(r.Brightness, level)
	return nil
}
