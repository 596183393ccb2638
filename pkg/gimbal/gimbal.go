// Package gimbal is the two-axis servo collaborator: it accepts
// set-servo commands and sweeps each axis toward its target a few
// degrees per tick.
package gimbal

import (
	"github.com/golang/glog"

	fx "github.com/yry1816186-pixel/ButlerX/pkg/framework"
	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

// Axis ids carried in set-servo payloads.
const (
	AxisHorizontal byte = 0
	AxisVertical   byte = 1
)

const (
	// HomeAngle is the center position for both axes.
	HomeAngle uint16 = 90
	// MaxAngle bounds commanded targets.
	MaxAngle uint16 = 180
	// DefaultSpeed in degrees per tick when the command says 0.
	DefaultSpeed uint16 = 5
)

// Reporter receives angle updates after each sweep step. The
// behavior machine implements this so status frames carry live
// positions.
type Reporter interface {
	SetServoAngles(h, v uint16)
}

type axis struct {
	current uint16
	target  uint16
	speed   uint16
}

func (a *axis) step() bool {
	if a.current == a.target {
		return false
	}
	speed := a.speed
	if speed == 0 {
		speed = DefaultSpeed
	}
	if a.current < a.target {
		if a.target-a.current < speed {
			a.current = a.target
		} else {
			a.current += speed
		}
	} else {
		if a.current-a.target < speed {
			a.current = a.target
		} else {
			a.current -= speed
		}
	}
	return true
}

// Controller tracks and sweeps both servo axes.
type Controller struct {
	Reporter Reporter

	axes [2]axis
}

// NewController creates a Controller with both axes homed.
func NewController() *Controller {
	c := &Controller{}
	for i := range c.axes {
		c.axes[i].current = HomeAngle
		c.axes[i].target = HomeAngle
	}
	return c
}

// Bind installs the set-servo command handler.
func (c *Controller) Bind(d *protocol.Dispatcher) error {
	return d.Bind(protocol.CmdSetServo, c.onSetServo)
}

func (c *Controller) onSetServo(payload []byte) {
	cmd, err := protocol.UnmarshalSetServo(payload)
	if err != nil {
		glog.Warningf("set-servo: %v", err)
		return
	}
	if int(cmd.Servo) >= len(c.axes) {
		glog.Warningf("set-servo: unknown axis %d", cmd.Servo)
		return
	}
	angle := cmd.Angle
	if angle > MaxAngle {
		angle = MaxAngle
	}
	c.axes[cmd.Servo].target = angle
	c.axes[cmd.Servo].speed = cmd.Speed
	glog.V(1).Infof("servo %d -> %d at %d deg/tick", cmd.Servo, angle, cmd.Speed)
}

// Control implements framework.Controller: one sweep step per tick.
func (c *Controller) Control(fx.ControlContext) error {
	moved := false
	for i := range c.axes {
		if c.axes[i].step() {
			moved = true
		}
	}
	if moved && c.Reporter != nil {
		c.Reporter.SetServoAngles(c.axes[AxisHorizontal].current, c.axes[AxisVertical].current)
	}
	return nil
}

// Angles returns the current horizontal and vertical angles.
func (c *Controller) Angles() (h, v uint16) {
	return c.axes[AxisHorizontal].current, c.axes[AxisVertical].current
}

// Home retargets both axes to the center position.
func (c *Controller) Home() {
	for i := range c.axes {
		c.axes[i].target = HomeAngle
		c.axes[i].speed = DefaultSpeed
	}
}
