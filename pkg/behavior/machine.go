package behavior

import (
	"errors"
	"time"

	"github.com/golang/glog"

	fx "github.com/yry1816186-pixel/ButlerX/pkg/framework"
	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

// ErrInvalidState rejects a transition to a value outside the
// state enumeration. The machine is left untouched.
var ErrInvalidState = errors.New("invalid state")

// WakeTimeout is how long the machine lingers in Wake before
// moving to Listen on its own.
const WakeTimeout = 2000 * time.Millisecond

// Display is the expression collaborator driven on transitions.
type Display interface {
	SetExpression(id byte) error
}

// StatusSink receives the status frame emitted on every transition.
type StatusSink interface {
	SendStatus(protocol.Status) error
}

// Machine is the finite state machine governing the robot's
// activity. It is single-owner data: all mutation happens on the
// tick loop, through Transition and the explicit setters.
type Machine struct {
	display Display
	sink    StatusSink
	clock   func() time.Time

	current    State
	previous   State
	enterTime  time.Time
	battery    byte
	expression byte
	servoH     uint16
	servoV     uint16
	running    bool
}

// NewMachine creates a Machine in the Sleep state with a full
// battery and both servos homed, and pushes the initial
// expression to the display.
func NewMachine(display Display, sink StatusSink) *Machine {
	m := &Machine{
		display:    display,
		sink:       sink,
		clock:      time.Now,
		current:    Sleep,
		previous:   Sleep,
		battery:    100,
		expression: Sleep.Expression(),
		servoH:     90,
		servoV:     90,
	}
	if m.display != nil {
		if err := m.display.SetExpression(m.expression); err != nil {
			glog.Warningf("display init: %v", err)
		}
	}
	return m
}

// WithClock overrides the time source. Tests use this.
func (m *Machine) WithClock(clock func() time.Time) *Machine {
	m.clock = clock
	return m
}

// Start enables the time-driven rule.
func (m *Machine) Start() {
	m.running = true
	m.enterTime = m.clock()
	glog.Info("state machine started")
}

// Stop disables the time-driven rule. Command-driven transitions
// still apply.
func (m *Machine) Stop() {
	m.running = false
	glog.Info("state machine stopped")
}

// Running reports whether the time-driven rule is active.
func (m *Machine) Running() bool {
	return m.running
}

// Transition moves the machine to next. A self-transition is a
// no-op with no event. An out-of-range value is rejected without
// mutating anything. Otherwise the expression mapped to the new
// state is pushed to the display and one status frame is emitted.
func (m *Machine) Transition(next State) error {
	if !next.IsValid() {
		return ErrInvalidState
	}
	if next == m.current {
		return nil
	}
	glog.Infof("state transition: %s -> %s", m.current, next)
	m.previous = m.current
	m.current = next
	m.enterTime = m.clock()
	m.expression = next.Expression()
	if m.display != nil {
		if err := m.display.SetExpression(m.expression); err != nil {
			glog.Warningf("display: %v", err)
		}
	}
	if m.sink != nil {
		if err := m.sink.SendStatus(m.Status()); err != nil {
			glog.Warningf("status frame dropped: %v", err)
		}
	}
	return nil
}

// Update evaluates the time-driven rule once. Only Wake has an
// autonomous exit; every other state waits for a command.
func (m *Machine) Update(now time.Time) {
	if !m.running {
		return
	}
	if m.current == Wake && now.Sub(m.enterTime) > WakeTimeout {
		if err := m.Transition(Listen); err != nil {
			glog.Errorf("wake timeout transition: %v", err)
		}
	}
}

// Control implements framework.Controller.
func (m *Machine) Control(cc fx.ControlContext) error {
	m.Update(cc.Time())
	return nil
}

// State returns the current state.
func (m *Machine) State() State {
	return m.current
}

// Previous returns the state before the last transition.
func (m *Machine) Previous() State {
	return m.previous
}

// Expression returns the currently selected expression id.
func (m *Machine) Expression() byte {
	return m.expression
}

// SetBatteryLevel stores the battery level. Values above 100 are
// clamped. No transition and no frame is emitted; subsequent
// status frames reflect the new value.
func (m *Machine) SetBatteryLevel(level byte) {
	if level > 100 {
		level = 100
	}
	m.battery = level
	glog.V(1).Infof("battery level: %d%%", level)
}

// BatteryLevel returns the stored battery level.
func (m *Machine) BatteryLevel() byte {
	return m.battery
}

// SetServoAngles records the gimbal angles reported by the servo
// collaborator so status frames carry current positions.
func (m *Machine) SetServoAngles(h, v uint16) {
	m.servoH, m.servoV = h, v
}

// Status snapshots the externally visible state.
func (m *Machine) Status() protocol.Status {
	return protocol.Status{
		State:      byte(m.current),
		Battery:    m.battery,
		Expression: m.expression,
		ServoH:     m.servoH,
		ServoV:     m.servoV,
	}
}
