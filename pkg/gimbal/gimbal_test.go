package gimbal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/yry1816186-pixel/ButlerX/pkg/framework"
	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

type tick struct{}

func (tick) Context() context.Context { return context.Background() }
func (tick) Time() time.Time          { return time.Unix(0, 0) }
func (tick) Stage() int               { return fx.StageActuate }
func (tick) TriggerNext()             {}

type angles struct {
	h, v uint16
}

func (a *angles) SetServoAngles(h, v uint16) { a.h, a.v = h, v }

func TestSweepTowardTarget(t *testing.T) {
	c := NewController()
	rep := &angles{}
	c.Reporter = rep
	d := protocol.NewDispatcher()
	require.NoError(t, c.Bind(d))

	payload := protocol.SetServo{Servo: AxisHorizontal, Angle: 120, Speed: 10}.Marshal()
	require.NoError(t, d.Dispatch(&protocol.Frame{Command: protocol.CmdSetServo, Payload: payload}))

	require.NoError(t, c.Control(tick{}))
	h, v := c.Angles()
	require.Equal(t, uint16(100), h)
	require.Equal(t, HomeAngle, v)
	require.Equal(t, uint16(100), rep.h)

	require.NoError(t, c.Control(tick{}))
	require.NoError(t, c.Control(tick{}))
	h, _ = c.Angles()
	require.Equal(t, uint16(120), h, "sweep must stop exactly on target")
}

func TestSweepDownAndDefaultSpeed(t *testing.T) {
	c := NewController()
	d := protocol.NewDispatcher()
	require.NoError(t, c.Bind(d))

	payload := protocol.SetServo{Servo: AxisVertical, Angle: 80, Speed: 0}.Marshal()
	require.NoError(t, d.Dispatch(&protocol.Frame{Command: protocol.CmdSetServo, Payload: payload}))

	require.NoError(t, c.Control(tick{}))
	_, v := c.Angles()
	require.Equal(t, HomeAngle-DefaultSpeed, v)

	require.NoError(t, c.Control(tick{}))
	_, v = c.Angles()
	require.Equal(t, uint16(80), v)
}

func TestTargetClampedAndUnknownAxis(t *testing.T) {
	c := NewController()
	d := protocol.NewDispatcher()
	require.NoError(t, c.Bind(d))

	payload := protocol.SetServo{Servo: AxisHorizontal, Angle: 500, Speed: 200}.Marshal()
	require.NoError(t, d.Dispatch(&protocol.Frame{Command: protocol.CmdSetServo, Payload: payload}))
	require.NoError(t, c.Control(tick{}))
	h, _ := c.Angles()
	require.Equal(t, MaxAngle, h)

	// Unknown axis ids are diagnostics, not panics.
	payload = protocol.SetServo{Servo: 9, Angle: 10, Speed: 1}.Marshal()
	require.NoError(t, d.Dispatch(&protocol.Frame{Command: protocol.CmdSetServo, Payload: payload}))
}

func TestHome(t *testing.T) {
	c := NewController()
	d := protocol.NewDispatcher()
	require.NoError(t, c.Bind(d))

	payload := protocol.SetServo{Servo: AxisHorizontal, Angle: 0, Speed: 200}.Marshal()
	require.NoError(t, d.Dispatch(&protocol.Frame{Command: protocol.CmdSetServo, Payload: payload}))
	require.NoError(t, c.Control(tick{}))

	c.Home()
	for i := 0; i < 32; i++ {
		require.NoError(t, c.Control(tick{}))
	}
	h, v := c.Angles()
	require.Equal(t, HomeAngle, h)
	require.Equal(t, HomeAngle, v)
}
