package display

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

func TestSetExpressionCommand(t *testing.T) {
	rec := &Recorder{}
	m := New(rec)
	d := protocol.NewDispatcher()
	require.NoError(t, m.Bind(d))

	payload := protocol.SetExpression{Expression: 3, Brightness: 200, Duration: 500}.Marshal()
	require.NoError(t, d.Dispatch(&protocol.Frame{Command: protocol.CmdSetExpression, Payload: payload}))

	require.Equal(t, byte(3), m.Expression())
	require.Equal(t, byte(200), m.Brightness())
	require.Equal(t, []byte{3}, rec.Expressions)
	require.Equal(t, []byte{200}, rec.Brightness)
}

func TestSetGazeCommand(t *testing.T) {
	rec := &Recorder{}
	m := New(rec)
	d := protocol.NewDispatcher()
	require.NoError(t, m.Bind(d))

	payload := protocol.Gaze{X: -2, Y: 3}.Marshal()
	require.NoError(t, d.Dispatch(&protocol.Frame{Command: protocol.CmdSetGaze, Payload: payload}))

	x, y := m.Gaze()
	require.Equal(t, int16(-2), x)
	require.Equal(t, int16(3), y)
	require.Equal(t, []int16{-2}, rec.GazeX)
}

func TestShortPayloadIgnored(t *testing.T) {
	rec := &Recorder{}
	m := New(rec)
	d := protocol.NewDispatcher()
	require.NoError(t, m.Bind(d))

	require.NoError(t, d.Dispatch(&protocol.Frame{Command: protocol.CmdSetExpression, Payload: []byte{1}}))
	require.Empty(t, rec.Expressions, "malformed payload must not reach the driver")
}
