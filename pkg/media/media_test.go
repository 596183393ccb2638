package media

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

type tick struct {
	now time.Time
}

func (t tick) Context() context.Context { return context.Background() }
func (t tick) Time() time.Time          { return t.now }
func (t tick) Stage() int               { return 0 }
func (t tick) TriggerNext()             {}

func dispatch(t *testing.T, d *protocol.Dispatcher, cmd protocol.CommandID, payload []byte) {
	t.Helper()
	require.NoError(t, d.Dispatch(&protocol.Frame{Command: cmd, Payload: payload}))
}

func newController(t *testing.T) (*Controller, *StubAudio, *StubCamera, *protocol.Transport, *protocol.Dispatcher) {
	audio := &StubAudio{}
	camera := &StubCamera{Image: []byte{0xff, 0xd8, 0xff, 0xd9}}
	tr := protocol.NewTransport(&bytes.Buffer{}, 8)
	c := NewController(audio, camera, tr)
	d := protocol.NewDispatcher()
	require.NoError(t, c.Bind(d))
	return c, audio, camera, tr, d
}

func TestPlayAudio(t *testing.T) {
	_, audio, _, _, d := newController(t)

	payload := protocol.PlayAudio{Format: 1, SampleRate: 16000, Channels: 1, Samples: []byte{1, 2, 3, 4}}
	dispatch(t, d, protocol.CmdPlayAudio, payload.Marshal())

	require.Len(t, audio.Played, 1)
	require.Equal(t, uint16(16000), audio.Played[0].SampleRate)
	require.Equal(t, []byte{1, 2, 3, 4}, audio.Played[0].Samples)
}

func TestTimedRecording(t *testing.T) {
	c, audio, _, tr, d := newController(t)
	audio.Recorded = []byte{9, 8, 7}

	payload := protocol.RecordControl{Action: protocol.ActionStart, Duration: 2}
	dispatch(t, d, protocol.CmdRecordControl, payload.Marshal())
	require.True(t, c.Recording())

	start := time.Unix(3000, 0)
	require.NoError(t, c.Control(tick{now: start}))
	require.True(t, c.Recording())
	require.Equal(t, 0, tr.Pending())

	require.NoError(t, c.Control(tick{now: start.Add(2 * time.Second)}))
	require.False(t, c.Recording())
	require.Equal(t, 1, tr.Pending())
}

func TestManualRecordingStop(t *testing.T) {
	c, audio, _, tr, d := newController(t)
	audio.Recorded = []byte{1}

	start := protocol.RecordControl{Action: protocol.ActionStart}
	dispatch(t, d, protocol.CmdRecordControl, start.Marshal())

	// No duration: ticks far in the future must not stop it.
	require.NoError(t, c.Control(tick{now: time.Unix(5000, 0)}))
	require.NoError(t, c.Control(tick{now: time.Unix(9000, 0)}))
	require.True(t, c.Recording())

	stop := protocol.RecordControl{Action: protocol.ActionStop}
	dispatch(t, d, protocol.CmdRecordControl, stop.Marshal())
	require.False(t, c.Recording())
	require.Equal(t, 1, tr.Pending())
}

func TestSingleCapture(t *testing.T) {
	c, _, _, tr, d := newController(t)

	payload := protocol.CameraControl{Action: protocol.ActionCapture}
	dispatch(t, d, protocol.CmdCameraControl, payload.Marshal())
	require.False(t, c.Streaming())
	require.Equal(t, 1, tr.Pending())
}

func TestPeriodicCapture(t *testing.T) {
	c, _, _, tr, d := newController(t)

	payload := protocol.CameraControl{Action: protocol.ActionStart, Interval: 1}
	dispatch(t, d, protocol.CmdCameraControl, payload.Marshal())
	require.True(t, c.Streaming())

	start := time.Unix(4000, 0)
	require.NoError(t, c.Control(tick{now: start}))
	require.Equal(t, 1, tr.Pending(), "first tick captures immediately")

	require.NoError(t, c.Control(tick{now: start.Add(200 * time.Millisecond)}))
	require.Equal(t, 1, tr.Pending())

	require.NoError(t, c.Control(tick{now: start.Add(time.Second)}))
	require.Equal(t, 2, tr.Pending())

	stop := protocol.CameraControl{Action: protocol.ActionStop}
	dispatch(t, d, protocol.CmdCameraControl, stop.Marshal())
	require.NoError(t, c.Control(tick{now: start.Add(5 * time.Second)}))
	require.Equal(t, 2, tr.Pending())
}

func TestLargeCaptureChunked(t *testing.T) {
	c, _, camera, tr, _ := newController(t)
	camera.Image = bytes.Repeat([]byte{0xab}, protocol.MaxPayload+100)

	var sink bytes.Buffer
	tr.Sink = &sink

	c.capture()
	require.Equal(t, 2, tr.Pending())
	require.NoError(t, tr.Flush())

	var parser protocol.Parser
	var sizes []int
	for _, b := range sink.Bytes() {
		if r := parser.Feed(b); r.Complete() {
			require.True(t, r.Valid)
			require.Equal(t, protocol.CmdSendImage, r.Frame.Command)
			sizes = append(sizes, len(r.Frame.Payload))
		}
	}
	require.Equal(t, []int{protocol.MaxPayload, 100}, sizes)
}
