package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

type fakeDisplay struct {
	expressions []byte
}

func (d *fakeDisplay) SetExpression(id byte) error {
	d.expressions = append(d.expressions, id)
	return nil
}

type fakeSink struct {
	statuses []protocol.Status
	err      error
}

func (s *fakeSink) SendStatus(st protocol.Status) error {
	if s.err != nil {
		return s.err
	}
	s.statuses = append(s.statuses, st)
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) time() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestMachine() (*Machine, *fakeDisplay, *fakeSink, *fakeClock) {
	display := &fakeDisplay{}
	sink := &fakeSink{}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m := NewMachine(display, sink).WithClock(clock.time)
	return m, display, sink, clock
}

func TestMachineInit(t *testing.T) {
	m, display, sink, _ := newTestMachine()
	require.Equal(t, Sleep, m.State())
	require.Equal(t, Sleep, m.Previous())
	require.Equal(t, byte(100), m.BatteryLevel())
	require.Equal(t, byte(0x00), m.Expression())
	// Init pushes the initial expression without emitting a frame.
	require.Equal(t, []byte{0x00}, display.expressions)
	require.Empty(t, sink.statuses)
}

func TestTransitionCoverage(t *testing.T) {
	testCases := []struct {
		state      State
		expression byte
	}{
		{Wake, 0x01},
		{Listen, 0x02},
		{Think, 0x03},
		{Talk, 0x04},
		{Sleep, 0x00},
	}

	m, display, sink, _ := newTestMachine()
	for _, tc := range testCases {
		t.Run(tc.state.String(), func(t *testing.T) {
			display.expressions = nil
			sink.statuses = nil
			require.NoError(t, m.Transition(tc.state))
			require.Equal(t, tc.state, m.State())
			require.Equal(t, tc.expression, m.Expression())
			require.Equal(t, []byte{tc.expression}, display.expressions)
			require.Len(t, sink.statuses, 1)
			require.Equal(t, byte(tc.state), sink.statuses[0].State)
			require.Equal(t, tc.expression, sink.statuses[0].Expression)
		})
	}
}

func TestSelfTransitionIdempotent(t *testing.T) {
	m, display, sink, _ := newTestMachine()
	require.NoError(t, m.Transition(Talk))
	display.expressions = nil
	sink.statuses = nil

	require.NoError(t, m.Transition(Talk))
	require.Equal(t, Talk, m.State())
	require.Equal(t, Sleep, m.Previous())
	require.Empty(t, display.expressions)
	require.Empty(t, sink.statuses)
}

func TestInvalidTransitionRejected(t *testing.T) {
	m, display, sink, _ := newTestMachine()
	require.NoError(t, m.Transition(Think))
	display.expressions = nil
	sink.statuses = nil

	for _, bad := range []State{Idle, State(6), State(0xff)} {
		require.Equal(t, ErrInvalidState, m.Transition(bad))
		require.Equal(t, Think, m.State())
		require.Equal(t, Sleep, m.Previous())
		require.Empty(t, display.expressions)
		require.Empty(t, sink.statuses)
	}
}

func TestWakeTimeout(t *testing.T) {
	m, _, sink, clock := newTestMachine()
	m.Start()
	require.NoError(t, m.Transition(Wake))
	sink.statuses = nil

	clock.advance(WakeTimeout)
	m.Update(clock.now)
	require.Equal(t, Wake, m.State(), "threshold must be exceeded, not met")
	require.Empty(t, sink.statuses)

	clock.advance(time.Millisecond)
	m.Update(clock.now)
	require.Equal(t, Listen, m.State())
	require.Equal(t, Wake, m.Previous())
	require.Len(t, sink.statuses, 1)
}

func TestWakeTimeoutOnlyWhileRunning(t *testing.T) {
	m, _, _, clock := newTestMachine()
	require.NoError(t, m.Transition(Wake))

	clock.advance(10 * time.Second)
	m.Update(clock.now)
	require.Equal(t, Wake, m.State(), "stopped machine has no time-driven exits")

	m.Start()
	clock.advance(WakeTimeout + time.Millisecond)
	m.Update(clock.now)
	require.Equal(t, Listen, m.State())
}

func TestNoAutonomousExitElsewhere(t *testing.T) {
	for _, s := range []State{Sleep, Listen, Think, Talk} {
		m, _, _, clock := newTestMachine()
		m.Start()
		require.NoError(t, m.Transition(s))
		clock.advance(time.Hour)
		m.Update(clock.now)
		require.Equal(t, s, m.State())
	}
}

func TestBatteryLevel(t *testing.T) {
	m, _, sink, _ := newTestMachine()
	m.SetBatteryLevel(42)
	require.Equal(t, byte(42), m.BatteryLevel())
	require.Empty(t, sink.statuses, "setter emits nothing")

	m.SetBatteryLevel(250)
	require.Equal(t, byte(100), m.BatteryLevel())

	require.NoError(t, m.Transition(Wake))
	require.Equal(t, byte(100), sink.statuses[0].Battery)
}

func TestServoAnglesInStatus(t *testing.T) {
	m, _, sink, _ := newTestMachine()
	m.SetServoAngles(120, 45)
	require.NoError(t, m.Transition(Listen))
	require.Len(t, sink.statuses, 1)
	require.Equal(t, uint16(120), sink.statuses[0].ServoH)
	require.Equal(t, uint16(45), sink.statuses[0].ServoV)
}

func TestTransitionSurvivesSinkRejection(t *testing.T) {
	display := &fakeDisplay{}
	sink := &fakeSink{err: protocol.ErrQueueFull}
	m := NewMachine(display, sink)
	require.NoError(t, m.Transition(Wake))
	require.Equal(t, Wake, m.State(), "queue back-pressure never blocks a transition")
}

func TestStateStrings(t *testing.T) {
	require.Equal(t, "SLEEP", Sleep.String())
	require.Equal(t, "TALK", Talk.String())
	require.Equal(t, "IDLE", Idle.String())
	require.Equal(t, "UNKNOWN", State(99).String())
	require.False(t, Idle.IsValid())
	require.True(t, Wake.IsValid())
}
