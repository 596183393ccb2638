// Package butler assembles the robot core: frame transport,
// command dispatch, the behavior machine and its collaborators,
// wired onto the tick loop.
package butler

import (
	"io"
	"runtime"
	"time"

	"github.com/golang/glog"

	"github.com/yry1816186-pixel/ButlerX/pkg/behavior"
	"github.com/yry1816186-pixel/ButlerX/pkg/display"
	fx "github.com/yry1816186-pixel/ButlerX/pkg/framework"
	"github.com/yry1816186-pixel/ButlerX/pkg/gimbal"
	"github.com/yry1816186-pixel/ButlerX/pkg/media"
	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
	"github.com/yry1816186-pixel/ButlerX/pkg/sensoric"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultHeartbeatInterval = 5 * time.Second
)

// Options configures a Core. Zero values take defaults; nil
// devices leave the matching command surface unbound to the
// hardware but still parsed.
type Options struct {
	// Link is the outbound byte sink. An io.Reader side, when
	// present, is pumped separately (see Pump).
	Link      io.Writer
	QueueSize int

	HeartbeatInterval time.Duration
	SensorInterval    time.Duration

	DisplayDriver display.Driver
	Sampler       sensoric.Sampler
	Audio         media.AudioDevice
	Camera        media.CameraDevice
}

// Core owns one explicit instance of every moving part. Nothing
// here is global; two Cores in one process stay independent.
type Core struct {
	Transport  *protocol.Transport
	Dispatcher *protocol.Dispatcher
	Machine    *behavior.Machine
	Display    *display.Matrix
	Gimbal     *gimbal.Controller
	Telemetry  *sensoric.Telemetry
	Media      *media.Controller

	heartbeatInterval time.Duration
	started           time.Time
	lastHeartbeat     time.Time
}

// New builds and wires a Core. The returned Core is inert until
// Start and loop registration.
func New(opts Options) (*Core, error) {
	queue := opts.QueueSize
	if queue <= 0 {
		queue = protocol.DefaultQueueSize
	}
	c := &Core{
		Transport:         protocol.NewTransport(opts.Link, queue),
		Dispatcher:        protocol.NewDispatcher(),
		heartbeatInterval: opts.HeartbeatInterval,
	}
	if c.heartbeatInterval == 0 {
		c.heartbeatInterval = DefaultHeartbeatInterval
	}
	c.Transport.Handler = c.Dispatcher

	driver := opts.DisplayDriver
	if driver == nil {
		driver = &display.Recorder{}
	}
	c.Display = display.New(driver)
	c.Gimbal = gimbal.NewController()
	c.Machine = behavior.NewMachine(c.Display, c)
	c.Gimbal.Reporter = c.Machine

	sampler := opts.Sampler
	if sampler == nil {
		sampler = &sensoric.Fixed{}
	}
	c.Telemetry = sensoric.NewTelemetry(sampler, c.Transport)
	if opts.SensorInterval > 0 {
		c.Telemetry.Interval = opts.SensorInterval
	}

	audio := opts.Audio
	if audio == nil {
		audio = &media.StubAudio{}
	}
	camera := opts.Camera
	if camera == nil {
		camera = &media.StubCamera{}
	}
	c.Media = media.NewController(audio, camera, c.Transport)

	if err := c.bind(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Core) bind() error {
	binds := []struct {
		cmd protocol.CommandID
		h   protocol.HandlerFunc
	}{
		{protocol.CmdHeartbeat, c.onHeartbeat},
		{protocol.CmdSetState, c.onSetState},
		{protocol.CmdGetStatus, c.onGetStatus},
		{protocol.CmdSensorData, c.onSensorData},
		{protocol.CmdError, c.onError},
	}
	for _, b := range binds {
		if err := c.Dispatcher.Bind(b.cmd, b.h); err != nil {
			return err
		}
	}
	if err := c.Display.Bind(c.Dispatcher); err != nil {
		return err
	}
	if err := c.Gimbal.Bind(c.Dispatcher); err != nil {
		return err
	}
	return c.Media.Bind(c.Dispatcher)
}

// Start stamps the uptime origin and arms the behavior machine's
// time rule.
func (c *Core) Start() {
	c.started = time.Now()
	c.Machine.Start()
}

// AddToLoop registers every part at its tick stage.
func (c *Core) AddToLoop(loop *fx.Loop) {
	loop.At(fx.StageControl, c.Machine, c.Media)
	loop.At(fx.StageActuate, c.Gimbal)
	loop.At(fx.StageFlush, c.Telemetry, fx.ControlFunc(c.flush))
}

// SendStatus implements behavior.StatusSink: transition notices
// go out as set-state frames carrying the full status snapshot.
func (c *Core) SendStatus(s protocol.Status) error {
	return c.Transport.SendPayload(protocol.CmdSetState, s.Marshal())
}

// Uptime is the time since Start, zero before it.
func (c *Core) Uptime() time.Duration {
	if c.started.IsZero() {
		return 0
	}
	return time.Since(c.started)
}

func (c *Core) onHeartbeat(payload []byte) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	reply := protocol.Heartbeat{
		Uptime:     uint32(c.Uptime() / time.Second),
		FreeMemory: uint32(ms.HeapSys - ms.HeapInuse),
	}
	if err := c.Transport.SendPayload(protocol.CmdHeartbeat, reply.Marshal()); err != nil {
		glog.Warningf("heartbeat reply dropped: %v", err)
	}
}

func (c *Core) onSetState(payload []byte) {
	if len(payload) < 1 {
		c.sendError(protocol.ErrCodeInvalidParam)
		return
	}
	next := behavior.State(payload[0])
	if err := c.Machine.Transition(next); err != nil {
		glog.Warningf("set-state %d rejected: %v", payload[0], err)
		c.sendError(protocol.ErrCodeInvalidParam)
	}
}

func (c *Core) onGetStatus(payload []byte) {
	status := c.Machine.Status()
	if err := c.Transport.SendPayload(protocol.CmdGetStatus, status.Marshal()); err != nil {
		glog.Warningf("status reply dropped: %v", err)
	}
}

func (c *Core) onSensorData(payload []byte) {
	reading, err := protocol.UnmarshalSensorReading(payload)
	if err != nil {
		glog.Warningf("sensor-data: %v", err)
		return
	}
	glog.V(1).Infof("peer sensors: distance=%dmm proximity=%d light=%d",
		reading.Distance, reading.Proximity, reading.Light)
}

func (c *Core) onError(payload []byte) {
	if len(payload) < 1 {
		glog.Warning("error frame with empty payload")
		return
	}
	glog.Warningf("peer error: code=%d", payload[0])
}

func (c *Core) sendError(code protocol.ErrorCode) {
	if err := c.Transport.Send(protocol.ErrorFrame(code)); err != nil {
		glog.Warningf("error frame dropped: %v", err)
	}
}

// flush runs at the flush stage: periodic heartbeat telemetry,
// then one outbound drain.
func (c *Core) flush(cc fx.ControlContext) error {
	now := cc.Time()
	if c.lastHeartbeat.IsZero() {
		c.lastHeartbeat = now
	} else if c.heartbeatInterval > 0 && now.Sub(c.lastHeartbeat) >= c.heartbeatInterval {
		c.onHeartbeat(nil)
		c.lastHeartbeat = now
	}
	return c.Transport.Flush()
}
