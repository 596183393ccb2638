package mqtt

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	fx "github.com/yry1816186-pixel/ButlerX/pkg/framework"
	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

// DefaultInboundDepth bounds buffered inbound command frames.
const DefaultInboundDepth = 16

// DeviceID identifies this robot on the broker. Falls back to a
// fixed name when the machine id is unavailable.
func DeviceID() string {
	id, err := machineid.ID()
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "butler"
	}
	return id
}

// Bridge mirrors the frame link onto MQTT: every outbound frame
// is published under butler/<id>/<kind>, and raw frames received
// on butler/<id>/cmd are injected into the transport on the next
// tick.
type Bridge struct {
	Queue     *Queue
	Transport *protocol.Transport

	deviceID string
	inbound  chan []byte
}

// NewBridge creates a Bridge. An empty id defaults to DeviceID.
func NewBridge(queue *Queue, transport *protocol.Transport, id string) *Bridge {
	if id == "" {
		id = DeviceID()
	}
	return &Bridge{
		Queue:     queue,
		Transport: transport,
		deviceID:  id,
		inbound:   make(chan []byte, DefaultInboundDepth),
	}
}

// ID is the device id used in topics.
func (b *Bridge) ID() string {
	return b.deviceID
}

// Start subscribes the inbound command topic. The broker
// connection itself is managed by the Queue.
func (b *Bridge) Start() {
	b.Queue.Sub("butler/"+b.deviceID+"/cmd", b.onCommand)
}

// onCommand runs on the paho client goroutine; hand the bytes to
// the tick loop instead of touching the transport here.
func (b *Bridge) onCommand(topic string, payload []byte) {
	data := make([]byte, len(payload))
	copy(data, payload)
	select {
	case b.inbound <- data:
	default:
		glog.Warning("inbound command dropped: bridge backlog full")
	}
}

// Control implements framework.Controller at the sense stage:
// drains buffered inbound command bytes into the transport.
func (b *Bridge) Control(fx.ControlContext) error {
	for {
		select {
		case data := <-b.inbound:
			b.Transport.Feed(data)
		default:
			return nil
		}
	}
}

// ObserveOutbound implements protocol.FrameObserver.
func (b *Bridge) ObserveOutbound(f *protocol.Frame) {
	b.Queue.Pub("butler/"+b.deviceID+"/"+kindOf(f.Command), f.Bytes())
}

// kindOf buckets telemetry commands into topic leaves.
func kindOf(cmd protocol.CommandID) string {
	switch cmd {
	case protocol.CmdHeartbeat:
		return "heartbeat"
	case protocol.CmdSetState, protocol.CmdGetStatus:
		return "status"
	case protocol.CmdSensorData:
		return "sensor"
	case protocol.CmdError:
		return "error"
	default:
		return "raw"
	}
}
