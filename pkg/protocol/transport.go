package protocol

import (
	"io"
	"sync/atomic"

	"github.com/golang/glog"
)

// FrameHandler receives validated inbound frames.
type FrameHandler interface {
	HandleFrame(*Frame) error
}

// FrameObserver is notified of every frame drained to the wire.
// Used by telemetry bridges; must not block.
type FrameObserver interface {
	ObserveOutbound(*Frame)
}

// DefaultQueueSize bounds the outbound queue when unspecified.
const DefaultQueueSize = 16

// Stats holds transport diagnostic counters.
type Stats struct {
	FramesIn  uint64 // valid frames delivered to the handler
	FramesOut uint64 // frames drained to the sink
	SumErrors uint64 // checksum mismatches
	Oversize  uint64 // defensive resets from corrupted length fields
	Rejected  uint64 // enqueue attempts against a full queue
	Unhandled uint64 // valid frames with no bound handler
}

// Transport parses the inbound byte stream and drains queued
// outbound frames. The outbound queue is safe for producers on
// other goroutines; Feed and Flush belong to the tick loop.
type Transport struct {
	Sink     io.Writer
	Handler  FrameHandler
	Observer FrameObserver

	parser Parser
	queue  chan *Frame

	framesIn  atomic.Uint64
	framesOut atomic.Uint64
	sumErrors atomic.Uint64
	oversize  atomic.Uint64
	rejected  atomic.Uint64
	unhandled atomic.Uint64
}

// NewTransport creates a Transport writing to sink.
// queueSize <= 0 selects DefaultQueueSize.
func NewTransport(sink io.Writer, queueSize int) *Transport {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Transport{
		Sink:  sink,
		queue: make(chan *Frame, queueSize),
	}
}

// Feed pushes received bytes through the parser. Valid frames go
// to the handler synchronously; framing errors are counted and
// logged, never fatal.
func (t *Transport) Feed(data []byte) {
	for _, b := range data {
		r := t.parser.Feed(b)
		switch {
		case r.Discarded:
			t.oversize.Add(1)
			glog.Warning("frame discarded: length field exceeds maximum")
		case !r.Complete():
		case !r.Valid:
			t.sumErrors.Add(1)
			glog.Warningf("checksum mismatch on %s frame", r.Frame.Command)
		default:
			t.framesIn.Add(1)
			if glog.V(2) {
				glog.Infof("RCV %s len=%d", r.Frame.Command, len(r.Frame.Payload))
			}
			if h := t.Handler; h != nil {
				if err := h.HandleFrame(r.Frame); err != nil {
					t.unhandled.Add(1)
					glog.Warningf("dispatch: %v", err)
				}
			}
		}
	}
}

// Send appends a frame to the outbound queue. A full queue
// rejects the newest frame with ErrQueueFull without blocking.
func (t *Transport) Send(f *Frame) error {
	select {
	case t.queue <- f:
		return nil
	default:
		t.rejected.Add(1)
		return ErrQueueFull
	}
}

// SendPayload builds and enqueues a frame in one step.
func (t *Transport) SendPayload(cmd CommandID, payload []byte) error {
	f, err := New(cmd, payload)
	if err != nil {
		return err
	}
	return t.Send(f)
}

// Flush drains queued frames to the sink in FIFO order. A write
// error aborts the drain: the failed frame is dropped, frames
// behind it stay queued and later frames are never corrupted.
func (t *Transport) Flush() error {
	for {
		select {
		case f := <-t.queue:
			if _, err := f.WriteTo(t.Sink); err != nil {
				return err
			}
			t.framesOut.Add(1)
			if glog.V(2) {
				glog.Infof("SND %s len=%d", f.Command, len(f.Payload))
			}
			if obs := t.Observer; obs != nil {
				obs.ObserveOutbound(f)
			}
		default:
			return nil
		}
	}
}

// Pending reports the number of queued outbound frames.
func (t *Transport) Pending() int {
	return len(t.queue)
}

// Stats snapshots the diagnostic counters.
func (t *Transport) Stats() Stats {
	return Stats{
		FramesIn:  t.framesIn.Load(),
		FramesOut: t.framesOut.Load(),
		SumErrors: t.sumErrors.Load(),
		Oversize:  t.oversize.Load(),
		Rejected:  t.rejected.Load(),
		Unhandled: t.unhandled.Load(),
	}
}
