// Package sensoric is the distance/proximity/light collaborator.
// It samples through a narrow interface and emits sensor-data
// telemetry frames at a fixed interval.
package sensoric

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/yry1816186-pixel/ButlerX/pkg/framework"
	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

// Sampler reads the sensors. The real HC-SR04/photocell wiring is
// out of scope; Fixed ships for tests and simulation.
type Sampler interface {
	Sample() (protocol.SensorReading, error)
}

// DefaultInterval between telemetry frames.
const DefaultInterval = time.Second

// Telemetry periodically samples and enqueues sensor-data frames.
// Delivery is best-effort: queue rejections are tolerated.
type Telemetry struct {
	Sampler   Sampler
	Transport *protocol.Transport
	Interval  time.Duration

	last time.Time
}

// NewTelemetry creates a Telemetry emitter.
func NewTelemetry(sampler Sampler, transport *protocol.Transport) *Telemetry {
	return &Telemetry{
		Sampler:   sampler,
		Transport: transport,
		Interval:  DefaultInterval,
	}
}

// Control implements framework.Controller.
func (t *Telemetry) Control(cc fx.ControlContext) error {
	now := cc.Time()
	if !t.last.IsZero() && now.Sub(t.last) < t.Interval {
		return nil
	}
	t.last = now

	reading, err := t.Sampler.Sample()
	if err != nil {
		glog.Warningf("sensor sample: %v", err)
		return nil
	}
	if err := t.Transport.SendPayload(protocol.CmdSensorData, reading.Marshal()); err != nil {
		// Telemetry is best-effort; drop and move on.
		glog.V(1).Infof("sensor frame dropped: %v", err)
	}
	return nil
}

// Fixed is a Sampler returning a constant reading.
type Fixed struct {
	Reading protocol.SensorReading
}

// Sample implements Sampler.
func (f *Fixed) Sample() (protocol.SensorReading, error) {
	return f.Reading, nil
}
