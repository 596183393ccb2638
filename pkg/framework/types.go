package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Controller defines a unit of per-tick controlling logic.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// TimeSource provides the time for controlling logic.
type TimeSource interface {
	Time() time.Time
}

// ControlContext provides the context of the current tick.
type ControlContext interface {
	TimeSource
	// Context retrieves context.Context.
	Context() context.Context
	// Stage gets the stage currently being executed.
	Stage() int

	LoopControl
}

// LoopControl exposes access to the controlling loop.
type LoopControl interface {
	// TriggerNext schedules one more tick immediately after
	// the current one completes.
	TriggerNext()
}

// Tick stages, executed in this fixed order on every tick.
const (
	// StageSense reads inputs: link bytes, frame feed, dispatch.
	StageSense int = iota
	// StageControl runs decision logic: behavior rules, collaborators.
	StageControl
	// StageActuate drives outputs: servo sweep, display refresh.
	StageActuate
	// StageFlush drains the outbound queue and periodic telemetry.
	StageFlush

	StageCount
)
