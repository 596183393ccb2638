package framework

import (
	"context"
	"log"
	"time"

	"github.com/golang/glog"
)

// Loop runs registered controllers in fixed stage order on every tick.
type Loop struct {
	Interval time.Duration

	// Clock overrides the tick timestamp source. Tests inject a
	// fake clock here; nil means time.Now.
	Clock func() time.Time

	stages  [StageCount][]Controller
	runners []Runnable

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// DefaultInterval is the tick interval used when none is set.
const DefaultInterval = 10 * time.Millisecond

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wakeUpCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// At registers controllers at a stage.
func (l *Loop) At(stage int, ctls ...Controller) *Loop {
	l.stages[stage] = append(l.stages[stage], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementations.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}

	runner := NewRunnerWith(ctx)
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Step(ctx, l.now())
		case <-l.wakeUpCh:
			l.Step(ctx, l.now())
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.Background()); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

// Step executes one tick with the given timestamp.
// Controller errors are logged and never abort the tick.
func (l *Loop) Step(ctx context.Context, now time.Time) {
	tick := &tickContext{loop: l, ctx: ctx, time: now}
	for stage := 0; stage < StageCount; stage++ {
		tick.stage = stage
		for _, ctl := range l.stages[stage] {
			if err := ctl.Control(tick); err != nil {
				glog.Errorf("controller error at stage %d: %v", stage, err)
			}
		}
	}
}

func (l *Loop) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

type tickContext struct {
	loop  *Loop
	ctx   context.Context
	time  time.Time
	stage int
}

func (t *tickContext) Context() context.Context { return t.ctx }
func (t *tickContext) Time() time.Time          { return t.time }
func (t *tickContext) Stage() int               { return t.stage }
func (t *tickContext) TriggerNext()             { t.loop.TriggerNext() }
