package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fluxcodestudio/checkpoint/internal/checklog"
	"github.com/fluxcodestudio/checkpoint/internal/debounce"
	"github.com/fluxcodestudio/checkpoint/internal/executor"
	"github.com/fluxcodestudio/checkpoint/internal/state"
)

// Agent runs the per-project Periodic Agent on a fixed interval: write
// heartbeat, evaluate gates, invoke the Executor with cause "interval",
// write heartbeat again, per spec §4.7. Grounded on the teacher's own
// robfig/cron wrapper shape — one cron.Cron per long-running process,
// a single AddFunc entry, Start/Stop bracketing the process lifetime —
// as used by the pack's dbstash Scheduler.RunOnce caller.
type Agent struct {
	Project  executor.Project
	Interval time.Duration
	GateCfg  debounce.GateConfig
	Log      checklog.Logger

	cron *cron.Cron
}

// Start installs the interval tick and begins running it in the
// background. The interval is expressed as a cron "@every" spec since
// robfig/cron has no plain-duration entrypoint.
func (a *Agent) Start(ctx context.Context) error {
	a.cron = cron.New()
	spec := fmt.Sprintf("@every %s", a.Interval.String())
	_, err := a.cron.AddFunc(spec, func() { a.tick(ctx) })
	if err != nil {
		return fmt.Errorf("scheduling periodic agent: %w", err)
	}
	a.cron.Start()
	return nil
}

// Stop drains any in-flight tick and halts future ticks.
func (a *Agent) Stop() {
	if a.cron == nil {
		return
	}
	<-a.cron.Stop().Done()
}

func (a *Agent) tick(ctx context.Context) {
	pd := state.New(a.Project.StateRoot, a.Project.ID)
	_ = pd.TouchHeartbeat()

	if err := debounce.CheckGates(a.GateCfg, pd, debounce.CauseScheduled); err != nil {
		if a.Log != nil && !isGateSkip(err) {
			a.Log.Error(err, "periodic agent tick blocked")
		}
		_ = pd.TouchHeartbeat()
		return
	}

	if _, err := executor.Run(ctx, a.Project, debounce.CauseScheduled, a.Log); err != nil && a.Log != nil {
		a.Log.Error(err, "scheduled backup failed")
	}
	_ = pd.TouchHeartbeat()
}

func isGateSkip(err error) bool {
	type gate interface{ IsGate() bool }
	g, ok := err.(gate)
	return ok && g.IsGate()
}
