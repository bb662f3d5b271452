package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/fluxcodestudio/checkpoint/internal/checklog"
	"github.com/fluxcodestudio/checkpoint/internal/platform"
	"github.com/fluxcodestudio/checkpoint/internal/registry"
	"github.com/fluxcodestudio/checkpoint/internal/state"
)

// missedHeartbeatFactor is spec §4.7's "N × interval (default 3
// consecutive misses)".
const missedHeartbeatFactor = 3

// Watchdog is the independent long-running process monitoring every
// registered project's Periodic Agent heartbeat, restarting agents whose
// heartbeat has gone stale. Fan-out across projects uses
// sourcegraph/conc's pool, the teacher's own (indirect) concurrency
// dependency, generalized here from single-project sequential checks to
// a bounded-concurrency sweep across however many projects are
// registered.
type Watchdog struct {
	StateRoot string
	Agents    platform.AgentManager
	Notifier  *Notifier
	Log       checklog.Logger

	failureCounts map[string]int
}

// Sweep checks every registered project's heartbeat once, restarting any
// whose agent has missed missedHeartbeatFactor consecutive ticks.
func (w *Watchdog) Sweep(ctx context.Context, intervalFor func(projectID string) time.Duration) error {
	reg, err := registry.New(w.StateRoot)
	if err != nil {
		return fmt.Errorf("opening registry for watchdog sweep: %w", err)
	}
	entries, err := reg.List()
	if err != nil {
		return fmt.Errorf("listing registered projects: %w", err)
	}

	if w.failureCounts == nil {
		w.failureCounts = make(map[string]int)
	}

	p := pool.New().WithMaxGoroutines(8)
	for _, e := range entries {
		e := e
		p.Go(func() {
			w.checkOne(ctx, e, intervalFor(e.ProjectID))
		})
	}
	p.Wait()
	return nil
}

func (w *Watchdog) checkOne(ctx context.Context, entry registry.Entry, interval time.Duration) {
	if interval <= 0 {
		return
	}
	pd := state.New(w.StateRoot, entry.ProjectID)
	age, err := pd.HeartbeatAge()
	if err != nil {
		return // no heartbeat yet; agent may not have ticked once
	}
	if age <= interval*missedHeartbeatFactor {
		w.failureCounts[entry.ProjectID] = 0
		return
	}

	if err := w.Agents.Stop(ctx, entry.ProjectID); err != nil && w.Log != nil {
		w.Log.Error(err, "stopping stalled agent %s before restart", entry.ProjectID)
	}
	restartErr := w.Agents.Start(ctx, entry.ProjectID)
	if restartErr == nil {
		w.failureCounts[entry.ProjectID] = 0
		return
	}

	w.failureCounts[entry.ProjectID]++
	if w.Log != nil {
		w.Log.Error(restartErr, "failed to restart stalled agent %s", entry.ProjectID)
	}
	if w.Notifier != nil && w.failureCounts[entry.ProjectID] >= 2 {
		w.Notifier.Notify(Alert{
			Key:     "agent-restart-failed:" + entry.ProjectID,
			Urgency: UrgencyCritical,
			Message: fmt.Sprintf("periodic agent for %s has missed its heartbeat and could not be restarted", entry.ProjectID),
		}, time.Now())
	}
}
