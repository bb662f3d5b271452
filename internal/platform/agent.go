package platform

import "context"

// AgentStatus is the result of status_agent per §4.1's contract.
type AgentStatus string

const (
	AgentRunning AgentStatus = "running"
	AgentStopped AgentStatus = "stopped"
	AgentUnknown AgentStatus = "unknown"
)

// Schedule is declarative: either a periodic interval or a keep-alive
// restart-on-exit policy, per §4.1 ("the schedule parameter is declarative:
// either an interval in seconds or a keep-alive flag").
type Schedule struct {
	IntervalSeconds int
	KeepAlive       bool
}

// AgentManager is the daemon-manager sub-facade of the Platform Facade
// (C1): install_agent/remove_agent/start_agent/stop_agent/status_agent,
// mapped onto the host's service manager. install_agent/start_agent return
// a capability error (checkerr.ErrCapabilityMissing) when the host has no
// usable service manager, per §7's CAPABILITY_* category.
type AgentManager interface {
	Install(ctx context.Context, project, scriptPath string, env map[string]string, sched Schedule) error
	Remove(ctx context.Context, project string) error
	Start(ctx context.Context, project string) error
	Stop(ctx context.Context, project string) error
	Status(ctx context.Context, project string) (AgentStatus, error)
}
