package dbpipeline

import (
	"context"
	"net"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/execcmd"
)

var systemdServiceName = map[Engine]string{
	EnginePostgres: "postgresql",
	EngineMySQL:    "mysql",
	EngineMongo:    "mongod",
}

// engineReachable does a bounded TCP dial against the descriptor's
// host:port; it never touches credentials.
func engineReachable(ctx context.Context, d Descriptor) bool {
	port := d.Port
	if port == "" {
		port = defaultPort(d.Engine)
	}
	host := d.Host
	if host == "" {
		host = "localhost"
	}
	dialer := net.Dialer{Timeout: 2 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func defaultPort(e Engine) string {
	switch e {
	case EnginePostgres:
		return "5432"
	case EngineMySQL:
		return "3306"
	case EngineMongo:
		return "27017"
	default:
		return ""
	}
}

// startLocalEngine/stopLocalEngine shell out to the system's service
// manager. Failures are reported to the caller: a failed start marks that
// descriptor's dump failed (a capability error) without stopping the other
// dumps, and a failed stop is ignored.
func startLocalEngine(ctx context.Context, d Descriptor) error {
	svc, ok := systemdServiceName[d.Engine]
	if !ok {
		return nil
	}
	res := execcmd.Run(ctx, 15*time.Second, nil, nil, "systemctl", "start", svc)
	return res.Err
}

func stopLocalEngine(ctx context.Context, d Descriptor) error {
	svc, ok := systemdServiceName[d.Engine]
	if !ok {
		return nil
	}
	res := execcmd.Run(ctx, 15*time.Second, nil, nil, "systemctl", "stop", svc)
	return res.Err
}

// waitForReady polls engineReachable until the bound elapses.
func waitForReady(ctx context.Context, d Descriptor, bound time.Duration) bool {
	deadline := time.Now().Add(bound)
	for time.Now().Before(deadline) {
		if engineReachable(ctx, d) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(250 * time.Millisecond):
		}
	}
	return engineReachable(ctx, d)
}
