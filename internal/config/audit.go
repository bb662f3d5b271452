package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// AuditFileName is the config change log, appended to on every successful
// Set (§4.2: "accompanied by an audit-log append recording
// {timestamp, key, old→new}"). Grounded on the teacher's
// internal/audit/audit.go append-only JSONL pattern.
const AuditFileName = "config-audit.jsonl"

// AuditEntry is one recorded config change.
type AuditEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Key       string    `json:"key"`
	OldValue  any       `json:"old_value"`
	NewValue  any       `json:"new_value"`
}

// AppendAudit appends one entry to <stateDir>/config-audit.jsonl.
func AppendAudit(stateDir, key string, oldValue, newValue any) error {
	if err := os.MkdirAll(stateDir, 0o750); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	path := filepath.Join(stateDir, AuditFileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening config audit log: %w", err)
	}
	defer f.Close()

	entry := AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Key:       key,
		OldValue:  oldValue,
		NewValue:  newValue,
	}

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entry); err != nil {
		return fmt.Errorf("writing config audit entry: %w", err)
	}
	return bw.Flush()
}
