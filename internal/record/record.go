// Package record persists Backup Records: one append-only JSON-lines entry
// per Executor run, plus the helpers used to summarize them for `status`
// and `verify`.
package record

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal state of one Executor run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Cause is why the Executor ran, mirroring the debounce package's Cause.
type Cause string

const (
	CauseSession  Cause = "session"
	CauseInterval Cause = "interval"
	CauseWatcher  Cause = "watcher"
	CauseManual   Cause = "manual"
)

// DBOutcome is one database descriptor's dump result within a run.
type DBOutcome struct {
	Engine  string `json:"engine"`
	Target  string `json:"target"`
	Outcome Outcome `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

// Record is one Backup Record, per spec §3.
type Record struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"project_id"`
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	Outcome   Outcome     `json:"outcome"`
	Cause     Cause       `json:"cause"`
	Databases []DBOutcome `json:"databases,omitempty"`
	BytesWritten int64    `json:"bytes_written"`
	BackupPaths  []string `json:"backup_paths,omitempty"`
	Error        string   `json:"error,omitempty"`
}

const fileName = "backup-records.jsonl"

func path(stateDir string) string {
	return filepath.Join(stateDir, fileName)
}

// New starts a Record; callers fill in fields as the Executor progresses
// and call Append once End/Outcome are set.
func New(projectID string, cause Cause) Record {
	return Record{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Start:     time.Now().UTC(),
		Cause:     cause,
	}
}

// Append writes r as one JSON line to the per-project record log.
func Append(stateDir string, r Record) error {
	if err := os.MkdirAll(stateDir, 0o750); err != nil {
		return err
	}
	f, err := os.OpenFile(path(stateDir), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return bw.Flush()
}

// Last returns the most recent Record, or the zero value and false if none
// has been recorded yet.
func Last(stateDir string) (Record, bool, error) {
	all, err := All(stateDir)
	if err != nil || len(all) == 0 {
		return Record{}, false, err
	}
	return all[len(all)-1], true, nil
}

// All reads every Record in the log, oldest first. A missing file reads as
// no records, not an error.
func All(stateDir string) ([]Record, error) {
	f, err := os.Open(path(stateDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, sc.Err()
}
