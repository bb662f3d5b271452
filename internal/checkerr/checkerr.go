// Package checkerr implements the error taxonomy from spec §7: categories,
// stable codes, and a one-line suggested fix, wrapping an inner error the
// same way the teacher wraps platform failures with fmt.Errorf("...: %w").
package checkerr

import "fmt"

// Category is one of the top-level buckets from §7. It is a bucket, not a
// Go type hierarchy — call sites compare Category values, not error types.
type Category string

const (
	CategoryPerm       Category = "PERM"
	CategoryDisk       Category = "DISK"
	CategoryConf       Category = "CONF"
	CategoryDB         Category = "DB"
	CategoryNet        Category = "NET"
	CategoryFile       Category = "FILE"
	CategoryCapability Category = "CAPABILITY"
	CategoryUnknown    Category = "UNKNOWN"
)

// Error is a categorized, user-facing error. Code is stable (e.g.
// "EDISK003") and Fix is the one-line suggested remedy from §7's table.
type Error struct {
	Category Category
	Code     string
	Fix      string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err under category/code/fix. err may be nil for conditions
// detected directly (e.g. a missing file) rather than propagated from a
// lower call.
func New(category Category, code, fix string, err error) *Error {
	return &Error{Category: category, Code: code, Fix: fix, Err: err}
}

// Well-known codes referenced directly by name in §7 and §8's scenarios.
var (
	// Pre-flight / gate conditions. These are expected, not exceptional:
	// §7's propagation policy says they are never logged as errors.
	ErrPaused = New(CategoryConf, "ECONF_PAUSED", "remove .checkpoint-paused to resume backups", nil)

	ErrDriveUnreachable = New(CategoryDisk, "EDISK002", "mount the backup drive or disable drive_verification_enabled", nil)

	ErrDiskCritical = New(CategoryDisk, "EDISK003", "free space or increase quota — df -h $BACKUP_DIR", nil)

	ErrLocked = New(CategoryConf, "ECONF_LOCKED", "another backup operation is already running for this project", nil)

	ErrNoChanges = New(CategoryConf, "ECONF_NOCHANGE", "nothing changed since the last backup; use --force to back up anyway", nil)

	ErrCapabilityMissing = New(CategoryCapability, "ECAPABILITY001", "install the missing platform facility (service manager, watcher library, or Docker)", nil)

	ErrDBTimeout = New(CategoryDB, "EDB_TIMEOUT", "increase the dump timeout or investigate a slow/hanging database engine", nil)

	ErrDBToolMissing = New(CategoryCapability, "ECAPABILITY002", "install the database's dump tool (pg_dump, mysqldump, mongodump)", nil)
)

// WithErr returns a copy of a sentinel (like ErrDiskCritical) carrying a
// concrete underlying error, so the taxonomy stays reusable without
// mutating shared sentinels.
func (e *Error) WithErr(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// IsGate reports whether this error represents an expected pre-flight
// condition (pause sentinel, drive missing, disk critical, lock contention,
// nothing changed) rather than a genuine failure — §7: "Pre-flight
// failures ... are not logged as errors."
func (e *Error) IsGate() bool {
	switch e.Code {
	case ErrPaused.Code, ErrDriveUnreachable.Code, ErrDiskCritical.Code, ErrLocked.Code, ErrNoChanges.Code:
		return true
	default:
		return false
	}
}
