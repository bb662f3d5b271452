package config

import "time"

// Kind is a recognized config value's primitive type, used by the schema
// for validation and by `config get`'s formatting.
type Kind string

const (
	KindString   Kind = "string"
	KindInt      Kind = "int"
	KindBool     Kind = "bool"
	KindDuration Kind = "duration"
	KindPath     Kind = "path"
	KindEnum     Kind = "enum"
)

// Field describes one recognized dotted key: its type, default, and a
// human description, per §4.2 ("Owns a schema enumerating every
// recognized key, its type, default, and human description").
type Field struct {
	Key         string
	Kind        Kind
	Default     interface{}
	Description string
	EnumValues  []string // only meaningful when Kind == KindEnum
}

// Schema is every key Checkpoint recognizes. Unknown keys encountered on
// load produce a warning but never abort loading (§4.2).
var Schema = []Field{
	{Key: "backup_interval", Kind: KindDuration, Default: time.Hour, Description: "minimum time between successful backups"},
	{Key: "debounce_seconds", Kind: KindInt, Default: 60, Description: "trailing-edge quiet window after the last change event"},
	{Key: "session_idle_threshold", Kind: KindInt, Default: 600, Description: "seconds of inactivity after which the next change starts a new session"},
	{Key: "poll_interval", Kind: KindInt, Default: 30, Description: "fallback poll interval in seconds when native watching is unavailable"},

	{Key: "drive_verification_enabled", Kind: KindBool, Default: false, Description: "require a marker file on the backup drive before running"},
	{Key: "drive_marker_path", Kind: KindPath, Default: "", Description: "path whose presence proves the backup drive is mounted"},

	{Key: "disk_warn_pct", Kind: KindInt, Default: 80, Description: "disk usage percent at which a warning is emitted"},
	{Key: "disk_critical_pct", Kind: KindInt, Default: 90, Description: "disk usage percent at which backups abort with EDISK003"},

	{Key: "backup_root", Kind: KindPath, Default: "", Description: "root directory backups are written under"},
	{Key: "symlink_policy", Kind: KindEnum, Default: "preserve", Description: "how symlinks are handled during file staging", EnumValues: []string{"follow", "preserve", "skip"}},
	{Key: "compression_level", Kind: KindInt, Default: 6, Description: "gzip level applied to archived snapshots"},

	{Key: "encryption_enabled", Kind: KindBool, Default: false, Description: "wrap final artifacts with an age recipient"},
	{Key: "encryption_key_path", Kind: KindPath, Default: "", Description: "path to the age recipient key file"},

	{Key: "critical_files.env", Kind: KindBool, Default: true, Description: "capture .env* files every backup"},
	{Key: "critical_files.credentials", Kind: KindBool, Default: true, Description: "capture keys, PEMs, and tokens every backup"},
	{Key: "critical_files.ide_settings", Kind: KindBool, Default: false, Description: "capture IDE/editor settings"},
	{Key: "critical_files.notes", Kind: KindBool, Default: false, Description: "capture local notes directories"},
	{Key: "critical_files.ai_assistant_artifacts", Kind: KindBool, Default: false, Description: "capture AI-assistant artifact directories"},

	{Key: "database.auto_start_local_db", Kind: KindBool, Default: true, Description: "transiently start a stopped local database engine before dumping"},
	{Key: "database.stop_db_after_backup", Kind: KindBool, Default: true, Description: "stop a database this backup started, once done"},
	{Key: "database.backup_remote_databases", Kind: KindBool, Default: false, Description: "dump databases that are not local"},
	{Key: "database.backup_docker_databases", Kind: KindBool, Default: true, Description: "dump databases running in Docker containers"},
	{Key: "database.auto_start_docker", Kind: KindBool, Default: false, Description: "start the Docker daemon if it is not running"},
	{Key: "database.connection_timeout", Kind: KindDuration, Default: 120 * time.Second, Description: "bound on remote database connections"},
	{Key: "database.dump_timeout", Kind: KindDuration, Default: 10 * time.Minute, Description: "wall-clock bound on a single database dump"},

	{Key: "retention.database.time_based", Kind: KindDuration, Default: 30 * 24 * time.Hour, Description: "delete database backups older than this"},
	{Key: "retention.database.count_based", Kind: KindInt, Default: 30, Description: "keep at most this many database backups"},
	{Key: "retention.files.time_based", Kind: KindDuration, Default: 90 * 24 * time.Hour, Description: "delete file snapshots older than this"},
	{Key: "retention.files.count_based", Kind: KindInt, Default: 60, Description: "keep at most this many file snapshots"},
	{Key: "retention.size_based_mb", Kind: KindInt, Default: 0, Description: "trim oldest backups once total size exceeds this many MB (0 disables)"},
	{Key: "retention.minimum_keep", Kind: KindInt, Default: 3, Description: "inviolable floor: never reduce a bucket below this count"},

	{Key: "notify.urgency_threshold", Kind: KindEnum, Default: "medium", Description: "minimum urgency that produces a notification", EnumValues: []string{"low", "medium", "high", "critical"}},
	{Key: "notify.quiet_hours_start", Kind: KindString, Default: "", Description: "HH:MM start of the quiet-hours suppression window"},
	{Key: "notify.quiet_hours_end", Kind: KindString, Default: "", Description: "HH:MM end of the quiet-hours suppression window"},
	{Key: "notify.repeat_suppress_window", Kind: KindDuration, Default: time.Hour, Description: "suppress a repeated identical alert within this window"},

	{Key: "mirror.enabled", Kind: KindBool, Default: false, Description: "mirror completed backups to a remote object store"},
	{Key: "mirror.bucket", Kind: KindString, Default: "", Description: "destination S3-compatible bucket name"},
	{Key: "mirror.prefix", Kind: KindString, Default: "", Description: "key prefix within the destination bucket"},
	{Key: "mirror.local_cloud_path", Kind: KindPath, Default: "", Description: "a synced folder (Dropbox, iCloud, ...) to copy completed artifacts into"},
}

// ByKey indexes Schema for O(1) lookups.
func ByKey() map[string]Field {
	m := make(map[string]Field, len(Schema))
	for _, f := range Schema {
		m[f.Key] = f
	}
	return m
}
