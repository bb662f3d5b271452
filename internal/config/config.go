// Package config loads and merges Checkpoint's configuration with the
// precedence described in the data model: env vars > per-project config >
// global config > built-in defaults. It follows the teacher's
// internal/config/config.go shape almost exactly — a package-level viper
// singleton, SetEnvPrefix/SetEnvKeyReplacer/AutomaticEnv, SetDefault per
// recognized key — generalized from bd's flat flag-style keys to
// Checkpoint's dotted schema (internal/config/schema.go).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/checklog"
	"github.com/fluxcodestudio/checkpoint/internal/platform"
	"github.com/spf13/viper"
)

var v *viper.Viper

// Source identifies where an effective config value came from, matching
// §3's stated precedence.
type Source string

const (
	SourceDefault Source = "default"
	SourceGlobal  Source = "global"
	SourceProject Source = "project"
	SourceEnv     Source = "env"
)

// Initialize loads and merges config per the precedence env > project >
// global > defaults. projectRoot is the project directory being backed
// up; pass "" when running a command with no specific project in scope
// (e.g. `checkpoint status` across all registered projects).
func Initialize(projectRoot string, log checklog.Logger) error {
	v = viper.New()
	v.SetConfigType("yaml")

	for _, f := range Schema {
		v.SetDefault(f.Key, f.Default)
	}

	globalPath, err := GlobalConfigPath()
	if err == nil && platform.Exists(globalPath) {
		if err := mergeFile(v, globalPath); err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		if log != nil {
			log.Log("loaded global config at %s", globalPath)
		}
	}

	if projectRoot != "" {
		projectPath := filepath.Join(projectRoot, ".checkpoint", "config.yaml")
		if platform.Exists(projectPath) {
			if err := mergeFile(v, projectPath); err != nil {
				return fmt.Errorf("loading project config: %w", err)
			}
			if log != nil {
				log.Log("loaded project config at %s", projectPath)
			}
		}
	}

	v.SetEnvPrefix("CHECKPOINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	warnUnknownKeys(log)
	return nil
}

// mergeFile reads path into v without discarding values already set by a
// lower-precedence source (viper's MergeInConfig, not ReadInConfig).
func mergeFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	return v.MergeInConfig()
}

// GlobalConfigPath returns ~/.config/checkpoint/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "checkpoint", "config.yaml"), nil
}

func warnUnknownKeys(log checklog.Logger) {
	if v == nil || log == nil {
		return
	}
	known := ByKey()
	for _, key := range v.AllKeys() {
		if _, ok := known[key]; !ok {
			log.Log("unknown config key %q ignored", key)
		}
	}
}

// GetString, GetBool, GetInt, GetDuration, and GetStringSlice are the
// typed reads §4.2 calls for ("get_string, get_int, get_bool,
// get_duration, get_path, get_enum"); get_path and get_enum are plain
// strings validated against the schema at write time instead of carrying
// a distinct Go type.

func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

func GetStringSlice(key string) []string {
	if v == nil {
		return nil
	}
	return v.GetStringSlice(key)
}

// AllSettings returns every effective setting, used by `config get` with
// no key argument and by the status dashboard.
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}
