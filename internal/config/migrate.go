package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/fluxcodestudio/checkpoint/internal/platform"
	"gopkg.in/yaml.v3"
)

// LoadFlat parses a flat key-value config file (§6: "a key-value flat
// file") with BurntSushi/toml and nests its dotted keys into the
// hierarchical shape the schema expects, e.g. a flat
// "retention.database.time_based = '720h'" becomes
// {retention: {database: {time_based: "720h"}}}.
func LoadFlat(path string) (map[string]interface{}, error) {
	flat := map[string]interface{}{}
	if _, err := toml.DecodeFile(path, &flat); err != nil {
		return nil, fmt.Errorf("parsing flat config %s: %w", path, err)
	}

	doc := map[string]interface{}{}
	for key, value := range flat {
		setDotted(doc, key, value)
	}
	return doc, nil
}

// Migrate loads path (auto-detecting the flat or hierarchical shape) and
// rewrites it in the canonical hierarchical YAML form, per §9 "Config
// migration: support both shapes at load; emit a normalized hierarchical
// form on any write."
func Migrate(path string) error {
	doc, err := loadYAMLDoc(path)
	if err == nil && len(doc) > 0 {
		return rewriteHierarchical(path, doc)
	}

	flatDoc, flatErr := LoadFlat(path)
	if flatErr != nil {
		if err != nil {
			return err
		}
		return flatErr
	}
	return rewriteHierarchical(path, flatDoc)
}

func rewriteHierarchical(path string, doc map[string]interface{}) error {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return platform.AtomicWriteFile(path, out, 0o644)
}
