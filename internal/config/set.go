package config

import (
	"fmt"
	"os"

	"github.com/fluxcodestudio/checkpoint/internal/platform"
	"gopkg.in/yaml.v3"
)

// Set validates key/value against Schema, writes the updated YAML document
// at path atomically, and appends a config-audit entry under stateDir.
// Used by `checkpoint config set` (§6) for both global and per-project
// config files.
func Set(path, stateDir, key string, value interface{}) error {
	field, ok := ByKey()[key]
	if !ok {
		return fmt.Errorf("unrecognized config key %q", key)
	}
	if field.Kind == KindEnum {
		valid := false
		for _, ev := range field.EnumValues {
			if ev == fmt.Sprint(value) {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid value %v for %q: must be one of %v", value, key, field.EnumValues)
		}
	}

	doc, err := loadYAMLDoc(path)
	if err != nil {
		return err
	}
	oldValue := getDotted(doc, key)
	setDotted(doc, key, value)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := platform.AtomicWriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}

	return AppendAudit(stateDir, key, oldValue, value)
}

func loadYAMLDoc(path string) (map[string]interface{}, error) {
	doc := map[string]interface{}{}
	if !platform.Exists(path) {
		return doc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

func getDotted(doc map[string]interface{}, key string) interface{} {
	parts := splitDotted(key)
	cur := doc
	for i, p := range parts {
		if i == len(parts)-1 {
			return cur[p]
		}
		next, ok := cur[p].(map[string]interface{})
		if !ok {
			return nil
		}
		cur = next
	}
	return nil
}

func setDotted(doc map[string]interface{}, key string, value interface{}) {
	parts := splitDotted(key)
	cur := doc
	for i, p := range parts {
		if i == len(parts)-1 {
			cur[p] = value
			return
		}
		next, ok := cur[p].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			cur[p] = next
		}
		cur = next
	}
}

func splitDotted(key string) []string {
	var parts []string
	start := 0
	for i, r := range key {
		if r == '.' {
			parts = append(parts, key[start:i])
			start = i + 1
		}
	}
	parts = append(parts, key[start:])
	return parts
}
