package config

import "fmt"

// ValidationIssue is one problem found by Validate.
type ValidationIssue struct {
	Key     string
	Message string
}

// Validate checks every loaded key against the schema: enum values are in
// range, and (in strict mode) every loaded key is recognized. Used by
// `checkpoint config validate [--strict]` (§6), which exits with code 2
// when any issue is found in either mode.
func Validate(strict bool) []ValidationIssue {
	var issues []ValidationIssue
	known := ByKey()

	if v != nil {
		for _, key := range v.AllKeys() {
			field, ok := known[key]
			if !ok {
				if strict {
					issues = append(issues, ValidationIssue{Key: key, Message: "unrecognized key"})
				}
				continue
			}
			if field.Kind == KindEnum {
				val := v.GetString(key)
				if !contains(field.EnumValues, val) {
					issues = append(issues, ValidationIssue{
						Key:     key,
						Message: fmt.Sprintf("value %q not in %v", val, field.EnumValues),
					})
				}
			}
		}
	}
	return issues
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
