package watcher

import "regexp"

// DefaultExcludes holds 32 common exclude patterns (§4.3): dependency
// stores, build outputs, VCS internals, IDE caches, and compiled artifacts.
// User-configured additions are merged in by NewExcludeSet, never replacing
// these.
var DefaultExcludes = []string{
	`node_modules`, `vendor`, `\.git`, `\.hg`, `\.svn`,
	`__pycache__`, `\.venv`, `venv`, `\.tox`, `\.mypy_cache`, `\.pytest_cache`,
	`target`, `build`, `dist`, `out`, `bin`, `obj`,
	`\.next`, `\.nuxt`, `\.cache`,
	`\.idea`, `\.vscode`, `\.vs`,
	`\.DS_Store`, `Thumbs\.db`,
	`\.o$`, `\.so$`, `\.dylib$`, `\.dll$`, `\.class$`, `\.pyc$`,
	`\.checkpoint-backups`,
}

// ExcludeSet is the compiled alternation regex the Linux-family native
// backend folds all excludes into (§4.3), also reused by the macOS
// per-pattern path and the polling walker.
type ExcludeSet struct {
	re *regexp.Regexp
}

// NewExcludeSet compiles DefaultExcludes merged with extra user patterns
// into one alternation, per "default exclusions ... user additions are
// merged."
func NewExcludeSet(extra []string) (*ExcludeSet, error) {
	patterns := make([]string, 0, len(DefaultExcludes)+len(extra))
	patterns = append(patterns, DefaultExcludes...)
	patterns = append(patterns, extra...)

	combined := ""
	for i, p := range patterns {
		if i > 0 {
			combined += "|"
		}
		combined += "(?:" + p + ")"
	}
	re, err := regexp.Compile(combined)
	if err != nil {
		return nil, err
	}
	return &ExcludeSet{re: re}, nil
}

// Match reports whether path matches any exclude pattern (§4's scenario 7:
// "for any path whose suffix matches an exclude pattern, no Change Event
// is emitted").
func (e *ExcludeSet) Match(path string) bool {
	return e.re.MatchString(path)
}
