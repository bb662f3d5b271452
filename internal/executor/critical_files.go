package executor

import (
	"os"
	"path/filepath"
	"regexp"
)

// criticalFilePattern is one category's matcher, data-driven from config
// flags per spec §4.5 step 5. Missing targets are silently skipped.
type criticalFilePattern struct {
	configKey string
	matcher   *regexp.Regexp
}

var criticalFilePatterns = []criticalFilePattern{
	{"critical_files.env", regexp.MustCompile(`^\.env(\..+)?$`)},
	{"critical_files.credentials", regexp.MustCompile(`(?i)\.(pem|key|p12|pfx)$|^id_rsa(\.pub)?$|credentials\.json$|\.npmrc$|\.netrc$`)},
	{"critical_files.ide_settings", regexp.MustCompile(`^\.(vscode|idea)$`)},
	{"critical_files.notes", regexp.MustCompile(`(?i)^(notes|todo|scratch)(\.md|\.txt)?$`)},
	{"critical_files.ai_assistant_artifacts", regexp.MustCompile(`^\.(claude|cursor|aider|copilot)$`)},
}

// CriticalFiles matches the enabled categories against the names of root's
// direct entries only; a matching directory, such as .vscode, contributes
// every file beneath it. enabled maps a config key ("critical_files.env",
// ...) to whether it's turned on.
func CriticalFiles(root string, enabled map[string]bool) []string {
	var out []string

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	for _, e := range entries {
		name := e.Name()
		for _, pat := range criticalFilePatterns {
			if !enabled[pat.configKey] {
				continue
			}
			if pat.matcher.MatchString(name) {
				path := filepath.Join(root, name)
				if e.IsDir() {
					_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
						if err == nil && !d.IsDir() {
							out = append(out, p)
						}
						return nil
					})
					continue
				}
				out = append(out, path)
			}
		}
	}
	return out
}
