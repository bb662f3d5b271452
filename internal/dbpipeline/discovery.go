package dbpipeline

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// maxScanDepth bounds the env/config file walk per spec §4.6 ("up to 3
// levels").
const maxScanDepth = 3

// composeScanDepth bounds the docker-compose walk ("root and up to 2
// levels deep").
const composeScanDepth = 2

var envFileNames = regexp.MustCompile(`^\.env(\..+)?$`)

var placeholders = map[string]bool{
	"null": true, "none": true, "undefined": true, "": true,
}

var interpolationRef = regexp.MustCompile(`\$\{[^}]*\}|\$[A-Za-z_][A-Za-z0-9_]*`)

func usable(v string) bool {
	v = strings.TrimSpace(v)
	if placeholders[strings.ToLower(v)] {
		return false
	}
	return !interpolationRef.MatchString(v)
}

// Discover walks root looking for env files, framework configs,
// docker-compose files, and SQLite files, returning a deduplicated list of
// Descriptors.
func Discover(root string) ([]Descriptor, error) {
	seen := map[string]Descriptor{}

	addAll := func(ds []Descriptor) {
		for _, d := range ds {
			if _, ok := seen[d.Key()]; !ok {
				seen[d.Key()] = d
			}
		}
	}

	walkDepth(root, maxScanDepth, func(path string, depth int) {
		name := filepath.Base(path)
		switch {
		case envFileNames.MatchString(name):
			addAll(parseEnvFile(path))
		case name == "wp-config.php":
			addAll(parsePHPConfig(path))
		case name == "database.yml":
			addAll(parseRailsDatabaseYAML(path))
		case name == "application.properties" || name == "application.yml" || name == "application.yaml":
			addAll(parseSpringConfig(path))
		}
	})

	walkDepth(root, composeScanDepth, func(path string, depth int) {
		name := filepath.Base(path)
		if name == "docker-compose.yml" || name == "docker-compose.yaml" || name == "compose.yml" || name == "compose.yaml" {
			addAll(parseCompose(path))
		}
	})

	walkDepth(root, maxScanDepth, func(path string, depth int) {
		if looksLikeSQLiteFile(path) {
			addAll(sqliteDescriptorFor(path))
		}
	})

	out := make([]Descriptor, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	return out, nil
}

// walkDepth walks root up to maxDepth directories deep, invoking fn for
// every regular file encountered. Errors reading individual entries are
// skipped (best-effort discovery, not a hard dependency).
func walkDepth(root string, maxDepth int, fn func(path string, depth int)) {
	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() {
				if depth >= maxDepth {
					continue
				}
				if e.Name() == "node_modules" || e.Name() == ".git" || e.Name() == "vendor" {
					continue
				}
				walk(path, depth+1)
				continue
			}
			fn(path, depth)
		}
	}
	walk(root, 0)
}

func looksLikeSQLiteFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".db" || ext == ".sqlite" || ext == ".sqlite3"
}

func sqliteDescriptorFor(path string) []Descriptor {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	header := make([]byte, 16)
	n, _ := f.Read(header)
	if n < 16 || string(header[:15]) != "SQLite format 3" {
		return nil
	}

	return []Descriptor{{
		Engine:     EngineSQLite,
		Kind:       KindSQLite,
		Path:       path,
		IsLocal:    true,
		SourceFile: path,
	}}
}

// parseEnvFile parses a shell-style .env file: KEY=value, optional quotes,
// inline comment stripping, and recognizes both connection URLs and
// discrete per-engine prefixes.
func parseEnvFile(path string) []Descriptor {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	kv := map[string]string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := stripInlineComment(strings.TrimSpace(line[idx+1:]))
		val = unquote(val)
		kv[key] = val
	}

	return descriptorsFromEnvMap(kv, path)
}

func stripInlineComment(v string) string {
	if strings.HasPrefix(v, `"`) || strings.HasPrefix(v, `'`) {
		if end := strings.IndexByte(v[1:], v[0]); end >= 0 {
			return v[:end+2]
		}
		return v
	}
	if i := strings.IndexByte(v, '#'); i >= 0 {
		return strings.TrimSpace(v[:i])
	}
	return v
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
