package dbpipeline

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var phpDefineRE = regexp.MustCompile(`define\(\s*['"]([^'"]+)['"]\s*,\s*['"]([^'"]*)['"]\s*\)`)

// parsePHPConfig extracts define('KEY','value') pairs from wp-config.php
// style files.
func parsePHPConfig(path string) []Descriptor {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	kv := map[string]string{}
	for _, m := range phpDefineRE.FindAllStringSubmatch(string(data), -1) {
		kv[m[1]] = m[2]
	}
	host := kv["DB_HOST"]
	if !usable(kv["DB_NAME"]) {
		return nil
	}
	return []Descriptor{{
		Engine:     EngineMySQL,
		Kind:       KindNetworkDB,
		Host:       host,
		Database:   kv["DB_NAME"],
		User:       kv["DB_USER"],
		Password:   kv["DB_PASSWORD"],
		IsLocal:    isLocalHost(host),
		SourceFile: path,
	}}
}

type railsDBConfig struct {
	Adapter  string `yaml:"adapter"`
	Host     string `yaml:"host"`
	Port     any    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// parseRailsDatabaseYAML reads config/database.yml; only the "production"
// and "development" blocks are considered, matching what a real backup run
// would care about.
func parseRailsDatabaseYAML(path string) []Descriptor {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc map[string]railsDBConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	var out []Descriptor
	for _, env := range []string{"production", "development"} {
		cfg, ok := doc[env]
		if !ok || !usable(cfg.Database) {
			continue
		}
		engine := EnginePostgres
		if strings.Contains(cfg.Adapter, "mysql") {
			engine = EngineMySQL
		}
		host := cfg.Host
		if host == "" {
			host = "localhost"
		}
		out = append(out, Descriptor{
			Engine:     engine,
			Kind:       KindNetworkDB,
			Host:       host,
			Database:   cfg.Database,
			User:       cfg.Username,
			Password:   cfg.Password,
			IsLocal:    isLocalHost(host),
			SourceFile: path,
		})
	}
	return out
}

// parseSpringConfig reads application.properties (Java properties, a
// flat KEY=value format like .env) or application.yml.
func parseSpringConfig(path string) []Descriptor {
	if strings.HasSuffix(path, ".properties") {
		return parseEnvFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc struct {
		Spring struct {
			Datasource struct {
				URL      string `yaml:"url"`
				Username string `yaml:"username"`
				Password string `yaml:"password"`
			} `yaml:"datasource"`
		} `yaml:"spring"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	d, ok := descriptorFromURL(strings.TrimPrefix(doc.Spring.Datasource.URL, "jdbc:"), path)
	if !ok {
		return nil
	}
	d.User = doc.Spring.Datasource.Username
	d.Password = doc.Spring.Datasource.Password
	return []Descriptor{d}
}
