package dbpipeline

import (
	"net/url"
	"regexp"
	"strings"
)

var urlSchemes = map[string]Engine{
	"postgres": EnginePostgres, "postgresql": EnginePostgres,
	"mysql": EngineMySQL, "mysql2": EngineMySQL, "mariadb": EngineMySQL,
	"mongodb": EngineMongo, "mongodb+srv": EngineMongo,
}

var urlSchemeRE = regexp.MustCompile(`^([a-z0-9]+)(\+[a-z0-9]+)?://`)

// descriptorsFromEnvMap recognizes connection URLs, discrete per-engine
// prefixes, and a Laravel-style DB_CONNECTION block within kv.
func descriptorsFromEnvMap(kv map[string]string, sourceFile string) []Descriptor {
	var out []Descriptor

	for _, v := range kv {
		if d, ok := descriptorFromURL(v, sourceFile); ok {
			out = append(out, d)
		}
	}

	if d, ok := descriptorFromPrefix(kv, "POSTGRES_", EnginePostgres, sourceFile); ok {
		out = append(out, d)
	}
	if d, ok := descriptorFromPrefix(kv, "PG_", EnginePostgres, sourceFile); ok {
		out = append(out, d)
	}
	if d, ok := descriptorFromPrefix(kv, "MYSQL_", EngineMySQL, sourceFile); ok {
		out = append(out, d)
	}
	if d, ok := descriptorFromPrefix(kv, "MONGO_", EngineMongo, sourceFile); ok {
		out = append(out, d)
	}
	if d, ok := descriptorFromPrefix(kv, "MONGODB_", EngineMongo, sourceFile); ok {
		out = append(out, d)
	}

	if conn := kv["DB_CONNECTION"]; conn != "" {
		var engine Engine
		switch strings.ToLower(conn) {
		case "pgsql", "postgres", "postgresql":
			engine = EnginePostgres
		case "mysql", "mariadb":
			engine = EngineMySQL
		case "mongodb":
			engine = EngineMongo
		}
		if engine != "" {
			host := kv["DB_HOST"]
			d := Descriptor{
				Engine:     engine,
				Kind:       KindNetworkDB,
				Host:       host,
				Port:       kv["DB_PORT"],
				Database:   kv["DB_DATABASE"],
				User:       kv["DB_USERNAME"],
				Password:   kv["DB_PASSWORD"],
				IsLocal:    isLocalHost(host),
				SourceFile: sourceFile,
			}
			if usable(d.Database) {
				out = append(out, d)
			}
		}
	}

	return out
}

func descriptorFromURL(raw, sourceFile string) (Descriptor, bool) {
	if !usable(raw) {
		return Descriptor{}, false
	}
	m := urlSchemeRE.FindStringSubmatch(raw)
	if m == nil {
		return Descriptor{}, false
	}
	engine, ok := urlSchemes[m[1]]
	if !ok {
		return Descriptor{}, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Descriptor{}, false
	}
	password, _ := u.User.Password()
	host := u.Hostname()
	d := Descriptor{
		Engine:     engine,
		Kind:       KindNetworkDB,
		Host:       host,
		Port:       u.Port(),
		Database:   strings.TrimPrefix(u.Path, "/"),
		User:       u.User.Username(),
		Password:   password,
		SSLMode:    u.Query().Get("sslmode"),
		IsLocal:    isLocalHost(host),
		SourceFile: sourceFile,
	}
	if !usable(d.Database) {
		return Descriptor{}, false
	}
	return d, true
}

func descriptorFromPrefix(kv map[string]string, prefix string, engine Engine, sourceFile string) (Descriptor, bool) {
	db := kv[prefix+"DB"]
	if db == "" {
		db = kv[prefix+"DATABASE"]
	}
	if !usable(db) {
		return Descriptor{}, false
	}
	host := kv[prefix+"HOST"]
	if host == "" {
		host = "localhost"
	}
	return Descriptor{
		Engine:     engine,
		Kind:       KindNetworkDB,
		Host:       host,
		Port:       kv[prefix+"PORT"],
		Database:   db,
		User:       kv[prefix+"USER"],
		Password:   kv[prefix+"PASSWORD"],
		IsLocal:    isLocalHost(host),
		SourceFile: sourceFile,
	}, true
}
