package dbpipeline

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	Image         string            `yaml:"image"`
	ContainerName string            `yaml:"container_name"`
	Environment   yaml.Node         `yaml:"environment"`
}

var composeImageEngine = map[string]Engine{
	"postgres": EnginePostgres, "timescale": EnginePostgres, "postgis": EnginePostgres,
	"mysql": EngineMySQL, "mariadb": EngineMySQL,
	"mongo": EngineMongo, "mongodb": EngineMongo,
}

// parseCompose reads docker-compose.yml/compose.yml for services whose
// image is a known database engine.
func parseCompose(path string) []Descriptor {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc composeFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}

	var out []Descriptor
	for name, svc := range doc.Services {
		engine, ok := matchComposeImage(svc.Image)
		if !ok {
			continue
		}
		env := decodeComposeEnv(svc.Environment)
		container := svc.ContainerName
		if container == "" {
			container = name
		}
		d := descriptorFromComposeEnv(engine, container, env, path)
		out = append(out, d)
	}
	return out
}

func matchComposeImage(image string) (Engine, bool) {
	base := image
	if i := strings.IndexByte(base, ':'); i >= 0 {
		base = base[:i]
	}
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	for prefix, engine := range composeImageEngine {
		if strings.Contains(base, prefix) {
			return engine, true
		}
	}
	return "", false
}

// decodeComposeEnv handles both compose's list form ("KEY=value") and
// mapping form (KEY: value) for the environment block.
func decodeComposeEnv(node yaml.Node) map[string]string {
	out := map[string]string{}
	switch node.Kind {
	case yaml.SequenceNode:
		var items []string
		_ = node.Decode(&items)
		for _, item := range items {
			if i := strings.IndexByte(item, '='); i >= 0 {
				out[item[:i]] = item[i+1:]
			}
		}
	case yaml.MappingNode:
		var m map[string]string
		_ = node.Decode(&m)
		out = m
	}
	return out
}

func descriptorFromComposeEnv(engine Engine, container string, env map[string]string, path string) Descriptor {
	d := Descriptor{Engine: engine, Kind: KindDockerDB, Container: container, SourceFile: path, IsLocal: true}
	switch engine {
	case EnginePostgres:
		d.Database = firstNonEmpty(env["POSTGRES_DB"], "postgres")
		d.User = firstNonEmpty(env["POSTGRES_USER"], "postgres")
		d.Password = env["POSTGRES_PASSWORD"]
	case EngineMySQL:
		d.Database = env["MYSQL_DATABASE"]
		d.User = firstNonEmpty(env["MYSQL_USER"], "root")
		d.Password = firstNonEmpty(env["MYSQL_PASSWORD"], env["MYSQL_ROOT_PASSWORD"])
	case EngineMongo:
		d.Database = env["MONGO_INITDB_DATABASE"]
		d.User = env["MONGO_INITDB_ROOT_USERNAME"]
		d.Password = env["MONGO_INITDB_ROOT_PASSWORD"]
	}
	return d
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
