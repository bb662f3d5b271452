package dbpipeline

import (
	"encoding/json"
	"os"
)

// Store is the opt-in credential lookup from spec §4.6 ("Credential
// provenance"): keyed by (engine, database), consulted only when
// discovery found no password. Isolated from discovery — it never feeds
// values back into the Descriptor list returned by Discover.
type Store struct {
	entries map[string]string
}

func credentialKey(engine, database string) string {
	return engine + "|" + database
}

// LoadStore reads a small JSON file of {"engine|database": "password"}
// entries. A missing file is an empty, valid store.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{entries: map[string]string{}}, nil
		}
		return nil, err
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return &Store{entries: entries}, nil
}

func (s *Store) Lookup(engine, database string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.entries[credentialKey(engine, database)]
	return v, ok
}
