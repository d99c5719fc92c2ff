// Package configstore persists the config scope (.p_vars) to disk,
// grounded on original_source/repl/base/store.py and internal/env's
// marshalStringMap/unmarshalStringMap codec.
package configstore

import (
	"encoding/json"
	"os"
)

// Store loads and saves a flat string map, the config scope's on-disk
// representation.
type Store interface {
	Load() (map[string]string, error)
	Save(map[string]string) error
}

// JSONFile is a Store backed by a single JSON file, normally a dotfile
// named "<prefix>_vars". A missing or empty file is not an error: Load
// returns an empty map so a first run with no prior config starts clean.
type JSONFile struct {
	Path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

func (f *JSONFile) Load() (map[string]string, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

func (f *JSONFile) Save(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o644)
}
