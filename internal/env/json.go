package env

import "encoding/json"

// marshalStringMap and unmarshalStringMap isolate the encoding/json calls
// so the rest of this package reads as scope-chain logic, not codec code.
// encoding/json is the right tool here: the on-disk configuration scope is
// a flat string map, and no third-party serialization library in the
// retrieved pack offers anything encoding/json doesn't already do for that
// shape.

func marshalStringMap(m map[string]string) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func unmarshalStringMap(data []byte) (map[string]string, error) {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
