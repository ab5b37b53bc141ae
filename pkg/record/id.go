package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque record identifier assigned by the remote store.
// It preserves the JSON kind (string or number) it was decoded from.
type ID struct {
	value   string
	numeric bool
}

// StringID returns an identifier that is encoded as a JSON string.
func StringID(s string) ID {
	return ID{value: s}
}

// NumberID returns an identifier that is encoded as a JSON number.
func NumberID(n int64) ID {
	return ID{value: strconv.FormatInt(n, 10), numeric: true}
}

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return id.value == ""
}

// IsNumeric reports whether the identifier was received as a JSON number.
func (id ID) IsNumeric() bool {
	return id.numeric
}

// String returns the identifier in the form used as a URL path segment.
func (id ID) String() string {
	return id.value
}

// Equal reports whether two identifiers refer to the same record.
// The JSON kind is ignored: "42" and 42 name the same record on a
// json-server style store.
func (id ID) Equal(other ID) bool {
	return id.value == other.value
}

// MarshalJSON encodes the identifier in the kind it was created with.
// The zero ID encodes as an empty string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric && id.value != "" {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ID{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ID{value: s}
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid id %s: must be a string or number", data)
		}
		*id = ID{value: n.String(), numeric: true}
		return nil
	}
}

// MarshalYAML encodes the identifier for seed files and config output.
func (id ID) MarshalYAML() (interface{}, error) {
	if id.numeric {
		if n, err := strconv.ParseInt(id.value, 10, 64); err == nil {
			return n, nil
		}
	}
	return id.value, nil
}

// UnmarshalYAML decodes an identifier from a YAML scalar. Integer scalars
// become numeric identifiers, everything else a string identifier.
func (id *ID) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*id = ID{}
	case int:
		*id = NumberID(int64(v))
	case int64:
		*id = NumberID(v)
	case uint64:
		*id = ID{value: strconv.FormatUint(v, 10), numeric: true}
	case string:
		*id = StringID(v)
	default:
		return fmt.Errorf("invalid id %v: must be a string or integer", v)
	}
	return nil
}
