package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/userdesk/pkg/record"
)

// seedFile is the document shape of a seed file: either a bare list of
// records or a mapping with a "Users"-style key holding the list, as in a
// json-server db.json.
type seedFile map[string][]record.Record

// LoadSeedFile reads initial records for `userdesk serve` from a YAML or
// JSON file. For a keyed document the list under resource is used.
func LoadSeedFile(path, resource string) ([]record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var list []record.Record
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc seedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, newConfigError(path, err)
	}
	items, ok := doc[resource]
	if !ok {
		return nil, &ConfigError{Path: path, Message: fmt.Sprintf("no %q key in seed file", resource)}
	}
	return items, nil
}

// ResolveSeed returns the seed records configured for the server: the seed
// file when one is set, otherwise the inline list.
func (c *Config) ResolveSeed() ([]record.Record, error) {
	if c.Server.SeedFile != "" {
		return LoadSeedFile(c.Server.SeedFile, c.Resource)
	}
	return c.Server.Seed, nil
}
