package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LoadConfiguration reads and validates the schema lock file from path,
// the way the CLI's --oracle-lock flag resolves to a Configuration
// (spec.md §6/§7 ConfigLoad).
func LoadConfiguration(path string) (*Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema: open lock file: %w", err)
	}
	defer f.Close()
	return ReadConfiguration(f)
}

// ReadConfiguration parses and validates a Configuration from r.
func ReadConfiguration(r io.Reader) (*Configuration, error) {
	cfg := New()
	if err := json.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("schema: decode lock file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("schema: invalid lock file: %w", err)
	}
	return cfg, nil
}

// LoadServerRegistry reads the servers.json external interface from
// spec.md §6.
func LoadServerRegistry(path string) (ServerRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema: open servers config file: %w", err)
	}
	defer f.Close()
	return ReadServerRegistry(f)
}

// ReadServerRegistry parses a ServerRegistry from r.
func ReadServerRegistry(r io.Reader) (ServerRegistry, error) {
	reg := ServerRegistry{}
	if err := json.NewDecoder(r).Decode(&reg); err != nil {
		return nil, fmt.Errorf("schema: decode servers config file: %w", err)
	}
	return reg, nil
}
