package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Source reads a catalog from a file. The format follows the extension:
// .yaml/.yml, .toml, anything else is JSON.
type Source struct {
	path string
}

func NewSource(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Path() string {
	return s.path
}

// Load reads and decodes the file on every call. A missing section is
// malformed; empty answer lists load fine and fail later on pick.
func (s *Source) Load() (*Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrDataUnavailable, s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrDataMalformed, s.path)
	}

	var c Catalog
	if err := decode(s.path, data, &c); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrDataMalformed, s.path, err)
	}

	if c.DodoPoll == nil {
		return nil, fmt.Errorf("%w: %s has no dodo_poll section", ErrDataMalformed, s.path)
	}
	if c.DodoPoll.Yes == nil || c.DodoPoll.No == nil {
		return nil, fmt.Errorf("%w: %s dodo_poll needs both ja and nein lists", ErrDataMalformed, s.path)
	}

	return &c, nil
}

func decode(path string, data []byte, c *Catalog) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	case ".toml":
		_, err := toml.Decode(string(data), c)
		return err
	default:
		return json.Unmarshal(data, c)
	}
}

// Check loads the catalog at path and verifies it can serve a poll.
func Check(path string) error {
	c, err := NewSource(path).Load()
	if err != nil {
		return err
	}
	return c.Validate()
}
