package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

type catalogFile struct {
	Shells []Descriptor `json:"shells" yaml:"shells" toml:"shells"`
}

// LoadFile reads descriptors from a catalog file. The format is chosen by
// extension: .yaml/.yml, .toml or .json.
func LoadFile(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Decode(filepath.Ext(path), data)
}

// Decode parses catalog bytes in the format named by ext.
func Decode(ext string, data []byte) ([]Descriptor, error) {
	var file catalogFile

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err := yaml.Unmarshal(data, &file)
		if err != nil {
			return nil, fmt.Errorf("parse yaml catalog: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse toml catalog: %w", err)
		}
	case ".json":
		if err := sonic.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse json catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}

	for i, d := range file.Shells {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, d.Name, err)
		}
		if d.Name == "" {
			file.Shells[i].Name = filepath.Base(d.Command)
		}
	}
	return file.Shells, nil
}
