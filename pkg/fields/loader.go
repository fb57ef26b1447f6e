package fields

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a JSON or YAML schema document from disk.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fields: read %s: %w", path, err)
	}
	return ParseSchema(data, path)
}

// LoadFS reads a schema document from fsys.
func LoadFS(fsys fs.FS, path string) (*Schema, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("fields: read %s: %w", path, err)
	}
	return ParseSchema(data, path)
}

// ParseSchema decodes a schema document. JSON is attempted first, YAML second.
func ParseSchema(data []byte, source string) (*Schema, error) {
	var doc Document
	if err := decode(data, source, &doc); err != nil {
		return nil, err
	}
	return NewSchema(doc), nil
}

// LoadDefaults reads a default values table (field type -> value bag) from a
// JSON or YAML file.
func LoadDefaults(path string) (DefaultValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fields: read %s: %w", path, err)
	}
	return ParseDefaults(data, path)
}

// ParseDefaults decodes a default values table.
func ParseDefaults(data []byte, source string) (DefaultValues, error) {
	var table DefaultValues
	if err := decode(data, source, &table); err != nil {
		return nil, err
	}
	if table == nil {
		table = DefaultValues{}
	}
	return table, nil
}

func decode(data []byte, source string, out any) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("fields: file %s is empty", source)
	}

	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}

	if err := yaml.Unmarshal(data, out); err == nil {
		return nil
	}

	return fmt.Errorf("fields: parse %s: invalid JSON or YAML", source)
}
