package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFixture reads the file at the joined path elements.
func LoadFixture(elem ...string) ([]byte, error) {
	path := filepath.Join(elem...)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", path, err)
	}
	return data, nil
}

// LoadGolden decodes the JSON file at path into v.
func LoadGolden(path string, v any) error {
	data, err := LoadFixture(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode golden %s: %w", path, err)
	}
	return nil
}
