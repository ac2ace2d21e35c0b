package data

import (
	"encoding/json"
	"io"
	"os"
)

// WriteJSON publishes v as indented JSON at path.
func WriteJSON(path string, v any) error {
	return Publish(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// LoadJSON decodes the JSON file at path into v.
func LoadJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
