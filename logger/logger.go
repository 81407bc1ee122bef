package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InitLogs prepares a dump directory, creating it when missing and clearing
// any .json files a previous run left behind.
func InitLogs(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	files, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".json") {
			_ = os.Remove(filepath.Join(path, f.Name()))
		}
	}
	return nil
}

// LogJSON writes data as indented JSON to <path>/<id>.json.
func LogJSON(path, id string, data any) error {
	file := filepath.Join(path, fmt.Sprintf("%s.json", filepath.Base(id)))
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, bytes, 0o644)
}
