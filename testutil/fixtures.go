package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// DataFileEntry mirrors one entry of the dataset file
type DataFileEntry struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// CreateDataFileFixture writes a dataset file and returns its path
func CreateDataFileFixture(t *testing.T, dir string, data map[string]DataFileEntry, start, end string) string {
	t.Helper()

	file := map[string]interface{}{
		"data":            data,
		"start_timestamp": nullable(start),
		"end_timestamp":   nullable(end),
	}
	path := filepath.Join(dir, "slack_channel_data", "data.json")
	WriteFile(t, path, JSONMarshal(t, file))
	return path
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// WriteFile writes data to path, creating parent directories
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", path, err)
	}
}

// ReadDataFile parses a dataset file written by the store
func ReadDataFile(t *testing.T, path string) (map[string]DataFileEntry, *string, *string) {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read data file %s: %v", path, err)
	}
	var file struct {
		Data  map[string]DataFileEntry `json:"data"`
		Start *string                  `json:"start_timestamp"`
		End   *string                  `json:"end_timestamp"`
	}
	JSONUnmarshal(t, raw, &file)
	return file.Data, file.Start, file.End
}

// JSONMarshal marshals a value to JSON for testing
func JSONMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal JSON: %v", err)
	}
	return data
}

// JSONUnmarshal unmarshals JSON for testing
func JSONUnmarshal(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
}
