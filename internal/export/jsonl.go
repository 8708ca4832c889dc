package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/yuri/internal"
)

// JSONLExporter exports datasets in JSONL format (one entry per line)
type JSONLExporter struct{}

// Export exports a dataset to JSONL format
func (e *JSONLExporter) Export(ds *internal.Dataset, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, record := range Records(ds) {
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to encode entry %s: %w", record.ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
