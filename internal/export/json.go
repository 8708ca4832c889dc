package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/yuri/internal"
)

// JSONExporter exports datasets in JSON format (pretty-printed)
type JSONExporter struct{}

// Export exports a dataset to JSON format
func (e *JSONExporter) Export(ds *internal.Dataset, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(newDocument(ds))
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
