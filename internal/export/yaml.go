package export

import (
	"io"

	"github.com/iksnae/yuri/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports datasets in YAML format
type YAMLExporter struct{}

// Export exports a dataset to YAML format
func (e *YAMLExporter) Export(ds *internal.Dataset, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(newDocument(ds))
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
