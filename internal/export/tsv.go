package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/yuri/internal"
)

// TSVExporter writes "text<TAB>label" lines, the format read by the test command
type TSVExporter struct {
	// IncludeIgnored keeps entries labeled ignore
	IncludeIgnored bool
}

var tsvReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// Export exports a dataset to TSV format
func (e *TSVExporter) Export(ds *internal.Dataset, w io.Writer) error {
	for _, record := range Records(ds) {
		if record.Label == internal.IgnoreLabel && !e.IncludeIgnored {
			continue
		}
		text := strings.TrimSpace(tsvReplacer.Replace(record.Text))
		if text == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", text, record.Label); err != nil {
			return err
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *TSVExporter) Extension() string {
	return "tsv"
}
