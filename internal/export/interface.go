package export

import (
	"fmt"
	"io"

	"github.com/iksnae/yuri/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(ds *internal.Dataset, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "tsv":
		return &TSVExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json, tsv)", format)
	}
}

// Record is one classified message in export order
type Record struct {
	ID    string `json:"id" yaml:"id"`
	Text  string `json:"text" yaml:"text"`
	Label string `json:"label" yaml:"label"`
}

// Document is the structured rendition shared by the JSON and YAML exporters
type Document struct {
	StartTimestamp string         `json:"start_timestamp,omitempty" yaml:"start_timestamp,omitempty"`
	EndTimestamp   string         `json:"end_timestamp,omitempty" yaml:"end_timestamp,omitempty"`
	Labels         map[string]int `json:"labels" yaml:"labels"`
	Entries        []Record       `json:"entries" yaml:"entries"`
}

// Records returns the dataset entries sorted by id
func Records(ds *internal.Dataset) []Record {
	ids := ds.SortedIDs()
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		entry := ds.Entries[id]
		records = append(records, Record{ID: id, Text: entry.Text, Label: entry.Label})
	}
	return records
}

func newDocument(ds *internal.Dataset) Document {
	return Document{
		StartTimestamp: ds.Cursors.Start,
		EndTimestamp:   ds.Cursors.End,
		Labels:         ds.LabelCounts(),
		Entries:        Records(ds),
	}
}
