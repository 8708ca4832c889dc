package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iksnae/yuri/internal"
)

// MarkdownExporter exports datasets as a Markdown report grouped by label
type MarkdownExporter struct{}

// Export exports a dataset to Markdown format
func (e *MarkdownExporter) Export(ds *internal.Dataset, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Classified messages\n\n")
	_, _ = fmt.Fprintf(w, "**Entries:** %d  \n", ds.Len())
	if ds.Cursors.Start != "" {
		_, _ = fmt.Fprintf(w, "**Start timestamp:** %s  \n", ds.Cursors.Start)
	}
	if ds.Cursors.End != "" {
		_, _ = fmt.Fprintf(w, "**End timestamp:** %s  \n", ds.Cursors.End)
	}
	_, _ = fmt.Fprintf(w, "\n")

	counts := ds.LabelCounts()
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	_, _ = fmt.Fprintf(w, "| Label | Count |\n|---|---|\n")
	for _, label := range labels {
		_, _ = fmt.Fprintf(w, "| %s | %d |\n", escapeCell(label), counts[label])
	}

	byLabel := make(map[string][]Record, len(labels))
	for _, record := range Records(ds) {
		byLabel[record.Label] = append(byLabel[record.Label], record)
	}

	for _, label := range labels {
		_, _ = fmt.Fprintf(w, "\n---\n\n## %s\n\n", label)
		for _, record := range byLabel[label] {
			_, _ = fmt.Fprintf(w, "- `%s` %s\n", record.ID, escapeMarkdown(record.Text))
		}
	}

	return nil
}

// escapeMarkdown flattens a message onto one list item and escapes emphasis
func escapeMarkdown(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	text = strings.ReplaceAll(text, "__", "\\_\\_")
	return text
}

func escapeCell(text string) string {
	return strings.ReplaceAll(text, "|", "\\|")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
