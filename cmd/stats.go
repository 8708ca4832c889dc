package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/yuri/internal"
	"github.com/spf13/cobra"
)

var (
	statsFromDB string
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the label distribution of the dataset",
	Long: `Show how many messages carry each label, the stored cursors and the backups of the data file.

With --from-db the statistics are read from a SQLite mirror written by
'yuri export --format sqlite' instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if statsFromDB != "" {
			ds, err := internal.LoadDatasetMirror(statsFromDB)
			if err != nil {
				return err
			}
			printStats(out, ds, statsFromDB)
			return nil
		}

		store := internal.NewDatasetStore(cfg.DataFile)
		ds, err := store.Load(true)
		if err != nil {
			return err
		}
		printStats(out, ds, store.Path())

		backups, err := store.Backups()
		if err != nil {
			internal.LogWarn("Failed to list backups: %v", err)
		}
		printBackups(out, backups)
		return nil
	},
}

func printStats(out io.Writer, ds *internal.Dataset, path string) {
	if ds.Len() == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("No classified messages in "+path))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d classified message(s) in %s", ds.Len(), path)))
	_, _ = fmt.Fprintln(out)

	counts := ds.LabelCounts()
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	// Most used first, then by name
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("Label")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Share")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 40))
	for _, label := range labels {
		share := float64(counts[label]) * 100 / float64(ds.Len())
		name := label
		if label == internal.IgnoreLabel {
			name = idStyle.Render(label)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t\n", name, countStyle.Render(strconv.Itoa(counts[label])), fmt.Sprintf("%.1f%%", share))
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "Start timestamp: %s\n", describeTimestamp(ds.Cursors.Start))
	_, _ = fmt.Fprintf(out, "End timestamp:   %s\n", describeTimestamp(ds.Cursors.End))
}

func printBackups(out io.Writer, backups []string) {
	_, _ = fmt.Fprintf(out, "Backups:         %d\n", len(backups))
	if len(backups) > 0 {
		_, _ = fmt.Fprintf(out, "Latest backup:   %s\n", dateStyle.Render(filepath.Base(backups[len(backups)-1])))
	}
}

// describeTimestamp renders a message timestamp with its wall clock time
func describeTimestamp(ts string) string {
	if ts == "" {
		return dateStyle.Render("<none>")
	}
	secPart, _, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return ts
	}
	return ts + " " + dateStyle.Render("("+time.Unix(sec, 0).UTC().Format("2006-01-02 15:04:05 MST")+")")
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsFromDB, "from-db", "", "Read the dataset from a SQLite mirror instead of the data file")
}
