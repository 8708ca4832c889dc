package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/yuri/internal"
	"github.com/spf13/cobra"
)

var (
	showLimit int
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <label>",
	Short: "Show the messages carrying a label",
	Long: `Show the classified messages that carry a label, ordered by message id.

Use 'yuri stats' to see the labels in the dataset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := strings.TrimSpace(args[0])
		ds, err := internal.NewDatasetStore(cfg.DataFile).Load(true)
		if err != nil {
			return err
		}
		if _, ok := ds.LabelCounts()[label]; !ok {
			return fmt.Errorf("label not found: %s (use 'yuri stats' to see available labels)", label)
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, internal.Rule(" "+label+" "))
		shown := 0
		total := 0
		for _, id := range ds.SortedIDs() {
			entry := ds.Entries[id]
			if entry.Label != label {
				continue
			}
			total++
			if showLimit > 0 && shown >= showLimit {
				continue
			}
			shown++
			_, _ = fmt.Fprintf(out, "%s\n%s\n\n", idStyle.Render(id), entry.Text)
		}
		if shown < total {
			_, _ = fmt.Fprintln(out, dateStyle.Render(fmt.Sprintf("... and %d more", total-shown)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showLimit, "limit", "n", 0, "Show at most this many messages (0 shows all)")
}
