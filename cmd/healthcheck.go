package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/yuri/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that yuri is configured and its data is usable",
	Long: `Check the health of yuri by verifying:
  • Slack token format and channel
  • Data file readability
  • Backup trail
  • NLP backend reachability

No Slack API calls are made.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0

		_, _ = fmt.Fprintln(out, sectionStyle.Render("Yuri Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: Slack settings
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Checking Slack settings..."))
		if err := cfg.ValidateSlack(); err != nil {
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Slack settings incomplete:"), err)
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ User token and channel configured"))
			if healthcheckVerbose {
				_, _ = fmt.Fprintf(out, "   Channel: %s\n", cfg.Slack.Channel)
			}
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: Data file
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Loading data file..."))
		store := internal.NewDatasetStore(cfg.DataFile)
		ds, err := store.Load(true)
		if err != nil {
			failed++
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Data file is not usable:"), err)
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %d classified message(s), %d label(s)", ds.Len(), len(ds.Labels()))))
			if healthcheckVerbose {
				_, _ = fmt.Fprintf(out, "   Path: %s\n", store.Path())
			}
		}
		_, _ = fmt.Fprintln(out)

		// Step 3: Backups
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Checking backups..."))
		backups, err := store.Backups()
		switch {
		case err != nil:
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Failed to list backups:"), err)
		case len(backups) == 0:
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  No backups yet"))
		default:
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Found %d backup(s)", len(backups))))
			if healthcheckVerbose {
				printFirst(out, backups, 5)
			}
		}
		_, _ = fmt.Fprintln(out)

		// Step 4: NLP backend
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 4: Contacting NLP backend..."))
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := internal.NewNLPClient(cfg.NLP.Endpoint, cfg.NLP.Timeout).Health(ctx); err != nil {
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  NLP backend unavailable:"), err)
			_, _ = fmt.Fprintln(out, "   Training and testing need the backend at", cfg.NLP.Endpoint)
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ NLP backend reachable"))
		}
		_, _ = fmt.Fprintln(out)

		// Summary
		_, _ = fmt.Fprintln(out, sectionStyle.Render("Summary"))
		if failed > 0 {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return errors.New("health check failed: data file is not usable")
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

func printFirst(out io.Writer, items []string, n int) {
	for i, item := range items {
		if i >= n {
			_, _ = fmt.Fprintf(out, "   ... and %d more\n", len(items)-n)
			return
		}
		_, _ = fmt.Fprintf(out, "   [%d] %s\n", i+1, item)
	}
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "details", false, "Show detailed diagnostic information")
}
