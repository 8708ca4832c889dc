package cmd

import (
	"fmt"

	"github.com/iksnae/yuri/internal"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
)

var (
	// newPrompter builds the operator prompter; replaced in tests
	newPrompter = func(accessible bool) internal.Prompter {
		return internal.NewHuhPrompter(accessible)
	}
	// slackOptions are extra client options; tests inject a mocked HTTP client
	slackOptions []slack.Option
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Label messages from a Slack channel's history",
	Long: `Fetch pages of messages from a Slack channel and label them interactively.

Each page is reviewed message by message, summarized, and only merged into
the dataset once confirmed. Older history is walked backward from the start
timestamp; newer history forward from the end timestamp. The dataset file is
written once when the session ends, followed by a timestamped backup.

A Slack user token (xoxp-) is required so private channels can be read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateSlack(); err != nil {
			return err
		}

		store := internal.NewDatasetStore(cfg.DataFile)
		ds, err := store.Load(cfg.Classify.Append)
		if err != nil {
			return err
		}
		if err := store.CheckWritable(); err != nil {
			return err
		}
		ds.OverrideCursors(cfg.Classify.StartTimestamp, cfg.Classify.EndTimestamp)

		options := append([]slack.Option{}, slackOptions...)
		if cfg.Slack.APIURL != "" {
			options = append(options, slack.OptionAPIURL(cfg.Slack.APIURL))
		}
		client, err := internal.NewSlackClient(cfg.Slack.Token, options...)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		prompter := newPrompter(cfg.Classify.Accessible)
		channelID, err := internal.ResolveChannelID(ctx, client, prompter, cfg.Slack.Channel, cfg.Classify.MaxFetchAttempts)
		if err != nil {
			return err
		}
		internal.PrintInfo(fmt.Sprintf("Classifying %s history of channel %s (%s)", cfg.Direction(), cfg.Slack.Channel, channelID))

		out := cmd.OutOrStdout()
		fetcher := internal.NewHistoryFetcher(client, prompter, channelID, cfg.Classify.BatchSize, cfg.Classify.MaxFetchAttempts)
		reviewer := internal.NewBatchClassifier(prompter, internal.NewLabelRegistry(ds), cfg.IgnoredUsers(), cfg.Classify.MaxReviewPasses, out)
		session := internal.NewCurationSession(fetcher, reviewer, store, prompter, cfg.Direction(), out)

		summary, err := session.Run(ctx, ds)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(out, internal.Rule("Session"))
		_, _ = fmt.Fprintf(out, "Batches merged:   %d\n", summary.Batches)
		if summary.Rejected > 0 {
			_, _ = fmt.Fprintf(out, "Batches rejected: %d\n", summary.Rejected)
		}
		_, _ = fmt.Fprintf(out, "Added:            %d\n", summary.Added)
		_, _ = fmt.Fprintf(out, "Updated:          %d\n", summary.Updated)
		_, _ = fmt.Fprintf(out, "Cursors:          %s / %s\n", orNone(summary.Cursors.Start), orNone(summary.Cursors.End))
		internal.PrintSuccess(fmt.Sprintf("Saved %d classified message(s) to %s (backup %s)", summary.Total, store.Path(), summary.BackupPath))
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().String("slack-token", "", "Slack user token (xoxp-...)")
	classifyCmd.Flags().String("slack-channel", "", "Channel name to read, with or without #")
	classifyCmd.Flags().String("start-timestamp", "", "Override the stored start timestamp")
	classifyCmd.Flags().String("end-timestamp", "", "Override the stored end timestamp")
	classifyCmd.Flags().String("direction", "older", "Walk history toward older or newer messages")
	classifyCmd.Flags().Int("batch-size", internal.DefaultBatchSize, "Messages per page")
	classifyCmd.Flags().StringSlice("ignore-user-ids", nil, "Author ids whose messages are skipped")
	classifyCmd.Flags().Bool("append", true, "Append to an existing data file (false refuses to reuse it)")
	classifyCmd.Flags().Int("max-fetch-attempts", 5, "Attempts per page or channel lookup before giving up")
	classifyCmd.Flags().Int("max-review-passes", 10, "Times a rejected batch is reviewed again before it is discarded")
	classifyCmd.Flags().Bool("accessible", false, "Use plain line-based prompts")

	bindFlag("slack.token", classifyCmd, "slack-token")
	bindFlag("slack.channel", classifyCmd, "slack-channel")
	bindFlag("classify.start_timestamp", classifyCmd, "start-timestamp")
	bindFlag("classify.end_timestamp", classifyCmd, "end-timestamp")
	bindFlag("classify.direction", classifyCmd, "direction")
	bindFlag("classify.batch_size", classifyCmd, "batch-size")
	bindFlag("classify.ignore_user_ids", classifyCmd, "ignore-user-ids")
	bindFlag("classify.append", classifyCmd, "append")
	bindFlag("classify.max_fetch_attempts", classifyCmd, "max-fetch-attempts")
	bindFlag("classify.max_review_passes", classifyCmd, "max-review-passes")
	bindFlag("classify.accessible", classifyCmd, "accessible")
}
