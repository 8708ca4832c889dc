package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/yuri/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configFile string
	v          = internal.NewViper()
	cfg        *internal.Config
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yuri",
	Short: "Curate labeled Slack messages and train a text classifier on them",
	Long: `A CLI tool to build a labeled dataset from a Slack channel's history.

Messages are fetched one page at a time and presented for labeling. The
labeled dataset is stored as a single JSON file with a timestamped backup
written after every session, and can be used to train and test a text
categorization model served by an NLP backend.

Quick Start:
  yuri classify --slack-token xoxp-... --slack-channel support
  yuri stats                          # Label distribution and cursors
  yuri train --train-percent 80       # Train a model from the dataset
  yuri test "the site is down"        # Ask the model for a label
  yuri export --format jsonl          # Export the dataset`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)
		loaded, err := internal.LoadConfig(v, configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// bindFlag binds a command flag to a configuration key
func bindFlag(key string, cmd *cobra.Command, name string) {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(name)
	}
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("root-path", internal.DefaultRootPath, "Directory holding the dataset and model")
	rootCmd.PersistentFlags().String("data-file", "", "Dataset file (default <root-path>/slack_channel_data/data.json)")
	rootCmd.PersistentFlags().String("nlp-endpoint", "", "Base URL of the NLP backend")

	bindFlag("root_path", rootCmd, "root-path")
	bindFlag("data_file", rootCmd, "data-file")
	bindFlag("nlp.endpoint", rootCmd, "nlp-endpoint")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
