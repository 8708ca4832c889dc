package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/yuri/internal"
	"github.com/spf13/cobra"
)

var (
	testExpectedLabel string
	testModelDir      string
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test <text-or-tsv-file>",
	Short: "Classify text with a trained model",
	Long: `Classify text with a trained model.

The argument is either a text to classify or a file of tab separated
"text<TAB>expected label" lines. Every mismatch is reported and the command
fails if any case does not match.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := loadTestCases(args[0])
		if err != nil {
			return err
		}
		if len(cases) == 0 {
			return fmt.Errorf("no test cases found in %s", args[0])
		}

		modelDir := testModelDir
		if modelDir == "" {
			modelDir = cfg.ModelDir
		}

		client := internal.NewNLPClient(cfg.NLP.Endpoint, cfg.NLP.Timeout)
		failures, err := internal.EvaluateModel(cmd.Context(), client, modelDir, cases, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d test case(s) failed", failures, len(cases))
		}
		internal.LogInfo("All %d test case(s) evaluated", len(cases))
		return nil
	},
}

// loadTestCases reads arg as a TSV file when it names one, otherwise as text
func loadTestCases(arg string) ([]internal.TestCase, error) {
	// Any stat failure, including ENAMETOOLONG for long texts, means text
	info, err := os.Stat(arg)
	if err != nil {
		return []internal.TestCase{{Text: arg, Expected: testExpectedLabel}}, nil
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", arg)
	}

	f, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", arg, err)
	}
	defer func() { _ = f.Close() }()
	return internal.ParseTestCases(f, arg)
}

func init() {
	rootCmd.AddCommand(testCmd)
	testCmd.Flags().StringVarP(&testExpectedLabel, "expected-label", "e", "", "Label the text is expected to get")
	testCmd.Flags().StringVar(&testModelDir, "model-dir", "", "Model directory (default <root-path>/slack_channel_model)")
}
