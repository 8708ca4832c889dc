package cmd

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/iksnae/yuri/internal"
	"github.com/spf13/cobra"
)

var (
	trainOutputDir string
	trainPercent   int
	trainTestText  string
	trainSeed      int64
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a text classifier from the dataset",
	Long: `Train a text categorization model on the labeled dataset.

Entries are shuffled and split into training and evaluation sets. Every label,
ignore included, becomes a category. Training runs on the NLP backend, which
writes the model to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := internal.NewDatasetStore(cfg.DataFile).Load(true)
		if err != nil {
			return err
		}

		outputDir := trainOutputDir
		if outputDir == "" {
			outputDir = cfg.ModelDir
		}
		seed := trainSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		internal.LogDebug("Shuffling with seed %d", seed)

		req, err := internal.BuildTrainRequest(ds, trainPercent, rand.New(rand.NewSource(seed)), outputDir, trainTestText)
		if err != nil {
			return err
		}

		client := internal.NewNLPClient(cfg.NLP.Endpoint, cfg.NLP.Timeout)
		var resp *internal.TrainResponse
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Training %d label(s) on %d example(s)", len(req.Labels), len(req.Train)), func() error {
			var trainErr error
			resp, trainErr = client.Train(cmd.Context(), req)
			return trainErr
		})
		if err != nil {
			return fmt.Errorf("training failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(resp.Scores) > 0 {
			names := make([]string, 0, len(resp.Scores))
			for name := range resp.Scores {
				names = append(names, name)
			}
			sort.Strings(names)
			_, _ = fmt.Fprintln(out, internal.Rule("Scores"))
			for _, name := range names {
				_, _ = fmt.Fprintf(out, "%-20s %.3f\n", name, resp.Scores[name])
			}
		}
		internal.PrintSuccess(fmt.Sprintf("Saved model to %s", resp.OutputDir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringVarP(&trainOutputDir, "output-dir", "o", "", "Model output directory (default <root-path>/slack_channel_model)")
	trainCmd.Flags().IntVar(&trainPercent, "train-percent", 80, "Share of entries used for training, the rest evaluates")
	trainCmd.Flags().StringVar(&trainTestText, "test-text", "", "Text the backend classifies after training")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 0, "Shuffle seed (0 picks one from the clock)")
}
