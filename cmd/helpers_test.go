package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/iksnae/yuri/testutil"
)

// runCommand executes the root command with args and returns its output
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()
	return stdout.String(), err
}

// writeDataset writes a small dataset into a temp root and returns the data file path
func writeDataset(t *testing.T) string {
	t.Helper()
	return testutil.CreateDataFileFixture(t, t.TempDir(), map[string]testutil.DataFileEntry{
		"1700000000.000100-U1": {Text: "hello there", Label: "greeting"},
		"1700000000.000200-U2": {Text: "the build is broken", Label: "incident"},
		"1700000000.000300-U3": {Text: "the site is down", Label: "incident"},
		"1700000000.000400-U4": {Text: "lunch?", Label: "ignore"},
	}, "1700000000.000100", "1700000000.000400")
}

func missingDataFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "slack_channel_data", "data.json")
}
