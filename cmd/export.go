package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/yuri/internal"
	"github.com/iksnae/yuri/internal/export"
	"github.com/spf13/cobra"
)

var (
	format         string
	outputDir      string
	includeIgnored bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the dataset to file",
	Long: `Export the classified dataset to various formats (jsonl, md, yaml, json, tsv, sqlite).

The tsv format writes "text<TAB>label" lines that 'yuri test' reads back, and
leaves out ignored messages unless --include-ignored is set. The sqlite format
mirrors entries and cursors into a database file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := internal.NewDatasetStore(cfg.DataFile).Load(true)
		if err != nil {
			return err
		}

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		if format == "sqlite" {
			path := filepath.Join(outputDir, "dataset.db")
			if err := exportSQLite(ds, path); err != nil {
				return &internal.ExportError{Format: format, Path: path, Err: err}
			}
			internal.PrintSuccess(fmt.Sprintf("Export complete: %d entries exported to %s", ds.Len(), path))
			return nil
		}

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}
		if tsv, ok := exporter.(*export.TSVExporter); ok {
			tsv.IncludeIgnored = includeIgnored
		}

		path := filepath.Join(outputDir, "dataset."+exporter.Extension())
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Exporting %d entries to %s", ds.Len(), path), func() error {
			file, err := os.Create(path)
			if err != nil {
				return &internal.ExportError{Format: format, Path: path, Err: err}
			}
			if err := exporter.Export(ds, file); err != nil {
				_ = file.Close()
				return &internal.ExportError{Format: format, Path: path, Err: err}
			}
			if err := file.Close(); err != nil {
				return &internal.ExportError{Format: format, Path: path, Err: err}
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d entries exported to %s", ds.Len(), path))
		return nil
	},
}

func exportSQLite(ds *internal.Dataset, path string) error {
	db, err := internal.OpenDatasetDB(path)
	if err != nil {
		return err
	}
	if err := internal.SaveDatasetDB(db, ds); err != nil {
		_ = db.Close()
		return err
	}
	return db.Close()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json, tsv, sqlite)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().BoolVar(&includeIgnored, "include-ignored", false, "Keep ignored messages in tsv exports")
}
