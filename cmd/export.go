package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	expFormat string
	expOutput string
	expSheet  string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Convert a CSV or Excel file to processed CSV or Parquet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			encode func(*dataset.Dataset) ([]byte, error)
			name   string
		)
		switch strings.ToLower(expFormat) {
		case "csv":
			encode, name = dataset.CSV, dataset.ExportFileName
		case "parquet":
			encode, name = dataset.Parquet, dataset.ParquetFileName
		default:
			return fmt.Errorf("unsupported --format: %s (use csv|parquet)", expFormat)
		}
		ds, err := dataset.LoadFile(args[0], loadOptions(settings(), expSheet))
		if err != nil {
			return err
		}
		b, err := encode(ds)
		if err != nil {
			return err
		}
		out := expOutput
		if out == "" {
			out = name
		}
		if err := utils.SafeWriteFile(out, b); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rows to %s\n", ds.NumRows(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&expFormat, "format", "csv", "export format: csv|parquet")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "output path (default processed_data.csv or processed_data.parquet)")
	exportCmd.Flags().StringVar(&expSheet, "sheet", "", "Excel: sheet name (default first sheet)")
}
