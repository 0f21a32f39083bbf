package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/outwriter"
	"github.com/KaramelBytes/datadash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	insFormat     string
	insOutputPath string
	insSheet      string
	insPreview    int
	insWidth      int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the overview, column groups and summary statistics of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outwriter.ParseFormat(insFormat)
		if err != nil {
			return err
		}
		c := settings()
		ds, err := dataset.LoadFile(args[0], loadOptions(c, insSheet))
		if err != nil {
			return err
		}
		preview := c.PreviewRows
		if cmd.Flags().Changed("preview") {
			if insPreview < 0 {
				return fmt.Errorf("--preview must not be negative")
			}
			preview = insPreview
		}
		report := outwriter.NewReport(ds, preview)

		// Decide where to write: --output path or stdout
		if insOutputPath != "" {
			width := insWidth
			if width <= 0 {
				width = 120
			}
			var buf bytes.Buffer
			if err := outwriter.Write(&buf, report, format, width); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(insOutputPath, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", insOutputPath)
			return nil
		}
		return outwriter.Write(cmd.OutOrStdout(), report, format, outwriter.TerminalWidth(insWidth))
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&insFormat, "format", "text", "output format: text|json|csv|markdown")
	inspectCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "optional path to write the report")
	inspectCmd.Flags().StringVar(&insSheet, "sheet", "", "Excel: sheet name (default first sheet)")
	inspectCmd.Flags().IntVar(&insPreview, "preview", 5, "number of preview rows (overrides config)")
	inspectCmd.Flags().IntVar(&insWidth, "width", 0, "table width in columns (0 = terminal width)")
}
