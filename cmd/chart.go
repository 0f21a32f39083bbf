package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datadash/internal/chart"
	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/render"
	"github.com/KaramelBytes/datadash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	chKind    string
	chColumn  string
	chColumns []string
	chX       string
	chY       string
	chColor   string
	chDate    string
	chValue   string
	chBins    int
	chSheet   string
	chOutput  string
	chWidth   int
	chHeight  int
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Render one chart of a file to SVG or PNG",
	Long: `Render one chart of a file to SVG or PNG. The image format follows the
--output extension (.svg or .png).

Kinds: histogram (--column, --bins), bars (--column), heatmap (--columns),
scatter (--x, --y, --color), timeseries (--date, --value).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := chart.ParseKind(chKind)
		if err != nil {
			return err
		}
		if chOutput == "" {
			return fmt.Errorf("--output is required")
		}
		format, err := render.FormatFor(chOutput)
		if err != nil {
			return err
		}
		c := settings()
		ds, err := dataset.LoadFile(args[0], loadOptions(c, chSheet))
		if err != nil {
			return err
		}

		spec := chart.Spec{
			Kind:    kind,
			Column:  chColumn,
			Columns: chColumns,
			X:       chX,
			Y:       chY,
			Color:   strings.TrimSpace(chColor),
			Date:    chDate,
			Value:   chValue,
			Bins:    c.HistBins,
		}
		if strings.EqualFold(spec.Color, chart.NoColor) {
			spec.Color = ""
		}
		if cmd.Flags().Changed("bins") {
			spec.Bins = chBins
		}
		a, err := chart.Build(ds, spec)
		if err != nil {
			return err
		}

		size := chartSize(c)
		if chWidth > 0 {
			size.Width = chWidth
		}
		if chHeight > 0 {
			size.Height = chHeight
		}
		img, err := render.Render(a, format, size)
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(chOutput, img); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s chart to %s\n", kind, chOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chKind, "kind", "k", "histogram", "chart kind: histogram|bars|heatmap|scatter|timeseries")
	chartCmd.Flags().StringVar(&chColumn, "column", "", "column for histogram or bars")
	chartCmd.Flags().StringSliceVar(&chColumns, "columns", nil, "comma-separated numeric columns for heatmap (default all)")
	chartCmd.Flags().StringVar(&chX, "x", "", "scatter x column")
	chartCmd.Flags().StringVar(&chY, "y", "", "scatter y column")
	chartCmd.Flags().StringVar(&chColor, "color", "", "scatter colour column (optional)")
	chartCmd.Flags().StringVar(&chDate, "date", "", "time series date column")
	chartCmd.Flags().StringVar(&chValue, "value", "", "time series value column")
	chartCmd.Flags().IntVar(&chBins, "bins", 30, "histogram bins (overrides config)")
	chartCmd.Flags().StringVar(&chSheet, "sheet", "", "Excel: sheet name (default first sheet)")
	chartCmd.Flags().StringVarP(&chOutput, "output", "o", "", "output path ending in .svg or .png")
	chartCmd.Flags().IntVar(&chWidth, "width", 0, "image width in points (overrides config)")
	chartCmd.Flags().IntVar(&chHeight, "height", 0, "image height in points (overrides config)")
}
