package cmd

import (
	"github.com/KaramelBytes/datadash/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve dataset inspection tools over the Model Context Protocol (stdio)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		return mcp.StartMCPServer(mcp.Options{
			Load:      loadOptions(c, ""),
			Bins:      c.HistBins,
			ChartSize: chartSize(c),
			Version:   Version,
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
