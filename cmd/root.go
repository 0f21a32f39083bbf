package cmd

import (
	"time"

	cfgpkg "github.com/KaramelBytes/datadash/internal/config"
	"github.com/KaramelBytes/datadash/internal/dashboard"
	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/logging"
	"github.com/KaramelBytes/datadash/internal/render"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/KaramelBytes/datadash/cmd.Version=...".
var Version = "dev"

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:     "datadash",
	Short:   "Datadash: interactive dashboard for CSV and Excel data",
	Long:    `Datadash loads a CSV or Excel file and explores it through an overview, summary statistics and charts, either in a browser dashboard or from the command line.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetDebug(debug)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		logging.Fatal(err)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datadash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so inspection commands still run
		logging.Warnf("failed to load config: %v", err)
		return
	}
	cfg = c
}

// settings returns the loaded configuration, or defaults when none loaded.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return cfgpkg.Default()
}

func loadOptions(c *cfgpkg.Global, sheet string) dataset.Options {
	opt := dataset.DefaultOptions()
	opt.MaxRows = c.MaxRows
	opt.ParseDates = c.ParseDates
	opt.Sheet = sheet
	return opt
}

func shellOptions(c *cfgpkg.Global) dashboard.Options {
	return dashboard.Options{
		Load:        loadOptions(c, ""),
		Bins:        c.HistBins,
		PreviewRows: c.PreviewRows,
	}
}

func chartSize(c *cfgpkg.Global) render.Size {
	return render.Size{Width: c.ChartWidth, Height: c.ChartHeight}
}

func shutdownTimeout(c *cfgpkg.Global) time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}
