package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/KaramelBytes/datadash/internal/dashboard"
	"github.com/KaramelBytes/datadash/internal/logging"
	"github.com/KaramelBytes/datadash/internal/web"
	"github.com/spf13/cobra"
)

var (
	srvAddr        string
	srvMaxUploadMB int
	srvFile        string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard web server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *settings()
		if cmd.Flags().Changed("addr") {
			c.Addr = srvAddr
		}
		if cmd.Flags().Changed("max-upload-mb") {
			if srvMaxUploadMB <= 0 {
				return fmt.Errorf("--max-upload-mb must be positive")
			}
			c.MaxUploadMB = srvMaxUploadMB
		}

		shell := dashboard.New(shellOptions(&c))
		if srvFile != "" {
			if err := preload(shell, srvFile); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := web.New(shell, web.Options{
			Addr:            c.Addr,
			MaxUploadBytes:  int64(c.MaxUploadMB) << 20,
			ChartSize:       chartSize(&c),
			ShutdownTimeout: shutdownTimeout(&c),
			Version:         Version,
		})
		return srv.Run(ctx)
	},
}

// preload loads a file into the shell before the server starts.
func preload(shell *dashboard.Shell, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := shell.Load(filepath.Base(path), f); err != nil {
		return err
	}
	ds := shell.Dataset()
	logging.Infof("loaded %s (%d rows, %d columns)", ds.Name, ds.NumRows(), ds.NumCols())
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", ":8501", "listen address (overrides config)")
	serveCmd.Flags().IntVar(&srvMaxUploadMB, "max-upload-mb", 200, "maximum upload size in MB (overrides config)")
	serveCmd.Flags().StringVarP(&srvFile, "file", "f", "", "CSV or Excel file to load at startup")
}
