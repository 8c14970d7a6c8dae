package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/positivepasswordbook/ppbbridge/internal/config"
	"github.com/positivepasswordbook/ppbbridge/internal/server"
	"github.com/spf13/cobra"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the bridge over HTTP",
	Long: `Start an HTTP server that forwards requests to the backend.

Endpoints:
  POST /api/v1/text-io          {"actions": [...], "base_dir": "..."}
                                (application/json only; base_dir must match
                                the server's unless allow_base_dir_override)
  PUT  /api/v1/files?path=...   raw body is written to path
  GET  /health`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("addr") {
			cfg.ListenAddr = listenAddr
		}

		dir := cfg.BaseDir
		if cmd.Flags().Changed("dir") {
			dir = baseDir
		}
		dir, err = config.BaseDirOrCwd(dir)
		if err != nil {
			return err
		}

		b, err := newBridge(cfg, true)
		if err != nil {
			return fmt.Errorf("creating bridge: %w", err)
		}

		logger := newLogger("[server] ", true)
		api := server.New(b, dir, logger)
		api.SetAllowBaseDirOverride(cfg.AllowBaseDirOverride)
		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           api.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Printf("listening on %s (base dir %s)", cfg.ListenAddr, dir)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default: listen_addr from config)")
	serveCmd.Flags().StringVarP(&baseDir, "dir", "d", "", "Base directory used when a request names none")
}
