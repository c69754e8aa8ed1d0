package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/recordpad/internal/server"
	"github.com/msto63/recordpad/internal/version"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP/WebSocket server",
	Long: `Starts the analysis server.

Endpoints:
  GET    /health
  POST   /api/v1/analyze       {"source": "...", "locale": "ru"}
  GET    /api/v1/analyze/ws    WebSocket, messages {"type": "analyze", "payload": {...}}
  POST   /api/v1/tokens
  POST   /api/v1/format
  GET    /api/v1/history
  GET    /api/v1/history/{id}
  GET    /api/v1/history/stats
  DELETE /api/v1/history?older_than=720h

Examples:
  recordpad serve
  recordpad serve --port 9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen address (overrides server.host)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, err := newService(true)
	if err != nil {
		return err
	}
	defer svc.Close()

	cfg := server.Config{
		Host:         appConfig.Server.Host,
		Port:         appConfig.Server.Port,
		ReadTimeout:  appConfig.Server.ReadTimeout,
		WriteTimeout: appConfig.Server.WriteTimeout,
		Version:      version.Version,
	}
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, svc, logger)
	fmt.Fprintf(cmd.OutOrStdout(), "recordpad %s listening on http://%s\n", version.Version, srv.Address())
	return srv.Run(ctx, 10*time.Second)
}
