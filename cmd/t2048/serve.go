package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/platform/tui"
	"github.com/vovakirdan/tui-2048/internal/platform/ws"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

var (
	flagSSHAddr     string
	flagWSAddr      string
	flagHostKey     string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the 2048 SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH user plays in their own save slot, stored in the database, so a
game can be resumed from any machine. Anonymous users, and second
connections for a slot that is already playing, get a guest slot.

With --ws, every game can also be watched live over WebSocket at
ws://<addr>/watch/<slot>.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.t2048/ssh_host_ed25519

Examples:
  t2048 serve                     # Listen on :2048 with auto-generated key
  t2048 serve --ssh :2222         # Listen on port 2222
  t2048 serve --ws :8080          # Also serve the spectator feed

Users can connect with:
  ssh localhost -p 2048`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagWSAddr, "ws", "", "Spectator WebSocket address (disabled when empty)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting (default from config)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitf("%v", err)
	}
	if flagSSHAddr != "" {
		cfg.Server.SSHAddr = flagSSHAddr
	}
	if flagWSAddr != "" {
		cfg.Server.WSAddr = flagWSAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKey = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.Server.IdleTimeout = flagIdleTimeout
	}

	logger := newLogger(cfg, os.Stderr)

	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		exitf("opening database: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hub *ws.Hub
	var httpServer *http.Server
	if cfg.Server.WSAddr != "" {
		hub = ws.NewHub(logger.WithPrefix("t2048-ws"))
		go hub.Run(ctx)

		httpServer = &http.Server{
			Addr:              cfg.Server.WSAddr,
			Handler:           hub.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("starting spectator feed", "address", cfg.Server.WSAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("spectator feed stopped", "error", err)
				cancel()
			}
		}()
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:       cfg.Server.SSHAddr,
		HostKeyPath:   cfg.Server.HostKey,
		IdleTimeout:   cfg.Server.IdleTimeout,
		Format:        cfg.Save.Format,
		CorruptPolicy: cfg.CorruptPolicy(),
		BoardOptions:  cfg.BoardOptions(),
	}, store, hub, logger.WithPrefix("t2048-ssh"))
	if err != nil {
		exitf("creating server: %v", err)
	}

	fmt.Printf("Starting 2048 SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	serveErr := server.ListenAndServe(ctx)

	if httpServer != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		httpServer.Shutdown(shutdownCtx)
		done()
	}

	if serveErr != nil {
		store.Close()
		exitf("%v", serveErr)
	}
}
