// Package tui provides the terminal front end: the bubbletea board model,
// key bindings, colour rendering and an SSH server built on Wish.
package tui

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	petname "github.com/dustinkirkland/golang-petname"

	"github.com/vovakirdan/tui-2048/internal/game"
	"github.com/vovakirdan/tui-2048/internal/persist"
	"github.com/vovakirdan/tui-2048/internal/platform/ws"
	"github.com/vovakirdan/tui-2048/internal/session"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":2048").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.t2048/ssh_host_ed25519.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Format is the save codec for player slots; empty means JSON.
	Format string

	CorruptPolicy session.CorruptPolicy
	BoardOptions  []game.Option
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:       ":2048",
		IdleTimeout:   30 * time.Minute,
		CorruptPolicy: session.PolicyDiscard,
	}
}

// SSHServer serves one game per SSH connection. Every player has a save
// slot named after their SSH user; anonymous players and second
// connections for a busy slot get a generated guest slot.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	codec  persist.Codec
	hub    *ws.Hub
	logger *log.Logger

	mu     sync.Mutex
	active map[string]bool
}

// NewSSHServer creates a server playing against store. hub may be nil,
// in which case nothing is published for spectators.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, hub *ws.Hub, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	codec, err := persist.Lookup(cmp.Or(cfg.Format, "json"))
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		codec:  codec,
		hub:    hub,
		logger: logger,
		active: make(map[string]bool),
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".t2048", "ssh_host_ed25519")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler starts the player's session and creates a Bubble Tea program for it.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		wish.Fatalln(sshSession, "2048 needs an interactive terminal, try ssh -t")
		return nil, nil
	}

	slot := s.claimSlot(sshSession.User())
	logger := s.logger.With("slot", slot)

	gameSession := session.New(
		persist.NewSlotStore(s.store, slot, s.codec),
		session.WithPlayer(slot),
		session.WithScoreRecorder(s.store),
		session.WithEventSink(s.spectate(slot)),
		session.WithLogger(logger),
		session.WithCorruptPolicy(s.config.CorruptPolicy),
		session.WithBoardOptions(s.config.BoardOptions...),
	)
	if err := gameSession.Start(); err != nil {
		s.releaseSlot(slot)
		logger.Error("cannot start game", "error", err)
		wish.Fatalln(sshSession, "cannot load your game:", err)
		return nil, nil
	}

	// The player may drop the connection without quitting.
	go func() {
		<-sshSession.Context().Done()
		if err := gameSession.Close(); err != nil {
			logger.Error("cannot save on disconnect", "error", err)
		}
		s.releaseSlot(slot)
	}()

	model := NewModel(gameSession, pty.Window.Width, pty.Window.Height, logger)
	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// claimSlot reserves a save slot for user.
func (s *SSHServer) claimSlot(user string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := user
	for slot == "" || s.active[slot] {
		slot = "guest-" + petname.Generate(2, "-")
	}
	s.active[slot] = true
	return slot
}

// releaseSlot frees slot and clears its spectator board.
func (s *SSHServer) releaseSlot(slot string) {
	s.mu.Lock()
	delete(s.active, slot)
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Forget(slot)
	}
}

// spectate forwards session events to the spectator hub. Events that carry
// the whole board are kept for watchers who join later.
func (s *SSHServer) spectate(slot string) session.EventSink {
	if s.hub == nil {
		return nil
	}
	return func(ev session.Event) {
		s.hub.Publish(slot, ev, ev.Board != nil)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until SIGINT/SIGTERM
// or ctx is cancelled.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
	case err := <-errc:
		s.logger.Error("server error", "error", err)
		return fmt.Errorf("tui: ssh server: %w", err)
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server. Open games are saved as their
// connections close.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
