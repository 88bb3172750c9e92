package graceful

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stableroute/stableroute_service/pkg/logger"
)

// Shutdowner is implemented by background workers that need a bounded stop
type Shutdowner interface {
	Shutdown(timeout time.Duration) error
}

// ShutdownManager drains the HTTP server, stops registered workers and closes
// infrastructure handles (database, redis) on SIGINT/SIGTERM.
type ShutdownManager struct {
	server      *http.Server
	shutdowners []Shutdowner
	closers     []io.Closer
	logger      *logger.Logger
}

func NewShutdownManager(server *http.Server, log *logger.Logger) *ShutdownManager {
	return &ShutdownManager{
		server: server,
		logger: log,
	}
}

// ShutdownFunc adapts a plain stop function to the Shutdowner interface
type ShutdownFunc func(timeout time.Duration) error

func (f ShutdownFunc) Shutdown(timeout time.Duration) error {
	return f(timeout)
}

// Register adds a worker to stop during shutdown
func (sm *ShutdownManager) Register(s Shutdowner) {
	sm.shutdowners = append(sm.shutdowners, s)
}

// RegisterCloser adds an infrastructure handle to close last
func (sm *ShutdownManager) RegisterCloser(c io.Closer) {
	sm.closers = append(sm.closers, c)
}

// WaitForShutdown blocks until a termination signal, then drains everything
func (sm *ShutdownManager) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sm.logger.Info("Shutting down gracefully...")

	timeout := 30 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, s := range sm.shutdowners {
		if err := s.Shutdown(timeout); err != nil {
			sm.logger.Warn("Component shutdown error", "error", err)
		}
	}

	if err := sm.server.Shutdown(ctx); err != nil {
		sm.logger.Error("Server forced shutdown", "error", err)
	}

	for _, c := range sm.closers {
		if err := c.Close(); err != nil {
			sm.logger.Warn("Close error", "error", err)
		}
	}

	sm.logger.Info("Shutdown complete")
}
