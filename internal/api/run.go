package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/notifier"
)

// Serve listens on addr until ctx is cancelled. When lockPath is set the
// server announces itself there so CLI commands can post their events, and
// removes the lockfile on shutdown. ready, if not nil, receives the bound
// address once the listener is up.
func (s *Server) Serve(ctx context.Context, addr, lockPath string, ready chan<- net.Addr) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if lockPath != "" {
		port := ln.Addr().(*net.TCPAddr).Port
		if err := notifier.WriteLock(lockPath, port, s.secret); err != nil {
			ln.Close()
			return fmt.Errorf("failed to write server lockfile: %w", err)
		}
		defer func() {
			if err := notifier.RemoveLock(lockPath); err != nil {
				logger.Warn("Failed to remove server lockfile", "path", lockPath, "error", err)
			}
		}()
	}

	if err := s.SyncMetrics(); err != nil {
		logger.Warn("Failed to initialize metrics", "error", err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: constants.ServerReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownPeriod)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if ready != nil {
		ready <- ln.Addr()
	}
	return g.Wait()
}
