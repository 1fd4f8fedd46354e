// Package app wires the process together: dataset store, refresher and HTTP
// server, with coordinated shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"iptoasn/internal/app/server"
	"iptoasn/internal/asndb"
	"iptoasn/internal/config"
	"iptoasn/internal/refresh"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Run starts the webservice and blocks until ctx is cancelled or the server
// fails. The first dataset load happens in the background; until it lands
// every lookup answers unannounced.
func Run(ctx context.Context, settings config.Settings) error {
	listener, err := net.Listen("tcp", settings.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.ListenAddr, err)
	}
	if settings.MaxConns > 0 {
		listener = netutil.LimitListener(listener, settings.MaxConns)
	}
	return serve(ctx, settings, listener)
}

func serve(ctx context.Context, settings config.Settings, listener net.Listener) error {
	store := asndb.NewStore()
	refresher := refresh.New(store, settings.DatabaseURL, settings.CacheFile)

	srv := &http.Server{
		Handler:           server.NewHandler(store),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return refresher.Run(gctx, settings.RefreshInterval)
	})

	g.Go(func() error {
		log.Info("webservice ready", "listen", listener.Addr().String())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
