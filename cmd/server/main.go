package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vodiniz/buracao/internal/auth"
	"github.com/vodiniz/buracao/internal/cache"
	"github.com/vodiniz/buracao/internal/config"
	"github.com/vodiniz/buracao/internal/database"
	"github.com/vodiniz/buracao/internal/lobby"
	"github.com/vodiniz/buracao/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Server] Invalid configuration: %v", err)
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Fatalf("[Server] %v", err)
	}
}

// run serves until ctx is cancelled and returns once the HTTP server has shut
// down and the lobby, cache and store are closed.
func run(ctx context.Context, cfg *config.Config) error {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := database.NewStore(openCtx, cfg.StoreOptions())
	cancel()
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer store.Close()

	if cfg.RedisAddr != "" {
		rctx, rcancel := context.WithTimeout(ctx, 5*time.Second)
		if err := cache.ConnectRedis(rctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			log.Warnf("[Server] Redis unavailable, action log disabled: %v", err)
		}
		rcancel()
		defer cache.Close()
	}

	lby := lobby.New(lobby.Config{
		Rules:          cfg.Rules,
		NextRoundDelay: cfg.NextRoundDelay,
		Store:          store,
	})
	defer lby.Close()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	srv := server.New(lby, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), store, cfg.AllowedOrigins)
	httpServer := &http.Server{
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		log.Info("[Server] Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("[Server] Shutdown: %v", err)
		}
	}()

	log.Infof("[Server] Store: %s", cfg.Store)
	log.Infof("[Server] Listening on %s", ln.Addr())
	if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	<-shutdownDone
	log.Info("[Server] Stopped")
	return nil
}
