package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sword-duel-server/pkg/config"
	"sword-duel-server/pkg/server"

	"github.com/gorilla/mux"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := server.InitLogger(cfg.Log.File, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer server.SyncLogger()

	srv := server.NewServer(server.Options{
		CountdownInterval: cfg.Game.CountdownInterval(),
		HitDamage:         cfg.Game.HitDamage,
	})
	defer srv.Close()

	router := mux.NewRouter()
	router.HandleFunc("/ws", srv.HandleWebSocket)
	router.HandleFunc("/health", srv.HandleHealth)
	router.HandleFunc("/metrics", srv.HandleMetrics)
	// Single port serves both the real-time channel and the static client.
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.Server.StaticDir)))

	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: router}

	go func() {
		server.Log.Infof("Duel server listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	server.Log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		server.Log.Warnf("shutdown: %v", err)
	}
}
