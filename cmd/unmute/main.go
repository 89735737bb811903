package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/unmute/internal/app"
	"github.com/ayusman/unmute/internal/config"
	"github.com/ayusman/unmute/internal/server"
	"github.com/ayusman/unmute/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.unmute/config.yaml)")
	addr := flag.String("addr", "", "listen address, overrides server.addr")
	flag.Parse()

	fmt.Println("Unmute - Sign Language to Text")

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:          st,
		PluginDir:      cfg.Plugins.Dir,
		PluginTimeout:  cfg.Plugins.Timeout,
		Session:        cfg.Session(),
		Sign:           cfg.SignOptions(),
		UseMediaPipe:   cfg.Detector.Enabled,
		DetectorConfig: cfg.DetectorConfig(),
	})
	defer a.Close()

	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	fmt.Printf("Loaded %d plugins from %s\n", len(a.PluginManager().List()), cfg.Plugins.Dir)

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	if cfg.Server.StaticDir != "" {
		fmt.Printf("Serving static files from: %s\n", cfg.Server.StaticDir)
	}
	srv := server.New(server.Config{
		StaticDir: cfg.Server.StaticDir,
		App:       a,
	})

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		errCh <- srv.ListenAndServe(cfg.Server.Addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("Server failed: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown failed: %v", err)
		}
	}
}
