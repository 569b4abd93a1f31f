package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/john/chatter/internal/bridge"
	"github.com/john/chatter/internal/chatlog"
	"github.com/john/chatter/internal/config"
	"github.com/john/chatter/internal/diag"
	"github.com/john/chatter/internal/timekeeper"
	"github.com/john/chatter/internal/watcher"
)

func main() {
	log.Println("Chatter starting...")

	// Get config path from environment variable or use default
	configPath := os.Getenv("CHATTER_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Configuration loaded successfully")

	for name, lc := range cfg.Logs {
		log.Printf("Chat log group %q: %d channels -> %s", name, len(lc.Enabled), lc.Directory)
	}

	// Setup context and signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Core components: clock, per-group chat logs, host bridge
	clock := timekeeper.NewZoned(cfg.Location)
	manager := chatlog.NewManager(cfg, clock)
	bridgeServer := bridge.New(cfg, clock, manager)

	var diagServer *diag.Server
	if cfg.Diag.Listen != "" {
		diagServer = diag.New(cfg.Diag.Listen, manager)
	}

	// Reloads reconcile the running chat logs against the new config
	configWatcher, err := watcher.New(configPath, func(newCfg *config.Config) {
		bridgeServer.UpdateLabels(newCfg)
		manager.Reconcile(newCfg)
	})
	if err != nil {
		log.Fatalf("Failed to create config watcher: %v", err)
	}

	// Start all components
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bridgeServer.Start(); err != nil {
			log.Printf("Bridge server error: %v", err)
		}
	}()

	if diagServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := diagServer.Start(); err != nil {
				log.Printf("Diagnostics server error: %v", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := configWatcher.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Config watcher error: %v", err)
		}
	}()

	log.Println("All components started successfully")

	// Wait for shutdown signal
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, initiating graceful shutdown...")

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := bridgeServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down bridge server: %v", err)
		}
		if diagServer != nil {
			if err := diagServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error shutting down diagnostics server: %v", err)
			}
		}

		// Cancel main context to stop the watcher
		cancel()

		// Wait for components to finish with timeout
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Println("All components stopped gracefully")
		case <-shutdownCtx.Done():
			log.Println("Shutdown timeout exceeded, forcing exit")
		}

		// Release every open log file last, after the bridge has stopped
		// delivering messages
		manager.Close()

		os.Exit(0)
	}()

	// Wait for shutdown. A component failing to start (a taken port, for
	// instance) lands here without the signal path running, so the logs
	// are released on this path too.
	wg.Wait()
	manager.Close()
	log.Println("Chatter stopped")
}
