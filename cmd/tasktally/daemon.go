package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fentz26/tasktally/internal/api"
	"github.com/fentz26/tasktally/internal/audit"
	"github.com/fentz26/tasktally/internal/categories"
	"github.com/fentz26/tasktally/internal/config"
	"github.com/fentz26/tasktally/internal/store"
	"github.com/fentz26/tasktally/internal/tracker"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

var (
	listenAddr     string
	dbPath         string
	categoriesFile string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the tasktally daemon",
	Long:  `Starts the tasktally daemon which owns the database and serves the HTTP API.`,
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address for the API server (default from config)")
	daemonCmd.Flags().StringVar(&dbPath, "db", "", "Path to SQLite database (default from config)")
	daemonCmd.Flags().StringVar(&categoriesFile, "categories", "", "Path to the category taxonomy YAML (default from config)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	log.Println("Starting tasktally daemon...")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if categoriesFile != "" {
		cfg.CategoriesFile = categoriesFile
	}

	if err := config.EnsureDirectories(); err != nil {
		return err
	}

	// Only one daemon may own the database.
	lockPath, err := config.LockPath()
	if err != nil {
		return err
	}
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another tasktally daemon is already running (lock held on %s)", lockPath)
	}
	defer lock.Unlock()

	taxonomy, err := categories.LoadTaxonomy(cfg.CategoriesFile)
	if err != nil {
		log.Printf("Warning: failed to load categories: %v (using defaults)", err)
		taxonomy = categories.DefaultTaxonomy()
	}

	// Initialize store
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}

	// Create service and server
	service := tracker.NewService(s, audit.NewRecorder(s), taxonomy)
	server := api.NewServer(service, cfg.ListenAddr)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	go func() {
		err := server.Start()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server error: %v", err)
			s.Close()
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Closing database connection...")
	if err := s.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}
