package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/paularlott/cli"

	"github.com/martinsuchenak/ipamd/internal/api"
	"github.com/martinsuchenak/ipamd/internal/config"
	"github.com/martinsuchenak/ipamd/internal/dnscheck"
	"github.com/martinsuchenak/ipamd/internal/log"
	"github.com/martinsuchenak/ipamd/internal/mcp"
	"github.com/martinsuchenak/ipamd/internal/script"
	"github.com/martinsuchenak/ipamd/internal/storage"
	"github.com/martinsuchenak/ipamd/internal/ui"
	"github.com/martinsuchenak/ipamd/internal/worker"
)

// ServerConfig holds the assembled components for running the server
type ServerConfig struct {
	Config     *config.Config
	Store      storage.Storage
	Scripts    *script.Registry
	APIHandler *api.Handler
	MCPServer  *mcp.Server
	Scheduler  *worker.Scheduler
}

// RunServer starts the HTTP server and blocks until shutdown
func RunServer(cfg *ServerConfig) error {
	mux := http.NewServeMux()

	// API routes
	cfg.APIHandler.RegisterRoutes(mux)

	// MCP endpoint
	mux.HandleFunc("/mcp", cfg.MCPServer.GetHTTPHandler())

	// Serve web UI at root
	mux.Handle("/", ui.AssetHandler())

	// Apply middleware
	var handler http.Handler = mux
	if cfg.Config.IsAPIAuthEnabled() {
		handler = api.AuthMiddleware(cfg.Config.APIAuthToken, handler)
	}
	handler = api.SecurityHeadersMiddleware(handler)

	server := &http.Server{
		Addr:    cfg.Config.ListenAddr,
		Handler: handler,
	}

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Info("Shutting down server...")
		server.Close()
	}()

	log.Info("Starting ipamd server", "addr", cfg.Config.ListenAddr)
	log.Info("Web UI available", "url", "http://localhost"+cfg.Config.ListenAddr)
	log.Info("API available", "url", "http://localhost"+cfg.Config.ListenAddr+"/api/")
	log.Info("MCP available", "url", "http://localhost"+cfg.Config.ListenAddr+"/mcp")
	if cfg.Config.IsAPIAuthEnabled() {
		log.Info("API authentication enabled")
	}
	cfg.MCPServer.LogStartup()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server error", "error", err)
		return err
	}

	log.Info("Server stopped")
	return nil
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the ipamd server",
		Description: "Start the HTTP server with web UI, API, and MCP endpoints",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load()

			log.Info("Configuration loaded", "data_dir", cfg.DataDir, "listen_addr", cfg.ListenAddr)

			store, err := storage.NewSQLiteStorage(cfg.DataDir)
			if err != nil {
				log.Error("Failed to initialize storage", "error", err)
				return err
			}
			defer store.Close()
			log.Info("Storage initialized", "backend", "SQLite", "path", cfg.DataDir)

			scripts := script.NewRegistry()
			if err := api.RegisterBuiltinScripts(scripts, store); err != nil {
				log.Error("Failed to register scripts", "error", err)
				return err
			}

			apiHandler := api.NewHandler(store, scripts)
			mcpServer := mcp.NewServer(store, scripts, cfg.MCPAuthToken)

			scheduler := worker.NewScheduler(cfg.Workers)
			if cfg.DNSCheckEnabled {
				checker := dnscheck.NewChecker(store, cfg.DNSResolver)
				err := scheduler.Register("dns-verify", cfg.DNSCheckSchedule, checker.Run)
				if err != nil {
					log.Error("Failed to schedule DNS verification", "error", err)
					return err
				}
				log.Info("DNS verification enabled", "schedule", cfg.DNSCheckSchedule, "resolver", cfg.DNSResolver)
			}
			scheduler.Start()
			defer scheduler.Stop()

			return RunServer(&ServerConfig{
				Config:     cfg,
				Store:      store,
				Scripts:    scripts,
				APIHandler: apiHandler,
				MCPServer:  mcpServer,
				Scheduler:  scheduler,
			})
		},
	}
}
