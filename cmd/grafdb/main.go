package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sanonone/grafdb/internal/server"
	"github.com/sanonone/grafdb/pkg/engine"
)

func main() {
	httpAddr := flag.String("http-addr", "", "REST API listen address (e.g. :9091), overrides config")
	dataDir := flag.String("data-dir", "", "data directory for the append-only log, overrides config")
	configPath := flag.String("config", "", "path to the YAML configuration file")
	authToken := flag.String("auth-token", "", "bearer token protecting the API, overrides config")

	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *authToken != "" {
		cfg.AuthToken = *authToken
	}

	opts := engine.DefaultOptions(cfg.DataDir)
	if cfg.AofFilename != "" {
		opts.AofFilename = cfg.AofFilename
	}
	flushInterval, err := server.ParseInterval(cfg.FlushInterval)
	if err != nil {
		log.Fatalf("Invalid flush_interval: %v", err)
	}
	if flushInterval > 0 {
		opts.FlushInterval = flushInterval
	}
	forceSyncInterval, err := server.ParseInterval(cfg.ForceSyncInterval)
	if err != nil {
		log.Fatalf("Invalid force_sync_interval: %v", err)
	}
	if forceSyncInterval > 0 {
		opts.ForceSyncInterval = forceSyncInterval
	}
	if cfg.MaxBufferSize > 0 {
		opts.MaxBufferSize = cfg.MaxBufferSize
	}

	eng, err := engine.Open(opts)
	if err != nil {
		log.Fatalf("Could not open the database: %v", err)
	}

	srv, err := server.NewServer(eng, cfg.HTTPAddr, cfg.AuthToken)
	if err != nil {
		log.Fatalf("Could not create the server: %v", err)
	}

	// Listen for the interrupt signal (Ctrl+C) or SIGTERM.
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	// Run the HTTP server in a goroutine so main can block on the signal.
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-shutdownChan

	srv.Shutdown()
	if err := eng.Close(); err != nil {
		log.Printf("Error closing the database: %v", err)
	}
}
