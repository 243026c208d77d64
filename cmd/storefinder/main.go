package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/storefinder/internal/api"
	"github.com/banshee-data/storefinder/internal/config"
	"github.com/banshee-data/storefinder/internal/db"
	"github.com/banshee-data/storefinder/internal/metrics"
	"github.com/banshee-data/storefinder/internal/version"
)

// options are the command-line settings. Flags that were given win over the
// config file.
type options struct {
	configPath  string
	listen      string
	dbPath      string
	dbSet       bool
	showVersion bool
}

func parseFlags(args []string, out io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("storefinder", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&o.configPath, "config", "", "Path to a .json or .hcl config file")
	fs.StringVar(&o.listen, "listen", "", "Listen address (default "+config.DefaultListen+")")
	fs.StringVar(&o.dbPath, "db", "", "SQLite query history path; empty disables history (default "+config.DefaultDBPath+")")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "db" {
			o.dbSet = true
		}
	})
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(o *options) (*config.ServerConfig, error) {
	cfg := config.EmptyConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.listen != "" {
		cfg.Listen = &o.listen
	}
	if o.dbSet {
		cfg.DBPath = &o.dbPath
	}
	return cfg, nil
}

// openStore opens the query history, or returns nil when it is disabled.
func openStore(cfg *config.ServerConfig) (*db.DB, error) {
	path := cfg.GetDBPath()
	if path == "" {
		return nil, nil
	}
	if cfg.GetMigrations() {
		return db.NewDB(path)
	}
	return db.OpenDB(path)
}

// newHandler wires the API server, and the admin routes when a database is
// present, into one handler.
func newHandler(cfg *config.ServerConfig, database *db.DB) (http.Handler, *api.Server, error) {
	var store api.QueryStore
	if database != nil {
		store = database
	}
	srv := api.NewServer(store, api.Options{
		SolveTimeout: cfg.GetSolveTimeout(),
		MaxBodyBytes: cfg.GetMaxBodyBytes(),
		RateLimit:    cfg.GetRateLimitRequests(),
		RateWindow:   cfg.GetRateLimitWindow(),
	})
	mux := srv.ServeMux()
	if database != nil {
		if err := database.AttachAdminRoutes(mux); err != nil {
			return nil, nil, err
		}
	}
	return srv.Handler(mux), srv, nil
}

// runMigrate handles `storefinder migrate [-db path] [-config file] <action>`.
func runMigrate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "Path to a .json or .hcl config file")
	dbPath := fs.String("db", "", "SQLite database path (default "+config.DefaultDBPath+")")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *dbPath
	if path == "" {
		cfg, err := loadConfig(&options{configPath: *configPath})
		if err != nil {
			return err
		}
		path = cfg.GetDBPath()
	}
	if path == "" {
		return errors.New("migrate: no database path configured")
	}
	return db.RunMigrateCommand(fs.Args(), path, out)
}

// Main
func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(os.Args[2:], os.Stdout); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("invalid arguments: %v", err)
	}
	if o.showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig(o)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if database != nil {
		defer database.Close()
	} else {
		log.Print("query history disabled")
	}

	metrics.Register()

	handler, srv, err := newHandler(cfg, database)
	if err != nil {
		log.Fatalf("failed to set up routes: %v", err)
	}
	srv.Start()
	defer srv.Close()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		server := &http.Server{
			Addr:              cfg.GetListen(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("storefinder %s listening on %s", version.Version, server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// In-flight solves are bounded by the solve timeout; give them that long.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetSolveTimeout())
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			// Force close the server if graceful shutdown fails
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
