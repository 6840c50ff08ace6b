package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/a3tai/mcp-pdf-form/internal/assets"
	"github.com/a3tai/mcp-pdf-form/internal/config"
	"github.com/a3tai/mcp-pdf-form/internal/mcp"
	"github.com/a3tai/mcp-pdf-form/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the server mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, redirect log output to stderr to avoid interfering with MCP protocol
		log.SetOutput(os.Stderr)
		// Reduce log verbosity in stdio mode unless debug is enabled
		if !cfg.IsDebug() {
			log.SetOutput(os.NewFile(0, os.DevNull))
		}
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// setupMaxProcs aligns GOMAXPROCS with the container CPU quota
func setupMaxProcs(cfg *config.Config) {
	// maxprocs.Set only fails on an invalid GOMAXPROCS variable; runtime defaults apply then.
	if cfg.IsDebug() {
		_, _ = maxprocs.Set(maxprocs.Logger(log.Printf))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}
}

// newService creates the form service and loads the configured form
func newService(ctx context.Context, cfg *config.Config) (*pdf.Service, error) {
	service, err := pdf.NewService(pdf.ServiceOptions{
		MaxFileSize:     cfg.MaxFileSize,
		Scale:           cfg.Scale,
		OutputDirectory: cfg.OutputDirectory,
		DownloadName:    cfg.DownloadName,
		RevokeDelay:     cfg.RevokeDelay,
	})
	if err != nil {
		return nil, err
	}

	if cfg.FormPath != "" {
		err = service.LoadFile(ctx, cfg.FormPath)
	} else {
		err = service.Load(ctx, assets.Form(), assets.FormName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load form: %w", err)
	}
	return service, nil
}

// run serves the form until ctx is canceled, a termination signal arrives,
// or the transport stops.
func run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	pdfService, err := newService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create PDF form service: %w", err)
	}

	server, err := mcp.NewServer(cfg, pdfService)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Run(ctx); err != nil {
		return err
	}
	if cfg.IsServerMode() {
		log.Println("Server stopped successfully")
	}
	return nil
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)
	setupMaxProcs(cfg)

	if version != "dev" {
		cfg.Version = version
	}
	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	if err := run(context.Background(), cfg); err != nil {
		// Stdio mode keeps stderr quiet unless debug logging is on.
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP PDF Form\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
