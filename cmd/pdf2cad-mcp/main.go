package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ironsheep/pdf2cad/internal/config"
	"github.com/ironsheep/pdf2cad/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("pdf2cad-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	// Flags set the defaults of every tool call. Usage goes to stderr since
	// stdout is for the MCP protocol.
	opts, _, err := config.Load("pdf2cad-mcp", os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "This server communicates via MCP protocol over stdin/stdout.")
		fmt.Fprintln(os.Stderr, "Register it as a stdio server in your MCP client configuration.")
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdf2cad-mcp: %v\n", err)
		os.Exit(2)
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger.Debug("starting pdf2cad MCP server",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(opts, logger)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
