// Command pdf2cad traces scanned drawings into DXF or SVG files.
//
// Every argument is converted independently: a PDF, a raster image, or a
// directory of raster images treated as one multi-page document. A file that
// fails is logged and skipped; the exit status is 1 when any input failed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ironsheep/pdf2cad/internal/cad"
	"github.com/ironsheep/pdf2cad/internal/config"
	"github.com/ironsheep/pdf2cad/internal/imaging"
	"github.com/ironsheep/pdf2cad/internal/pipeline"
	"github.com/ironsheep/pdf2cad/internal/source"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("pdf2cad %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, inputs, err := config.Load("pdf2cad", args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "pdf2cad: %v\n", err)
		return 2
	}
	if len(inputs) == 0 {
		fmt.Fprintln(stderr, "pdf2cad: no input files (see --help)")
		return 2
	}

	logger := newLogger(stderr, opts.LogLevel)
	slog.SetDefault(logger)

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			logger.Error("failed to create output directory", "dir", opts.OutputDir, "error", err)
			return 1
		}
	}

	cache := imaging.NewImageCache()
	failed := 0
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			logger.Warn("interrupted", "skipped", len(inputs)-i)
			failed += len(inputs) - i
			break
		}

		out, err := convertFile(ctx, logger, opts, cache, input)
		if err != nil {
			failed++
			logger.Error("conversion failed", "input", input, "error", err)
			continue
		}
		logger.Info("drawing written", "input", input, "output", out)
	}

	if failed > 0 {
		logger.Warn("some inputs were not converted", "failed", failed, "total", len(inputs))
		return 1
	}
	return 0
}

// convertFile converts one input and writes the drawing. It returns the
// output path.
func convertFile(ctx context.Context, logger *slog.Logger, opts config.Options, cache *imaging.ImageCache, input string) (string, error) {
	log := logger.With("input", input)

	options := []pipeline.Option{
		pipeline.WithLogger(log),
		pipeline.WithProgress(func(completed, total int) {
			log.Info("progress", "pages_done", completed, "pages", total)
		}),
	}
	if opts.PreviewDir != "" {
		base := filepath.Base(filepath.Clean(input))
		options = append(options, pipeline.WithPreview(opts.PreviewDir, strings.TrimSuffix(base, filepath.Ext(base))))
	}

	conv, err := pipeline.New(opts, options...)
	if err != nil {
		return "", err
	}
	drawing, err := cad.NewDrawingForFormat(conv.Options().Format)
	if err != nil {
		return "", err
	}

	doc, err := source.Open(input, cache)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	res, err := conv.Convert(ctx, doc, drawing)
	if err != nil {
		return "", err
	}
	if res.Failed > 0 {
		log.Warn("pages skipped", "failed", res.Failed, "pages", res.Pages)
	}

	out := source.OutputPath(input, opts.OutputDir, drawing.Encoder().Extension())
	if err := os.WriteFile(out, res.Output, 0o644); err != nil {
		return "", fmt.Errorf("failed to write drawing: %w", err)
	}
	return out, nil
}

func newLogger(w io.Writer, levelName string) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
