// Package main is the kotae CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "config.yaml"
	defaultServerURL  = "http://localhost:8000"
)

// loadConfig loads config from path. A missing file at the default path is
// not an error: defaults are used so the server runs without any setup.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, cfg.Validate()
		}
	}
	return config.Load(path)
}

func main() {
	// Provider credentials may live in .env; a missing file is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]
	var err error
	switch command {
	case "server":
		err = runServer(args)
	case "ingest":
		err = runIngest(args)
	case "ask":
		err = runAsk(args)
	case "status":
		err = runStatus(args)
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage(os.Stdout)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var watchSvc server.WatchService
	if len(cfg.Watch.Directories) > 0 {
		pipeline := components.Pipeline
		w := watcher.New(cfg.Watch.Directories,
			func(ctx context.Context, path string) {
				res, err := pipeline.IngestFile(ctx, path)
				if err != nil {
					logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
					return
				}
				logger.Info("watch ingested file", zap.String("path", path), zap.Int("chunks", res.Chunks))
			},
			watcher.WithExtensions(cfg.Watch.Extensions),
			watcher.WithRecursive(cfg.Watch.RecursiveOrDefault()),
			watcher.WithLogger(logger),
		)
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
		go w.SyncExistingFiles()
		watchSvc = w
	}

	srv := server.NewServer(components.Pipeline, cfg, watchSvc, logger)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

// argsReorder moves flags (and their values) that appear after positional
// arguments to the front, since flag.Parse stops at the first non-flag.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// buildQuery joins positional args so quoting the question is optional.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAsk(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	configPath := fs.String("config", defaultConfigPath, "config file path (with --file)")
	file := fs.String("file", "", "answer from this document in-process instead of asking a server")
	filter := fs.String("filter", "", "only use chunks from this filename")
	topK := fs.Int("top-k", 0, "number of chunks to retrieve (default from config)")
	output := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printUsage(fs.Output()) }
	_ = fs.Parse(argsReorder(args))

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		return err
	}
	req := models.AskRequest{Query: buildQuery(fs.Args()), FilenameFilter: *filter, TopK: *topK}
	if req.Query == "" {
		return errors.New("a question is required")
	}

	ctx := context.Background()
	var resp *models.AskResponse
	if *file != "" {
		resp, err = askLocal(ctx, *configPath, *file, req)
	} else {
		resp, err = cli.NewClient(*serverURL, nil).Ask(ctx, req)
	}
	if err != nil {
		return err
	}
	return cli.WriteAnswer(os.Stdout, resp, format)
}

// askLocal ingests path into a fresh in-process pipeline and asks req against it.
func askLocal(ctx context.Context, configPath, path string, req models.AskRequest) (*models.AskResponse, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	if _, err := components.Pipeline.IngestFile(ctx, path); err != nil {
		return nil, err
	}
	resp, err := components.Pipeline.Ask(ctx, req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func runIngest(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(args))

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("a file or directory is required")
	}
	files, err := collectFiles(fs.Args(), extract.SupportedExtensions())
	if err != nil {
		return err
	}
	client := cli.NewClient(*serverURL, nil)
	failed := 0
	for _, f := range files {
		res, err := client.Upload(context.Background(), f)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", f, err)
			continue
		}
		if err := cli.WriteIngestResult(os.Stdout, res, format); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// collectFiles expands directories into the files under them with a supported
// extension. Files named explicitly are kept regardless of extension.
func collectFiles(paths []string, exts []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && watcher.MatchExtension(path, exts) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		return err
	}
	status, err := cli.NewClient(*serverURL, nil).Status(context.Background())
	if err != nil {
		return err
	}
	return cli.WriteStatus(os.Stdout, status, format)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `kotae - Grounded answers from your documents

Usage:
  kotae server [flags]            Start the HTTP server
  kotae ingest [flags] <path>...  Upload files (or directories) to the server
  kotae ask [flags] <question>    Ask a question
  kotae status [flags]            Show index and ledger status
  kotae version                   Show version
  kotae help                      Show this help

Server Flags:
  --config string    Config file path (default: ./config.yaml, defaults when missing)
  --debug            Enable debug logging

Ask Flags:
  --server string    Server URL (default: http://localhost:8000)
  --file string      Ingest this file in-process and answer from it (no server needed)
  --config string    Config file path used with --file
  --filter string    Only use chunks from this filename
  --top-k int        Number of chunks to retrieve
  --output string    Output format: text or json (default: text)

Ingest and Status Flags:
  --server string    Server URL (default: http://localhost:8000)
  --output string    Output format: text or json (default: text)

Examples:
  kotae server
  kotae ingest handbook.pdf docs/
  kotae ask What is the refund window?
  kotae ask --filter handbook.pdf --output json "How long is the probation period?"
  kotae ask --file handbook.pdf What is the refund window?`)
}
