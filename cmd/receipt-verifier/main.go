package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/nibret/receipt-verifier/internal/assist"
	"github.com/nibret/receipt-verifier/internal/extraction"
	"github.com/nibret/receipt-verifier/internal/verification"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("receipt-verifier")
	var (
		port         = fs.IntLong("port", 8080, "HTTP server port")
		dbPath       = fs.StringLong("db", "receipt-verifier.db", "Audit database file path")
		archivePath  = fs.StringLong("archive", "./documents", "Document archive directory path")
		provider     = fs.StringLong("provider", "cbe", "Receipt provider ruleset")
		fetchURL     = fs.StringLong("fetch-url", "", "Provider receipt URL template containing {reference}")
		fetchTimeout = fs.DurationLong("fetch-timeout", 30*time.Second, "Receipt download timeout")
		assistMode   = fs.StringLong("assist", "off", "Assist scanner for rejected receipts: 'off', 'gemini' or 'ollama'")
		geminiKey    = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel  = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL    = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel  = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, llava-phi3, qwen2-vl)")
		authUser     = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass     = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion  = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_VERIFIER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Resolve the provider ruleset
	rules, ok := extraction.Rulesets[*provider]
	if !ok {
		slog.Error("Unknown provider", "provider", *provider)
		os.Exit(1)
	}
	engine := extraction.NewEngine(rules, slog.Default())

	// Initialize database
	slog.Info("Initializing audit database...")
	db, err := verification.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize fetcher
	if *fetchURL == "" {
		slog.Error("A provider fetch URL template is required. Set --fetch-url with a {reference} placeholder")
		os.Exit(1)
	}
	fetcher, err := verification.NewHTTPFetcher(*fetchURL, *fetchTimeout)
	if err != nil {
		slog.Error("Failed to initialize fetcher", "error", err)
		os.Exit(1)
	}

	// Initialize assist scanner, if enabled
	var scanner assist.Scanner
	switch *assistMode {
	case "off":
		// Pattern extraction only
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini assist scanner...", "model", *geminiModel)
		scanner, err = assist.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama assist scanner...", "url", *ollamaURL, "model", *ollamaModel)
		scanner, err = assist.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid assist mode", "mode", *assistMode, "valid", "off, gemini or ollama")
		os.Exit(1)
	}
	if scanner != nil {
		defer scanner.Close()
	}

	// Initialize document archive
	slog.Info("Initializing document archive...")
	store, err := verification.NewLocalStorage(*archivePath)
	if err != nil {
		slog.Error("Failed to initialize archive", "error", err)
		os.Exit(1)
	}

	// Initialize service
	service := verification.NewService(db, engine, fetcher, store, scanner)

	// Initialize server
	basicAuth := verification.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := verification.NewServer(service, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "provider", *provider)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
