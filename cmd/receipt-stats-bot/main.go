package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/mkravets/receipt-stats-bot/internal/bot"
	"github.com/mkravets/receipt-stats-bot/internal/receipt"
	"github.com/mkravets/receipt-stats-bot/internal/session"
	"github.com/mkravets/receipt-stats-bot/internal/stats"
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

	fs := ff.NewFlagSet("receipt-stats-bot")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "receipt-stats.db", "Database file path")
		lookupURL   = fs.StringLong("lookup-url", "https://proverkacheka.com/api/v1/check/get", "Receipt checker API endpoint")
		lookupToken = fs.StringLong("lookup-token", "", "Receipt checker API token (or set RECEIPT_STATS_LOOKUP_TOKEN)")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_STATS"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if *lookupToken == "" {
		slog.Error("Receipt checker token is required. Set --lookup-token or RECEIPT_STATS_LOOKUP_TOKEN")
		os.Exit(1)
	}

	slog.Info("Initializing database...", "path", *dbPath)
	store, err := receipt.NewBoltStore(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	lookup := receipt.NewCheckerClient(*lookupURL, *lookupToken)
	ingestor := receipt.NewService(lookup, store)
	engine := stats.NewEngine(store, store)
	sessions := session.NewStore()
	dispatcher := bot.NewDispatcher(ingestor, engine, sessions)

	basicAuth := bot.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := bot.NewServer(dispatcher, basicAuth)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
