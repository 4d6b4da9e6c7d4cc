package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tallyops/splitwise-agent/internal/agent"
	"github.com/tallyops/splitwise-agent/internal/auth"
	authsplitwise "github.com/tallyops/splitwise-agent/internal/auth/splitwise"
	"github.com/tallyops/splitwise-agent/internal/config"
	"github.com/tallyops/splitwise-agent/internal/credential"
	"github.com/tallyops/splitwise-agent/internal/db"
	"github.com/tallyops/splitwise-agent/internal/ledger"
	"github.com/tallyops/splitwise-agent/internal/server"
	"github.com/tallyops/splitwise-agent/internal/tools"
	"github.com/tallyops/splitwise-agent/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Printf("⚠️ closing database: %v", err)
		}
	}()

	store := credential.NewStore(database)
	oauthCfg := authsplitwise.OAuthConfig(cfg.ConsumerKey, cfg.ConsumerSecret, cfg.RedirectURL)

	ledgerClient := ledger.NewClient(cfg.SplitwiseBaseURL, cfg.RequestTimeout)
	ledgerClient.SetVerbose(cfg.Verbose)

	gate := auth.NewGate(store, oauthCfg)
	toolServer := tools.NewServer(gate, store, ledgerClient)
	runner := agent.NewChatRunner(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.RequestTimeout)

	router := server.NewRouter(server.Options{
		Store:           store,
		OAuth:           oauthCfg,
		Resolver:        ledgerClient,
		Runner:          runner,
		ToolHandler:     toolServer.Handler(),
		CallbackTimeout: cfg.RequestTimeout,
	})

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 splitwise-agent %s listening on %s", version.Version, cfg.ListenAddr)
		log.Printf("🔑 OAuth callback URL: %s", cfg.RedirectURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("📦 shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("⚠️ shutdown: %v", err)
	}
}
