// Package server assembles the HTTP surface: health, the OAuth login and
// callback routes, the chat query endpoint, and the mounted tool gateway.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"

	"github.com/tallyops/splitwise-agent/internal/agent"
	authsplitwise "github.com/tallyops/splitwise-agent/internal/auth/splitwise"
	"github.com/tallyops/splitwise-agent/internal/credential"
	"github.com/tallyops/splitwise-agent/internal/logging"
)

// Options carries the collaborators the router needs.
type Options struct {
	Store       *credential.Store
	OAuth       *oauth2.Config
	Resolver    authsplitwise.AccountResolver
	Runner      agent.Runner
	ToolHandler http.Handler

	// CallbackTimeout bounds the token exchange plus account resolution.
	CallbackTimeout time.Duration
}

// NewRouter wires all routes onto a chi router.
func NewRouter(opts Options) http.Handler {
	if opts.CallbackTimeout <= 0 {
		opts.CallbackTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(logging.RequestID)

	r.Get("/health", handleHealth)
	r.Get("/login", authsplitwise.HandleLogin(opts.OAuth))
	r.Get("/callback", authsplitwise.HandleCallback(opts.Store, opts.OAuth, opts.Resolver, opts.CallbackTimeout))
	r.Post("/query", handleQuery(opts.Runner))

	if opts.ToolHandler != nil {
		r.Mount("/mcp", opts.ToolHandler)
	}
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
