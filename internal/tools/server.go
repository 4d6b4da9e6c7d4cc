// Package tools exposes the gated Splitwise operations as MCP tools. Every
// tool takes the caller's client_id first, resolves it through the
// authorization gate, and short-circuits with a login link when no
// credential is stored.
package tools

import (
	"errors"
	"log"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tallyops/splitwise-agent/internal/auth"
	"github.com/tallyops/splitwise-agent/internal/credential"
	"github.com/tallyops/splitwise-agent/internal/ledger"
	"github.com/tallyops/splitwise-agent/internal/version"
)

const serverInstructions = `Tools for managing Splitwise users, groups, friends, expenses, and comments.
Each tool requires the caller's client_id. When a tool responds with status "fail" and a redirect URL,
present the URL to the user as a login link and ask them to retry after authenticating.`

// Server registers the tool set on an MCP server.
type Server struct {
	gate   *auth.Gate
	store  *credential.Store
	ledger *ledger.Client
	mcp    *server.MCPServer
}

// NewServer wires the gate, credential store, and ledger client into a
// ready-to-mount MCP server.
func NewServer(gate *auth.Gate, store *credential.Store, ledgerClient *ledger.Client) *Server {
	mcpServer := server.NewMCPServer(
		"splitwise-agent",
		version.Version,
		server.WithToolCapabilities(false),
		server.WithInstructions(serverInstructions),
	)

	s := &Server{
		gate:   gate,
		store:  store,
		ledger: ledgerClient,
		mcp:    mcpServer,
	}

	s.registerUserTools()
	s.registerGroupTools()
	s.registerFriendTools()
	s.registerExpenseTools()
	s.registerCommentTools()
	s.registerMiscTools()

	return s
}

// Handler returns the streamable-HTTP transport for mounting under /mcp.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// withClientID declares the client_id argument every gated tool carries.
func withClientID() mcp.ToolOption {
	return mcp.WithString("client_id",
		mcp.Required(),
		mcp.Description("Opaque identifier of the calling browser session"),
	)
}

// requireGrant resolves the client_id argument to stored credentials. The
// second return value is non-nil when the call must not proceed: either the
// argument is missing or the caller has to authenticate first.
func (s *Server) requireGrant(req mcp.CallToolRequest) (auth.Grant, *mcp.CallToolResult) {
	clientID, err := req.RequireString("client_id")
	if err != nil || clientID == "" {
		return auth.Grant{}, mcp.NewToolResultError("client_id argument is required")
	}

	grant, err := s.gate.Authorize(clientID)
	if err == nil {
		return grant, nil
	}

	var notAuth *auth.NotAuthenticatedError
	if errors.As(err, &notAuth) {
		return auth.Grant{}, failResult(
			"You are not logged in to Splitwise. Please authenticate via the login link, then retry your request.",
			notAuth.LoginURL,
		)
	}

	log.Printf("⚠️ authorization check failed: %v", err)
	return auth.Grant{}, failResult("Temporary failure while checking your session, please retry.", "")
}
