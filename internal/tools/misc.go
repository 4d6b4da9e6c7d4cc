package tools

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tallyops/splitwise-agent/internal/credential"
)

func (s *Server) registerMiscTools() {
	s.mcp.AddTool(mcp.NewTool("get_notifications",
		mcp.WithDescription("List recent account activity notifications"),
		withClientID(),
		mcp.WithString("updated_after", mcp.Description("Only notifications updated after this ISO timestamp")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of notifications to return")),
	), s.handleGetNotifications)

	s.mcp.AddTool(mcp.NewTool("get_currencies",
		mcp.WithDescription("List all currencies supported for expenses"),
		withClientID(),
	), s.handleGetCurrencies)

	s.mcp.AddTool(mcp.NewTool("get_categories",
		mcp.WithDescription("List the expense category hierarchy; expenses use a subcategory id"),
		withClientID(),
	), s.handleGetCategories)

	s.mcp.AddTool(mcp.NewTool("logout",
		mcp.WithDescription("Disconnect the caller's Splitwise account and forget its token"),
		withClientID(),
	), s.handleLogout)
}

func (s *Server) handleGetNotifications(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}

	filter := map[string]string{}
	if v := req.GetString("updated_after", ""); v != "" {
		filter["updated_after"] = v
	}
	if v := req.GetInt("limit", -1); v >= 0 {
		filter["limit"] = fmt.Sprint(v)
	}

	raw, err := s.ledger.GetNotifications(ctx, grant.AccessToken, filter)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleGetCurrencies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	raw, err := s.ledger.GetCurrencies(ctx, grant.AccessToken)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleGetCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	raw, err := s.ledger.GetCategories(ctx, grant.AccessToken)
	return ledgerResult(raw, err), nil
}

// handleLogout deletes the stored credential. It is the only removal path;
// nothing expires tokens in the background.
func (s *Server) handleLogout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientID, err := req.RequireString("client_id")
	if err != nil || clientID == "" {
		return mcp.NewToolResultError("client_id argument is required"), nil
	}

	err = s.store.Delete(clientID)
	switch {
	case errors.Is(err, credential.ErrNotFound):
		return failResult("You are not logged in.", ""), nil
	case err != nil:
		log.Printf("⚠️ logout failed for client %s: %v", clientID, err)
		return failResult("Could not log out right now, please retry.", ""), nil
	default:
		return successResult("Your Splitwise account has been disconnected."), nil
	}
}
