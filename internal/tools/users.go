package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tallyops/splitwise-agent/internal/ledger"
)

func (s *Server) registerUserTools() {
	s.mcp.AddTool(mcp.NewTool("get_current_user",
		mcp.WithDescription("Retrieve the authenticated user's Splitwise profile"),
		withClientID(),
	), s.handleGetCurrentUser)

	s.mcp.AddTool(mcp.NewTool("get_user",
		mcp.WithDescription("Retrieve another Splitwise user's public profile by id"),
		withClientID(),
		mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Id of the user to look up")),
	), s.handleGetUser)

	s.mcp.AddTool(mcp.NewTool("update_user",
		mcp.WithDescription("Update the authenticated user's profile; only supplied fields change"),
		withClientID(),
		mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Id of the user to update (must be your own)")),
		mcp.WithString("first_name", mcp.Description("New first name")),
		mcp.WithString("last_name", mcp.Description("New last name")),
		mcp.WithString("email", mcp.Description("New email address")),
		mcp.WithString("locale", mcp.Description("New locale, e.g. 'en'")),
		mcp.WithString("default_currency", mcp.Description("New default currency code, e.g. 'USD'")),
	), s.handleUpdateUser)
}

func (s *Server) handleGetCurrentUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	raw, err := s.ledger.GetCurrentUser(ctx, grant.AccessToken)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleGetUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	userID, err := req.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required"), nil
	}
	raw, err := s.ledger.GetUser(ctx, grant.AccessToken, int64(userID))
	return ledgerResult(raw, err), nil
}

func (s *Server) handleUpdateUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	userID, err := req.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required"), nil
	}

	upd := userUpdateFromRequest(req)
	raw, err := s.ledger.UpdateUser(ctx, grant.AccessToken, int64(userID), upd)
	return ledgerResult(raw, err), nil
}

func userUpdateFromRequest(req mcp.CallToolRequest) ledger.UserUpdate {
	var upd ledger.UserUpdate
	opt := func(key string) *string {
		if v := req.GetString(key, ""); v != "" {
			return &v
		}
		return nil
	}
	upd.FirstName = opt("first_name")
	upd.LastName = opt("last_name")
	upd.Email = opt("email")
	upd.Locale = opt("locale")
	upd.DefaultCurrency = opt("default_currency")
	return upd
}
