package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerFriendTools() {
	s.mcp.AddTool(mcp.NewTool("get_friends",
		mcp.WithDescription("List the authenticated user's friends with balances"),
		withClientID(),
	), s.handleGetFriends)

	s.mcp.AddTool(mcp.NewTool("get_friend",
		mcp.WithDescription("Get details and balances for one friend"),
		withClientID(),
		mcp.WithNumber("friend_id", mcp.Required(), mcp.Description("Id of the friend")),
	), s.handleGetFriend)

	s.mcp.AddTool(mcp.NewTool("create_friend",
		mcp.WithDescription("Add a friend by email; first and last name are required when they are new to Splitwise"),
		withClientID(),
		mcp.WithString("user_email", mcp.Required(), mcp.Description("Email address of the user to befriend")),
		mcp.WithString("user_first_name", mcp.Description("First name, required for new users")),
		mcp.WithString("user_last_name", mcp.Description("Last name, required for new users")),
	), s.handleCreateFriend)

	s.mcp.AddTool(mcp.NewTool("create_friends",
		mcp.WithDescription("Add several friends at once"),
		withClientID(),
		mcp.WithArray("friends", mcp.Required(), mcp.Description("Objects with email and, for new users, first_name and last_name")),
	), s.handleCreateFriends)

	s.mcp.AddTool(mcp.NewTool("delete_friend",
		mcp.WithDescription("End a friendship"),
		withClientID(),
		mcp.WithNumber("friend_id", mcp.Required(), mcp.Description("Id of the friend to remove")),
	), s.handleDeleteFriend)
}

func (s *Server) handleGetFriends(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	raw, err := s.ledger.GetFriends(ctx, grant.AccessToken)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleGetFriend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	friendID, err := req.RequireInt("friend_id")
	if err != nil {
		return mcp.NewToolResultError("friend_id argument is required"), nil
	}
	raw, err := s.ledger.GetFriend(ctx, grant.AccessToken, int64(friendID))
	return ledgerResult(raw, err), nil
}

func (s *Server) handleCreateFriend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	email, err := req.RequireString("user_email")
	if err != nil {
		return mcp.NewToolResultError("user_email argument is required"), nil
	}

	fields := map[string]any{"user_email": email}
	if v := req.GetString("user_first_name", ""); v != "" {
		fields["user_first_name"] = v
	}
	if v := req.GetString("user_last_name", ""); v != "" {
		fields["user_last_name"] = v
	}

	raw, err := s.ledger.CreateFriend(ctx, grant.AccessToken, fields)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleCreateFriends(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	friends := stringMaps(req.GetArguments()["friends"])
	if len(friends) == 0 {
		return mcp.NewToolResultError("friends argument is required"), nil
	}
	raw, err := s.ledger.CreateFriends(ctx, grant.AccessToken, friends)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleDeleteFriend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	friendID, err := req.RequireInt("friend_id")
	if err != nil {
		return mcp.NewToolResultError("friend_id argument is required"), nil
	}
	raw, err := s.ledger.DeleteFriend(ctx, grant.AccessToken, int64(friendID))
	return ledgerResult(raw, err), nil
}
