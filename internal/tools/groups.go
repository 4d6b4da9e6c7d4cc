package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerGroupTools() {
	s.mcp.AddTool(mcp.NewTool("get_groups",
		mcp.WithDescription("List all groups the authenticated user belongs to, with members and balances"),
		withClientID(),
	), s.handleGetGroups)

	s.mcp.AddTool(mcp.NewTool("get_group",
		mcp.WithDescription("Get details for a single group"),
		withClientID(),
		mcp.WithNumber("group_id", mcp.Required(), mcp.Description("Id of the group")),
	), s.handleGetGroup)

	s.mcp.AddTool(mcp.NewTool("create_group",
		mcp.WithDescription("Create a new expense-sharing group; the caller becomes a member"),
		withClientID(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Group name, e.g. 'Apartment 2026'")),
		mcp.WithString("group_type", mcp.Description("home, trip, couple, apartment, house, or other")),
		mcp.WithBoolean("simplify_by_default", mcp.Description("Automatically simplify debts in this group")),
		mcp.WithArray("users", mcp.Description("Members to invite: objects with first_name, last_name, email, or user_id")),
	), s.handleCreateGroup)

	s.mcp.AddTool(mcp.NewTool("delete_group",
		mcp.WithDescription("Delete a group and all its expenses (reversible via undelete_group)"),
		withClientID(),
		mcp.WithNumber("group_id", mcp.Required(), mcp.Description("Id of the group to delete")),
	), s.handleDeleteGroup)

	s.mcp.AddTool(mcp.NewTool("undelete_group",
		mcp.WithDescription("Restore a previously deleted group"),
		withClientID(),
		mcp.WithNumber("group_id", mcp.Required(), mcp.Description("Id of the deleted group")),
	), s.handleUndeleteGroup)

	s.mcp.AddTool(mcp.NewTool("add_user_to_group",
		mcp.WithDescription("Invite a user to a group by user_id, or by name and email"),
		withClientID(),
		mcp.WithNumber("group_id", mcp.Required(), mcp.Description("Id of the group")),
		mcp.WithNumber("user_id", mcp.Description("Id of an existing Splitwise user")),
		mcp.WithString("first_name", mcp.Description("First name (when user_id is unknown)")),
		mcp.WithString("last_name", mcp.Description("Last name (when user_id is unknown)")),
		mcp.WithString("email", mcp.Description("Email address (when user_id is unknown)")),
	), s.handleAddUserToGroup)

	s.mcp.AddTool(mcp.NewTool("remove_user_from_group",
		mcp.WithDescription("Remove a user from a group (fails if they have an outstanding balance)"),
		withClientID(),
		mcp.WithNumber("group_id", mcp.Required(), mcp.Description("Id of the group")),
		mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Id of the user to remove")),
	), s.handleRemoveUserFromGroup)
}

func (s *Server) handleGetGroups(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	raw, err := s.ledger.GetGroups(ctx, grant.AccessToken)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleGetGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	groupID, err := req.RequireInt("group_id")
	if err != nil {
		return mcp.NewToolResultError("group_id argument is required"), nil
	}
	raw, err := s.ledger.GetGroup(ctx, grant.AccessToken, int64(groupID))
	return ledgerResult(raw, err), nil
}

func (s *Server) handleCreateGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name argument is required"), nil
	}
	groupType := req.GetString("group_type", "other")
	simplify := req.GetBool("simplify_by_default", false)
	users := stringMaps(req.GetArguments()["users"])

	raw, err := s.ledger.CreateGroup(ctx, grant.AccessToken, name, groupType, simplify, users)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleDeleteGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	groupID, err := req.RequireInt("group_id")
	if err != nil {
		return mcp.NewToolResultError("group_id argument is required"), nil
	}
	raw, err := s.ledger.DeleteGroup(ctx, grant.AccessToken, int64(groupID))
	return ledgerResult(raw, err), nil
}

func (s *Server) handleUndeleteGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	groupID, err := req.RequireInt("group_id")
	if err != nil {
		return mcp.NewToolResultError("group_id argument is required"), nil
	}
	raw, err := s.ledger.UndeleteGroup(ctx, grant.AccessToken, int64(groupID))
	return ledgerResult(raw, err), nil
}

func (s *Server) handleAddUserToGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	groupID, err := req.RequireInt("group_id")
	if err != nil {
		return mcp.NewToolResultError("group_id argument is required"), nil
	}

	fields := map[string]any{"group_id": groupID}
	if userID := req.GetInt("user_id", 0); userID != 0 {
		fields["user_id"] = userID
	} else {
		firstName := req.GetString("first_name", "")
		lastName := req.GetString("last_name", "")
		email := req.GetString("email", "")
		if firstName == "" || lastName == "" || email == "" {
			return failResult("Provide either user_id or all of first_name, last_name, and email.", ""), nil
		}
		fields["first_name"] = firstName
		fields["last_name"] = lastName
		fields["email"] = email
	}

	raw, err := s.ledger.AddUserToGroup(ctx, grant.AccessToken, fields)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleRemoveUserFromGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	groupID, err := req.RequireInt("group_id")
	if err != nil {
		return mcp.NewToolResultError("group_id argument is required"), nil
	}
	userID, err := req.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required"), nil
	}
	raw, err := s.ledger.RemoveUserFromGroup(ctx, grant.AccessToken, int64(groupID), int64(userID))
	return ledgerResult(raw, err), nil
}
