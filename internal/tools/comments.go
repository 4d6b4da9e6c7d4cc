package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerCommentTools() {
	s.mcp.AddTool(mcp.NewTool("get_comments",
		mcp.WithDescription("List all comments on an expense"),
		withClientID(),
		mcp.WithNumber("expense_id", mcp.Required(), mcp.Description("Id of the expense")),
	), s.handleGetComments)

	s.mcp.AddTool(mcp.NewTool("create_comment",
		mcp.WithDescription("Add a comment to an expense"),
		withClientID(),
		mcp.WithNumber("expense_id", mcp.Required(), mcp.Description("Id of the expense to comment on")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Comment text")),
	), s.handleCreateComment)

	s.mcp.AddTool(mcp.NewTool("delete_comment",
		mcp.WithDescription("Delete a comment you created"),
		withClientID(),
		mcp.WithNumber("comment_id", mcp.Required(), mcp.Description("Id of the comment to delete")),
	), s.handleDeleteComment)
}

func (s *Server) handleGetComments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	expenseID, err := req.RequireInt("expense_id")
	if err != nil {
		return mcp.NewToolResultError("expense_id argument is required"), nil
	}
	raw, err := s.ledger.GetComments(ctx, grant.AccessToken, int64(expenseID))
	return ledgerResult(raw, err), nil
}

func (s *Server) handleCreateComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	expenseID, err := req.RequireInt("expense_id")
	if err != nil {
		return mcp.NewToolResultError("expense_id argument is required"), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required"), nil
	}
	raw, err := s.ledger.CreateComment(ctx, grant.AccessToken, int64(expenseID), content)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleDeleteComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	commentID, err := req.RequireInt("comment_id")
	if err != nil {
		return mcp.NewToolResultError("comment_id argument is required"), nil
	}
	raw, err := s.ledger.DeleteComment(ctx, grant.AccessToken, int64(commentID))
	return ledgerResult(raw, err), nil
}
