package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
)

func (s *Server) registerExpenseTools() {
	s.mcp.AddTool(mcp.NewTool("get_expense",
		mcp.WithDescription("Get full details for one expense including splits and comments"),
		withClientID(),
		mcp.WithNumber("expense_id", mcp.Required(), mcp.Description("Id of the expense")),
	), s.handleGetExpense)

	s.mcp.AddTool(mcp.NewTool("get_expenses",
		mcp.WithDescription("List expenses with optional group, friend, date, and pagination filters"),
		withClientID(),
		mcp.WithNumber("group_id", mcp.Description("Only expenses in this group")),
		mcp.WithNumber("friend_id", mcp.Description("Only expenses shared with this friend")),
		mcp.WithString("dated_after", mcp.Description("ISO timestamp lower bound on the expense date")),
		mcp.WithString("dated_before", mcp.Description("ISO timestamp upper bound on the expense date")),
		mcp.WithString("updated_after", mcp.Description("ISO timestamp lower bound on last update")),
		mcp.WithString("updated_before", mcp.Description("ISO timestamp upper bound on last update")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of expenses to return")),
		mcp.WithNumber("offset", mcp.Description("Number of expenses to skip")),
	), s.handleGetExpenses)

	s.mcp.AddTool(mcp.NewTool("create_expense_equal_split",
		mcp.WithDescription("Create an expense split equally among all members of a group, paid by the caller"),
		withClientID(),
		mcp.WithString("description", mcp.Required(), mcp.Description("Short description, e.g. 'Groceries'")),
		mcp.WithString("cost", mcp.Required(), mcp.Description("Total cost as a decimal string, e.g. '25.50'")),
		mcp.WithNumber("group_id", mcp.Required(), mcp.Description("Id of the group")),
		mcp.WithString("currency_code", mcp.Description("Currency code, e.g. 'USD'")),
		mcp.WithString("date", mcp.Description("ISO timestamp of the expense")),
		mcp.WithString("details", mcp.Description("Additional notes")),
		mcp.WithNumber("category_id", mcp.Description("Expense category id from get_categories")),
		mcp.WithString("repeat_interval", mcp.Description("never, weekly, fortnightly, monthly, or yearly")),
	), s.handleCreateExpenseEqualSplit)

	s.mcp.AddTool(mcp.NewTool("create_expense_by_shares",
		mcp.WithDescription("Create an expense with explicit paid and owed shares per user"),
		withClientID(),
		mcp.WithString("description", mcp.Required(), mcp.Description("Short description")),
		mcp.WithString("cost", mcp.Required(), mcp.Description("Total cost as a decimal string")),
		mcp.WithNumber("group_id", mcp.Required(), mcp.Description("Id of the group, 0 for a non-group expense")),
		mcp.WithArray("users", mcp.Required(), mcp.Description("Objects with user_id (or email, first_name, last_name) plus paid_share and owed_share")),
		mcp.WithString("currency_code", mcp.Description("Currency code")),
		mcp.WithString("date", mcp.Description("ISO timestamp of the expense")),
		mcp.WithString("details", mcp.Description("Additional notes")),
		mcp.WithNumber("category_id", mcp.Description("Expense category id")),
		mcp.WithString("repeat_interval", mcp.Description("never, weekly, fortnightly, monthly, or yearly")),
	), s.handleCreateExpenseByShares)

	s.mcp.AddTool(mcp.NewTool("update_expense",
		mcp.WithDescription("Update an expense; only supplied fields change, supplied shares replace all existing ones"),
		withClientID(),
		mcp.WithNumber("expense_id", mcp.Required(), mcp.Description("Id of the expense to update")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("cost", mcp.Description("New total cost as a decimal string")),
		mcp.WithNumber("group_id", mcp.Description("New group id")),
		mcp.WithString("currency_code", mcp.Description("New currency code")),
		mcp.WithString("date", mcp.Description("New ISO date")),
		mcp.WithString("details", mcp.Description("New notes")),
		mcp.WithNumber("category_id", mcp.Description("New category id")),
		mcp.WithString("repeat_interval", mcp.Description("New repeat interval")),
		mcp.WithArray("users", mcp.Description("Replacement shares, same shape as create_expense_by_shares")),
	), s.handleUpdateExpense)

	s.mcp.AddTool(mcp.NewTool("delete_expense",
		mcp.WithDescription("Delete an expense (reversible via undelete_expense)"),
		withClientID(),
		mcp.WithNumber("expense_id", mcp.Required(), mcp.Description("Id of the expense to delete")),
	), s.handleDeleteExpense)

	s.mcp.AddTool(mcp.NewTool("undelete_expense",
		mcp.WithDescription("Restore a previously deleted expense"),
		withClientID(),
		mcp.WithNumber("expense_id", mcp.Required(), mcp.Description("Id of the deleted expense")),
	), s.handleUndeleteExpense)
}

func (s *Server) handleGetExpense(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	expenseID, err := req.RequireInt("expense_id")
	if err != nil {
		return mcp.NewToolResultError("expense_id argument is required"), nil
	}
	raw, err := s.ledger.GetExpense(ctx, grant.AccessToken, int64(expenseID))
	return ledgerResult(raw, err), nil
}

func (s *Server) handleGetExpenses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}

	filter := map[string]string{}
	for _, key := range []string{"dated_after", "dated_before", "updated_after", "updated_before"} {
		if v := req.GetString(key, ""); v != "" {
			filter[key] = v
		}
	}
	for _, key := range []string{"group_id", "friend_id", "limit", "offset"} {
		if v := req.GetInt(key, -1); v >= 0 {
			filter[key] = fmt.Sprint(v)
		}
	}

	raw, err := s.ledger.GetExpenses(ctx, grant.AccessToken, filter)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleCreateExpenseEqualSplit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	fields, res := expenseFields(req, true)
	if res != nil {
		return res, nil
	}
	fields["split_equally"] = true

	raw, err := s.ledger.CreateExpense(ctx, grant.AccessToken, fields)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleCreateExpenseByShares(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	fields, res := expenseFields(req, true)
	if res != nil {
		return res, nil
	}

	users := stringMaps(req.GetArguments()["users"])
	if len(users) == 0 {
		return mcp.NewToolResultError("users argument is required"), nil
	}
	if err := validateShares(fields["cost"].(string), users); err != nil {
		return failResult(err.Error(), ""), nil
	}
	flattenShareUsers(fields, users)

	raw, err := s.ledger.CreateExpense(ctx, grant.AccessToken, fields)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleUpdateExpense(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	expenseID, err := req.RequireInt("expense_id")
	if err != nil {
		return mcp.NewToolResultError("expense_id argument is required"), nil
	}

	fields := map[string]any{}
	for _, key := range []string{"description", "currency_code", "date", "details", "repeat_interval"} {
		if v := req.GetString(key, ""); v != "" {
			fields[key] = v
		}
	}
	if cost := req.GetString("cost", ""); cost != "" {
		if _, err := parseAmount(cost); err != nil {
			return failResult(err.Error(), ""), nil
		}
		fields["cost"] = cost
	}
	if v := req.GetInt("group_id", -1); v >= 0 {
		fields["group_id"] = v
	}
	if v := req.GetInt("category_id", 0); v != 0 {
		fields["category_id"] = v
	}
	if users := stringMaps(req.GetArguments()["users"]); len(users) > 0 {
		flattenShareUsers(fields, users)
	}

	raw, err := s.ledger.UpdateExpense(ctx, grant.AccessToken, int64(expenseID), fields)
	return ledgerResult(raw, err), nil
}

func (s *Server) handleDeleteExpense(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	expenseID, err := req.RequireInt("expense_id")
	if err != nil {
		return mcp.NewToolResultError("expense_id argument is required"), nil
	}
	raw, err := s.ledger.DeleteExpense(ctx, grant.AccessToken, int64(expenseID))
	return ledgerResult(raw, err), nil
}

func (s *Server) handleUndeleteExpense(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grant, deny := s.requireGrant(req)
	if deny != nil {
		return deny, nil
	}
	expenseID, err := req.RequireInt("expense_id")
	if err != nil {
		return mcp.NewToolResultError("expense_id argument is required"), nil
	}
	raw, err := s.ledger.UndeleteExpense(ctx, grant.AccessToken, int64(expenseID))
	return ledgerResult(raw, err), nil
}

// expenseFields gathers the fields shared by the create_expense variants.
func expenseFields(req mcp.CallToolRequest, requireCost bool) (map[string]any, *mcp.CallToolResult) {
	description, err := req.RequireString("description")
	if err != nil {
		return nil, mcp.NewToolResultError("description argument is required")
	}
	cost := req.GetString("cost", "")
	if requireCost {
		if cost == "" {
			return nil, mcp.NewToolResultError("cost argument is required")
		}
		if _, err := parseAmount(cost); err != nil {
			return nil, failResult(err.Error(), "")
		}
	}
	groupID, err := req.RequireInt("group_id")
	if err != nil {
		return nil, mcp.NewToolResultError("group_id argument is required")
	}

	fields := map[string]any{
		"description":     description,
		"cost":            cost,
		"group_id":        groupID,
		"currency_code":   req.GetString("currency_code", "USD"),
		"repeat_interval": req.GetString("repeat_interval", "never"),
	}
	if v := req.GetString("date", ""); v != "" {
		fields["date"] = v
	}
	if v := req.GetString("details", ""); v != "" {
		fields["details"] = v
	}
	if v := req.GetInt("category_id", 0); v != 0 {
		fields["category_id"] = v
	}
	return fields, nil
}

func flattenShareUsers(fields map[string]any, users []map[string]string) {
	for i, user := range users {
		for k, v := range user {
			fields[fmt.Sprintf("users__%d__%s", i, k)] = v
		}
	}
}

func parseAmount(cost string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(cost)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cost %q is not a valid decimal amount", cost)
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("cost must be positive, got %s", cost)
	}
	return amount, nil
}

// validateShares checks that paid and owed shares both sum to the total
// cost; Splitwise rejects mismatched splits, so catch them before the call.
func validateShares(cost string, users []map[string]string) error {
	total, err := parseAmount(cost)
	if err != nil {
		return err
	}

	paid, owed := decimal.Zero, decimal.Zero
	for i, user := range users {
		p, err := decimal.NewFromString(user["paid_share"])
		if err != nil {
			return fmt.Errorf("user %d has an invalid paid_share", i)
		}
		o, err := decimal.NewFromString(user["owed_share"])
		if err != nil {
			return fmt.Errorf("user %d has an invalid owed_share", i)
		}
		paid = paid.Add(p)
		owed = owed.Add(o)
	}

	if !paid.Equal(total) {
		return fmt.Errorf("paid shares sum to %s, expense cost is %s", paid, total)
	}
	if !owed.Equal(total) {
		return fmt.Errorf("owed shares sum to %s, expense cost is %s", owed, total)
	}
	return nil
}
