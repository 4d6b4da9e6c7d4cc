// Package ledger is the outbound Splitwise API client. Every call takes a
// bearer token obtained through the authorization gate; the client holds no
// credentials of its own.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tallyops/splitwise-agent/internal/util"
)

// DefaultBaseURL is the production Splitwise REST endpoint.
const DefaultBaseURL = "https://secure.splitwise.com/api/v3.0"

// APIError reports a non-2xx response from Splitwise. A 401 here usually
// means the stored token was revoked; the credential subsystem does not
// auto-clear it, the user has to log in again.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("splitwise api error: status %d", e.StatusCode)
}

// Client wraps the Splitwise REST API.
type Client struct {
	http    *resty.Client
	verbose bool
}

// NewClient builds a client for the given base URL. A zero timeout falls
// back to 30 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: httpClient}
}

// SetVerbose enables truncated payload logging for debugging.
func (c *Client) SetVerbose(v bool) { c.verbose = v }

func (c *Client) get(ctx context.Context, token, path string, params map[string]string) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(params).
		Get(path)
	return c.result(path, resp, err)
}

func (c *Client) post(ctx context.Context, token, path string, body any) (json.RawMessage, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Post(path)
	return c.result(path, resp, err)
}

func (c *Client) result(path string, resp *resty.Response, err error) (json.RawMessage, error) {
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	if c.verbose {
		log.Printf("🧾 %s -> %d %s", path, resp.StatusCode(), util.TruncateBytes(resp.Body()))
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: util.TruncateBytes(resp.Body())}
	}
	return json.RawMessage(resp.Body()), nil
}

// CurrentUser resolves the account id behind an access token. Used by the
// OAuth callback to link a fresh token to its Splitwise identity.
func (c *Client) CurrentUser(ctx context.Context, token string) (int64, error) {
	raw, err := c.GetCurrentUser(ctx, token)
	if err != nil {
		return 0, err
	}
	var payload struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, fmt.Errorf("decode current user: %w", err)
	}
	if payload.User.ID == 0 {
		return 0, fmt.Errorf("current user response carries no account id")
	}
	return payload.User.ID, nil
}

// ---- user operations ----

func (c *Client) GetCurrentUser(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, token, "/get_current_user", nil)
}

func (c *Client) GetUser(ctx context.Context, token string, userID int64) (json.RawMessage, error) {
	return c.get(ctx, token, fmt.Sprintf("/get_user/%d", userID), nil)
}

// UserUpdate carries the optional profile fields of update_user. Nil fields
// are omitted so unchanged values keep their current state.
type UserUpdate struct {
	FirstName       *string
	LastName        *string
	Email           *string
	Password        *string
	Locale          *string
	DefaultCurrency *string
}

func (c *Client) UpdateUser(ctx context.Context, token string, userID int64, upd UserUpdate) (json.RawMessage, error) {
	body := map[string]any{}
	setOpt(body, "first_name", upd.FirstName)
	setOpt(body, "last_name", upd.LastName)
	setOpt(body, "email", upd.Email)
	setOpt(body, "password", upd.Password)
	setOpt(body, "locale", upd.Locale)
	setOpt(body, "default_currency", upd.DefaultCurrency)
	return c.post(ctx, token, fmt.Sprintf("/update_user/%d", userID), body)
}

// ---- group operations ----

func (c *Client) GetGroups(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, token, "/get_groups", nil)
}

func (c *Client) GetGroup(ctx context.Context, token string, groupID int64) (json.RawMessage, error) {
	return c.get(ctx, token, fmt.Sprintf("/get_group/%d", groupID), nil)
}

func (c *Client) CreateGroup(ctx context.Context, token, name, groupType string, simplifyByDefault bool, users []map[string]string) (json.RawMessage, error) {
	body := map[string]any{
		"name":                name,
		"group_type":          groupType,
		"simplify_by_default": simplifyByDefault,
	}
	flattenIndexed(body, "users", users)
	return c.post(ctx, token, "/create_group", body)
}

func (c *Client) DeleteGroup(ctx context.Context, token string, groupID int64) (json.RawMessage, error) {
	return c.post(ctx, token, fmt.Sprintf("/delete_group/%d", groupID), nil)
}

func (c *Client) UndeleteGroup(ctx context.Context, token string, groupID int64) (json.RawMessage, error) {
	return c.post(ctx, token, fmt.Sprintf("/undelete_group/%d", groupID), nil)
}

func (c *Client) AddUserToGroup(ctx context.Context, token string, fields map[string]any) (json.RawMessage, error) {
	return c.post(ctx, token, "/add_user_to_group", fields)
}

func (c *Client) RemoveUserFromGroup(ctx context.Context, token string, groupID, userID int64) (json.RawMessage, error) {
	return c.post(ctx, token, "/remove_user_from_group", map[string]any{
		"group_id": groupID,
		"user_id":  userID,
	})
}

// ---- friend operations ----

func (c *Client) GetFriends(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, token, "/get_friends", nil)
}

func (c *Client) GetFriend(ctx context.Context, token string, friendID int64) (json.RawMessage, error) {
	return c.get(ctx, token, fmt.Sprintf("/get_friend/%d", friendID), nil)
}

func (c *Client) CreateFriend(ctx context.Context, token string, fields map[string]any) (json.RawMessage, error) {
	return c.post(ctx, token, "/create_friend", fields)
}

func (c *Client) CreateFriends(ctx context.Context, token string, friends []map[string]string) (json.RawMessage, error) {
	body := map[string]any{}
	flattenIndexed(body, "friends", friends)
	return c.post(ctx, token, "/create_friends", body)
}

func (c *Client) DeleteFriend(ctx context.Context, token string, friendID int64) (json.RawMessage, error) {
	return c.post(ctx, token, fmt.Sprintf("/delete_friend/%d", friendID), nil)
}

// ---- expense operations ----

func (c *Client) GetExpense(ctx context.Context, token string, expenseID int64) (json.RawMessage, error) {
	return c.get(ctx, token, fmt.Sprintf("/get_expense/%d", expenseID), nil)
}

func (c *Client) GetExpenses(ctx context.Context, token string, filter map[string]string) (json.RawMessage, error) {
	return c.get(ctx, token, "/get_expenses", filter)
}

// CreateExpense posts a new expense. For an equal split the fields map
// carries split_equally=true; for custom shares the per-user amounts arrive
// pre-flattened as users__N__paid_share / users__N__owed_share.
func (c *Client) CreateExpense(ctx context.Context, token string, fields map[string]any) (json.RawMessage, error) {
	return c.post(ctx, token, "/create_expense", fields)
}

func (c *Client) UpdateExpense(ctx context.Context, token string, expenseID int64, fields map[string]any) (json.RawMessage, error) {
	return c.post(ctx, token, fmt.Sprintf("/update_expense/%d", expenseID), fields)
}

func (c *Client) DeleteExpense(ctx context.Context, token string, expenseID int64) (json.RawMessage, error) {
	return c.post(ctx, token, fmt.Sprintf("/delete_expense/%d", expenseID), nil)
}

func (c *Client) UndeleteExpense(ctx context.Context, token string, expenseID int64) (json.RawMessage, error) {
	return c.post(ctx, token, fmt.Sprintf("/undelete_expense/%d", expenseID), nil)
}

// ---- comments and the rest ----

func (c *Client) GetComments(ctx context.Context, token string, expenseID int64) (json.RawMessage, error) {
	return c.get(ctx, token, "/get_comments", map[string]string{"expense_id": fmt.Sprint(expenseID)})
}

func (c *Client) CreateComment(ctx context.Context, token string, expenseID int64, content string) (json.RawMessage, error) {
	return c.post(ctx, token, "/create_comment", map[string]any{
		"expense_id": expenseID,
		"content":    content,
	})
}

func (c *Client) DeleteComment(ctx context.Context, token string, commentID int64) (json.RawMessage, error) {
	return c.post(ctx, token, fmt.Sprintf("/delete_comment/%d", commentID), nil)
}

func (c *Client) GetNotifications(ctx context.Context, token string, filter map[string]string) (json.RawMessage, error) {
	return c.get(ctx, token, "/get_notifications", filter)
}

func (c *Client) GetCurrencies(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, token, "/get_currencies", nil)
}

func (c *Client) GetCategories(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, token, "/get_categories", nil)
}

func setOpt(body map[string]any, key string, val *string) {
	if val != nil {
		body[key] = *val
	}
}

// flattenIndexed expands a slice of field maps into Splitwise's
// prefix__index__key parameter form, e.g. users__0__email.
func flattenIndexed(body map[string]any, prefix string, items []map[string]string) {
	for i, item := range items {
		for k, v := range item {
			body[fmt.Sprintf("%s__%d__%s", prefix, i, k)] = v
		}
	}
}
