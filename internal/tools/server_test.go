package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallyops/splitwise-agent/internal/auth"
	authsplitwise "github.com/tallyops/splitwise-agent/internal/auth/splitwise"
	"github.com/tallyops/splitwise-agent/internal/credential"
	"github.com/tallyops/splitwise-agent/internal/db/models"
	"github.com/tallyops/splitwise-agent/internal/ledger"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T, ledgerHandler http.HandlerFunc) (*Server, *credential.Store) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&models.Credential{}))
	store := credential.NewStore(database)

	if ledgerHandler == nil {
		ledgerHandler = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}
	}
	srv := httptest.NewServer(ledgerHandler)
	t.Cleanup(srv.Close)

	oauthCfg := authsplitwise.OAuthConfig("consumer-key", "consumer-secret", "http://localhost:8080/callback")
	gate := auth.NewGate(store, oauthCfg)
	ledgerClient := ledger.NewClient(srv.URL, 5*time.Second)

	return NewServer(gate, store, ledgerClient), store
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func decodeResult(t *testing.T, res *mcp.CallToolResult) Result {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	var out Result
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestGatedTool_UnauthenticatedReturnsLoginRedirect(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("ledger must not be called for an unauthenticated client")
	})

	res, err := srv.handleGetGroups(context.Background(), callReq(map[string]any{"client_id": "b1"}))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.Equal(t, "fail", out.Status)
	assert.NotEmpty(t, out.Error)
	assert.Contains(t, out.Redirect, "state=b1")
	assert.Contains(t, out.Redirect, "client_id=consumer-key")
	assert.NotContains(t, out.Redirect, "consumer-secret")
}

func TestGatedTool_MissingClientID(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	res, err := srv.handleGetGroups(context.Background(), callReq(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGatedTool_AuthorizedCallsLedgerWithStoredToken(t *testing.T) {
	var gotAuth, gotPath string
	srv, store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(`{"groups":[]}`))
	})
	require.NoError(t, store.Upsert("b1", 42, "tok-abc"))

	res, err := srv.handleGetGroups(context.Background(), callReq(map[string]any{"client_id": "b1"}))
	require.NoError(t, err)

	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	assert.JSONEq(t, `{"groups":[]}`, text.Text)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.Equal(t, "/get_groups", gotPath)
}

// The stored token is only used server-side as an outbound bearer header.
// No tool result may carry it, including failures from the ledger itself.
func TestGatedTool_TokenNeverInResult(t *testing.T) {
	srv, store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token revoked"}`))
	})
	require.NoError(t, store.Upsert("b1", 42, "tok-secret-value"))

	res, err := srv.handleGetExpenses(context.Background(), callReq(map[string]any{"client_id": "b1"}))
	require.NoError(t, err)

	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	assert.NotContains(t, text.Text, "tok-secret-value")

	out := decodeResult(t, res)
	assert.Equal(t, "fail", out.Status)
	assert.Contains(t, out.Error, "401")
}

func TestLogout(t *testing.T) {
	srv, store := newTestServer(t, nil)

	// Not logged in: distinguishable failure.
	res, err := srv.handleLogout(context.Background(), callReq(map[string]any{"client_id": "b1"}))
	require.NoError(t, err)
	out := decodeResult(t, res)
	assert.Equal(t, "fail", out.Status)
	assert.Contains(t, out.Error, "not logged in")

	// Logged in: record removed, later calls are unauthorized again.
	require.NoError(t, store.Upsert("b1", 42, "tok-abc"))
	res, err = srv.handleLogout(context.Background(), callReq(map[string]any{"client_id": "b1"}))
	require.NoError(t, err)
	out = decodeResult(t, res)
	assert.Equal(t, "success", out.Status)
	assert.False(t, store.Exists("b1"))
}

func TestCreateExpenseByShares_RejectsMismatchedShares(t *testing.T) {
	srv, store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("ledger must not be called with invalid shares")
	})
	require.NoError(t, store.Upsert("b1", 42, "tok-abc"))

	res, err := srv.handleCreateExpenseByShares(context.Background(), callReq(map[string]any{
		"client_id":   "b1",
		"description": "Concert tickets",
		"cost":        "100.00",
		"group_id":    float64(7),
		"users": []any{
			map[string]any{"user_id": "1", "paid_share": "100.00", "owed_share": "60.00"},
			map[string]any{"user_id": "2", "paid_share": "0.00", "owed_share": "30.00"},
		},
	}))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.Equal(t, "fail", out.Status)
	assert.Contains(t, out.Error, "owed shares")
}

func TestCreateExpenseEqualSplit_SendsSplitEqually(t *testing.T) {
	var body map[string]any
	srv, store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"expenses":[{"id":1}]}`))
	})
	require.NoError(t, store.Upsert("b1", 42, "tok-abc"))

	_, err := srv.handleCreateExpenseEqualSplit(context.Background(), callReq(map[string]any{
		"client_id":   "b1",
		"description": "Pizza",
		"cost":        "30.00",
		"group_id":    float64(123),
	}))
	require.NoError(t, err)

	assert.Equal(t, true, body["split_equally"])
	assert.Equal(t, "Pizza", body["description"])
	assert.Equal(t, "30.00", body["cost"])
}

func TestCreateExpense_RejectsInvalidCost(t *testing.T) {
	srv, store := newTestServer(t, nil)
	require.NoError(t, store.Upsert("b1", 42, "tok-abc"))

	res, err := srv.handleCreateExpenseEqualSplit(context.Background(), callReq(map[string]any{
		"client_id":   "b1",
		"description": "Pizza",
		"cost":        "thirty",
		"group_id":    float64(123),
	}))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.Equal(t, "fail", out.Status)
	assert.Contains(t, out.Error, "decimal")
}
