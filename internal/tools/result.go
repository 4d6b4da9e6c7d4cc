package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tallyops/splitwise-agent/internal/ledger"
)

// Result is the discriminated outcome every tool returns as JSON text. The
// redirect field carries the login URL on an unauthenticated failure; the
// access token is never part of any result.
type Result struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func failResult(errMsg, redirect string) *mcp.CallToolResult {
	out, _ := json.Marshal(Result{Status: "fail", Error: errMsg, Redirect: redirect})
	return mcp.NewToolResultText(string(out))
}

func successResult(message string) *mcp.CallToolResult {
	out, _ := json.Marshal(Result{Status: "success", Message: message})
	return mcp.NewToolResultText(string(out))
}

// ledgerResult converts a pass-through ledger response into a tool result,
// folding downstream errors into fail results the agent can relay.
func ledgerResult(raw json.RawMessage, err error) *mcp.CallToolResult {
	if err != nil {
		var apiErr *ledger.APIError
		if errors.As(err, &apiErr) {
			return failResult(fmt.Sprintf("Splitwise returned status %d.", apiErr.StatusCode), "")
		}
		return failResult("Could not reach Splitwise, please retry.", "")
	}
	return mcp.NewToolResultText(string(raw))
}

// stringMaps coerces a JSON array-of-objects argument into the flat string
// maps the ledger client flattens into users__N__key form.
func stringMaps(v any) []map[string]string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]string, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row := make(map[string]string, len(obj))
		for k, val := range obj {
			row[k] = fmt.Sprint(val)
		}
		out = append(out, row)
	}
	return out
}
