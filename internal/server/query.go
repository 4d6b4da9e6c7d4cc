package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/tallyops/splitwise-agent/internal/agent"
	"github.com/tallyops/splitwise-agent/internal/logging"
)

// QueryRequest is the body of POST /query. Chat history is owned by the
// caller; the server holds no conversation state between requests.
type QueryRequest struct {
	ClientID    string       `json:"client_id"`
	Query       string       `json:"query"`
	ChatHistory []agent.Turn `json:"chat_history"`
}

// QueryResponse mirrors the tool result envelope: status plus either the
// answer or an error message.
type QueryResponse struct {
	Status string `json:"status"`
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

func handleQuery(runner agent.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, QueryResponse{Status: "fail", Error: "invalid JSON body"})
			return
		}
		if req.ClientID == "" {
			writeJSON(w, http.StatusBadRequest, QueryResponse{Status: "fail", Error: "client_id is required"})
			return
		}
		if req.Query == "" {
			writeJSON(w, http.StatusBadRequest, QueryResponse{Status: "fail", Error: "query is required"})
			return
		}
		for i, turn := range req.ChatHistory {
			if err := turn.Validate(); err != nil {
				writeJSON(w, http.StatusBadRequest, QueryResponse{
					Status: "fail",
					Error:  fmt.Sprintf("chat_history[%d]: %v", i, err),
				})
				return
			}
		}

		// The client id rides inside the prompt so the model can pass it to
		// every gated tool call.
		prompt := fmt.Sprintf("[client_id: %s] %s", req.ClientID, agent.BuildContext(req.ChatHistory, req.Query))

		answer, err := runner.Run(r.Context(), prompt)
		if err != nil {
			log.Printf("⚠️ [%s] query failed for client %s: %v", logging.GetRequestID(r.Context()), req.ClientID, err)
			writeJSON(w, http.StatusBadGateway, QueryResponse{Status: "fail", Error: "the assistant is unavailable, please retry"})
			return
		}
		writeJSON(w, http.StatusOK, QueryResponse{Status: "success", Answer: answer})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
