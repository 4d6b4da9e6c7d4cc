package splitwise

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/tallyops/splitwise-agent/internal/credential"
	"golang.org/x/oauth2"
)

// AccountResolver turns a freshly issued access token into the Splitwise
// account id it belongs to (the "who am I" call).
type AccountResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (int64, error)
}

// Diagnostics surfaced when a callback step fails. Each step has its own
// message so a failed login can be traced without exposing token material.
const (
	failMissingState   = "missing client identifier"
	failTokenExchange  = "token exchange failed"
	failAccountResolve = "could not resolve account"
	failPersist        = "could not persist credential"
)

// HandleCallback completes the authorization-code flow. The identity
// provider redirects here with a code and the state parameter carrying the
// original client id — the only linkage between the OAuth session and the
// caller that requested login. On success the credential is upserted and the
// browser gets a page telling the user to retry their last action.
func HandleCallback(store *credential.Store, cfg *oauth2.Config, resolver AccountResolver, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := r.URL.Query().Get("state")
		if clientID == "" {
			writeFailure(w, http.StatusBadRequest, failMissingState)
			return
		}

		code := r.URL.Query().Get("code")
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		token, err := cfg.Exchange(ctx, code)
		if err != nil {
			log.Printf("⚠️ token exchange failed for client %s: %v", clientID, err)
			writeFailure(w, http.StatusBadGateway, failTokenExchange)
			return
		}
		if token.AccessToken == "" {
			log.Printf("⚠️ token endpoint returned no access token for client %s", clientID)
			writeFailure(w, http.StatusBadGateway, failTokenExchange)
			return
		}

		accountID, err := resolver.CurrentUser(ctx, token.AccessToken)
		if err != nil {
			log.Printf("⚠️ account resolution failed for client %s: %v", clientID, err)
			writeFailure(w, http.StatusBadGateway, failAccountResolve)
			return
		}

		if err := store.Upsert(clientID, accountID, token.AccessToken); err != nil {
			log.Printf("⚠️ credential persist failed for client %s: %v", clientID, err)
			writeFailure(w, http.StatusInternalServerError, failPersist)
			return
		}

		log.Printf("✅ linked client %s to account %d", clientID, accountID)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, successPage)
	}
}

func writeFailure(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "fail",
		"error":  reason,
	})
}

const successPage = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Login Successful</title>
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; }
		.success { color: #16a34a; }
	</style>
</head>
<body>
	<h1 class="success">Login successful</h1>
	<p>Your Splitwise account is now connected.</p>
	<p>Return to the chat and retry your last request. You can close this tab.</p>
</body>
</html>`
