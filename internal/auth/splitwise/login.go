package splitwise

import (
	"net/http"

	"golang.org/x/oauth2"
)

// HandleLogin redirects the browser to Splitwise's consent page. The client
// id travels in the OAuth state parameter and comes back on the callback.
// Agent callers normally receive the same URL from a gated tool instead of
// hitting this route directly.
func HandleLogin(cfg *oauth2.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := r.URL.Query().Get("client_id")
		if clientID == "" {
			http.Error(w, "client_id query parameter is required", http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, cfg.AuthCodeURL(clientID), http.StatusTemporaryRedirect)
	}
}
