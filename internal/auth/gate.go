// Package auth gates every tool invocation on a stored credential.
package auth

import (
	"errors"
	"fmt"

	"github.com/tallyops/splitwise-agent/internal/credential"
	"golang.org/x/oauth2"
)

// Grant is the result of a successful authorization: the Splitwise account
// id and the bearer token to use for the outbound call. The token stays
// server-side; it is never echoed back to the caller.
type Grant struct {
	AccountID   int64
	AccessToken string
}

// NotAuthenticatedError reports that no credential is stored for the client
// id. It carries the consent-page URL the end user must visit; this is a
// routine outcome, not a fault.
type NotAuthenticatedError struct {
	LoginURL string
}

func (e *NotAuthenticatedError) Error() string {
	return "no credential stored for this client"
}

// Gate resolves client identifiers to stored credentials. It performs no
// local token validity check: a stale or revoked token is only discovered
// when the downstream ledger call fails.
type Gate struct {
	store *credential.Store
	oauth *oauth2.Config
}

// NewGate builds a gate over a store and the OAuth config used to mint
// login URLs.
func NewGate(store *credential.Store, oauthCfg *oauth2.Config) *Gate {
	return &Gate{store: store, oauth: oauthCfg}
}

// Authorize looks up the client id. On a hit it returns the grant; when no
// record exists it returns *NotAuthenticatedError with a login URL whose
// state parameter is the client id itself, so the callback can route the
// new token back to this caller.
func (g *Gate) Authorize(clientID string) (Grant, error) {
	cred, err := g.store.Get(clientID)
	if errors.Is(err, credential.ErrNotFound) {
		return Grant{}, &NotAuthenticatedError{LoginURL: g.LoginURL(clientID)}
	}
	if err != nil {
		return Grant{}, fmt.Errorf("authorize %s: %w", clientID, err)
	}
	return Grant{AccountID: cred.AccountID, AccessToken: cred.AccessToken}, nil
}

// LoginURL returns the provider consent URL for a client id.
func (g *Gate) LoginURL(clientID string) string {
	return g.oauth.AuthCodeURL(clientID)
}
