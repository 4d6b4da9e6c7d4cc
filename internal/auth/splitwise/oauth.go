// Package splitwise implements the OAuth authorization-code flow against
// Splitwise's identity endpoints.
package splitwise

import "golang.org/x/oauth2"

// Endpoint is Splitwise's OAuth2 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://secure.splitwise.com/oauth/authorize",
	TokenURL: "https://secure.splitwise.com/oauth/token",
}

// OAuthConfig builds the oauth2 config shared by login-URL construction and
// the callback's code exchange. Splitwise calls the client credentials
// "consumer key" and "consumer secret".
func OAuthConfig(consumerKey, consumerSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     consumerKey,
		ClientSecret: consumerSecret,
		RedirectURL:  redirectURL,
		Endpoint:     Endpoint,
	}
}
