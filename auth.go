package osmapi

import (
	"net/http"

	"golang.org/x/oauth2"
)

// An Authorizer adds credentials to outgoing requests that require identity.
// Implementations must only set headers; the URL and body are off limits.
type Authorizer interface {
	Authorize(req *http.Request) error
}

// BasicAuth authorizes requests with HTTP Basic authentication.
type BasicAuth struct {
	User     string
	Password string
}

func (a *BasicAuth) Authorize(req *http.Request) error {
	req.SetBasicAuth(a.User, a.Password)
	return nil
}

// OAuth authorizes requests with OAuth 2 bearer tokens. Source handles
// token refresh, see golang.org/x/oauth2.
type OAuth struct {
	Source oauth2.TokenSource
}

func (a *OAuth) Authorize(req *http.Request) error {
	token, err := a.Source.Token()
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)
	return nil
}

// anonymous is the Authorizer of clients without credentials.
type anonymous struct{}

func (anonymous) Authorize(req *http.Request) error { return nil }
