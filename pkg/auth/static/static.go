package static

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/frusdelion/crocodoc/pkg/auth"
)

var _ auth.Provider = &Provider{}

// Provider accepts requests carrying a fixed API token in the "token" query
// or form field. An empty token accepts every request.
type Provider struct {
	token string
}

func New(token string) (*Provider, error) {
	return &Provider{
		token: token,
	}, nil
}

func (p *Provider) Authenticate(ctx context.Context, r *http.Request) (context.Context, error) {
	if p.token == "" {
		return ctx, nil
	}

	token := r.FormValue("token")

	if token == "" {
		return ctx, auth.ErrMissingToken
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(p.token)) != 1 {
		return ctx, auth.ErrInvalidToken
	}

	ctx = context.WithValue(ctx, auth.TokenContextKey, token)

	return ctx, nil
}
