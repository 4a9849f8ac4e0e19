package auth

import (
	"context"
	"errors"
	"net/http"
)

type contextKey string

const (
	TokenContextKey contextKey = "auth.token"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

type Provider interface {
	Authenticate(ctx context.Context, r *http.Request) (context.Context, error)
}
