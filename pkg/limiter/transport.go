package limiter

import (
	"context"
	"encoding/json"

	"github.com/frusdelion/crocodoc/pkg/client"

	"golang.org/x/time/rate"
)

type Transport interface {
	Limiter
	client.Transport
}

type limitedTransport struct {
	limiter   *rate.Limiter
	transport client.Transport
}

func NewTransport(l *rate.Limiter, t client.Transport) Transport {
	return &limitedTransport{
		limiter:   l,
		transport: t,
	}
}

// Middleware adapts NewTransport for client.WithMiddleware.
func Middleware(l *rate.Limiter) func(client.Transport) client.Transport {
	return func(t client.Transport) client.Transport {
		return NewTransport(l, t)
	}
}

func (t *limitedTransport) limiterSetup() {
}

func (t *limitedTransport) Request(ctx context.Context, r *client.Request) (json.RawMessage, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return t.transport.Request(ctx, r)
}
