package client

import (
	"net/http"
)

type RequestConfig struct {
	URL   string
	Token string

	Client *http.Client

	// Transport replaces the HTTP transport built from URL, Token and Client.
	Transport Transport

	// Middleware wraps the transport, innermost first.
	Middleware []func(Transport) Transport
}

type RequestOption func(*RequestConfig)

func WithURL(url string) RequestOption {
	return func(c *RequestConfig) {
		if url == "" {
			return
		}

		c.URL = url
	}
}

func WithToken(token string) RequestOption {
	return func(c *RequestConfig) {
		c.Token = token
	}
}

func WithClient(client *http.Client) RequestOption {
	return func(c *RequestConfig) {
		c.Client = client
	}
}

func WithTransport(t Transport) RequestOption {
	return func(c *RequestConfig) {
		c.Transport = t
	}
}

func WithMiddleware(m func(Transport) Transport) RequestOption {
	return func(c *RequestConfig) {
		c.Middleware = append(c.Middleware, m)
	}
}

func (c *RequestConfig) transport() Transport {
	t := c.Transport

	if t == nil {
		t = NewHTTPTransport(c.URL, c.Token, c.Client)
	}

	for _, m := range c.Middleware {
		t = m(t)
	}

	return t
}
