package client

import (
	"net/http"
)

const DefaultURL = "https://crocodoc.com/api/v2"

type Client struct {
	Documents DocumentService
}

func New(url string, opts ...RequestOption) *Client {
	opts = append([]RequestOption{WithURL(url)}, opts...)

	return &Client{
		Documents: NewDocumentService(opts...),
	}
}

// newRequestConfig applies the service defaults, then the per-call options.
// The defaults slice is shared between callers and must not be appended to.
func newRequestConfig(defaults []RequestOption, opts ...RequestOption) *RequestConfig {
	c := &RequestConfig{
		URL:    DefaultURL,
		Client: http.DefaultClient,
	}

	for _, opt := range defaults {
		opt(c)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}
