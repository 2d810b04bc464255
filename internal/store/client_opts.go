package store

import "net/http"

type ClientOpt func(*Client)

// WithHTTPClient overrides the underlying http client
func WithHTTPClient(h *http.Client) ClientOpt {
	return func(c *Client) {
		c.http = h
	}
}
