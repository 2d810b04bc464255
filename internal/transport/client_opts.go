package transport

import "time"

type ClientOpt func(*Client)

// WithDialAttempts sets how many times the client tries to connect
func WithDialAttempts(n int) ClientOpt {
	return func(c *Client) {
		c.dialAttempts = n
	}
}

// WithDialWait sets the pause between connection attempts
func WithDialWait(d time.Duration) ClientOpt {
	return func(c *Client) {
		c.dialWait = d
	}
}
