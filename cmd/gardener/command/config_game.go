package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/patchgarden/gardener/internal/bus"
	"github.com/patchgarden/gardener/internal/transport"
	"github.com/pixil98/go-errors"
)

type GameConfig struct {
	Url          string `json:"url"`
	DialAttempts int    `json:"dial_attempts,omitempty"`
	DialWait     string `json:"dial_wait,omitempty"`
}

func (c *GameConfig) validate() error {
	el := errors.NewErrorList()

	if c.Url == "" {
		el.Add(fmt.Errorf("game url is required"))
	} else if !strings.HasPrefix(c.Url, "ws://") && !strings.HasPrefix(c.Url, "wss://") {
		el.Add(fmt.Errorf("game url must be a ws:// or wss:// address"))
	}

	if c.DialWait != "" {
		_, err := time.ParseDuration(c.DialWait)
		if err != nil {
			el.Add(fmt.Errorf("parsing dial_wait: %w", err))
		}
	}

	return el.Err()
}

func (c *GameConfig) buildClient(sink transport.FrameSink) (*transport.Client, error) {
	var opts []transport.ClientOpt
	if c.DialAttempts > 0 {
		opts = append(opts, transport.WithDialAttempts(c.DialAttempts))
	}
	if c.DialWait != "" {
		d, err := time.ParseDuration(c.DialWait)
		if err != nil {
			return nil, fmt.Errorf("parsing dial_wait: %w", err)
		}
		opts = append(opts, transport.WithDialWait(d))
	}

	return transport.NewClient(c.Url, sink, bus.SubjectFrames, opts...), nil
}
