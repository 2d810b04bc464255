package command

import (
	"fmt"
	"time"

	"github.com/patchgarden/gardener/internal/bus"
	"github.com/pixil98/go-errors"
)

type BusConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
}

func (c *BusConfig) validate() error {
	el := errors.NewErrorList()

	if c.StartTimeout != "" {
		_, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing start_timeout: %w", err))
		}
	}

	return el.Err()
}

func (c *BusConfig) buildServer() (*bus.Server, error) {
	var opts []bus.ServerOpt
	if c.StartTimeout != "" {
		d, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, bus.WithStartTimeout(d))
	}
	if c.Host != "" {
		opts = append(opts, bus.WithHost(c.Host))
	}
	if c.Port != 0 {
		opts = append(opts, bus.WithPort(c.Port))
	}

	s, err := bus.NewServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}
