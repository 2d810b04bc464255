package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/patchgarden/gardener/internal/runstate"
	"github.com/patchgarden/gardener/internal/store"
	"github.com/pixil98/go-errors"
)

type StoreConfig struct {
	Url          string `json:"url"`
	SyncInterval string `json:"sync_interval,omitempty"`
}

func (c *StoreConfig) validate() error {
	el := errors.NewErrorList()

	if c.Url == "" {
		el.Add(fmt.Errorf("store url is required"))
	} else if !strings.HasPrefix(c.Url, "http://") && !strings.HasPrefix(c.Url, "https://") {
		el.Add(fmt.Errorf("store url must be an http:// or https:// address"))
	}

	if c.SyncInterval != "" {
		_, err := time.ParseDuration(c.SyncInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing sync_interval: %w", err))
		}
	}

	return el.Err()
}

func (c *StoreConfig) buildClient() *store.Client {
	return store.NewClient(c.Url)
}

func (c *StoreConfig) buildSyncer(client *store.Client, source store.StateSource) (*store.Syncer, error) {
	interval := 30 * time.Second
	if c.SyncInterval != "" {
		d, err := time.ParseDuration(c.SyncInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing sync_interval: %w", err)
		}
		interval = d
	}
	return store.NewSyncer(client, source, interval), nil
}

type RunStateConfig struct {
	Path string `json:"path"`
}

func (c *RunStateConfig) validate() error {
	el := errors.NewErrorList()

	if c.Path == "" {
		el.Add(fmt.Errorf("run state path is required"))
	}

	return el.Err()
}

func (c *RunStateConfig) buildKeeper() *runstate.Keeper {
	return runstate.NewKeeper(c.Path)
}
