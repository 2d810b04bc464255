package store

import (
	"context"
	"time"

	"github.com/patchgarden/gardener/internal/statedoc"
	"github.com/pixil98/go-log"
)

// StateSource is the mirror surface the syncer reads from.
type StateSource interface {
	Ready() bool
	Document() statedoc.Document
	At(path string) (any, bool)
}

// Syncer periodically pushes the mirrored state and inventory to the
// persistence server so its UI and logs stay current. Pushes are
// last-write-wins; a failed push is retried on the next tick.
type Syncer struct {
	client   *Client
	source   StateSource
	interval time.Duration
}

func NewSyncer(client *Client, source StateSource, interval time.Duration) *Syncer {
	return &Syncer{
		client:   client,
		source:   source,
		interval: interval,
	}
}

func (s *Syncer) Start(ctx context.Context) error {
	logger := log.GetLogger(ctx)
	logger.Infof("state syncer pushing every %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.push(ctx)
		}
	}
}

func (s *Syncer) push(ctx context.Context) {
	logger := log.GetLogger(ctx)

	if !s.source.Ready() {
		return
	}

	if doc := s.source.Document(); doc != nil {
		if err := s.client.PushState(ctx, doc); err != nil {
			logger.WithError(err).Warn("pushing state snapshot")
		}
	}

	if err := s.client.PushInventory(ctx, s.inventory()); err != nil {
		logger.WithError(err).Warn("pushing inventory")
	}
}

func (s *Syncer) inventory() []map[string]any {
	raw, ok := s.source.At("/inventory/items")
	if !ok {
		return []map[string]any{}
	}
	list, ok := raw.([]any)
	if !ok {
		return []map[string]any{}
	}
	out := make([]map[string]any, 0, len(list))
	for _, v := range list {
		if obj, ok := v.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
