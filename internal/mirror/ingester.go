package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/patchgarden/gardener/internal/protocol"
	"github.com/pixil98/go-log"
)

// FrameSource is the subscription side of the event bus the transport
// publishes inbound frames to.
type FrameSource interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// Ingester is the worker wiring the frame bus into the mirror. It decodes
// each frame and routes Welcome and PartialState into the ingest paths;
// anything else on the socket is not state and is ignored.
type Ingester struct {
	mirror  *Mirror
	source  FrameSource
	subject string
}

func NewIngester(m *Mirror, source FrameSource, subject string) *Ingester {
	return &Ingester{
		mirror:  m,
		source:  source,
		subject: subject,
	}
}

func (i *Ingester) Start(ctx context.Context) error {
	logger := log.GetLogger(ctx)

	// The bus worker starts concurrently; retry briefly until it accepts
	// subscriptions.
	var unsub func()
	var err error
	for attempt := 0; ; attempt++ {
		unsub, err = i.source.Subscribe(i.subject, func(data []byte) {
			i.handleFrame(ctx, data)
		})
		if err == nil {
			break
		}
		if attempt >= 100 {
			return fmt.Errorf("subscribing to %q: %w", i.subject, err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(100 * time.Millisecond):
		}
	}
	defer unsub()

	logger.Infof("ingester consuming %q", i.subject)
	<-ctx.Done()
	return nil
}

func (i *Ingester) handleFrame(ctx context.Context, data []byte) {
	logger := log.GetLogger(ctx)

	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		logger.WithError(err).Warn("dropping undecodable frame")
		return
	}

	switch env.Type {
	case protocol.TypeWelcome:
		doc, err := env.Document()
		if err != nil {
			logger.WithError(err).Warn("dropping malformed welcome")
			return
		}
		i.mirror.IngestWelcome(doc)
		logger.Info("welcome ingested, mirror seeded")

	case protocol.TypePartialState:
		patches, dropped := env.StatePatches()
		for _, err := range dropped {
			logger.WithError(err).Debug("dropping malformed patch")
		}
		applied, skipped := i.mirror.IngestPartialState(patches)
		if skipped > 0 {
			logger.Debugf("partial state: %d applied, %d skipped", applied, skipped)
		}

	default:
		// Heartbeats and other chatter; not state.
	}
}
