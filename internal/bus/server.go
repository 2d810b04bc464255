// Package bus embeds a NATS server used as the in-process event bus. The
// transport publishes every inbound game frame to it and the ingester
// consumes them, which keeps the socket reader decoupled from state
// application.
package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/pixil98/go-log"
)

// Subjects carried on the bus.
const (
	// SubjectFrames carries raw inbound websocket frames.
	SubjectFrames = "game.frames"
)

type Server struct {
	ns   *server.Server
	conn *nats.Conn

	startupTimeout time.Duration
	host           string
	port           int
}

func NewServer(opts ...ServerOpt) (*Server, error) {
	s := &Server{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
	}

	for _, opt := range opts {
		opt(s)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   s.host,
		Port:   s.port,
		NoSigs: true, // Let the application handle signals
	})

	s.ns = ns

	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Server) Start(ctx context.Context) error {

	s.ns.Start()

	if !s.ns.ReadyForConnections(s.startupTimeout) {
		return fmt.Errorf("nats server not ready for connections")
	}

	// Create internal client connection
	conn, err := nats.Connect(s.clientURL())
	if err != nil {
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	s.conn = conn

	log.GetLogger(ctx).Infof("event bus listening on %s", s.ns.Addr())

	<-ctx.Done()
	s.conn.Close()
	s.ns.Shutdown()
	s.ns.WaitForShutdown()

	return nil
}

// Subscribe creates a subscription on the given subject.
// The handler is called for each message received.
// Returns an unsubscribe function to remove the subscription.
func (s *Server) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	if s.conn == nil {
		return nil, fmt.Errorf("event bus not started")
	}
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { sub.Unsubscribe() }, nil
}

// Publish sends a message to the given subject
func (s *Server) Publish(subject string, data []byte) error {
	if s.conn == nil {
		return fmt.Errorf("event bus not started")
	}
	return s.conn.Publish(subject, data)
}

func (s *Server) clientURL() string {
	return fmt.Sprintf("nats://%s:%d", s.host, s.port)
}
