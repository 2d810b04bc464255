package bus

import "time"

type ServerOpt func(*Server)

// WithStartTimeout sets the startup timeout for the embedded server
func WithStartTimeout(d time.Duration) ServerOpt {
	return func(s *Server) {
		s.startupTimeout = d
	}
}

// WithHost sets the listen host for the embedded server
func WithHost(host string) ServerOpt {
	return func(s *Server) {
		s.host = host
	}
}

// WithPort sets the listen port for the embedded server
func WithPort(port int) ServerOpt {
	return func(s *Server) {
		s.port = port
	}
}
