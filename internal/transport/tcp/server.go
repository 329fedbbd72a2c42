package tcp

import (
	"errors"
	"fmt"
	"net"

	"github.com/EryGltkn/CN-termproject/internal/engine"
	"github.com/rs/zerolog"
)

// Server accepts participant connections and runs the nickname handshake for
// each one. After the handshake the connection has no dedicated reader:
// receives happen only inside collection windows.
type Server struct {
	session *engine.Session
	log     zerolog.Logger
	ln      net.Listener
}

func NewServer(session *engine.Session, log zerolog.Logger) *Server {
	return &Server{session: session, log: log}
}

// Listen binds host:port and starts accepting in the background.
func (s *Server) Listen(host, port string) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.ln = ln
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening for participants")
	go s.acceptLoop()
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops accepting new connections. Existing participants stay
// registered until their connection fails.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.log.Warn().Err(err).Msg("accept failed")
			}
			return
		}
		go s.handshake(conn)
	}
}

func (s *Server) handshake(conn net.Conn) {
	p, err := s.session.Register(conn)
	if err != nil {
		s.log.Debug().Str("remote", conn.RemoteAddr().String()).Err(err).Msg("handshake discarded")
		_ = conn.Close()
		return
	}
	s.log.Info().Str("nickname", p.Nickname()).Str("remote", conn.RemoteAddr().String()).Msg("participant joined")
}
