package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Server is the HTTP control server.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	port       int
}

// NewServer creates a server on the given port serving the handler's routes.
func NewServer(port int, handler *Handler) *Server {
	return &Server{
		port: port,
		httpServer: &http.Server{
			Handler:           NewRouter(handler),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start binds the port and serves until Stop. Blocking.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return err
	}
	s.listener = listener

	err = s.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// BaseURL returns the server's base URL once started.
func (s *Server) BaseURL() string {
	if s.listener != nil {
		return fmt.Sprintf("http://%s", s.listener.Addr().String())
	}
	return fmt.Sprintf("http://localhost:%d", s.port)
}
