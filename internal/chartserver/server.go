// Package chartserver serves codepage charts over SSH. The session command
// line is a cpdisp command line; every session opens its own backend.
package chartserver

import (
	"fmt"
	"net"
	"os"

	"github.com/gliderlabs/ssh"
	gossh "golang.org/x/crypto/ssh"

	"github.com/stlalpha/cpdisp/internal/logging"
)

// Config holds SSH server configuration.
type Config struct {
	Addr        string
	HostKeyPath string // empty generates a key at startup
	DataPath    string // mapping files sessions may use
	Version     string // SSH server banner version (default: "cpdisp")
}

// Server wraps a gliderlabs/ssh server.
type Server struct {
	inner    *ssh.Server
	dataPath string
}

// NewServer creates and configures a new chart server. Clients are not
// authenticated; sessions can only read charts.
func NewServer(cfg Config) (*Server, error) {
	version := cfg.Version
	if version == "" {
		version = "cpdisp"
	}
	s := &Server{dataPath: cfg.DataPath}

	srv := &ssh.Server{
		Addr:    cfg.Addr,
		Handler: s.handleSession,
		Version: version,
		ConnectionFailedCallback: func(conn net.Conn, err error) {
			logging.Warn("SSH connection failed from %s: %v", conn.RemoteAddr(), err)
		},
	}

	if cfg.HostKeyPath != "" {
		signer, err := loadHostKey(cfg.HostKeyPath)
		if err != nil {
			return nil, err
		}
		srv.AddHostKey(signer)
	} else {
		logging.Warn("no host key configured, generating a temporary one")
	}

	s.inner = srv
	return s, nil
}

func loadHostKey(path string) (ssh.Signer, error) {
	keyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read host key %s: %w", path, err)
	}
	signer, err := gossh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse host key %s: %w", path, err)
	}
	logging.Info("host key loaded from %s", path)
	return signer, nil
}

// ListenAndServe binds to the configured address and serves SSH connections.
// It blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	return s.inner.ListenAndServe()
}

// Serve starts serving on an existing listener. Blocks until closed.
func (s *Server) Serve(l net.Listener) error {
	return s.inner.Serve(l)
}

// Close shuts down the server and all active connections.
func (s *Server) Close() error {
	return s.inner.Close()
}
