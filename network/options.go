package network

import (
	"crypto/tls"
	"log/slog"
	"time"
)

// ServerOption configures a Server.
type ServerOption func(Server) Server

// WithMineTimeout bounds how long a single /mine_block request may search.
func WithMineTimeout(timeout time.Duration) ServerOption {
	return func(s Server) Server {
		s.mineTimeout = timeout
		return s
	}
}

// WithCertificate makes the server accept TLS connections only.
func WithCertificate(cert tls.Certificate) ServerOption {
	return func(s Server) Server {
		if s.tlsConfig == nil {
			s.tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		s.tlsConfig.Certificates = append(s.tlsConfig.Certificates, cert)
		return s
	}
}

// WithLogger sets the logger used for requests and server lifecycle.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s Server) Server {
		s.logger = logger
		return s
	}
}
