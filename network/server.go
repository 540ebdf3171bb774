package network

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/luca-patrignani/pow-ledger/consensus"
	"github.com/luca-patrignani/pow-ledger/ledger"
)

// RewardMessage is returned with every mined block.
const RewardMessage = "Congratulations, you earned 6.25 BTC!"

// TransactionPool accepts new transactions. *ledger.Blockchain satisfies it.
type TransactionPool interface {
	AddTransaction(sender, receiver string, amount decimal.Decimal) (ledger.Transaction, error)
}

// Server serves a ledger over HTTP.
type Server struct {
	pool        TransactionPool
	node        *consensus.Node
	engine      *gin.Engine
	server      *http.Server
	mineTimeout time.Duration
	tlsConfig   *tls.Config
	logger      *slog.Logger
}

// NewServer builds the route table. The server does not listen until Start
// or Serve is called.
func NewServer(pool TransactionPool, node *consensus.Node, opts ...ServerOption) *Server {
	s := Server{
		pool:        pool,
		node:        node,
		mineTimeout: time.Minute,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		s = opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(s.logger))
	engine.GET("/mine_block", s.mineBlock)
	engine.GET("/get_chain", s.getChain)
	engine.GET("/get_utxos", s.getUtxos)
	engine.GET("/is_valid", s.isValid)
	engine.POST("/add_transaction", s.addTransaction)

	s.engine = engine
	s.server = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve accepts connections on l until Close is called. It wraps l with TLS
// when a certificate was configured.
func (s *Server) Serve(l net.Listener) error {
	if s.tlsConfig != nil {
		l = tls.NewListener(l, s.tlsConfig)
	}
	s.logger.Info("serving ledger", "address", l.Addr().String(), "tls", s.tlsConfig != nil)
	err := s.server.Serve(l)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start runs Serve in the background. Errors are sent on the returned
// channel, which is closed when the server stops.
func (s *Server) Start(l net.Listener) <-chan error {
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		if err := s.Serve(l); err != nil {
			errChan <- err
		}
	}()
	return errChan
}

// Close stops accepting connections and waits for in-flight requests until
// ctx ends.
func (s *Server) Close(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(started),
			"client", c.ClientIP(),
		)
	}
}
