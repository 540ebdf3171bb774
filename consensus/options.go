package consensus

import (
	"io"
	"log/slog"
	"runtime"

	"go.dedis.ch/kyber/v4"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

type settings struct {
	workers     int
	batchSize   uint64
	maxAttempts int
	suite       kyber.HashFactory
	logger      *slog.Logger
}

type option func(settings) settings

func defaultSettings() settings {
	return settings{
		workers:     runtime.NumCPU(),
		batchSize:   4096,
		maxAttempts: 3,
		suite:       ledger.DefaultSuite(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func applyOptions(opts []option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		s = opt(s)
	}
	return s
}

// WithWorkers sets how many goroutines search for a nonce in parallel.
func WithWorkers(workers int) option {
	return func(s settings) settings {
		if workers > 0 {
			s.workers = workers
		}
		return s
	}
}

// WithBatchSize sets how many consecutive candidates a worker checks per
// search round.
func WithBatchSize(size uint64) option {
	return func(s settings) settings {
		if size > 0 {
			s.batchSize = size
		}
		return s
	}
}

// WithMaxAttempts bounds how many times a Node mines again after its commit
// was rejected because the tip moved.
func WithMaxAttempts(attempts int) option {
	return func(s settings) settings {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
		return s
	}
}

// WithSuite replaces the hash factory used for puzzle digests.
func WithSuite(hf kyber.HashFactory) option {
	return func(s settings) settings {
		s.suite = hf
		return s
	}
}

// WithLogger sets the logger for search and commit events.
func WithLogger(logger *slog.Logger) option {
	return func(s settings) settings {
		s.logger = logger
		return s
	}
}
