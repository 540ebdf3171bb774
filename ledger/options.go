package ledger

import (
	"io"
	"log/slog"
	"time"

	"go.dedis.ch/kyber/v4"
)

type settings struct {
	logger *slog.Logger
	suite  kyber.HashFactory
	clock  func() time.Time
}

type option func(settings) settings

func defaultSettings() settings {
	return settings{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		suite:  DefaultSuite(),
		clock:  time.Now,
	}
}

// WithLogger sets the logger for pool and commit events.
func WithLogger(logger *slog.Logger) option {
	return func(s settings) settings {
		s.logger = logger
		return s
	}
}

// WithSuite replaces the hash factory used to hash blocks.
func WithSuite(hf kyber.HashFactory) option {
	return func(s settings) settings {
		s.suite = hf
		return s
	}
}

// WithClock sets the time source for block timestamps.
func WithClock(clock func() time.Time) option {
	return func(s settings) settings {
		s.clock = clock
		return s
	}
}
