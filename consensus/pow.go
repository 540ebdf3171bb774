package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.dedis.ch/kyber/v4"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

// MaxDifficulty is the length of a hex encoded SHA-256 digest.
const MaxDifficulty = 64

// Miner solves the proof-of-work puzzle for a fixed difficulty.
// A Miner has no mutable state and is safe for concurrent use.
type Miner struct {
	difficulty uint32
	prefix     string
	workers    int
	batchSize  uint64
	suite      kyber.HashFactory
	logger     *slog.Logger
}

// NewMiner creates a miner requiring difficulty leading '0' characters in the
// hex puzzle digest.
func NewMiner(difficulty uint32, opts ...option) (*Miner, error) {
	if difficulty > MaxDifficulty {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidDifficulty, difficulty, MaxDifficulty)
	}
	s := applyOptions(opts)
	return &Miner{
		difficulty: difficulty,
		prefix:     strings.Repeat("0", int(difficulty)),
		workers:    s.workers,
		batchSize:  s.batchSize,
		suite:      s.suite,
		logger:     s.logger,
	}, nil
}

// Difficulty returns the number of leading zeros a puzzle digest needs.
func (m *Miner) Difficulty() uint32 {
	return m.difficulty
}

// PuzzleDigest returns the hex digest of the decimal text of
// candidate² - previous². The difference is computed without overflow and
// keeps its minus sign when negative.
func (m *Miner) PuzzleDigest(candidate, previous uint64) string {
	n := new(big.Int).SetUint64(candidate)
	p := new(big.Int).SetUint64(previous)
	n.Mul(n, n)
	p.Mul(p, p)
	n.Sub(n, p)
	return ledger.Digest(m.suite, []byte(n.String()))
}

// MeetsDifficulty reports whether digest starts with enough '0' characters.
func (m *Miner) MeetsDifficulty(digest string) bool {
	return strings.HasPrefix(digest, m.prefix)
}

// Check reports whether candidate solves the puzzle for previous.
func (m *Miner) Check(candidate, previous uint64) bool {
	return m.MeetsDifficulty(m.PuzzleDigest(candidate, previous))
}

// Solve returns the smallest nonce n >= 1 whose puzzle digest against
// previousNonce meets the difficulty.
//
// Candidates are searched in rounds of workers*batchSize consecutive values.
// Within a round every worker scans its own slice in ascending order, and the
// round's answer is the minimum hit, so the result does not depend on the
// number of workers.
//
// The search stops when ctx is done, returning ErrSearchCancelled or
// ErrSearchTimedOut wrapped together with the context error.
func (m *Miner) Solve(ctx context.Context, previousNonce uint64) (uint64, error) {
	started := time.Now()
	span := uint64(m.workers) * m.batchSize
	start := uint64(1)
	for {
		if err := searchErr(ctx); err != nil {
			return 0, err
		}
		nonce, found := m.searchRound(ctx, start, previousNonce)
		// A round interrupted by ctx may have skipped smaller candidates.
		if err := searchErr(ctx); err != nil {
			return 0, err
		}
		if found {
			m.logger.Debug("nonce found", "previous_nonce", previousNonce, "nonce", nonce, "elapsed", time.Since(started))
			return nonce, nil
		}
		if start > math.MaxUint64-span {
			return 0, ErrSearchExhausted
		}
		start += span
	}
}

// searchRound scans [start, start+workers*batchSize) and returns the smallest
// hit, if any.
func (m *Miner) searchRound(ctx context.Context, start, previous uint64) (uint64, bool) {
	var best atomic.Uint64
	best.Store(math.MaxUint64)
	found := atomic.Bool{}

	var wg sync.WaitGroup
	for w := 0; w < m.workers; w++ {
		from := start + uint64(w)*m.batchSize
		to := from + m.batchSize
		if to < from {
			to = math.MaxUint64
		}
		wg.Add(1)
		go func(from, to uint64) {
			defer wg.Done()
			for n := from; n < to; n++ {
				if n&1023 == 0 && ctx.Err() != nil {
					return
				}
				// A lower slice already has a hit.
				if n > best.Load() {
					return
				}
				if m.Check(n, previous) {
					storeMin(&best, n)
					found.Store(true)
					return
				}
			}
		}(from, to)
	}
	wg.Wait()

	return best.Load(), found.Load()
}

func storeMin(best *atomic.Uint64, n uint64) {
	for {
		cur := best.Load()
		if n >= cur || best.CompareAndSwap(cur, n) {
			return
		}
	}
}

func searchErr(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrSearchTimedOut, err)
	default:
		return fmt.Errorf("%w: %w", ErrSearchCancelled, err)
	}
}
