package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

// Node mines blocks on top of a Ledger.
//
// The proof-of-work search runs without holding any ledger lock. The nonce is
// computed for a snapshot of the tip and committed with that snapshot's hash;
// if the tip moved meanwhile the ledger rejects the commit and the Node
// mines again on the new tip.
type Node struct {
	ledger      Ledger
	miner       *Miner
	validator   *Validator
	maxAttempts int
	logger      *slog.Logger
}

// NewNode creates a node extending l with blocks mined by m.
//
// Options:
//   - WithMaxAttempts: how many times a stale commit is mined again (default 3)
//   - WithLogger: destination of mining logs
func NewNode(l Ledger, m *Miner, opts ...option) *Node {
	s := applyOptions(opts)
	return &Node{
		ledger:      l,
		miner:       m,
		validator:   NewValidator(m, l),
		maxAttempts: s.maxAttempts,
		logger:      s.logger,
	}
}

// Miner returns the miner used by the node.
func (n *Node) Miner() *Miner {
	return n.miner
}

// MineBlock solves the puzzle for the current tip and commits the pending
// pool as the next block.
//
// Errors:
//   - ErrSearchCancelled / ErrSearchTimedOut when ctx ends the search
//   - ledger.ErrStalePredecessor when every attempt lost the race for the tip
func (n *Node) MineBlock(ctx context.Context) (ledger.Block, error) {
	var lastErr error
	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		latest, err := n.ledger.GetLatest()
		if err != nil {
			return ledger.Block{}, err
		}

		nonce, err := n.miner.Solve(ctx, latest.Nonce)
		if err != nil {
			n.logger.Warn("mining aborted", "index", latest.Index+1, "error", err)
			return ledger.Block{}, err
		}

		block, err := n.ledger.CommitBlock(nonce, n.ledger.HashOf(latest))
		if err == nil {
			n.logger.Info("block mined", "index", block.Index, "nonce", block.Nonce, "transactions", len(block.Transactions), "attempt", attempt)
			return block, nil
		}
		if !errors.Is(err, ledger.ErrStalePredecessor) {
			return ledger.Block{}, err
		}
		n.logger.Warn("tip moved while mining, retrying", "predecessor", latest.Index, "attempt", attempt)
		lastErr = err
	}
	return ledger.Block{}, fmt.Errorf("mining gave up after %d attempts: %w", n.maxAttempts, lastErr)
}

// Validate checks a snapshot of the chain, so it can run while mining.
func (n *Node) Validate() Report {
	report := n.validator.Validate(n.ledger.Chain())
	if !report.Valid {
		n.logger.Warn("chain integrity violation", "violation", report.Violation.String())
	}
	return report
}

// IsChainValid reports whether Validate found no violation.
func (n *Node) IsChainValid() bool {
	return n.Validate().Valid
}

// Chain returns a snapshot of the committed blocks.
func (n *Node) Chain() []ledger.Block {
	return n.ledger.Chain()
}

// Pending returns a snapshot of the transactions waiting for the next block.
func (n *Node) Pending() []ledger.Transaction {
	return n.ledger.Pending()
}
