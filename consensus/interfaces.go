package consensus

import "github.com/luca-patrignani/pow-ledger/ledger"

// Hasher computes the canonical digest of a block.
type Hasher interface {
	// HashOf returns the digest of b, ignoring its Hash field.
	HashOf(b ledger.Block) string
}

// Ledger defines what the Node needs from the chain it extends.
// *ledger.Blockchain satisfies it.
type Ledger interface {
	Hasher

	// GetLatest returns the current tip of the chain.
	GetLatest() (ledger.Block, error)

	// CommitBlock seals the pending pool into a new block. It returns
	// ledger.ErrStalePredecessor if prevHash is no longer the tip's hash.
	CommitBlock(nonce uint64, prevHash string) (ledger.Block, error)

	// Chain returns a snapshot of the committed blocks, genesis first.
	Chain() []ledger.Block

	// Pending returns a snapshot of the pending pool.
	Pending() []ledger.Transaction
}
