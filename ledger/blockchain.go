package ledger

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.dedis.ch/kyber/v4"
)

// Blockchain owns the committed blocks and the pending pool.
// It is safe for concurrent use.
type Blockchain struct {
	mu      sync.RWMutex  // Protects blocks and pending
	blocks  []Block       // Committed blocks, genesis first
	pending []Transaction // Transactions waiting for the next block

	suite  kyber.HashFactory
	clock  func() time.Time
	logger *slog.Logger
}

// NewBlockchain creates a ledger holding only the genesis block and an empty
// pool.
//
// The genesis block:
//   - Has index 1 and nonce 1
//   - Has previous hash "0"
//   - Contains no transactions
func NewBlockchain(opts ...option) *Blockchain {
	s := defaultSettings()
	for _, opt := range opts {
		s = opt(s)
	}
	bc := &Blockchain{
		blocks:  make([]Block, 0, 1),
		pending: make([]Transaction, 0),
		suite:   s.suite,
		clock:   s.clock,
		logger:  s.logger,
	}

	genesis := Block{
		Index:        1,
		Timestamp:    bc.clock().Unix(),
		Nonce:        GenesisNonce,
		Transactions: []Transaction{},
		PrevHash:     GenesisPrevHash,
	}
	genesis.Hash = bc.HashOf(genesis)
	bc.blocks = append(bc.blocks, genesis)
	bc.logger.Debug("genesis block created", "hash", genesis.Hash)

	return bc
}

// AddTransaction appends a transaction to the pending pool and returns it.
// Parties may be any valid UTF-8 text. Invalid UTF-8, a negative amount or an
// amount out of bounds fails with ErrInvalidTransaction.
func (bc *Blockchain) AddTransaction(sender, receiver string, amount decimal.Decimal) (Transaction, error) {
	if err := checkTransaction(sender, receiver, amount); err != nil {
		return Transaction{}, err
	}
	tx := Transaction{Sender: sender, Receiver: receiver, Amount: amount}

	bc.mu.Lock()
	bc.pending = append(bc.pending, tx)
	size := len(bc.pending)
	bc.mu.Unlock()

	bc.logger.Debug("transaction added", "sender", sender, "receiver", receiver, "amount", amount.String(), "pending", size)
	return tx, nil
}

// GetLatest returns the most recently committed block.
func (bc *Blockchain) GetLatest() (Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if len(bc.blocks) == 0 {
		return Block{}, ErrEmptyChain
	}
	return bc.blocks[len(bc.blocks)-1].clone(), nil
}

// GetByIndex returns the block with the given 1-based index.
func (bc *Blockchain) GetByIndex(index uint64) (Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if index == 0 || index > uint64(len(bc.blocks)) {
		return Block{}, fmt.Errorf("block %d: %w", index, ErrIndexOutOfRange)
	}
	return bc.blocks[index-1].clone(), nil
}

// HashOf returns the digest of the canonical encoding of b. The Hash field of b
// is ignored.
func (bc *Blockchain) HashOf(b Block) string {
	return HashBlock(bc.suite, b)
}

// CommitBlock seals the whole pending pool into a new block with the given
// nonce and previous hash, appends it and empties the pool in one step.
//
// prevHash must be the hash of the current latest block. If another block was
// committed in the meantime the call fails with ErrStalePredecessor and
// neither the chain nor the pool change.
func (bc *Blockchain) CommitBlock(nonce uint64, prevHash string) (Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if len(bc.blocks) == 0 {
		return Block{}, ErrEmptyChain
	}
	latest := bc.blocks[len(bc.blocks)-1]
	if tip := bc.HashOf(latest); prevHash != tip {
		return Block{}, fmt.Errorf("commit on block %d: expected %s, got %s: %w", latest.Index, tip, prevHash, ErrStalePredecessor)
	}

	block := Block{
		Index:        latest.Index + 1,
		Timestamp:    bc.clock().Unix(),
		Nonce:        nonce,
		Transactions: bc.pending,
		PrevHash:     prevHash,
	}
	block.Hash = bc.HashOf(block)

	bc.blocks = append(bc.blocks, block)
	bc.pending = make([]Transaction, 0)

	bc.logger.Info("block committed", "index", block.Index, "nonce", nonce, "transactions", len(block.Transactions), "hash", block.Hash)
	return block.clone(), nil
}

// Chain returns a snapshot of every committed block, genesis first.
func (bc *Blockchain) Chain() []Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	chain := make([]Block, len(bc.blocks))
	for i, b := range bc.blocks {
		chain[i] = b.clone()
	}
	return chain
}

// Pending returns a snapshot of the pending pool in insertion order.
func (bc *Blockchain) Pending() []Transaction {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	return cloneTransactions(bc.pending)
}

// Len returns the number of committed blocks.
func (bc *Blockchain) Len() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	return len(bc.blocks)
}
