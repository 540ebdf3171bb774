// Package ledger implements an append-only, hash-linked ledger of transactions
// together with the pool of transactions waiting to be mined.
//
// # Core Components
//
// Blockchain: The single authoritative sequence of committed blocks plus the
// pending pool. It owns both and serializes every mutation.
//
// Block: A batch of transactions bound to a proof-of-work nonce and to the
// hash of the block that precedes it.
//
// Transaction: An immutable transfer record. Once embedded in a block it is
// never touched again.
//
// # Hashing
//
// Blocks are hashed over a canonical encoding (see Encode): a JSON object with
// its keys in lexicographic order and the block's own hash left out. The same
// block always produces the same digest, in any process.
//
// # Concurrency
//
// AddTransaction and CommitBlock are serialized by a single writer lock, so a
// transaction is either still pending or already inside the committed block,
// never both and never neither. CommitBlock re-checks the previous hash under
// that lock and rejects commits computed against an outdated tip with
// ErrStalePredecessor. Readers receive deep copies and are unaffected by
// later commits.
package ledger
