// Package consensus implements the proof-of-work rules of the ledger: the
// puzzle a miner has to solve before a block may be committed, and the
// validation that proves a chain was built following those rules.
//
// # Core Components
//
// Miner: Holds the difficulty and searches for the smallest nonce whose puzzle
// digest starts with the required number of '0' characters.
//
// Validator: Walks a snapshot of the chain and reports the first adjacent pair
// of blocks that breaks hash linkage or proof-of-work.
//
// Node: Ties a Miner to a Ledger. It mines against a snapshot of the tip and
// commits the result, retrying when the tip moved during the search.
//
// # Puzzle
//
// For a candidate nonce n and the previous block nonce p the puzzle digest is
// the SHA-256 of the decimal text of n*n - p*p, a leading minus sign included
// when the difference is negative. The search starts at 1 and the smallest
// satisfying nonce always wins, even when several workers search in parallel,
// so mining and validation agree on every chain.
//
// # Cancellation
//
// Solve honours its context: a cancelled search fails with ErrSearchCancelled
// and an expired deadline with ErrSearchTimedOut.
package consensus
