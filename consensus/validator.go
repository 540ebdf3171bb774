package consensus

import (
	"fmt"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

// ViolationKind names the rule a block broke.
type ViolationKind string

const (
	// ViolationEmpty is reported for a chain without a genesis block.
	ViolationEmpty ViolationKind = "empty"
	// ViolationLinkage: previous_hash differs from the hash of the previous block.
	ViolationLinkage ViolationKind = "linkage"
	// ViolationProofOfWork: the nonce does not solve the puzzle.
	ViolationProofOfWork ViolationKind = "proof-of-work"
	// ViolationHash: the stored hash differs from the recomputed one.
	ViolationHash ViolationKind = "hash"
	// ViolationEncoding: the block holds invalid UTF-8 or an amount out of
	// bounds, so it has no canonical encoding.
	ViolationEncoding ViolationKind = "encoding"
)

// Violation describes the first adjacent pair of blocks that failed
// validation.
type Violation struct {
	Index    uint64        `json:"index"`
	Previous uint64        `json:"previous"`
	Kind     ViolationKind `json:"kind"`
	Expected string        `json:"expected,omitempty"`
	Actual   string        `json:"actual,omitempty"`
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationEmpty:
		return "chain has no genesis block"
	case ViolationEncoding:
		return fmt.Sprintf("block %d after block %d breaks %s: %s", v.Index, v.Previous, v.Kind, v.Actual)
	}
	return fmt.Sprintf("block %d after block %d breaks %s: expected %s, got %s", v.Index, v.Previous, v.Kind, v.Expected, v.Actual)
}

// Report is the outcome of a chain validation. An invalid chain is an
// expected result, not an error.
type Report struct {
	Valid     bool       `json:"valid"`
	Length    int        `json:"length"`
	Violation *Violation `json:"violation,omitempty"`
}

// Validator checks chains against the linkage and proof-of-work rules.
type Validator struct {
	miner  *Miner
	hasher Hasher
}

// NewValidator returns a Validator that checks proofs with miner and block
// hashes with hasher.
func NewValidator(miner *Miner, hasher Hasher) *Validator {
	return &Validator{miner: miner, hasher: hasher}
}

// Validate walks chain from its second block and stops at the first pair
// (prev, cur) where:
//  1. cur cannot be encoded canonically
//  2. cur.PrevHash is not the hash of prev
//  3. the puzzle digest of cur.Nonce against prev.Nonce misses the difficulty
//  4. cur.Hash is not the hash of cur
//
// The genesis block itself is trusted. chain is only read.
func (v *Validator) Validate(chain []ledger.Block) Report {
	report := Report{Length: len(chain)}
	if len(chain) == 0 {
		report.Violation = &Violation{Kind: ViolationEmpty}
		return report
	}

	for i := 1; i < len(chain); i++ {
		prev, cur := chain[i-1], chain[i]
		if violation := v.checkPair(prev, cur); violation != nil {
			report.Violation = violation
			return report
		}
	}

	report.Valid = true
	return report
}

// IsChainValid reports whether Validate finds no violation.
func (v *Validator) IsChainValid(chain []ledger.Block) bool {
	return v.Validate(chain).Valid
}

func (v *Validator) checkPair(prev, cur ledger.Block) *Violation {
	violation := func(kind ViolationKind, expected, actual string) *Violation {
		return &Violation{Index: cur.Index, Previous: prev.Index, Kind: kind, Expected: expected, Actual: actual}
	}

	if err := cur.Check(); err != nil {
		return violation(ViolationEncoding, "", err.Error())
	}

	if prevHash := v.hasher.HashOf(prev); cur.PrevHash != prevHash {
		return violation(ViolationLinkage, prevHash, cur.PrevHash)
	}

	if digest := v.miner.PuzzleDigest(cur.Nonce, prev.Nonce); !v.miner.MeetsDifficulty(digest) {
		return violation(ViolationProofOfWork, fmt.Sprintf("%d leading zeros", v.miner.Difficulty()), digest)
	}

	if hash := v.hasher.HashOf(cur); cur.Hash != hash {
		return violation(ViolationHash, hash, cur.Hash)
	}

	return nil
}
