package consensus

import "errors"

var (
	ErrSearchCancelled   = errors.New("proof-of-work search cancelled")
	ErrSearchTimedOut    = errors.New("proof-of-work search timed out")
	ErrSearchExhausted   = errors.New("proof-of-work search exhausted the nonce space")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)
