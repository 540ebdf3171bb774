package ledger

import "errors"

var (
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidBlock       = errors.New("invalid block")
	ErrEmptyChain         = errors.New("blockchain is empty")
	ErrStalePredecessor   = errors.New("previous hash does not match current tip")
	ErrIndexOutOfRange    = errors.New("index out of range")
)
