package ledger

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// GenesisPrevHash is the previous hash recorded in the genesis block.
const GenesisPrevHash = "0"

// GenesisNonce is the nonce of the genesis block.
const GenesisNonce uint64 = 1

// Amounts are bounded so that their decimal text stays short.
const (
	MaxIntegerDigits  = 30
	MaxFractionDigits = 18
)

// Transaction records a transfer between two parties.
type Transaction struct {
	Sender   string          `json:"sender"`
	Receiver string          `json:"receiver"`
	Amount   decimal.Decimal `json:"amount"`
}

// Block is a committed batch of transactions.
type Block struct {
	Index        uint64        `json:"index"`
	Timestamp    int64         `json:"timestamp"`
	Nonce        uint64        `json:"nonce"`
	Transactions []Transaction `json:"transactions"`
	PrevHash     string        `json:"previous_hash"`
	Hash         string        `json:"hash"`
}

// Date renders the block timestamp in local time. It is informational only and
// never part of the hashed data.
func (b Block) Date() string {
	return time.Unix(b.Timestamp, 0).Format("2006-01-02 15:04:05")
}

// clone returns a copy of the block that shares no memory with b.
func (b Block) clone() Block {
	cp := b
	cp.Transactions = cloneTransactions(b.Transactions)
	return cp
}

func cloneTransactions(txs []Transaction) []Transaction {
	cp := make([]Transaction, len(txs))
	copy(cp, txs)
	return cp
}

// ParseAmount parses a decimal amount, rejecting negative or non numeric input.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %q: %v", ErrInvalidTransaction, s, err)
	}
	if err := checkAmount(amount); err != nil {
		return decimal.Decimal{}, err
	}
	return amount, nil
}

// AmountFromFloat converts f to a decimal amount. NaN, infinities and
// negative values are rejected.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %v is not finite", ErrInvalidTransaction, f)
	}
	amount := decimal.NewFromFloat(f)
	if err := checkAmount(amount); err != nil {
		return decimal.Decimal{}, err
	}
	return amount, nil
}

// Check reports whether b can be encoded canonically: every string must be
// valid UTF-8 and every amount must be within bounds. It does not check
// hashes or proofs.
func (b Block) Check() error {
	if !utf8.ValidString(b.PrevHash) {
		return fmt.Errorf("%w: previous hash %q is not valid UTF-8", ErrInvalidBlock, b.PrevHash)
	}
	for i, tx := range b.Transactions {
		if err := checkTransaction(tx.Sender, tx.Receiver, tx.Amount); err != nil {
			return fmt.Errorf("%w: transaction %d: %w", ErrInvalidBlock, i, err)
		}
	}
	return nil
}

func checkTransaction(sender, receiver string, amount decimal.Decimal) error {
	if !utf8.ValidString(sender) {
		return fmt.Errorf("%w: sender %q is not valid UTF-8", ErrInvalidTransaction, sender)
	}
	if !utf8.ValidString(receiver) {
		return fmt.Errorf("%w: receiver %q is not valid UTF-8", ErrInvalidTransaction, receiver)
	}
	return checkAmount(amount)
}

// checkAmount must not format amount before its bounds are known.
func checkAmount(amount decimal.Decimal) error {
	exp := int64(amount.Exponent())
	if exp < -MaxFractionDigits {
		return fmt.Errorf("%w: amount has more than %d decimal places", ErrInvalidTransaction, MaxFractionDigits)
	}
	if int64(amount.NumDigits())+exp > MaxIntegerDigits {
		return fmt.Errorf("%w: amount has more than %d integer digits", ErrInvalidTransaction, MaxIntegerDigits)
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: amount %s is negative", ErrInvalidTransaction, amount)
	}
	return nil
}
