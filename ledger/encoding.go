package ledger

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/suites"
)

var suite suites.Suite = suites.MustFind("Ed25519")

// DefaultSuite returns the hash factory used when none is configured. The
// Ed25519 suite hashes with SHA-256.
func DefaultSuite() kyber.HashFactory {
	return suite
}

// Digest hashes data with a fresh hash from hf and returns it hex encoded.
func Digest(hf kyber.HashFactory, data []byte) string {
	h := hf.Hash()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Encode returns the canonical encoding of b: a JSON object whose keys are
// sorted by name, with the hash field omitted, numbers written as plain
// decimal text and strings left as UTF-8. Transactions keep their order.
func Encode(b Block) []byte {
	txs := make([]map[string]any, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		txs = append(txs, map[string]any{
			"amount":   json.Number(tx.Amount.String()),
			"receiver": tx.Receiver,
			"sender":   tx.Sender,
		})
	}
	// encoding/json writes map keys in sorted order.
	fields := map[string]any{
		"index":         b.Index,
		"nonce":         b.Nonce,
		"previous_hash": b.PrevHash,
		"timestamp":     b.Timestamp,
		"transactions":  txs,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		// Only reachable if a decimal renders as an invalid JSON number.
		panic(fmt.Sprintf("ledger: canonical encoding of block %d: %v", b.Index, err))
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

// HashBlock computes the digest of the canonical encoding of b.
func HashBlock(hf kyber.HashFactory, b Block) string {
	return Digest(hf, Encode(b))
}
