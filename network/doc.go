// Package network exposes a ledger over HTTP.
//
// # Routes
//
//	GET  /mine_block       mine the pending pool into a new block
//	GET  /get_chain        every committed block and the chain length
//	GET  /get_utxos        the pending pool and its length
//	GET  /is_valid         the validation verdict for the whole chain
//	POST /add_transaction  append {sender, receiver, amount} to the pool
//
// # Mining
//
// Mining runs inside the request but under its own timeout (WithMineTimeout),
// and it is cancelled as soon as the client goes away. Read-only routes never
// wait for a running search.
//
// # TLS
//
// WithCertificate switches the server to TLS. GenerateSelfSignedCert creates
// a one-year certificate for a given address.
package network
