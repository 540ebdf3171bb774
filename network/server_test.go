package network

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/luca-patrignani/pow-ledger/consensus"
	"github.com/luca-patrignani/pow-ledger/ledger"
)

func newTestServer(t *testing.T, difficulty uint32, opts ...ServerOption) (*Server, *ledger.Blockchain) {
	t.Helper()
	bc := ledger.NewBlockchain()
	m, err := consensus.NewMiner(difficulty)
	if err != nil {
		t.Fatalf("failed to create miner: %v", err)
	}
	return NewServer(bc, consensus.NewNode(bc, m), opts...), bc
}

func doRequest(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %s: %v", rec.Body.String(), err)
	}
}

func TestGetChainGenesis(t *testing.T) {
	s, _ := newTestServer(t, 1)
	rec := doRequest(t, s, http.MethodGet, "/get_chain", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp chainResponse
	decode(t, rec, &resp)
	if resp.Length != 1 || len(resp.Chain) != 1 {
		t.Fatalf("expected only genesis, got %+v", resp)
	}
	if resp.Chain[0].PrevHash != "0" || resp.Chain[0].Index != 1 {
		t.Fatalf("unexpected genesis %+v", resp.Chain[0])
	}
}

// TestAddMineAndValidate drives the full request cycle: add transactions,
// inspect the pool, mine, and validate.
func TestAddMineAndValidate(t *testing.T) {
	s, _ := newTestServer(t, 1)

	for i, body := range []string{
		`{"sender":"alice","receiver":"bob","amount":1.5}`,
		`{"sender":"bob","receiver":"carol","amount":"2"}`,
	} {
		rec := doRequest(t, s, http.MethodPost, "/add_transaction", []byte(body))
		if rec.Code != http.StatusCreated {
			t.Fatalf("transaction %d: expected 201, got %d: %s", i, rec.Code, rec.Body.String())
		}
	}

	var utxos utxosResponse
	decode(t, doRequest(t, s, http.MethodGet, "/get_utxos", nil), &utxos)
	if utxos.Length != 2 {
		t.Fatalf("expected 2 pending transactions, got %d", utxos.Length)
	}
	if !utxos.Utxos[0].Amount.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("expected amount 1.5, got %s", utxos.Utxos[0].Amount)
	}

	rec := doRequest(t, s, http.MethodGet, "/mine_block", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var mined mineResponse
	decode(t, rec, &mined)
	if mined.Message != RewardMessage {
		t.Fatalf("unexpected message %q", mined.Message)
	}
	if mined.Index != 2 || mined.Nonce != 20 || len(mined.Transactions) != 2 {
		t.Fatalf("unexpected mined block %+v", mined)
	}
	if mined.Date == "" || mined.Hash == "" {
		t.Fatalf("mined block misses date or hash: %+v", mined)
	}

	decode(t, doRequest(t, s, http.MethodGet, "/get_utxos", nil), &utxos)
	if utxos.Length != 0 {
		t.Fatalf("pool should be empty after mining, got %d", utxos.Length)
	}

	var valid validResponse
	decode(t, doRequest(t, s, http.MethodGet, "/is_valid", nil), &valid)
	if !valid.Valid || valid.Message != "Blockchain is valid." {
		t.Fatalf("unexpected validation response %+v", valid)
	}
}

func TestAddTransactionRejected(t *testing.T) {
	s, bc := newTestServer(t, 1)
	for _, body := range []string{
		`{"sender":"alice","receiver":"bob","amount":-1}`,
		`{"sender":"alice","receiver":"bob"}`,
		`{"sender":"alice","amount":1}`,
		`{"sender":"alice","receiver":"bob","amount":"abc"}`,
		`{"sender":"alice","receiver":"bob","amount":"1e50000000"}`,
		`{"sender":"alice","receiver":"bob","amount":1e50000000}`,
		`{"sender":"alice","receiver":"bob","amount":"1e-50000000"}`,
		`not json`,
	} {
		rec := doRequest(t, s, http.MethodPost, "/add_transaction", []byte(body))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
	if len(bc.Pending()) != 0 {
		t.Fatalf("rejected transactions reached the pool: %d", len(bc.Pending()))
	}
}

func TestMineBlockTimeout(t *testing.T) {
	s, bc := newTestServer(t, consensus.MaxDifficulty, WithMineTimeout(20*time.Millisecond))
	rec := doRequest(t, s, http.MethodGet, "/mine_block", nil)
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	if bc.Len() != 1 {
		t.Fatalf("timed out mining must not commit, got %d blocks", bc.Len())
	}
}

// TestServeTLS starts the server with a self-signed certificate and queries
// it with a client trusting only that certificate.
func TestServeTLS(t *testing.T) {
	l, err := Listen("127.0.0.1", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	cert, pem, err := GenerateSelfSignedCert(l.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	s, _ := newTestServer(t, 1, WithCertificate(cert))
	errChan := s.Start(l)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Close(ctx); err != nil {
			t.Fatal(err)
		}
		if err := <-errChan; err != nil {
			t.Fatal(err)
		}
	}()

	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(pem)
	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: pool}},
		Timeout:   5 * time.Second,
	}
	resp, err := client.Get(fmt.Sprintf("https://%s/is_valid", l.Addr().String()))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var valid validResponse
	if err := json.NewDecoder(resp.Body).Decode(&valid); err != nil {
		t.Fatal(err)
	}
	if !valid.Valid {
		t.Fatal("fresh chain should be valid")
	}
}

func TestListenPortRange(t *testing.T) {
	first, err := Listen("127.0.0.1", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	taken := uint16(first.Addr().(*net.TCPAddr).Port)
	if taken > 65500 {
		t.Skip("ephemeral port too close to the end of the range")
	}

	second, err := Listen("127.0.0.1", taken, taken+20)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	port := uint16(second.Addr().(*net.TCPAddr).Port)
	if port == taken || port > taken+20 {
		t.Fatalf("expected a free port in %d-%d, got %d", taken+1, taken+20, port)
	}

	if _, err := Listen("127.0.0.1", 10, 5); err == nil {
		t.Fatal("expected an error for an inverted range")
	}
}
