package consensus

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestMiner(t *testing.T, difficulty uint32, opts ...option) *Miner {
	t.Helper()
	m, err := NewMiner(difficulty, opts...)
	if err != nil {
		t.Fatalf("failed to create miner: %v", err)
	}
	return m
}

func TestNewMinerRejectsDifficulty(t *testing.T) {
	if _, err := NewMiner(MaxDifficulty + 1); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}

// TestPuzzleDigestText verifies that the digest is taken over the decimal
// text of the difference, minus sign included.
func TestPuzzleDigestText(t *testing.T) {
	m := newTestMiner(t, 1)
	cases := []struct {
		candidate, previous uint64
		expected            string
	}{
		// sha256("0")
		{1, 1, "5feceb66ffc86f38d952786c6d696c79c2dbc239dd4e91b46729d73a27fb57e9"},
		// sha256("-24")
		{1, 5, "628eee823448ed34c634b578436a53dcbb6559f18b696db721fb25ab0aa1fb4b"},
	}
	for _, c := range cases {
		actual := m.PuzzleDigest(c.candidate, c.previous)
		if actual != c.expected {
			t.Fatalf("PuzzleDigest(%d, %d): expected %s, got %s", c.candidate, c.previous, c.expected, actual)
		}
		if again := m.PuzzleDigest(c.candidate, c.previous); again != actual {
			t.Fatal("PuzzleDigest is not deterministic")
		}
	}
}

func TestPuzzleDigestNoOverflow(t *testing.T) {
	m := newTestMiner(t, 1)
	// (2^64-1)^2 does not fit in 64 bits; wrapping arithmetic would make
	// these two inputs collide with others.
	a := m.PuzzleDigest(^uint64(0), 0)
	b := m.PuzzleDigest(^uint64(0)-1, 0)
	if a == b {
		t.Fatal("distinct large differences produced the same digest")
	}
}

// TestSolveDifficultyOne pins the smallest nonce for previous nonce 1 and
// checks by brute force that no smaller candidate works.
func TestSolveDifficultyOne(t *testing.T) {
	m := newTestMiner(t, 1, WithWorkers(1))
	nonce, err := m.Solve(context.Background(), 1)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if nonce != 20 {
		t.Fatalf("expected nonce 20, got %d", nonce)
	}
	if !strings.HasPrefix(m.PuzzleDigest(nonce, 1), "0") {
		t.Fatal("returned nonce does not solve the puzzle")
	}
	for n := uint64(1); n < nonce; n++ {
		if m.Check(n, 1) {
			t.Fatalf("smaller nonce %d also solves the puzzle", n)
		}
	}
}

// TestSolveParallelSmallestNonce verifies that many workers with tiny batches
// still return the smallest satisfying nonce.
func TestSolveParallelSmallestNonce(t *testing.T) {
	expected := map[[2]uint64]uint64{
		{1, 1}: 20,
		{5, 1}: 8,
		{1, 2}: 308,
		{1, 3}: 533,
	}
	for key, want := range expected {
		previous, difficulty := key[0], key[1]
		for _, workers := range []int{1, 3, 8} {
			m := newTestMiner(t, uint32(difficulty), WithWorkers(workers), WithBatchSize(7))
			nonce, err := m.Solve(context.Background(), previous)
			if err != nil {
				t.Fatalf("solve failed: %v", err)
			}
			if nonce != want {
				t.Fatalf("previous %d difficulty %d workers %d: expected %d, got %d", previous, difficulty, workers, want, nonce)
			}
		}
	}
}

func TestSolveDifficultyZero(t *testing.T) {
	m := newTestMiner(t, 0)
	nonce, err := m.Solve(context.Background(), 12345)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if nonce != 1 {
		t.Fatalf("difficulty 0 is solved by the first candidate, got %d", nonce)
	}
}

func TestSolveCancelled(t *testing.T) {
	m := newTestMiner(t, MaxDifficulty, WithWorkers(2))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := m.Solve(ctx, 1)
	if !errors.Is(err, ErrSearchCancelled) {
		t.Fatalf("expected ErrSearchCancelled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the context error to be wrapped, got %v", err)
	}
}

func TestSolveTimedOut(t *testing.T) {
	m := newTestMiner(t, MaxDifficulty, WithWorkers(2))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := m.Solve(ctx, 1)
	if !errors.Is(err, ErrSearchTimedOut) {
		t.Fatalf("expected ErrSearchTimedOut, got %v", err)
	}
}
