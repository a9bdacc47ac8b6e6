package game

import "testing"

func TestGuessScoreFormula(t *testing.T) {
	if got := GuessScore(90, 90); got != 100 {
		t.Fatalf("full time remaining: got %d, want 100", got)
	}
	if got := GuessScore(30, 90); got != 33 {
		t.Fatalf("30/90 remaining: got %d, want 33", got)
	}
	if got := GuessScore(0, 90); got != 10 {
		t.Fatalf("zero remaining: got %d, want floor of 10", got)
	}
	if got := GuessScore(5, 90); got != 10 {
		t.Fatalf("tiny remainder: got %d, want floor of 10", got)
	}
}

func TestGuessScoreMonotonic(t *testing.T) {
	const phaseMax = 90
	prev := -1
	for remaining := 0; remaining <= phaseMax; remaining++ {
		s := GuessScore(remaining, phaseMax)
		if s < prev {
			t.Fatalf("score decreased as remaining time grew: remaining=%d score=%d prev=%d",
				remaining, s, prev)
		}
		prev = s
	}
}

func TestRankingDescendingStableTies(t *testing.T) {
	l := NewScoreLedger([]string{"a", "b", "c", "d"})
	l.Credit("b", 50)
	l.Credit("c", 50)
	l.Credit("d", 80)

	ranked := l.Ranking()
	wantOrder := []string{"d", "b", "c", "a"}
	for i, want := range wantOrder {
		if ranked[i].PlayerID != want {
			t.Fatalf("rank %d: got %s, want %s (full: %+v)", i+1, ranked[i].PlayerID, want, ranked)
		}
		if ranked[i].Rank != i+1 {
			t.Fatalf("rank field mismatch at %d: %+v", i, ranked[i])
		}
	}
}

func TestLedgerSnapshotIsCopy(t *testing.T) {
	l := NewScoreLedger([]string{"a"})
	snap := l.Snapshot()
	snap["a"] = 999
	if l.Get("a") != 0 {
		t.Fatal("mutating a snapshot must not affect the ledger")
	}
}
