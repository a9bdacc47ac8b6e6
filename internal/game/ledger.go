package game

import (
	"slices"

	"github.com/sketchwars/sketchwars-backend/internal"
)

// ScoreLedger holds per-player scores for one session. Only the session actor
// mutates it; reads feed live score broadcasts and the final ranking.
type ScoreLedger struct {
	scores map[string]int
	order  []string
}

// NewScoreLedger initializes every given player at zero. Registration order is
// the tie-break order for the final ranking, so callers pass players sorted by
// id.
func NewScoreLedger(playerIDs []string) *ScoreLedger {
	l := &ScoreLedger{scores: make(map[string]int, len(playerIDs))}
	for _, id := range playerIDs {
		l.register(id)
	}
	return l
}

func (l *ScoreLedger) register(playerID string) {
	if _, ok := l.scores[playerID]; ok {
		return
	}
	l.scores[playerID] = 0
	l.order = append(l.order, playerID)
}

func (l *ScoreLedger) Credit(playerID string, points int) {
	l.register(playerID)
	l.scores[playerID] += points
}

func (l *ScoreLedger) Get(playerID string) int { return l.scores[playerID] }

// Snapshot returns a copy safe to hand to broadcasts and persistence.
func (l *ScoreLedger) Snapshot() map[string]int {
	out := make(map[string]int, len(l.scores))
	for id, s := range l.scores {
		out[id] = s
	}
	return out
}

// Ranking sorts descending by score; ties keep registration order.
func (l *ScoreLedger) Ranking() []internal.RankedPlayer {
	ranked := make([]internal.RankedPlayer, 0, len(l.order))
	for _, id := range l.order {
		ranked = append(ranked, internal.RankedPlayer{PlayerID: id, Score: l.scores[id]})
	}
	slices.SortStableFunc(ranked, func(a, b internal.RankedPlayer) int {
		return b.Score - a.Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// GuessScore is the points for a correct guess with remaining seconds on a
// phase of phaseMax seconds: max(floor(remaining/phaseMax*100), 10).
func GuessScore(remaining, phaseMax int) int {
	if phaseMax <= 0 {
		return internal.MinGuessScore
	}
	if remaining > phaseMax {
		remaining = phaseMax
	}
	if remaining < 0 {
		remaining = 0
	}
	score := remaining * 100 / phaseMax
	if score < internal.MinGuessScore {
		return internal.MinGuessScore
	}
	return score
}
