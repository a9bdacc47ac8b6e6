package words

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/sketchwars/sketchwars-backend/internal"
)

// Entry is one word in the bank.
type Entry struct {
	Text       string
	Difficulty internal.WordDifficulty
	Category   string
}

// Bank is an in-memory word pool. It backs the static WordProvider and serves
// as the fallback pool when the database word supply fails or filters match
// nothing.
type Bank struct {
	entries []Entry
}

func NewBank(entries []Entry) *Bank {
	if len(entries) == 0 {
		entries = builtin
	}
	return &Bank{entries: entries}
}

// Builtin returns the embedded default bank.
func Builtin() *Bank {
	return NewBank(nil)
}

// LoadCSV builds a bank from a file of "word,difficulty,category" rows. Rows
// with a blank word are skipped.
func LoadCSV(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word bank: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse word bank %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		e := Entry{Text: strings.TrimSpace(rec[0])}
		if len(rec) > 1 {
			e.Difficulty = internal.WordDifficulty(strings.TrimSpace(rec[1]))
		}
		if len(rec) > 2 {
			e.Category = strings.TrimSpace(rec[2])
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("word bank %s contains no words", path)
	}
	return NewBank(entries), nil
}

// Pick returns up to count distinct words matching the difficulty and category
// filters. When the filtered pool is too small the filters are dropped rather
// than returning short, so a round can always be offered a full option set.
func (b *Bank) Pick(count int, difficulty internal.WordDifficulty, categories []string) []string {
	pool := b.filter(difficulty, categories)
	if len(pool) < count {
		pool = b.entries
	}
	picked := make([]string, 0, count)
	seen := make(map[string]bool, count)
	for _, i := range rand.Perm(len(pool)) {
		w := pool[i].Text
		if seen[w] {
			continue
		}
		seen[w] = true
		picked = append(picked, w)
		if len(picked) == count {
			break
		}
	}
	return picked
}

func (b *Bank) Size() int { return len(b.entries) }

// Entries exposes the pool, used to seed the database word table.
func (b *Bank) Entries() []Entry { return append([]Entry(nil), b.entries...) }

func (b *Bank) filter(difficulty internal.WordDifficulty, categories []string) []Entry {
	if difficulty == internal.DifficultyAny && len(categories) == 0 {
		return b.entries
	}
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[strings.ToLower(c)] = true
	}
	var out []Entry
	for _, e := range b.entries {
		if difficulty != internal.DifficultyAny && e.Difficulty != difficulty {
			continue
		}
		if len(wanted) > 0 && !wanted[strings.ToLower(e.Category)] {
			continue
		}
		out = append(out, e)
	}
	return out
}

var builtin = []Entry{
	{"cat", internal.DifficultyEasy, "animals"},
	{"dog", internal.DifficultyEasy, "animals"},
	{"fish", internal.DifficultyEasy, "animals"},
	{"duck", internal.DifficultyEasy, "animals"},
	{"horse", internal.DifficultyEasy, "animals"},
	{"sheep", internal.DifficultyEasy, "animals"},
	{"snake", internal.DifficultyEasy, "animals"},
	{"spider", internal.DifficultyMedium, "animals"},
	{"penguin", internal.DifficultyMedium, "animals"},
	{"octopus", internal.DifficultyMedium, "animals"},
	{"kangaroo", internal.DifficultyHard, "animals"},
	{"chameleon", internal.DifficultyHard, "animals"},
	{"sun", internal.DifficultyEasy, "nature"},
	{"moon", internal.DifficultyEasy, "nature"},
	{"star", internal.DifficultyEasy, "nature"},
	{"tree", internal.DifficultyEasy, "nature"},
	{"cloud", internal.DifficultyEasy, "nature"},
	{"river", internal.DifficultyMedium, "nature"},
	{"volcano", internal.DifficultyMedium, "nature"},
	{"rainbow", internal.DifficultyMedium, "nature"},
	{"waterfall", internal.DifficultyHard, "nature"},
	{"lightning", internal.DifficultyHard, "nature"},
	{"house", internal.DifficultyEasy, "objects"},
	{"chair", internal.DifficultyEasy, "objects"},
	{"clock", internal.DifficultyEasy, "objects"},
	{"ladder", internal.DifficultyMedium, "objects"},
	{"guitar", internal.DifficultyMedium, "objects"},
	{"umbrella", internal.DifficultyMedium, "objects"},
	{"telescope", internal.DifficultyHard, "objects"},
	{"typewriter", internal.DifficultyHard, "objects"},
	{"pizza", internal.DifficultyEasy, "food"},
	{"apple", internal.DifficultyEasy, "food"},
	{"bread", internal.DifficultyEasy, "food"},
	{"ice cream", internal.DifficultyMedium, "food"},
	{"hamburger", internal.DifficultyMedium, "food"},
	{"spaghetti", internal.DifficultyHard, "food"},
	{"car", internal.DifficultyEasy, "transport"},
	{"boat", internal.DifficultyEasy, "transport"},
	{"train", internal.DifficultyEasy, "transport"},
	{"bicycle", internal.DifficultyMedium, "transport"},
	{"airplane", internal.DifficultyMedium, "transport"},
	{"submarine", internal.DifficultyHard, "transport"},
	{"helicopter", internal.DifficultyHard, "transport"},
	{"robot", internal.DifficultyMedium, "fantasy"},
	{"dragon", internal.DifficultyMedium, "fantasy"},
	{"wizard", internal.DifficultyMedium, "fantasy"},
	{"mermaid", internal.DifficultyHard, "fantasy"},
	{"unicorn", internal.DifficultyMedium, "fantasy"},
	{"ghost", internal.DifficultyEasy, "fantasy"},
	{"castle", internal.DifficultyMedium, "fantasy"},
}
