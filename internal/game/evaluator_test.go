package game

import "testing"

func TestMatchGuess(t *testing.T) {
	cases := []struct {
		guess, target string
		want          bool
	}{
		{"Perro", " perro ", true},
		{"perro", "perros", false},
		{"  GATO  ", "gato", true},
		{"arbol", "árbol", true},
		{"ÁRBOL", "arbol", true},
		{"pingüino", "pinguino", true},
		{"cat", "", false},
		{"", "cat", false},
		{"ice cream", "icecream", false},
	}
	for _, c := range cases {
		if got := MatchGuess(c.guess, c.target); got != c.want {
			t.Errorf("MatchGuess(%q, %q) = %v, want %v", c.guess, c.target, got, c.want)
		}
	}
}

func TestNormalizeGuess(t *testing.T) {
	if got := NormalizeGuess("  Crème Brûlée "); got != "creme brulee" {
		t.Fatalf("NormalizeGuess = %q", got)
	}
}
