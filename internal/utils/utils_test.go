package utils

import "testing"

func TestMaskWord(t *testing.T) {
	cases := []struct {
		word string
		want string
	}{
		{"", ""},
		{"cat", "_ _ _"},
		{"ice cream", "_ _ _   _ _ _ _ _"},
		{"t-rex", "_ - _ _ _"},
	}
	for _, c := range cases {
		if got := MaskWord(c.word); got != c.want {
			t.Errorf("MaskWord(%q) = %q, want %q", c.word, got, c.want)
		}
	}
}

func TestWordLength(t *testing.T) {
	if got := WordLength("ice cream"); got != 8 {
		t.Fatalf("WordLength(\"ice cream\") = %d, want 8", got)
	}
	if got := WordLength("gato"); got != 4 {
		t.Fatalf("WordLength(\"gato\") = %d, want 4", got)
	}
}

func TestGenerateIDLength(t *testing.T) {
	id := GenerateID(8)
	if len(id) != 8 {
		t.Fatalf("GenerateID(8) returned %q (len %d)", id, len(id))
	}
}
