package token

import (
	"testing"
)

func TestTrieAndHashAgree(t *testing.T) {
	for _, word := range Keywords() {
		trie := LookupKeyword(word)
		hashed := LookupKeywordHash(word)
		if trie != hashed {
			t.Errorf("%q: trie=%s hash=%s", word, trie, hashed)
		}
		if !trie.IsKeyword() {
			t.Errorf("%q not recognised as a keyword", word)
		}
	}
	for _, word := range []string{"", "x", "in", "integers", "Boolean", "yields"} {
		if got := LookupKeyword(word); got != WORD {
			t.Errorf("trie lookup of %q: expected WORD, got %s", word, got)
		}
	}
}

func TestHashIsDJB2(t *testing.T) {
	if Hash("") != 5381 {
		t.Fatalf("seed mismatch: %d", Hash(""))
	}
	if Hash("a") != 5381*33+'a' {
		t.Fatalf("unexpected hash for a: %d", Hash("a"))
	}
}

func TestPrecedence(t *testing.T) {
	if Precedence(STAR) <= Precedence(ADDITION) {
		t.Errorf("* must bind tighter than +")
	}
	if Precedence(BITWISE_XOR) != 9 || Precedence(EXPONENTIAL) != 9 {
		t.Errorf("^ and ** must have precedence 9")
	}
	if Precedence(LPAREN) != 0 {
		t.Errorf("parens must have precedence 0")
	}
	if Precedence(EQUAL) != -1 {
		t.Errorf("= must not bind")
	}
}

func TestStreamBounded(t *testing.T) {
	s := NewStream(2)
	if err := s.Push(Token{Kind: NUMBER, Literal: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Push(Token{Kind: EOE}); err != nil {
		t.Fatal(err)
	}
	if err := s.Push(Token{Kind: EOF}); err != ErrStreamFull {
		t.Fatalf("expected ErrStreamFull, got %v", err)
	}
	tok, ok := s.Next()
	if !ok || tok.Literal != "1" {
		t.Fatalf("expected first token back, got %v", tok)
	}
	if err := s.Push(Token{Kind: EOF}); err != nil {
		t.Fatalf("push after pop failed: %v", err)
	}
	if got := s.Kinds(); len(got) != 2 || got[0] != EOE || got[1] != EOF {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestStreamGrowable(t *testing.T) {
	s := NewStream(0)
	for i := 0; i < 10000; i++ {
		if err := s.Push(Token{Kind: SPACE}); err != nil {
			t.Fatalf("growable push failed at %d: %v", i, err)
		}
	}
	if s.Len() != 10000 || s.Cap() != 0 {
		t.Fatalf("unexpected len=%d cap=%d", s.Len(), s.Cap())
	}
	if _, ok := NewStream(0).Next(); ok {
		t.Fatalf("empty stream returned a token")
	}
}
