package embedding

import (
	"testing"
)

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, types := tok.Tokenize("hello world", 10)
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("lengths: %d %d %d", len(ids), len(attn), len(types))
	}
	if ids[0] != clsTokenID {
		t.Errorf("expected CLS %d, got %d", clsTokenID, ids[0])
	}
	if ids[3] != sepTokenID {
		t.Errorf("expected SEP at 3, got %d", ids[3])
	}
	for i, a := range attn {
		want := int64(0)
		if i <= 3 {
			want = 1
		}
		if a != want {
			t.Errorf("attention[%d]=%d, want %d", i, a, want)
		}
	}
}

func TestSimpleTokenizer_Truncates(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, _, _ := tok.Tokenize("a b c d e f g h", 4)
	if len(ids) != 4 {
		t.Fatalf("len(ids)=%d", len(ids))
	}
	for _, id := range ids[1:] {
		if id == 0 {
			t.Errorf("truncated input should fill every slot: %v", ids)
		}
	}
	ids, _, _ = tok.Tokenize("x", 0)
	if len(ids) != 256 {
		t.Errorf("default maxTokens: len=%d", len(ids))
	}
}

func TestSplitWords(t *testing.T) {
	words := SplitWords("  a  b \n c  ")
	if len(words) != 3 {
		t.Errorf("expected 3 words, got %v", words)
	}
	if SplitWords("") != nil {
		t.Error("empty string should return nil")
	}
}

func TestHashString(t *testing.T) {
	if HashString("abc") != HashString("abc") {
		t.Error("hash should be deterministic")
	}
	if HashString("abc") == HashString("abd") {
		t.Error("different strings should usually hash differently")
	}
	long := ""
	for i := 0; i < 1000; i++ {
		long += "z"
	}
	if HashString(long) < 0 {
		t.Error("hash should be non-negative")
	}
}
