package generation

import (
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func hitFor(file string, page, seq int, text string) models.SearchHit {
	return models.SearchHit{Chunk: models.Chunk{Text: text, SourceFilename: file, PageNumber: page, ChunkSequence: seq}}
}

func TestBuildPrompt(t *testing.T) {
	rc := models.RetrievalContext{
		hitFor("a.pdf", 1, 0, "  Alpha text. "),
		hitFor("b.pdf", 2, 3, "Beta text."),
	}
	p := BuildPrompt("How long?", rc)
	if !strings.Contains(p, "CONTEXT:\n[Source 1]\nAlpha text.\n\n[Source 2]\nBeta text.\n\n") {
		t.Errorf("sources not numbered from 1:\n%s", p)
	}
	if !strings.HasSuffix(p, "QUESTION:\nHow long?\n\nANSWER:") {
		t.Errorf("prompt should end with the question and answer marker:\n%s", p)
	}
	if !strings.Contains(p, "reply exactly with: '"+RefusalSentinel+"'") {
		t.Error("prompt should name the refusal sentinel")
	}
}

func TestExtractAnswer(t *testing.T) {
	tests := []struct {
		name, raw, want string
	}{
		{"no marker", "  plain answer  ", "plain answer"},
		{"after marker", "prompt ANSWER: the reply", "the reply"},
		{"last marker wins", "ANSWER: first ANSWER: second", "second"},
		{"source tags", "Thirty days [Source 1] and [Source 12].", "Thirty days and ."},
		{"trailing stop marker", "ANSWER: Ten days. [/INST]", "Ten days."},
		{"whitespace", "ANSWER:\n  a \n\n b\t", "a b"},
		{"only whitespace", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractAnswer(tt.raw, DefaultStopMarker); got != tt.want {
				t.Errorf("ExtractAnswer(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsRefusal(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{RefusalSentinel, true},
		{"answer NOT found in the document. Sorry.", true},
		{"'Answer not found in the document.'", true},
		{"The answer was found: 30 days.", false},
		{"Sorry, Answer not found in the document.", false},
	}
	for _, tt := range tests {
		if got := IsRefusal(tt.in); got != tt.want {
			t.Errorf("IsRefusal(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCitations_StableDedup(t *testing.T) {
	rc := models.RetrievalContext{
		hitFor("policy.pdf", 2, 1, "same text"),
		hitFor("guide.docx", 1, 0, "other"),
		hitFor("policy.pdf", 2, 1, "same text"),
	}
	got := Citations(rc)
	want := []string{"policy | page 2 | chunk #1", "guide | page 1 | chunk #0"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("citation %d = %q, want %q", i, got[i], want[i])
		}
	}
	if empty := Citations(nil); empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil citations, got %#v", empty)
	}
}
