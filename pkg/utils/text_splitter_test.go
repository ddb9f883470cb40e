package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("hello world", 500, 50)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "hello world" || chunks[0].Start != 0 || chunks[0].End != 11 {
		t.Errorf("unexpected chunk: %+v", chunks[0])
	}
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 120)
	chunks := SplitText(text, 50, 10)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	// consecutive chunks share the overlap region
	if chunks[1].Start != chunks[0].End-10 {
		t.Errorf("chunk 1 starts at %d, want %d", chunks[1].Start, chunks[0].End-10)
	}
	last := chunks[len(chunks)-1]
	if last.End != 120 {
		t.Errorf("last chunk ends at %d, want 120", last.End)
	}
}

func TestSplitTextPositionsMatchContent(t *testing.T) {
	text := "Lorem ipsum dolor sit amet, consectetur adipiscing elit. " + strings.Repeat("x", 200)
	runes := []rune(text)
	for _, c := range SplitText(text, 80, 20) {
		if got := string(runes[c.Start:c.End]); got != c.Text {
			t.Errorf("chunk text does not match offsets [%d:%d]", c.Start, c.End)
		}
	}
}

func TestSplitTextUnicodeOffsets(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 20)
	runes := []rune(text)
	for _, c := range SplitText(text, 40, 8) {
		if got := string(runes[c.Start:c.End]); got != c.Text {
			t.Errorf("unicode chunk mismatch at [%d:%d]", c.Start, c.End)
		}
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"one two  three", 3},
		{"  leading and\ttrailing \n", 3},
	}
	for _, tt := range tests {
		if got := CountWords(tt.in); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
