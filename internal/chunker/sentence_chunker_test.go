package chunker

import (
	"reflect"
	"testing"
)

func TestChunk_Empty(t *testing.T) {
	c := NewSentenceChunker(2, 0)
	if got := c.Chunk("   \n\t "); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestChunk_Overlap(t *testing.T) {
	c := NewSentenceChunker(2, 1)
	got := c.Chunk("One. Two! Three? Four.")
	want := []string{"One. Two!", "Two! Three?", "Three? Four."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chunk() = %q, want %q", got, want)
	}
}

func TestChunk_NoOverlap(t *testing.T) {
	c := NewSentenceChunker(2, 0)
	got := c.Chunk("One. Two. Three.")
	want := []string{"One. Two.", "Three."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chunk() = %q, want %q", got, want)
	}
}

func TestChunk_TrailingFragment(t *testing.T) {
	c := NewSentenceChunker(5, 0)
	got := c.Chunk("First sentence.\nand a trailing fragment")
	want := []string{"First sentence. and a trailing fragment"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chunk() = %q, want %q", got, want)
	}
}

func TestNewSentenceChunker_ClampsOverlap(t *testing.T) {
	c := NewSentenceChunker(2, 5)
	if c.overlapSentences != 1 {
		t.Errorf("expected overlap clamped to 1, got %d", c.overlapSentences)
	}
	// must terminate
	if got := c.Chunk("A. B. C. D."); len(got) != 3 {
		t.Errorf("expected 3 chunks, got %d: %q", len(got), got)
	}
}
