package speech

import (
	"strings"
	"testing"
)

func TestChunkText_NeverExceedsCap(t *testing.T) {
	text := strings.Repeat("This is a fairly ordinary sentence of middling length. ", 40)

	for _, chunk := range ChunkText(text, 200) {
		if n := len([]rune(chunk)); n > 200 {
			t.Errorf("Chunk of %d runes exceeds cap: %q", n, chunk)
		}
	}
}

func TestChunkText_HardSplitsLongSentences(t *testing.T) {
	long := strings.Repeat("a", 450) // one "sentence", no punctuation

	chunks := ChunkText(long, 200)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks for 450 runes at cap 200, got %d", len(chunks))
	}
	if len(chunks[0]) != 200 || len(chunks[1]) != 200 || len(chunks[2]) != 50 {
		t.Errorf("Unexpected split sizes: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestChunkText_PreservesSentenceContent(t *testing.T) {
	text := "First sentence here. Second one follows! Does a question survive? Yes.\nA new line too."

	joined := strings.Join(ChunkText(text, 40), " ")

	// Same words in the same order once whitespace is normalized.
	want := strings.Join(strings.Fields(text), " ")
	got := strings.Join(strings.Fields(joined), " ")
	if got != want {
		t.Errorf("Content changed.\nwant: %q\ngot:  %q", want, got)
	}
}

func TestChunkText_PacksShortSentences(t *testing.T) {
	chunks := ChunkText("One. Two. Three.", 200)
	if len(chunks) != 1 {
		t.Errorf("Short sentences should pack into one chunk, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "One. Two. Three." {
		t.Errorf("Packed chunk = %q", chunks[0])
	}
}

func TestChunkText_DecimalNumbersStayIntact(t *testing.T) {
	chunks := ChunkText("The value is 3.14 exactly.", 200)
	if len(chunks) != 1 || chunks[0] != "The value is 3.14 exactly." {
		t.Errorf("Decimal point must not split a sentence, got %v", chunks)
	}
}

func TestChunkText_Empty(t *testing.T) {
	if chunks := ChunkText("", 200); len(chunks) != 0 {
		t.Errorf("Empty text should produce no chunks, got %v", chunks)
	}
	if chunks := ChunkText("   \n\n  ", 200); len(chunks) != 0 {
		t.Errorf("Whitespace-only text should produce no chunks, got %v", chunks)
	}
}
