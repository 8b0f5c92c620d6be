// Package speech provides text-to-speech playback and single-utterance
// speech capture over pluggable platform engines.
package speech

import "strings"

// MaxChunkLen caps utterance length. Speech engines can fail or cut out on
// very long single utterances, so text is spoken in sentence-bounded chunks.
const MaxChunkLen = 200

// ChunkText splits text into sentence-bounded chunks no longer than maxLen
// characters. Sentences longer than the cap are hard-split at the cap.
func ChunkText(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = MaxChunkLen
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, sentence := range splitSentences(text) {
		runes := []rune(sentence)

		// Hard-split an over-long sentence on its own.
		if len(runes) > maxLen {
			flush()
			for len(runes) > maxLen {
				chunks = append(chunks, string(runes[:maxLen]))
				runes = runes[maxLen:]
			}
			if len(runes) > 0 {
				current.WriteString(string(runes))
			}
			continue
		}

		if current.Len() > 0 && len([]rune(current.String()))+1+len(runes) > maxLen {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()
	return chunks
}

// splitSentences breaks text on sentence punctuation and line breaks,
// trimming whitespace and dropping empty pieces.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	emit := func() {
		s := strings.TrimSpace(current.String())
		current.Reset()
		if s != "" {
			sentences = append(sentences, s)
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			emit()
			continue
		}
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// End of sentence only when followed by whitespace or EOF,
			// so "3.14" stays intact.
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				emit()
			}
		}
	}
	emit()
	return sentences
}
