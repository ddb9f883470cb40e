package utils

// TextChunk is a slice of the source text together with its rune offsets,
// so chunks can be mapped back to their position in the original document.
type TextChunk struct {
	Text  string
	Start int
	End   int
}

// SplitText splits a long string into chunks of approximately 'chunkSize' runes.
// It includes an 'overlap' to preserve context at boundaries.
// This is a simple character-based splitter. Ideally, use a tokenizer-aware splitter.
func SplitText(text string, chunkSize int, overlap int) []TextChunk {
	runes := []rune(text)
	totalLen := len(runes)

	if totalLen <= chunkSize {
		return []TextChunk{{Text: text, Start: 0, End: totalLen}}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []TextChunk
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, TextChunk{
			Text:  string(runes[i:end]),
			Start: i,
			End:   end,
		})

		if end == totalLen {
			break
		}
	}

	return chunks
}

// CountWords returns the number of whitespace-separated tokens in text.
func CountWords(text string) int {
	inWord := false
	count := 0
	for _, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r':
			inWord = false
		default:
			if !inWord {
				count++
			}
			inWord = true
		}
	}
	return count
}
