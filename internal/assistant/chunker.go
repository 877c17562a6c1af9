package assistant

import (
	"strings"
	"unicode/utf8"
)

// Chunk is a bounded window of document text. Index increases
// monotonically from 0 in document order.
type Chunk struct {
	Text  string
	Index int
}

// Chunker splits long documents into overlapping text windows sized for
// the embedding model's effective context.
type Chunker interface {
	Chunk(text string, size, overlap int) []Chunk
}

// WindowChunker cuts fixed-size windows, preferring paragraph and sentence
// boundaries near the size limit before falling back to a hard cut.
type WindowChunker struct{}

// boundarySeps are tried in order; a cut is only snapped to a separator
// found in the trailing fifth of the window so chunks stay near full size.
var boundarySeps = []string{"\n\n", "\n", ". "}

// Chunk splits text into windows of at most size bytes, each window
// starting with the trailing overlap bytes of the previous one. Cuts never
// split a rune, so multi-byte text yields chunks slightly under size.
// Empty text yields no chunks; text shorter than size yields exactly one.
func (WindowChunker) Chunk(text string, size, overlap int) []Chunk {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= size {
		return []Chunk{{Text: text, Index: 0}}
	}

	chunks := make([]Chunk, 0, (len(text)-overlap)/(size-overlap)+1)
	start := 0
	index := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			end = snapToBoundary(text, start, end)
		}

		chunks = append(chunks, Chunk{Text: text[start:end], Index: index})
		index++

		if end == len(text) {
			break
		}
		next := end - overlap
		for next > 0 && !utf8.RuneStart(text[next]) {
			next--
		}
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// snapToBoundary moves the cut point back to the nearest paragraph,
// newline, or sentence boundary within the final fifth of the window.
// When no boundary is close enough it hard-cuts at a rune boundary.
func snapToBoundary(text string, start, hardEnd int) int {
	window := text[start:hardEnd]
	minCut := len(window) * 4 / 5
	for _, sep := range boundarySeps {
		if idx := strings.LastIndex(window, sep); idx >= minCut {
			return start + idx + len(sep)
		}
	}

	end := hardEnd
	for end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	if end == start {
		end = hardEnd
	}
	return end
}
