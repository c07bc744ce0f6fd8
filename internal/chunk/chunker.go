// Package chunk splits document text into overlapping fixed-size windows
// suitable for embedding.
package chunk

import (
	"fmt"
	"iter"
)

// Default window parameters, matching the deployment defaults.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Chunk is one window of document text. Start and End are character (rune)
// offsets into the source text; Seq is the window's position in the
// sequence.
type Chunk struct {
	Seq   int
	Text  string
	Start int
	End   int
}

// Chunker produces sliding windows of at most size characters, with overlap
// characters repeated between consecutive windows. Sizes count Unicode code
// points, not bytes, so a window never splits a multi-byte character.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a Chunker. Overlap must be non-negative and strictly
// smaller than size.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d with size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunks returns a lazy, restartable sequence of windows covering text with
// no gaps. The window starts at offset 0 and advances by size-overlap; the
// final window is truncated to the remaining text. Empty text yields no
// windows; text shorter than the window size yields exactly one.
func (c *Chunker) Chunks(text string) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		runes := []rune(text)
		if len(runes) == 0 {
			return
		}

		step := c.size - c.overlap
		seq := 0
		for start := 0; ; start += step {
			end := start + c.size
			if end > len(runes) {
				end = len(runes)
			}
			if !yield(Chunk{Seq: seq, Text: string(runes[start:end]), Start: start, End: end}) {
				return
			}
			seq++
			if end == len(runes) {
				return
			}
		}
	}
}

// Split collects the window sequence into a slice.
func (c *Chunker) Split(text string) []Chunk {
	var chunks []Chunk
	for chunk := range c.Chunks(text) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// Count reports how many windows Split would produce for a text of the
// given length in characters without materializing them.
func (c *Chunker) Count(textLen int) int {
	if textLen == 0 {
		return 0
	}
	if textLen <= c.size {
		return 1
	}
	step := c.size - c.overlap
	return (textLen - c.overlap + step - 1) / step
}
