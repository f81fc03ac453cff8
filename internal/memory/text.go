package memory

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,127}$`)

// ValidateName checks that name is a lowercase slug usable as a memory name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// Chunk splits text into passages of at most size runes on word
// boundaries. Consecutive chunks share up to overlap runes of trailing
// words. Paragraph breaks always end a chunk. A single word longer than
// size becomes its own chunk.
func Chunk(text string, size, overlap int) []string {
	if size < 1 {
		return nil
	}
	if overlap >= size {
		overlap = size / 2
	}

	var chunks []string
	for _, paragraph := range paragraphs(text) {
		chunks = append(chunks, chunkWords(strings.Fields(paragraph), size, overlap)...)
	}
	return chunks
}

func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func chunkWords(words []string, size, overlap int) []string {
	var chunks []string

	start := 0
	for start < len(words) {
		end, length := start, 0
		for end < len(words) {
			n := utf8.RuneCountInString(words[end])
			if end > start {
				n++
			}
			if length+n > size && end > start {
				break
			}
			length += n
			end++
		}

		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}

		next, carried := end, 0
		for next > start+1 {
			n := utf8.RuneCountInString(words[next-1]) + 1
			if carried+n > overlap {
				break
			}
			carried += n
			next--
		}
		start = next
	}

	return chunks
}

// FormatVector renders v in the pgvector text input format.
func FormatVector(v []float32) string {
	var sb strings.Builder
	sb.Grow(len(v) * 10)
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
