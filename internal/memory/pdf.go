package memory

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var pageSuffix = regexp.MustCompile(`(\d+)\D*$`)

// ExtractPDF returns the text shown by each page's content stream, one
// page per paragraph, along with the page count. Glyphs are decoded as
// single-byte text, which covers documents using standard encodings.
func ExtractPDF(data []byte) (string, int, error) {
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	dir, err := os.MkdirTemp("", "recon-pdf-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := api.ExtractContent(bytes.NewReader(data), dir, "content", nil, nil); err != nil {
		return "", 0, fmt.Errorf("%w: extract content: %v", ErrInvalidFile, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("read extracted content: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		return pageNumber(a) - pageNumber(b)
	})

	var texts []string
	for _, name := range names {
		stream, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", 0, fmt.Errorf("read %s: %w", name, err)
		}
		if text := ContentText(stream); text != "" {
			texts = append(texts, text)
		}
	}

	return strings.Join(texts, "\n\n"), pages, nil
}

func pageNumber(name string) int {
	m := pageSuffix.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// ContentText extracts shown text from a PDF page content stream.
// Text positioning operators that move to a new line become newlines;
// large negative kerning inside TJ arrays becomes a space.
func ContentText(stream []byte) string {
	var out strings.Builder
	var operands []string
	var kerned []string

	newline := func() {
		s := out.String()
		if s != "" && !strings.HasSuffix(s, "\n") {
			out.WriteByte('\n')
		}
	}

	for i := 0; i < len(stream); {
		c := stream[i]
		switch {
		case c == '%':
			for i < len(stream) && stream[i] != '\n' && stream[i] != '\r' {
				i++
			}
		case c == '(':
			s, next := literalString(stream, i)
			operands = append(operands, s)
			i = next
		case c == '<' && i+1 < len(stream) && stream[i+1] == '<':
			i += 2
		case c == '<':
			s, next := hexString(stream, i)
			operands = append(operands, s)
			i = next
		case c == '[':
			kerned = kerned[:0]
			i++
			for i < len(stream) && stream[i] != ']' {
				switch {
				case stream[i] == '(':
					s, next := literalString(stream, i)
					kerned = append(kerned, s)
					i = next
				case stream[i] == '<':
					s, next := hexString(stream, i)
					kerned = append(kerned, s)
					i = next
				case stream[i] == '-' || stream[i] == '.' || (stream[i] >= '0' && stream[i] <= '9'):
					start := i
					for i < len(stream) && (stream[i] == '-' || stream[i] == '.' || (stream[i] >= '0' && stream[i] <= '9')) {
						i++
					}
					if n, err := strconv.ParseFloat(string(stream[start:i]), 64); err == nil && n < -200 {
						kerned = append(kerned, " ")
					}
				default:
					i++
				}
			}
			i++
		case isRegular(c):
			start := i
			for i < len(stream) && isRegular(stream[i]) {
				i++
			}
			switch string(stream[start:i]) {
			case "Tj":
				out.WriteString(strings.Join(operands, ""))
			case "'", "\"":
				newline()
				out.WriteString(strings.Join(operands, ""))
			case "TJ":
				out.WriteString(strings.Join(kerned, ""))
				kerned = kerned[:0]
			case "T*", "Td", "TD", "ET":
				newline()
			}
			operands = operands[:0]
		default:
			i++
		}
	}

	return strings.TrimSpace(out.String())
}

func isRegular(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return !(c >= '0' && c <= '9') && c != '-' && c != '.' && c != '+'
}

func literalString(stream []byte, i int) (string, int) {
	var sb strings.Builder
	depth := 0
	i++
	for i < len(stream) {
		c := stream[i]
		switch {
		case c == '\\' && i+1 < len(stream):
			i++
			switch e := stream[i]; e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\n', '\r':
			default:
				if e >= '0' && e <= '7' {
					end := i
					for end < len(stream) && end < i+3 && stream[end] >= '0' && stream[end] <= '7' {
						end++
					}
					n, _ := strconv.ParseUint(string(stream[i:end]), 8, 8)
					sb.WriteRune(rune(n))
					i = end - 1
				} else {
					sb.WriteRune(rune(e))
				}
			}
		case c == '(':
			depth++
			sb.WriteByte(c)
		case c == ')':
			if depth == 0 {
				return sb.String(), i + 1
			}
			depth--
			sb.WriteByte(c)
		default:
			sb.WriteRune(rune(c))
		}
		i++
	}
	return sb.String(), i
}

func hexString(stream []byte, i int) (string, int) {
	var digits []byte
	i++
	for i < len(stream) && stream[i] != '>' {
		if c := stream[i]; (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			digits = append(digits, c)
		}
		i++
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	var sb strings.Builder
	for j := 0; j < len(digits); j += 2 {
		n, _ := strconv.ParseUint(string(digits[j:j+2]), 16, 8)
		sb.WriteRune(rune(n))
	}
	return sb.String(), i + 1
}
