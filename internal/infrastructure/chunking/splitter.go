package chunking

import "strings"

// Splitter breaks extracted text into segments, adapting its window to the
// shape of the text: line-structured documents (tables, bullet exports) get
// smaller windows so rows stay together, prose gets larger overlapping
// windows.
type Splitter struct {
	ProseSize      int
	StructuredSize int
	Overlap        int
}

func NewSplitter(proseSize, structuredSize, overlap int) *Splitter {
	if proseSize <= 0 {
		proseSize = 1100
	}
	if structuredSize <= 0 {
		structuredSize = 600
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= structuredSize {
		overlap = structuredSize / 4
	}
	return &Splitter{
		ProseSize:      proseSize,
		StructuredSize: structuredSize,
		Overlap:        overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	size := s.ProseSize
	if lineStructured(text) {
		size = s.StructuredSize
	}

	var out []string
	var current strings.Builder
	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			out = append(out, chunk)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len([]rune(para)) > size {
			flush()
			out = append(out, window(para, size, s.Overlap)...)
			continue
		}
		if current.Len() > 0 && current.Len()+len(para)+2 > size {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return out
}

// lineStructured reports whether the text reads as rows rather than prose:
// many short lines, few words per line.
func lineStructured(text string) bool {
	lines := strings.Count(text, "\n") + 1
	words := len(strings.Fields(text))
	if words == 0 {
		return false
	}
	return float64(words)/float64(lines) < 8
}

func window(text string, size, overlap int) []string {
	runes := []rune(text)
	step := size - overlap
	if step <= 0 {
		step = size
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
