package spacetraveling

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eringen/spacetraveling/richtext"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("palavra ", n))
}

func section(heading string, paragraphs ...string) ContentSection {
	s := ContentSection{Heading: heading}
	for _, p := range paragraphs {
		s.Body = append(s.Body, richtext.Block{Type: richtext.Paragraph, Text: p})
	}
	return s
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name     string
		sections []ContentSection
		want     int
	}{
		{"no sections", nil, 0},
		{"headings are not counted", []ContentSection{section("a very long heading", "one two")}, 2},
		{"paragraphs are joined", []ContentSection{section("h", "one two", "three")}, 3},
		{"sections add up", []ContentSection{section("h", words(150)), section("h", words(100))}, 250},
		{"inline markup is stripped", []ContentSection{section("h", "<strong>bold</strong> and <em>em</em>")}, 3},
		{"empty body counts as one", []ContentSection{section("h")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.sections))
		})
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		name  string
		words int
		wpm   int
		want  int
	}{
		{"exactly one minute", 200, 200, 1},
		{"rounds up", 201, 200, 2},
		{"short post", 5, 200, 1},
		{"long post", 1000, 200, 5},
		{"custom speed", 300, 100, 3},
		{"zero speed uses default", 400, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := []ContentSection{section("h", words(tt.words))}
			assert.Equal(t, tt.want, ReadingTime(sections, tt.wpm))
		})
	}
}

func TestReadingTimeWithoutSections(t *testing.T) {
	assert.Equal(t, 0, ReadingTime(nil, DefaultWordsPerMinute))
}
