package spacetraveling

import (
	"strings"

	"github.com/eringen/spacetraveling/richtext"
)

// DefaultWordsPerMinute is the reading speed used for reading time.
const DefaultWordsPerMinute = 200

// CountWords counts the words of every section body. Words are the
// space-separated segments of the body's plain text; headings do not count.
func CountWords(sections []ContentSection) int {
	total := 0
	for _, s := range sections {
		total += len(strings.Split(richtext.AsText(s.Body, " "), " "))
	}
	return total
}

// ReadingTime returns the minutes needed to read the sections, rounded up.
func ReadingTime(sections []ContentSection, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	words := CountWords(sections)
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
