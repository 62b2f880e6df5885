// SPDX-License-Identifier: Apache-2.0

package transformers

import (
	"strings"
	"unicode"
)

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isChunkDelimiter(r rune) bool {
	return r == '@' || r == '.' || unicode.IsSpace(r)
}

// splitOnDelimiters returns the non empty chunks of s separated by runs of
// chunk delimiters. Consecutive, leading and trailing delimiters never produce
// empty chunks.
func splitOnDelimiters(s string) []string {
	chunks := []string{}
	start := -1
	for i, r := range s {
		switch {
		case isChunkDelimiter(r):
			if start >= 0 {
				chunks = append(chunks, s[start:i])
				start = -1
			}
		case start < 0:
			start = i
		}
	}
	if start >= 0 {
		chunks = append(chunks, s[start:])
	}
	return chunks
}

type run struct {
	value   string
	numeric bool
}

// splitDigitRuns splits s into maximal runs of digits and non digits,
// preserving their order. A new run starts at every digit/non digit boundary.
func splitDigitRuns(s string) []run {
	runs := []run{}
	start, numeric := 0, false
	for i, r := range s {
		digit := isDigit(r)
		if i == 0 {
			numeric = digit
			continue
		}
		if digit != numeric {
			runs = append(runs, run{value: s[start:i], numeric: numeric})
			start, numeric = i, digit
		}
	}
	if start < len(s) {
		runs = append(runs, run{value: s[start:], numeric: numeric})
	}
	return runs
}

// keepRunes returns the subsequence of s made of the runes accepted by keep,
// in their original order.
func keepRunes(s string, keep func(rune) bool) string {
	var b strings.Builder
	for _, r := range s {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
