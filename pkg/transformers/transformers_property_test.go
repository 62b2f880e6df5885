// SPDX-License-Identifier: Apache-2.0

package transformers

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// Property-based tests for the transform functions. Inputs mix letters,
// digits, chunk delimiters and multi byte runes so that every splitting path
// is exercised.

var charset = []rune("abcXYZ0123456789 .@-_\t\né٣")

func genString(t *rapid.T, label string) string {
	return string(rapid.SliceOfN(rapid.SampledFrom(charset), 0, 40).Draw(t, label))
}

func genAffineParams(t *rapid.T) AffineParams {
	return AffineParams{
		A: rapid.IntRange(-50, 50).Draw(t, "a"),
		B: rapid.IntRange(-50, 50).Draw(t, "b"),
		N: rapid.IntRange(1, 1000).Draw(t, "n"),
	}
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if isDigit(r) {
			n++
		}
	}
	return n
}

func TestTransforms_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genString(t, "s")
		p := genAffineParams(t)

		if HashString(s) != HashString(s) {
			t.Fatalf("hash is not deterministic for %q", s)
		}
		if ChunkedHashString(s) != ChunkedHashString(s) {
			t.Fatalf("chunked hash is not deterministic for %q", s)
		}
		if AffineTransform(s, p) != AffineTransform(s, p) {
			t.Fatalf("affine transform is not deterministic for %q", s)
		}
		if AlphanumericHybridTransform(s, p) != AlphanumericHybridTransform(s, p) {
			t.Fatalf("hybrid transform is not deterministic for %q", s)
		}
		if SegmentedTransform(s, p) != SegmentedTransform(s, p) {
			t.Fatalf("segmented transform is not deterministic for %q", s)
		}
	})
}

func TestAffineTransform_ExpandsEveryDigit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genString(t, "s")
		p := genAffineParams(t)

		got := AffineTransform(s, p)
		// n <= 1000 means every substituted digit renders as exactly three
		// characters.
		if want := len(s) + 2*countDigits(s); len(got) != want {
			t.Fatalf("AffineTransform(%q) = %q, length %d, want %d", s, got, len(got), want)
		}
		if countDigits(s) == 0 && got != s {
			t.Fatalf("AffineTransform(%q) = %q, want the input unchanged", s, got)
		}
	})
}

func TestChunkedHashString_TokenShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genString(t, "s")

		tokens := strings.Split(ChunkedHashString(s), " ")
		wantTokens := max(len(splitOnDelimiters(s)), 1)
		if len(tokens) != wantTokens {
			t.Fatalf("ChunkedHashString(%q) produced %d tokens, want %d", s, len(tokens), wantTokens)
		}
		for _, token := range tokens {
			if len(token) != 64 {
				t.Fatalf("ChunkedHashString(%q) produced token %q, want 64 hex characters", s, token)
			}
		}
	})
}

func TestSplitDigitRuns_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genString(t, "s")

		runs := splitDigitRuns(s)
		var b strings.Builder
		for i, r := range runs {
			if r.value == "" {
				t.Fatalf("splitDigitRuns(%q) produced an empty run", s)
			}
			if i > 0 && runs[i-1].numeric == r.numeric {
				t.Fatalf("splitDigitRuns(%q) produced adjacent runs of the same kind", s)
			}
			b.WriteString(r.value)
		}
		if b.String() != s {
			t.Fatalf("splitDigitRuns(%q) runs concatenate to %q", s, b.String())
		}
	})
}

func TestSegmentedTransform_OrderIndependentSplit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		letters := rapid.StringMatching(`[A-Za-z]{0,10}`).Draw(t, "letters")
		digits := rapid.StringMatching(`[0-9]{0,10}`).Draw(t, "digits")
		p := genAffineParams(t)

		lettersFirst := SegmentedTransform(letters+digits, p)
		digitsFirst := SegmentedTransform(digits+letters, p)
		if lettersFirst != digitsFirst {
			t.Fatalf("SegmentedTransform depends on the letter/digit order: %q != %q", lettersFirst, digitsFirst)
		}
		if want := HashString(letters) + " " + AffineTransform(digits, p); lettersFirst != want {
			t.Fatalf("SegmentedTransform(%q) = %q, want %q", letters+digits, lettersFirst, want)
		}
	})
}
