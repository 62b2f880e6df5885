// SPDX-License-Identifier: Apache-2.0

package transformers

import (
	"context"
	"fmt"
	"strings"
)

// AlphanumericHybridTransform splits s into runs of digits and non digits.
// Digit runs go through the affine substitution, the rest is hashed. Every
// transformed run is separated by a single space, so the original layout can
// not be recovered from the output.
//
// Like AffineTransform, it panics when p does not satisfy Validate.
func AlphanumericHybridTransform(s string, p AffineParams) string {
	mustValidate(p)
	runs := splitDigitRuns(s)
	tokens := make([]string, 0, len(runs))
	for _, r := range runs {
		if r.numeric {
			tokens = append(tokens, AffineTransform(r.value, p))
			continue
		}
		tokens = append(tokens, HashString(r.value))
	}
	return strings.Join(tokens, " ")
}

// SegmentedTransform hashes the letters of s and applies the affine
// substitution to its digits, returning both results separated by a space.
// Any other character is dropped. It panics when p does not satisfy Validate.
func SegmentedTransform(s string, p AffineParams) string {
	letters := keepRunes(s, isLetter)
	digits := keepRunes(s, isDigit)
	return HashString(letters) + " " + AffineTransform(digits, p)
}

type AlphanumericHybridTransformer struct {
	params AffineParams
}

func NewAlphanumericHybridTransformer(params AffineParams) (*AlphanumericHybridTransformer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("alphanumeric_hybrid: %w", err)
	}
	if err := CheckHashBackend(); err != nil {
		return nil, fmt.Errorf("alphanumeric_hybrid: %w", err)
	}
	return &AlphanumericHybridTransformer{params: params}, nil
}

func (t *AlphanumericHybridTransformer) Transform(_ context.Context, value string) string {
	return AlphanumericHybridTransform(value, t.params)
}

func (t *AlphanumericHybridTransformer) Type() TransformerType {
	return AlphanumericHybrid
}

func AlphanumericHybridTransformerDefinition() *Definition {
	return &Definition{
		Description: "hashes non digit runs and applies the affine substitution to digit runs, space separated",
		Parameters:  affineParams,
	}
}

type SegmentedTransformer struct {
	params AffineParams
}

func NewSegmentedTransformer(params AffineParams) (*SegmentedTransformer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("segmented: %w", err)
	}
	if err := CheckHashBackend(); err != nil {
		return nil, fmt.Errorf("segmented: %w", err)
	}
	return &SegmentedTransformer{params: params}, nil
}

func (t *SegmentedTransformer) Transform(_ context.Context, value string) string {
	return SegmentedTransform(value, t.params)
}

func (t *SegmentedTransformer) Type() TransformerType {
	return Segmented
}

func SegmentedTransformerDefinition() *Definition {
	return &Definition{
		Description: "hashes the letters and applies the affine substitution to the digits of the value",
		Parameters:  affineParams,
	}
}
