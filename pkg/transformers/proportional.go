// SPDX-License-Identifier: Apache-2.0

package transformers

import (
	"context"
	"strings"
)

// ProportionalMask replaces every digit of s with 'X', keeping the length and
// the separators of the original value.
func ProportionalMask(s string) string {
	return strings.Map(func(r rune) rune {
		if isDigit(r) {
			return 'X'
		}
		return r
	}, s)
}

type ProportionalTransformer struct{}

func NewProportionalTransformer() *ProportionalTransformer {
	return &ProportionalTransformer{}
}

func (t *ProportionalTransformer) Transform(_ context.Context, value string) string {
	return ProportionalMask(value)
}

func (t *ProportionalTransformer) Type() TransformerType {
	return Proportional
}

func ProportionalTransformerDefinition() *Definition {
	return &Definition{
		Description: "replaces every digit with 'X'",
	}
}
