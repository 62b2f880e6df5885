// SPDX-License-Identifier: Apache-2.0

package transformers

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ggwhite/go-masker"
)

// MaskingTransformer partially masks a value depending on the kind of data it
// holds. Unlike the hash based transformers it keeps part of the original
// content visible, so it is only meant for previews.
type MaskingTransformer struct {
	mask func(string) string
}

const defaultMaskingType = "default"

var errInvalidMaskingType = errors.New("invalid masking type")

// maskingFuncs maps every supported masking type to its masking function.
var maskingFuncs = func() map[string]func(string) string {
	m := masker.New()
	return map[string]func(string) string{
		"password":    m.Password,
		"name":        m.Name,
		"address":     m.Address,
		"email":       m.Email,
		"mobile":      m.Mobile,
		"tel":         m.Telephone,
		"id":          m.ID,
		"credit_card": m.CreditCard,
		"url":         m.URL,
		defaultMaskingType: func(v string) string {
			return strings.Repeat("*", utf8.RuneCountInString(v))
		},
	}
}()

// MaskingTypes returns the supported masking types, sorted.
func MaskingTypes() []string {
	return slices.Sorted(maps.Keys(maskingFuncs))
}

func NewMaskingTransformer(params Parameters) (*MaskingTransformer, error) {
	maskType, err := StringParameter(params, "type", defaultMaskingType)
	if err != nil {
		return nil, fmt.Errorf("masking: %w", err)
	}

	mask, found := maskingFuncs[maskType]
	if !found {
		return nil, fmt.Errorf("%w '%s', must be one of: %s", errInvalidMaskingType, maskType, strings.Join(MaskingTypes(), ", "))
	}

	return &MaskingTransformer{mask: mask}, nil
}

func (t *MaskingTransformer) Transform(_ context.Context, value string) string {
	return t.mask(value)
}

func (t *MaskingTransformer) Type() TransformerType {
	return Masking
}

func MaskingTransformerDefinition() *Definition {
	return &Definition{
		Description: "partially masks the value according to its data type",
		Parameters: []Parameter{
			{
				Name:          "type",
				SupportedType: "string",
				Default:       defaultMaskingType,
				Description:   "kind of data to mask, one of: " + strings.Join(MaskingTypes(), ", "),
			},
		},
	}
}
