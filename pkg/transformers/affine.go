// SPDX-License-Identifier: Apache-2.0

package transformers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// AffineParams holds the (a, b, n) triple used to substitute each decimal
// digit d with (a*d + b) mod n. It is loaded once at startup and never
// modified afterwards.
type AffineParams struct {
	A int `mapstructure:"a" json:"a"`
	B int `mapstructure:"b" json:"b"`
	N int `mapstructure:"n" json:"n"`
}

var ErrInvalidModulus = errors.New("affine modulus n must be greater than zero")

const (
	paramA = "a"
	paramB = "b"
	paramN = "n"
)

var affineParams = []Parameter{
	{
		Name:          paramA,
		SupportedType: "int",
		Default:       1,
		Description:   "multiplier applied to every digit",
	},
	{
		Name:          paramB,
		SupportedType: "int",
		Default:       0,
		Description:   "offset added to every multiplied digit",
	},
	{
		Name:          paramN,
		SupportedType: "int",
		Required:      true,
		Description:   "modulus, must be greater than zero",
	},
}

func (p AffineParams) Validate() error {
	if p.N <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidModulus, p.N)
	}
	return nil
}

// Parameters returns the triple in its transformer parameter form.
func (p AffineParams) Parameters() Parameters {
	return Parameters{
		paramA: p.A,
		paramB: p.B,
		paramN: p.N,
	}
}

// AffineParamsFromParameters decodes the affine triple from loosely typed
// parameters, such as the ones produced by yaml, json or command line flags.
// The modulus is required and must be greater than zero.
func AffineParamsFromParameters(params Parameters) (AffineParams, error) {
	if _, found := params[paramN]; !found {
		return AffineParams{}, fmt.Errorf("affine: parameter 'n' is required: %w", ErrInvalidParameters)
	}

	p := AffineParams{A: 1}
	if err := mapstructure.WeakDecode(map[string]any(params), &p); err != nil {
		return AffineParams{}, fmt.Errorf("affine: %w: %w", ErrInvalidParameters, err)
	}
	if err := p.Validate(); err != nil {
		return AffineParams{}, err
	}
	return p, nil
}

// AffineTransform replaces every ASCII digit in s by the zero padded, three
// character rendering of (a*d + b) mod n. Any other character is copied in
// place. The output is longer than the input whenever s contains digits.
//
// p must satisfy Validate. AffineTransform panics with an error wrapping
// ErrInvalidModulus otherwise.
func AffineTransform(s string, p AffineParams) string {
	mustValidate(p)

	a, off := floorMod(p.A, p.N), floorMod(p.B, p.N)
	var b strings.Builder
	b.Grow(3 * len(s))
	for _, r := range s {
		if !isDigit(r) {
			b.WriteRune(r)
			continue
		}
		writeDigitBlock(&b, affineDigit(int(r-'0'), a, off, p.N))
	}
	return b.String()
}

func mustValidate(p AffineParams) {
	if err := p.Validate(); err != nil {
		panic(err)
	}
}

// affineDigit returns (a*d + off) mod n for a and off already reduced to
// [0, n). No intermediate value exceeds n.
func affineDigit(d, a, off, n int) int {
	v := off
	for range d {
		v = addMod(v, a, n)
	}
	return v
}

// addMod returns (x + y) mod n for x and y in [0, n).
func addMod(x, y, n int) int {
	if x >= n-y {
		return x - (n - y)
	}
	return x + y
}

func writeDigitBlock(b *strings.Builder, v int) {
	s := strconv.Itoa(v)
	for i := len(s); i < 3; i++ {
		b.WriteByte('0')
	}
	b.WriteString(s)
}

// floorMod returns x mod n in [0, n) for n > 0, regardless of the sign of x.
func floorMod(x, n int) int {
	m := x % n
	if m < 0 {
		m += n
	}
	return m
}

// NumericAffineTransformer applies the affine digit substitution to the whole
// value, leaving separators in place.
type NumericAffineTransformer struct {
	params AffineParams
}

func NewNumericAffineTransformer(params AffineParams) (*NumericAffineTransformer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("numeric_affine: %w", err)
	}
	return &NumericAffineTransformer{params: params}, nil
}

func (t *NumericAffineTransformer) Transform(_ context.Context, value string) string {
	return AffineTransform(value, t.params)
}

func (t *NumericAffineTransformer) Type() TransformerType {
	return NumericAffine
}

func NumericAffineTransformerDefinition() *Definition {
	return &Definition{
		Description: "replaces every digit d with (a*d+b) mod n, zero padded to three characters",
		Parameters:  affineParams,
	}
}
