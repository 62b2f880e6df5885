// SPDX-License-Identifier: Apache-2.0

package transformers

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Transformer replaces a string value with its masked surrogate. Every
// implementation is total: it never fails for a given string input, and it is
// safe for concurrent use.
type Transformer interface {
	Transform(ctx context.Context, value string) string
	Type() TransformerType
}

type Config struct {
	Name       TransformerType
	Parameters Parameters
}

type TransformerType string

const (
	Hash               TransformerType = "hash"
	ChunkedHash        TransformerType = "chunked_hash"
	NumericAffine      TransformerType = "numeric_affine"
	AlphanumericHybrid TransformerType = "alphanumeric_hybrid"
	Segmented          TransformerType = "segmented"
	Proportional       TransformerType = "proportional"
	Masking            TransformerType = "masking"
)

type Parameters map[string]any

type Parameter struct {
	Name          string
	SupportedType string
	Default       any
	Required      bool
	Description   string
}

type Definition struct {
	Description string
	Parameters  []Parameter
}

// Validate checks the parameters on input against the definition: unknown
// parameters are rejected and required ones must be present.
func (d *Definition) Validate(params Parameters) error {
	for name := range params {
		if d.parameter(name) == nil {
			return fmt.Errorf("%w: '%s'", ErrUnknownParameter, name)
		}
	}
	for _, p := range d.Parameters {
		if _, found := params[p.Name]; p.Required && !found {
			return fmt.Errorf("%w: parameter '%s' is required", ErrInvalidParameters, p.Name)
		}
	}
	return nil
}

func (d *Definition) parameter(name string) *Parameter {
	idx := slices.IndexFunc(d.Parameters, func(p Parameter) bool { return p.Name == name })
	if idx < 0 {
		return nil
	}
	return &d.Parameters[idx]
}

var (
	ErrUnsupportedTransformer = errors.New("unsupported transformer config")
	ErrInvalidParameters      = errors.New("invalid transformer parameters")
	ErrUnknownParameter       = errors.New("unknown transformer parameter")
)

// StringParameter returns the named parameter as a string, or defaultVal if
// it is not set. Non string values are an error.
func StringParameter(params Parameters, name, defaultVal string) (string, error) {
	v, found := params[name]
	if !found {
		return defaultVal, nil
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: '%s' must be a string, got %T", ErrInvalidParameters, name, v)
	}
	return str, nil
}
