// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"fmt"
	"slices"

	"github.com/xataio/anonymiser/pkg/otel"
	"github.com/xataio/anonymiser/pkg/transformers"
	"github.com/xataio/anonymiser/pkg/transformers/instrumentation"
)

type TransformerBuilder struct {
	instrumentation *otel.Instrumentation
}

type Option func(b *TransformerBuilder)

func NewTransformerBuilder(opts ...Option) *TransformerBuilder {
	b := &TransformerBuilder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func WithInstrumentation(i *otel.Instrumentation) Option {
	return func(b *TransformerBuilder) {
		b.instrumentation = i
	}
}

var TransformersMap = map[transformers.TransformerType]struct {
	Definition *transformers.Definition
	BuildFn    func(cfg *transformers.Config) (transformers.Transformer, error)
}{
	transformers.Hash: {
		Definition: transformers.HashTransformerDefinition(),
		BuildFn: func(cfg *transformers.Config) (transformers.Transformer, error) {
			return transformers.NewHashTransformer()
		},
	},
	transformers.ChunkedHash: {
		Definition: transformers.ChunkedHashTransformerDefinition(),
		BuildFn: func(cfg *transformers.Config) (transformers.Transformer, error) {
			return transformers.NewChunkedHashTransformer()
		},
	},
	transformers.NumericAffine: {
		Definition: transformers.NumericAffineTransformerDefinition(),
		BuildFn: func(cfg *transformers.Config) (transformers.Transformer, error) {
			params, err := transformers.AffineParamsFromParameters(cfg.Parameters)
			if err != nil {
				return nil, err
			}
			return transformers.NewNumericAffineTransformer(params)
		},
	},
	transformers.AlphanumericHybrid: {
		Definition: transformers.AlphanumericHybridTransformerDefinition(),
		BuildFn: func(cfg *transformers.Config) (transformers.Transformer, error) {
			params, err := transformers.AffineParamsFromParameters(cfg.Parameters)
			if err != nil {
				return nil, err
			}
			return transformers.NewAlphanumericHybridTransformer(params)
		},
	},
	transformers.Segmented: {
		Definition: transformers.SegmentedTransformerDefinition(),
		BuildFn: func(cfg *transformers.Config) (transformers.Transformer, error) {
			params, err := transformers.AffineParamsFromParameters(cfg.Parameters)
			if err != nil {
				return nil, err
			}
			return transformers.NewSegmentedTransformer(params)
		},
	},
	transformers.Proportional: {
		Definition: transformers.ProportionalTransformerDefinition(),
		BuildFn: func(cfg *transformers.Config) (transformers.Transformer, error) {
			return transformers.NewProportionalTransformer(), nil
		},
	},
	transformers.Masking: {
		Definition: transformers.MaskingTransformerDefinition(),
		BuildFn: func(cfg *transformers.Config) (transformers.Transformer, error) {
			return transformers.NewMaskingTransformer(cfg.Parameters)
		},
	},
}

// Names returns the supported transformer names in alphabetical order.
func Names() []transformers.TransformerType {
	names := make([]transformers.TransformerType, 0, len(TransformersMap))
	for name := range TransformersMap {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Definition returns the definition of the transformer with the given name.
func Definition(name transformers.TransformerType) (*transformers.Definition, error) {
	transformer, ok := TransformersMap[name]
	if !ok {
		return nil, fmt.Errorf("%w: unexpected transformer name '%s'", transformers.ErrUnsupportedTransformer, name)
	}
	return transformer.Definition, nil
}

// New builds the transformer described by cfg, wrapping it with
// instrumentation when enabled. Parameters not declared by the transformer
// definition are rejected.
func (b *TransformerBuilder) New(cfg *transformers.Config) (transformers.Transformer, error) {
	transformer, ok := TransformersMap[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("%w: unexpected transformer name '%s'", transformers.ErrUnsupportedTransformer, cfg.Name)
	}

	if err := transformer.Definition.Validate(cfg.Parameters); err != nil {
		return nil, err
	}

	t, err := transformer.BuildFn(cfg)
	if err != nil {
		return nil, err
	}

	return instrumentation.NewTransformer(t, b.instrumentation)
}

// New builds a non instrumented transformer.
func New(cfg *transformers.Config) (transformers.Transformer, error) {
	return NewTransformerBuilder().New(cfg)
}
