// SPDX-License-Identifier: Apache-2.0

package anonymiser

import (
	"context"
	"fmt"

	loglib "github.com/xataio/anonymiser/pkg/log"
	"github.com/xataio/anonymiser/pkg/otel"
	"github.com/xataio/anonymiser/pkg/transformers"
	"github.com/xataio/anonymiser/pkg/transformers/builder"
)

// Policy masks every field of a record with the transformer assigned to it.
// It holds no mutable state and can be shared by concurrent callers.
type Policy struct {
	logger          loglib.Logger
	instrumentation *otel.Instrumentation
	batchMetrics    *policyInstrumentation
	builder         transformerBuilder
	table           []Rule
	rules           []rule
}

// Rule associates a field with the type of transformer masking it.
type Rule struct {
	Field       Field                        `json:"field"`
	Transformer transformers.TransformerType `json:"transformer"`
}

type rule struct {
	field       Field
	transformer transformers.Transformer
}

type transformerBuilder interface {
	New(*transformers.Config) (transformers.Transformer, error)
}

type Option func(*Policy)

// DefaultRules is the fixed masking table, in the order fields are masked.
var DefaultRules = []Rule{
	{Field: FieldName, Transformer: transformers.ChunkedHash},
	{Field: FieldEmail, Transformer: transformers.ChunkedHash},
	{Field: FieldPhone, Transformer: transformers.NumericAffine},
	{Field: FieldAddressStreet, Transformer: transformers.AlphanumericHybrid},
	{Field: FieldAddressPostal, Transformer: transformers.Segmented},
	{Field: FieldCountry, Transformer: transformers.Hash},
	{Field: FieldIDNumber, Transformer: transformers.Segmented},
}

// NewPolicy builds the transformers of the masking table using the affine
// parameters on input. It fails if the parameters are invalid or the hash
// backend is not available, in which case nothing can be masked.
func NewPolicy(params transformers.AffineParams, opts ...Option) (*Policy, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid affine parameters: %w", err)
	}
	if err := transformers.CheckHashBackend(); err != nil {
		return nil, err
	}

	p := &Policy{
		logger: loglib.NewNoopLogger(),
		table:  DefaultRules,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.builder == nil {
		p.builder = builder.NewTransformerBuilder(builder.WithInstrumentation(p.instrumentation))
	}

	var err error
	if p.batchMetrics, err = newPolicyInstrumentation(p.instrumentation); err != nil {
		return nil, fmt.Errorf("initialising policy instrumentation: %w", err)
	}

	p.rules = make([]rule, 0, len(p.table))
	for _, r := range p.table {
		if _, err := (&PiiData{}).field(r.Field); err != nil {
			return nil, fmt.Errorf("masking rule for %s transformer: %w", r.Transformer, err)
		}
		cfg, err := transformerConfig(r.Transformer, params)
		if err != nil {
			return nil, err
		}
		t, err := p.builder.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("building %s transformer for field %s: %w", r.Transformer, r.Field, err)
		}
		p.rules = append(p.rules, rule{field: r.Field, transformer: t})
	}

	p.logger.Debug("masking policy initialised", loglib.Fields{"rules": len(p.rules)})
	return p, nil
}

func WithLogger(l loglib.Logger) Option {
	return func(p *Policy) {
		p.logger = loglib.NewModuleLogger(l, "masking_policy")
	}
}

func WithInstrumentation(i *otel.Instrumentation) Option {
	return func(p *Policy) {
		p.instrumentation = i
	}
}

// withRules overrides the masking table, used for testing.
func withRules(rules []Rule) Option {
	return func(p *Policy) {
		p.table = rules
	}
}

// withBuilder overrides the transformer builder, used for testing.
func withBuilder(b transformerBuilder) Option {
	return func(p *Policy) {
		p.builder = b
	}
}

// Mask returns a new record with every field replaced by its masked value.
// The record on input is left untouched. A nil record is masked as an empty
// one.
func (p *Policy) Mask(ctx context.Context, data *PiiData) *PiiData {
	masked := &PiiData{}
	if data != nil {
		*masked = *data
	}

	for _, r := range p.rules {
		// rule fields are checked by NewPolicy
		value, err := masked.field(r.field)
		if err != nil {
			panic(err)
		}
		*value = r.transformer.Transform(ctx, *value)
	}
	return masked
}

// MaskRequest masks the data of the request on input, carrying over the
// passthrough attributes as they are.
func (p *Policy) MaskRequest(ctx context.Context, req *Request) *Request {
	if req == nil {
		return &Request{Data: p.Mask(ctx, nil)}
	}
	return &Request{
		Data:   p.Mask(ctx, req.Data),
		Tokens: req.Tokens,
		Nature: req.Nature,
	}
}

// Rules returns the masking table of the policy.
func (p *Policy) Rules() []Rule {
	rules := make([]Rule, 0, len(p.rules))
	for _, r := range p.rules {
		rules = append(rules, Rule{Field: r.field, Transformer: r.transformer.Type()})
	}
	return rules
}

// transformerConfig only passes the affine parameters to the transformers
// that declare them.
func transformerConfig(name transformers.TransformerType, params transformers.AffineParams) (*transformers.Config, error) {
	def, err := builder.Definition(name)
	if err != nil {
		return nil, err
	}

	cfg := &transformers.Config{Name: name}
	if len(def.Parameters) > 0 {
		cfg.Parameters = params.Parameters()
	}
	return cfg, nil
}
