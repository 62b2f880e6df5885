// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/xataio/anonymiser/pkg/transformers"
)

type Transformer struct {
	TransformFn func(context.Context, string) string
	TypeFn      func() transformers.TransformerType
}

func (m *Transformer) Transform(ctx context.Context, value string) string {
	return m.TransformFn(ctx, value)
}

func (m *Transformer) Type() transformers.TransformerType {
	if m.TypeFn == nil {
		return "mock"
	}
	return m.TypeFn()
}
