// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/xataio/anonymiser/pkg/anonymiser"
)

type Masker struct {
	MaskRequestFn func(ctx context.Context, req *anonymiser.Request) *anonymiser.Request
	MaskAllFn     func(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error)
}

func (m *Masker) MaskRequest(ctx context.Context, req *anonymiser.Request) *anonymiser.Request {
	return m.MaskRequestFn(ctx, req)
}

func (m *Masker) MaskAll(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error) {
	return m.MaskAllFn(ctx, reqs, workers)
}
