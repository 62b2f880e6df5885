// SPDX-License-Identifier: Apache-2.0

package anonymiser

import "context"

// Masker masks single requests or batches of them.
type Masker interface {
	MaskRequest(ctx context.Context, req *Request) *Request
	MaskAll(ctx context.Context, reqs []*Request, workers int) ([]*Request, error)
}

var _ Masker = (*Policy)(nil)
