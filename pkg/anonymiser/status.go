// SPDX-License-Identifier: Apache-2.0

package anonymiser

import (
	"fmt"
	"strings"

	"github.com/xataio/anonymiser/pkg/transformers"
)

// PolicyStatus reports whether a masking policy can be built from the affine
// parameters on input, and the masking table it would apply.
type PolicyStatus struct {
	Affine transformers.AffineParams `json:"affine"`
	Rules  []Rule                    `json:"rules,omitempty"`
	Errors []string                  `json:"errors,omitempty"`
}

// CheckPolicy builds a policy with the given parameters and reports any
// configuration error instead of returning it.
func CheckPolicy(params transformers.AffineParams, opts ...Option) *PolicyStatus {
	status := &PolicyStatus{Affine: params}

	if err := transformers.CheckHashBackend(); err != nil {
		status.Errors = append(status.Errors, err.Error())
	}
	if err := params.Validate(); err != nil {
		status.Errors = append(status.Errors, err.Error())
	}
	if len(status.Errors) > 0 {
		return status
	}

	p, err := NewPolicy(params, opts...)
	if err != nil {
		status.Errors = append(status.Errors, err.Error())
		return status
	}
	status.Rules = p.Rules()
	return status
}

func (s *PolicyStatus) IsValid() bool {
	return len(s.Errors) == 0
}

func (s *PolicyStatus) PrettyPrint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Affine parameters: a=%d b=%d n=%d\n", s.Affine.A, s.Affine.B, s.Affine.N)
	if len(s.Errors) > 0 {
		fmt.Fprintf(&b, "Errors: %s\n", strings.Join(s.Errors, ", "))
	}
	if len(s.Rules) > 0 {
		b.WriteString("Masking rules:\n")
		for _, r := range s.Rules {
			fmt.Fprintf(&b, " - %s: %s\n", r.Field, r.Transformer)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
