// SPDX-License-Identifier: Apache-2.0

package transformers

import (
	"context"
	"crypto"
	_ "crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const hashAlgorithm = crypto.SHA256

var ErrHashUnavailable = errors.New("hash algorithm is not available")

// CheckHashBackend returns an error when the digest used by the hash based
// transformers is not linked into the binary.
func CheckHashBackend() error {
	if !hashAlgorithm.Available() {
		return fmt.Errorf("%w: %s", ErrHashUnavailable, hashAlgorithm)
	}
	return nil
}

// HashString returns the lowercase hex encoded SHA-256 digest of s. There is
// no salt, the same input always produces the same 64 character output.
func HashString(s string) string {
	h := hashAlgorithm.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// ChunkedHashString splits s on runs of whitespace, '@' and '.', hashes every
// chunk independently and joins the hashes with a single space. A value
// without chunks hashes as the empty string.
func ChunkedHashString(s string) string {
	chunks := splitOnDelimiters(s)
	if len(chunks) == 0 {
		return HashString("")
	}

	hashed := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		hashed = append(hashed, HashString(chunk))
	}
	return strings.Join(hashed, " ")
}

type HashTransformer struct{}

func NewHashTransformer() (*HashTransformer, error) {
	if err := CheckHashBackend(); err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}
	return &HashTransformer{}, nil
}

func (t *HashTransformer) Transform(_ context.Context, value string) string {
	return HashString(value)
}

func (t *HashTransformer) Type() TransformerType {
	return Hash
}

func HashTransformerDefinition() *Definition {
	return &Definition{
		Description: "replaces the value with its hex encoded SHA-256 digest",
	}
}

type ChunkedHashTransformer struct{}

func NewChunkedHashTransformer() (*ChunkedHashTransformer, error) {
	if err := CheckHashBackend(); err != nil {
		return nil, fmt.Errorf("chunked_hash: %w", err)
	}
	return &ChunkedHashTransformer{}, nil
}

func (t *ChunkedHashTransformer) Transform(_ context.Context, value string) string {
	return ChunkedHashString(value)
}

func (t *ChunkedHashTransformer) Type() TransformerType {
	return ChunkedHash
}

func ChunkedHashTransformerDefinition() *Definition {
	return &Definition{
		Description: "hashes every whitespace, '@' or '.' separated chunk of the value independently",
	}
}
