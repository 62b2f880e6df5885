// SPDX-License-Identifier: Apache-2.0

package json

import (
	"io"

	json "github.com/bytedance/sonic"
)

type (
	Encoder = json.Encoder
	Decoder = json.Decoder
)

func Unmarshal(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

func NewEncoder(w io.Writer) Encoder {
	return json.ConfigDefault.NewEncoder(w)
}

func NewDecoder(r io.Reader) Decoder {
	return json.ConfigDefault.NewDecoder(r)
}
