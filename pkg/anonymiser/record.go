// SPDX-License-Identifier: Apache-2.0

package anonymiser

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Field identifies one of the personally identifiable attributes of a record.
type Field string

const (
	FieldName          Field = "name"
	FieldEmail         Field = "email"
	FieldPhone         Field = "phone"
	FieldAddressStreet Field = "addressStreet"
	FieldAddressPostal Field = "addressPostal"
	FieldCountry       Field = "country"
	FieldIDNumber      Field = "idNumber"
)

// Fields lists every field of PiiData in the order they are masked.
var Fields = []Field{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldAddressStreet,
	FieldAddressPostal,
	FieldCountry,
	FieldIDNumber,
}

var ErrUnknownField = errors.New("unknown pii field")

type PiiData struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	AddressStreet string `json:"addressStreet"`
	AddressPostal string `json:"addressPostal"`
	Country       string `json:"country"`
	IDNumber      string `json:"idNumber"`
}

// Request is the envelope exchanged with the callers. Tokens and Nature are
// passed through as they were received, they are never decoded.
type Request struct {
	Data   *PiiData        `json:"data"`
	Tokens json.RawMessage `json:"tokens,omitempty"`
	Nature json.RawMessage `json:"nature,omitempty"`
}

var ErrMissingData = errors.New("request data is missing")

// Validate checks the request carries a record to mask.
func (r *Request) Validate() error {
	if r == nil || r.Data == nil {
		return ErrMissingData
	}
	return nil
}

func (d *PiiData) Get(f Field) (string, error) {
	p, err := d.field(f)
	if err != nil {
		return "", err
	}
	return *p, nil
}

func (d *PiiData) Set(f Field, value string) error {
	p, err := d.field(f)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

func (d *PiiData) field(f Field) (*string, error) {
	switch f {
	case FieldName:
		return &d.Name, nil
	case FieldEmail:
		return &d.Email, nil
	case FieldPhone:
		return &d.Phone, nil
	case FieldAddressStreet:
		return &d.AddressStreet, nil
	case FieldAddressPostal:
		return &d.AddressPostal, nil
	case FieldCountry:
		return &d.Country, nil
	case FieldIDNumber:
		return &d.IDNumber, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
}
