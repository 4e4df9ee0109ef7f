package store

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ID is an FTS identifier. The API sends ids as numbers, strings or floats
// with a trailing ".0"; all of them decode to the same plain string.
type ID string

func (i *ID) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return err
	}
	*i = ID(strings.TrimSuffix(s, ".0"))
	return nil
}

func (i ID) String() string {
	return string(i)
}

// Scalar keeps the text of any JSON scalar. null decodes to "".
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	text, err := scalarText(data)
	if err != nil {
		return err
	}
	*s = Scalar(text)
	return nil
}

func (s Scalar) String() string {
	return string(s)
}

// Amount is a nullable USD figure. null, "" and non-numeric strings decode
// to an invalid amount instead of failing the whole payload.
type Amount decimal.NullDecimal

func (a *Amount) UnmarshalJSON(data []byte) error {
	text, err := scalarText(data)
	if err != nil {
		return err
	}
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		*a = Amount{}
		return nil
	}
	*a = Amount{Decimal: d, Valid: true}
	return nil
}

// NewAmount is a convenience for building payloads in code.
func NewAmount(v int64) Amount {
	return Amount{Decimal: decimal.NewFromInt(v), Valid: true}
}

func scalarText(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", nil
	default:
		return string(trimmed), nil
	}
}
