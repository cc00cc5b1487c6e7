package model

import (
	"bytes"
	"encoding/json"

	"github.com/Laisky/errors/v2"
)

// ParamKind tags the JSON type held by a ParamValue.
type ParamKind int

const (
	ParamInvalid ParamKind = iota
	ParamNull
	ParamBool
	ParamNumber
	ParamString
	ParamArray
	ParamObject
)

func (k ParamKind) String() string {
	switch k {
	case ParamNull:
		return "null"
	case ParamBool:
		return "bool"
	case ParamNumber:
		return "number"
	case ParamString:
		return "string"
	case ParamArray:
		return "array"
	case ParamObject:
		return "object"
	default:
		return "invalid"
	}
}

// ParamValue is an arbitrary JSON value supplied by the user for a request
// parameter. It is carried as raw JSON and only checked when serialized.
type ParamValue struct {
	raw json.RawMessage
}

// NewParamValue encodes v as a ParamValue.
func NewParamValue(v any) (ParamValue, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return ParamValue{}, errors.Wrap(err, "marshal param value")
	}
	return ParamValue{raw: raw}, nil
}

// RawParamValue wraps already encoded JSON without validating it.
func RawParamValue(raw []byte) ParamValue {
	return ParamValue{raw: append(json.RawMessage(nil), raw...)}
}

// Kind reports the JSON type of the value from its first significant byte.
func (p ParamValue) Kind() ParamKind {
	trimmed := bytes.TrimSpace(p.raw)
	if len(trimmed) == 0 {
		return ParamNull
	}
	switch c := trimmed[0]; {
	case c == 'n':
		return ParamNull
	case c == 't' || c == 'f':
		return ParamBool
	case c == '"':
		return ParamString
	case c == '[':
		return ParamArray
	case c == '{':
		return ParamObject
	case c == '-' || (c >= '0' && c <= '9'):
		return ParamNumber
	default:
		return ParamInvalid
	}
}

// Raw returns the encoded JSON.
func (p ParamValue) Raw() json.RawMessage {
	return p.raw
}

// MarshalJSON validates the value; an empty value encodes as null.
func (p ParamValue) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(p.raw)) == 0 {
		return []byte("null"), nil
	}
	if !json.Valid(p.raw) {
		return nil, errors.Errorf("invalid JSON param value: %q", string(p.raw))
	}
	return p.raw, nil
}

// UnmarshalJSON keeps a private copy of the encoded value.
func (p *ParamValue) UnmarshalJSON(data []byte) error {
	p.raw = append(p.raw[:0:0], data...)
	return nil
}

// RequestParams are provider level overrides spread over the chat completion body.
type RequestParams map[string]ParamValue

// Validate reports the first key whose value is not valid JSON.
func (r RequestParams) Validate() error {
	for key, value := range r {
		if _, err := value.MarshalJSON(); err != nil {
			return errors.Wrapf(err, "request param %q", key)
		}
	}
	return nil
}
