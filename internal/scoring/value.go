package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind tags a node in a parsed json tree.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a generic json tree node. Keeping an explicit tagged tree
// instead of raw any values makes structural comparison total: every
// node pair falls into exactly one case of Equal.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Str    string
	Array  []Value
	Object map[string]Value
}

// ParseValue decodes one json document into a Value. Content after the
// first document is an error, as is an empty input.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("trailing content after json document")
	}
	return fromRaw(raw)
}

func fromRaw(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Value{Kind: KindNull}, nil
	case bool:
		return Value{Kind: KindBool, Bool: v}, nil
	case string:
		return Value{Kind: KindString, Str: v}, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("number %q out of range: %w", v, err)
		}
		return Value{Kind: KindNumber, Number: f}, nil
	case []any:
		arr := make([]Value, len(v))
		for i, elem := range v {
			val, err := fromRaw(elem)
			if err != nil {
				return Value{}, err
			}
			arr[i] = val
		}
		return Value{Kind: KindArray, Array: arr}, nil
	case map[string]any:
		obj := make(map[string]Value, len(v))
		for key, elem := range v {
			val, err := fromRaw(elem)
			if err != nil {
				return Value{}, err
			}
			obj[key] = val
		}
		return Value{Kind: KindObject, Object: obj}, nil
	default:
		return Value{}, fmt.Errorf("unexpected json value of type %T", raw)
	}
}

// Equal reports structural equality: object key order is irrelevant,
// array order is significant, numbers compare numerically so 1 and 1.0
// are equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindNumber:
		return v.Number == o.Number
	case KindString:
		return v.Str == o.Str
	case KindArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.Object) != len(o.Object) {
			return false
		}
		for key, val := range v.Object {
			other, ok := o.Object[key]
			if !ok || !val.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}
