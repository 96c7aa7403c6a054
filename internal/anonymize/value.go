// Package anonymize implements the PII detector/tokenizer (C4) and the
// anonymization validator (C5). Both operate on the Value sum type: the
// Go-native replacement for the arbitrary, dynamically-typed dicts the
// source walks (spec §9 "Dynamic typing of statements").
package anonymize

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Kind discriminates a Value's underlying representation.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindDecimal
	KindArray
	KindObject
)

// Value is the tagged variant every anonymize/validate walk recurses
// over. Exactly one of the typed fields is meaningful, selected by Kind.
type Value struct {
	Kind    Kind
	Str     string
	Dec     decimal.Decimal
	Array   []Value
	Object  map[string]Value
}

func Null() Value                { return Value{Kind: KindNull} }
func String(s string) Value      { return Value{Kind: KindString, Str: s} }
func Dec(d decimal.Decimal) Value { return Value{Kind: KindDecimal, Dec: d} }
func Array(vs []Value) Value     { return Value{Kind: KindArray, Array: vs} }
func Object(m map[string]Value) Value { return Value{Kind: KindObject, Object: m} }

// FromAny converts a generic JSON-decoded value (the shape produced by
// encoding/json with UseNumber, or plain Go literals in tests) into a
// Value tree. Numbers are parsed as decimal.Decimal so financial math
// downstream never touches a binary float (spec §9 "Decimal arithmetic").
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case decimal.Decimal:
		return Dec(t)
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return Null()
		}
		return Dec(d)
	case float64:
		return Dec(decimal.NewFromFloat(t))
	case int:
		return Dec(decimal.NewFromInt(int64(t)))
	case int64:
		return Dec(decimal.NewFromInt(t))
	case bool:
		if t {
			return String("true")
		}
		return String("false")
	case []any:
		out := make([]Value, len(t))
		for i, item := range t {
			out[i] = FromAny(item)
		}
		return Array(out)
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, item := range t {
			out[k] = FromAny(item)
		}
		return Object(out)
	case []Value:
		return Array(t)
	case map[string]Value:
		return Object(t)
	default:
		return Null()
	}
}

// ToAny converts a Value tree back into plain Go values suitable for
// encoding/json marshaling.
func (v Value) ToAny() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindString:
		return v.Str
	case KindDecimal:
		return v.Dec
	case KindArray:
		out := make([]any, len(v.Array))
		for i, item := range v.Array {
			out[i] = item.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.Object))
		for k, item := range v.Object {
			out[k] = item.ToAny()
		}
		return out
	default:
		return nil
	}
}
