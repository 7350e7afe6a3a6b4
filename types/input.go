package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
)

// Input is an immutable snapshot of the live control parameters. Its
// schema is owned by the artwork; two inputs are equal when their decoded
// JSON values are deeply equal, regardless of key order or whitespace.
// Numbers compare by value, so 1 and 1.0 are equal while integers beyond
// float64 precision stay distinct.
type Input struct {
	raw   json.RawMessage
	value any
}

// ParseInput decodes a JSON document into an Input.
func ParseInput(data []byte) (Input, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return Input{}, fmt.Errorf("decode input: %w", err)
	}
	if dec.More() {
		return Input{}, fmt.Errorf("decode input: trailing data after document")
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return Input{raw: raw, value: v}, nil
}

// MustInput builds an Input from any JSON-marshalable value. It panics on
// marshal failure and is meant for simulated inputs and tests.
func MustInput(v any) Input {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal input: %v", err))
	}
	in, err := ParseInput(data)
	if err != nil {
		panic(err)
	}
	return in
}

// Equal reports whether two inputs carry the same document.
func (in Input) Equal(other Input) bool {
	return valuesEqual(in.value, other.value)
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case json.Number:
		bv, ok := b.(json.Number)
		return ok && numbersEqual(av, bv)
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !valuesEqual(v, w) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// numbersEqual compares integer literals exactly and everything else as
// float64.
func numbersEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	ai, aok := new(big.Int).SetString(a.String(), 10)
	bi, bok := new(big.Int).SetString(b.String(), 10)
	if aok && bok {
		return ai.Cmp(bi) == 0
	}
	af, aerr := a.Float64()
	bf, berr := b.Float64()
	return aerr == nil && berr == nil && af == bf
}

// IsZero reports whether the input was never fetched.
func (in Input) IsZero() bool {
	return in.raw == nil
}

// Decode unmarshals the document into v.
func (in Input) Decode(v any) error {
	if in.raw == nil {
		return fmt.Errorf("decode input: empty input")
	}
	return json.Unmarshal(in.raw, v)
}

// Raw returns a copy of the original document bytes.
func (in Input) Raw() json.RawMessage {
	out := make(json.RawMessage, len(in.raw))
	copy(out, in.raw)
	return out
}
