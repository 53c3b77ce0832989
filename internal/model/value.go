package model

import (
	"encoding/json"
	"math"
)

// Value is an indicator reading that may be unavailable.
// The zero Value is unavailable.
type Value struct {
	v  float64
	ok bool
}

// Some wraps a defined reading. NaN and infinities are treated as unavailable.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, ok: true}
}

// None returns an unavailable reading.
func None() Value { return Value{} }

// Get returns the reading and whether it is defined.
func (x Value) Get() (float64, bool) { return x.v, x.ok }

// Valid reports whether the reading is defined.
func (x Value) Valid() bool { return x.ok }

// Or returns the reading, or def when unavailable.
func (x Value) Or(def float64) float64 {
	if !x.ok {
		return def
	}
	return x.v
}

// Ptr returns a pointer to the reading, nil when unavailable. Used for nullable columns.
func (x Value) Ptr() *float64 {
	if !x.ok {
		return nil
	}
	v := x.v
	return &v
}

// MarshalJSON encodes an unavailable reading as null.
func (x Value) MarshalJSON() ([]byte, error) {
	if !x.ok {
		return []byte("null"), nil
	}
	return json.Marshal(x.v)
}

// UnmarshalJSON decodes null as unavailable.
func (x *Value) UnmarshalJSON(data []byte) error {
	var p *float64
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p == nil {
		*x = Value{}
		return nil
	}
	*x = Some(*p)
	return nil
}

// Gt reports x > y; false when either side is unavailable.
func Gt(x, y Value) bool {
	return x.ok && y.ok && x.v > y.v
}

// Lt reports x < y; false when either side is unavailable.
func Lt(x, y Value) bool {
	return x.ok && y.ok && x.v < y.v
}
