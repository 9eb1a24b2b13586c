package ir

import (
	"math"
	"slices"
)

// PropertyDefinition is the schema of one property under one group type.
//
// The zero IntWidth and FloatWidth mean 64. Default nil means the property
// is mandatory: every group of the owning type must carry an explicit value.
type PropertyDefinition struct {
	Kind       ValueKind `json:"kind"`
	IntWidth   int       `json:"int_width,omitempty"`
	FloatWidth int       `json:"float_width,omitempty"`
	Symbols    []string  `json:"symbols,omitempty"`
	Default    Value     `json:"-"`
	Mutable    bool      `json:"mutable"`
	TrackTimes bool      `json:"track_times"`
}

// HasDefault reports whether the definition supplies a default value.
func (d PropertyDefinition) HasDefault() bool {
	return d.Default != nil
}

// Width returns the effective storage width for int and float kinds.
func (d PropertyDefinition) Width() int {
	switch d.Kind {
	case KindInt:
		if d.IntWidth == 0 {
			return 64
		}
		return d.IntWidth
	case KindFloat:
		if d.FloatWidth == 0 {
			return 64
		}
		return d.FloatWidth
	default:
		return 0
	}
}

// Ordinal returns the index of symbol within an enum definition, or -1.
func (d PropertyDefinition) Ordinal(symbol Enum) int {
	return slices.Index(d.Symbols, string(symbol))
}

// Validate checks that the definition is internally consistent.
func (d PropertyDefinition) Validate() error {
	if !d.Kind.Valid() {
		return NewError(ErrMalformedDef, "unknown value kind %d", int(d.Kind))
	}
	switch d.Kind {
	case KindInt:
		switch d.IntWidth {
		case 0, 8, 16, 32, 64:
		default:
			return NewError(ErrMalformedDef, "int width %d must be 8, 16, 32 or 64", d.IntWidth)
		}
	case KindFloat:
		switch d.FloatWidth {
		case 0, 32, 64:
		default:
			return NewError(ErrMalformedDef, "float width %d must be 32 or 64", d.FloatWidth)
		}
	case KindEnum:
		if len(d.Symbols) == 0 {
			return NewError(ErrMalformedDef, "enum definition declares no symbols")
		}
		seen := make(map[string]bool, len(d.Symbols))
		for _, s := range d.Symbols {
			if s == "" || seen[s] {
				return NewError(ErrMalformedDef, "enum symbol %q is empty or repeated", s)
			}
			seen[s] = true
		}
	}
	if d.Kind != KindEnum && len(d.Symbols) > 0 {
		return NewError(ErrMalformedDef, "symbols are only valid for enum definitions")
	}
	if d.Default != nil && !d.Accepts(d.Default) {
		return NewError(ErrIncompatibleValue, "default %v is not assignable to %s", d.Default, d.Kind)
	}
	return nil
}

// Accepts reports whether v can be stored under this definition. Non-finite
// floats and object payloads outside the canonical JSON set are refused,
// since a checkpoint could not encode them.
func (d PropertyDefinition) Accepts(v Value) bool {
	if v == nil || v.Kind() != d.Kind {
		return false
	}
	switch val := v.(type) {
	case Int:
		bits := d.Width()
		if bits == 64 {
			return true
		}
		limit := int64(1) << (bits - 1)
		return int64(val) >= -limit && int64(val) < limit
	case Float:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
		return d.Width() != 32 || math.Abs(f) <= math.MaxFloat32
	case Enum:
		return d.Ordinal(val) >= 0
	case Object:
		return CheckObjectData(val.Data) == nil
	default:
		return true
	}
}

// PropertySpec pairs a property id with its definition.
type PropertySpec struct {
	ID         PropertyID
	Definition PropertyDefinition
}

// GroupTypeSpec is a compiled group type: its id and its property schema in
// declaration order.
type GroupTypeSpec struct {
	ID         GroupTypeID
	Properties []PropertySpec
}
