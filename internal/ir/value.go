package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueKind is the semantic kind of a property value. The set is closed.
type ValueKind int

const (
	// KindBool stores true/false values.
	KindBool ValueKind = iota + 1
	// KindInt stores integer values of width 8, 16, 32 or 64, widened to int64.
	KindInt
	// KindFloat stores 32- or 64-bit floating point values.
	KindFloat
	// KindEnum stores one symbol out of a declared list.
	KindEnum
	// KindObject stores an arbitrary JSON-compatible payload.
	KindObject
)

var kindNames = map[ValueKind]string{
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindEnum:   "enum",
	KindObject: "object",
}

func (k ValueKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k ValueKind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseValueKind converts a kind name ("bool", "int", ...) to a ValueKind.
func ParseValueKind(name string) (ValueKind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown value kind %q", name)
}

// Value is a sealed interface for property values.
// Only Bool, Int, Float, Enum and Object implement it.
type Value interface {
	isValue()
	Kind() ValueKind
}

// Bool is a boolean property value.
type Bool bool

func (Bool) isValue() {}
func (Bool) Kind() ValueKind { return KindBool }

// Int is an integer property value. Narrower widths are widened to int64.
type Int int64

func (Int) isValue() {}
func (Int) Kind() ValueKind { return KindInt }

// Float is a floating point property value.
type Float float64

func (Float) isValue() {}
func (Float) Kind() ValueKind { return KindFloat }

// Enum is an enumerated property value, identified by its symbol.
type Enum string

func (Enum) isValue() {}
func (Enum) Kind() ValueKind { return KindEnum }

// Object is an arbitrary property value. Data holds only JSON-compatible
// values: string, bool, int64, float64, []any and map[string]any.
type Object struct {
	Data any
}

func (Object) isValue() {}
func (Object) Kind() ValueKind { return KindObject }

// NewObject normalizes data into an Object. Integers are widened to int64,
// float32 to float64 and json.Number is resolved. nil is rejected.
func NewObject(data any) (Object, error) {
	norm, err := normalizeObjectData(data)
	if err != nil {
		return Object{}, err
	}
	return Object{Data: norm}, nil
}

func normalizeObjectData(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not a valid object payload")
	case string, bool, int64:
		return val, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("non-finite float %v", val)
		}
		return val, nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case float32:
		return normalizeObjectData(float64(val))
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", val.String())
		}
		return normalizeObjectData(f)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			n, err := normalizeObjectData(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			n, err := normalizeObjectData(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported object payload type %T", v)
	}
}

// CheckObjectData reports whether data is already in the normalized object
// payload form: string, bool, int64, finite float64, []any and
// map[string]any, nested to any depth.
func CheckObjectData(data any) error {
	switch val := data.(type) {
	case nil:
		return fmt.Errorf("null is not a valid object payload")
	case string, bool, int64:
		return nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("non-finite float %v", val)
		}
		return nil
	case []any:
		for i, elem := range val {
			if err := CheckObjectData(elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case map[string]any:
		for k, elem := range val {
			if err := CheckObjectData(elem); err != nil {
				return fmt.Errorf("[%q]: %w", k, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported object payload type %T", data)
	}
}

// TaggedValue is the serialized form of a Value. The kind travels with the
// payload so values survive a round trip through JSON or YAML unchanged.
type TaggedValue struct {
	Kind  string `json:"kind" yaml:"kind"`
	Value any    `json:"value" yaml:"value"`
}

// Tag converts a Value to its serialized form.
func Tag(v Value) TaggedValue {
	switch val := v.(type) {
	case Bool:
		return TaggedValue{Kind: KindBool.String(), Value: bool(val)}
	case Int:
		return TaggedValue{Kind: KindInt.String(), Value: int64(val)}
	case Float:
		return TaggedValue{Kind: KindFloat.String(), Value: float64(val)}
	case Enum:
		return TaggedValue{Kind: KindEnum.String(), Value: string(val)}
	case Object:
		return TaggedValue{Kind: KindObject.String(), Value: val.Data}
	default:
		panic(fmt.Sprintf("ir: unknown Value type %T", v))
	}
}

// Untag converts a serialized value back to a Value.
// Accepts the payload shapes produced by encoding/json (with UseNumber)
// and gopkg.in/yaml.v3.
func (t TaggedValue) Untag() (Value, error) {
	kind, err := ParseValueKind(t.Kind)
	if err != nil {
		return nil, err
	}
	return ValueOf(kind, t.Value)
}

// ValueOf converts a decoded payload to a Value of the given kind.
func ValueOf(kind ValueKind, raw any) (Value, error) {
	if raw == nil {
		return nil, fmt.Errorf("%s value is null", kind)
	}
	switch kind {
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("bool value has type %T", raw)
		}
		return Bool(b), nil
	case KindInt:
		i, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		return Int(i), nil
	case KindFloat:
		f, err := toFloat64(raw)
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case KindEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("enum value has type %T", raw)
		}
		return Enum(s), nil
	case KindObject:
		return NewObject(raw)
	default:
		return nil, fmt.Errorf("unknown value kind %d", int(kind))
	}
}

func toInt64(raw any) (int64, error) {
	switch n := raw.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int64", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, fmt.Errorf("number %v is not an integer", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("int value has type %T", raw)
	}
}

func toFloat64(raw any) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("float value has type %T", raw)
	}
}

// Equal reports whether two values have the same kind and payload.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if ao, ok := a.(Object); ok {
		bo := b.(Object)
		ac, err1 := MarshalCanonical(ao.Data)
		bc, err2 := MarshalCanonical(bo.Data)
		return err1 == nil && err2 == nil && string(ac) == string(bc)
	}
	return a == b
}
