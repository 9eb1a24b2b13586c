package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/cohort/internal/ir"
)

// propertyFields are the fields a property declaration may carry.
var propertyFields = map[string]bool{
	"kind":        true,
	"width":       true,
	"symbols":     true,
	"default":     true,
	"mutable":     true,
	"track_times": true,
}

// CompileSchema compiles every entry under group_type in declaration order.
// A value without group_type compiles to no types.
func CompileSchema(v cue.Value) ([]ir.GroupTypeSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	typesVal := v.LookupPath(cue.ParsePath("group_type"))
	if !typesVal.Exists() {
		return nil, nil
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var specs []ir.GroupTypeSpec
	for iter.Next() {
		spec, err := CompileGroupType(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// CompileGroupType parses a CUE value into a GroupTypeSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the group type struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`group_type: Household: { ... }`)
//	spec, err := CompileGroupType(v.LookupPath(cue.ParsePath("group_type.Household")))
func CompileGroupType(v cue.Value) (*ir.GroupTypeSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.GroupTypeSpec{}

	// Type id comes from the struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.ID = ir.GroupTypeID(labels[len(labels)-1].Unquoted())
	}
	if spec.ID.IsNull() {
		return nil, &CompileError{
			Field:   "group_type",
			Message: "group type must be declared under a label",
			Pos:     v.Pos(),
		}
	}

	// Properties are optional; a type may gain them at run time.
	propsVal := v.LookupPath(cue.ParsePath("property"))
	if !propsVal.Exists() {
		return spec, nil
	}
	iter, err := propsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		prop, err := parseProperty(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Properties = append(spec.Properties, prop)
	}
	return spec, nil
}

// parseProperty extracts one property declaration.
func parseProperty(name string, v cue.Value) (ir.PropertySpec, error) {
	field := func(f string) string { return "property." + name + "." + f }

	fields, err := v.Fields()
	if err != nil {
		return ir.PropertySpec{}, formatCUEError(err)
	}
	for fields.Next() {
		label := fields.Selector().Unquoted()
		if !propertyFields[label] {
			return ir.PropertySpec{}, &CompileError{
				Field:   field(label),
				Message: fmt.Sprintf("unknown property field %q", label),
				Pos:     fields.Value().Pos(),
			}
		}
	}

	// kind (required)
	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return ir.PropertySpec{}, &CompileError{
			Field:   field("kind"),
			Message: "kind is required",
			Pos:     v.Pos(),
		}
	}
	kindName, err := kindVal.String()
	if err != nil {
		return ir.PropertySpec{}, formatCUEError(err)
	}
	kind, err := ir.ParseValueKind(kindName)
	if err != nil {
		return ir.PropertySpec{}, &CompileError{Field: field("kind"), Message: err.Error(), Pos: kindVal.Pos()}
	}

	def := ir.PropertyDefinition{Kind: kind, Mutable: true}

	if widthVal := v.LookupPath(cue.ParsePath("width")); widthVal.Exists() {
		width, err := widthVal.Int64()
		if err != nil {
			return ir.PropertySpec{}, formatCUEError(err)
		}
		switch kind {
		case ir.KindInt:
			def.IntWidth = int(width)
		case ir.KindFloat:
			def.FloatWidth = int(width)
		default:
			return ir.PropertySpec{}, &CompileError{
				Field:   field("width"),
				Message: fmt.Sprintf("width is only valid for int and float, not %s", kind),
				Pos:     widthVal.Pos(),
			}
		}
	}

	if symVal := v.LookupPath(cue.ParsePath("symbols")); symVal.Exists() {
		iter, err := symVal.List()
		if err != nil {
			return ir.PropertySpec{}, formatCUEError(err)
		}
		for iter.Next() {
			s, err := iter.Value().String()
			if err != nil {
				return ir.PropertySpec{}, formatCUEError(err)
			}
			def.Symbols = append(def.Symbols, s)
		}
	}

	if mutVal := v.LookupPath(cue.ParsePath("mutable")); mutVal.Exists() {
		if def.Mutable, err = mutVal.Bool(); err != nil {
			return ir.PropertySpec{}, formatCUEError(err)
		}
	}
	if ttVal := v.LookupPath(cue.ParsePath("track_times")); ttVal.Exists() {
		if def.TrackTimes, err = ttVal.Bool(); err != nil {
			return ir.PropertySpec{}, formatCUEError(err)
		}
	}

	if defVal := v.LookupPath(cue.ParsePath("default")); defVal.Exists() {
		def.Default, err = parseDefault(kind, defVal)
		if err != nil {
			return ir.PropertySpec{}, err
		}
	}

	if err := def.Validate(); err != nil {
		return ir.PropertySpec{}, &CompileError{Field: "property." + name, Message: err.Error(), Pos: v.Pos()}
	}
	return ir.PropertySpec{ID: ir.PropertyID(name), Definition: def}, nil
}

// parseDefault decodes a default into the Value of the declared kind.
func parseDefault(kind ir.ValueKind, v cue.Value) (ir.Value, error) {
	var (
		val ir.Value
		err error
	)
	switch kind {
	case ir.KindBool:
		var b bool
		b, err = v.Bool()
		val = ir.Bool(b)
	case ir.KindInt:
		var i int64
		i, err = v.Int64()
		val = ir.Int(i)
	case ir.KindFloat:
		var f float64
		f, err = v.Float64()
		val = ir.Float(f)
	case ir.KindEnum:
		var s string
		s, err = v.String()
		val = ir.Enum(s)
	case ir.KindObject:
		var data any
		if err = v.Decode(&data); err == nil {
			val, err = ir.NewObject(data)
		}
	}
	if err != nil {
		if ce := formatCUEError(err); ce != err {
			return nil, ce
		}
		return nil, &CompileError{Field: "default", Message: err.Error(), Pos: v.Pos()}
	}
	return val, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
