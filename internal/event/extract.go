package event

import (
	"fmt"
	"strings"
)

// Field names shared by the extractors.
const (
	FieldGroupID    = "group_id"
	FieldGroupType  = "group_type"
	FieldPersonID   = "person_id"
	FieldPropertyID = "property_id"
)

// Extractor reads one named field from events of one type.
type Extractor struct {
	Name    string
	Type    Type
	Extract func(Event) any
}

var extractors = [numTypes][]Extractor{
	TypeGroupTypeAdded: {
		{FieldGroupType, TypeGroupTypeAdded, func(e Event) any { return e.(GroupTypeAdded).GroupType }},
	},
	TypeGroupAdded: {
		{FieldGroupID, TypeGroupAdded, func(e Event) any { return e.(GroupAdded).Group }},
		{FieldGroupType, TypeGroupAdded, func(e Event) any { return e.(GroupAdded).GroupType }},
	},
	TypeGroupImminentlyRemoved: {
		{FieldGroupID, TypeGroupImminentlyRemoved, func(e Event) any { return e.(GroupImminentlyRemoved).Group }},
		{FieldGroupType, TypeGroupImminentlyRemoved, func(e Event) any { return e.(GroupImminentlyRemoved).GroupType }},
	},
	TypeGroupMembershipAdded: {
		{FieldGroupID, TypeGroupMembershipAdded, func(e Event) any { return e.(GroupMembershipAdded).Group }},
		{FieldGroupType, TypeGroupMembershipAdded, func(e Event) any { return e.(GroupMembershipAdded).GroupType }},
		{FieldPersonID, TypeGroupMembershipAdded, func(e Event) any { return e.(GroupMembershipAdded).Person }},
	},
	TypeGroupMembershipRemoved: {
		{FieldGroupID, TypeGroupMembershipRemoved, func(e Event) any { return e.(GroupMembershipRemoved).Group }},
		{FieldGroupType, TypeGroupMembershipRemoved, func(e Event) any { return e.(GroupMembershipRemoved).GroupType }},
		{FieldPersonID, TypeGroupMembershipRemoved, func(e Event) any { return e.(GroupMembershipRemoved).Person }},
	},
	TypeGroupPropertyDefined: {
		{FieldGroupType, TypeGroupPropertyDefined, func(e Event) any { return e.(GroupPropertyDefined).GroupType }},
		{FieldPropertyID, TypeGroupPropertyDefined, func(e Event) any { return e.(GroupPropertyDefined).Property }},
	},
	TypeGroupPropertyUpdated: {
		{FieldGroupID, TypeGroupPropertyUpdated, func(e Event) any { return e.(GroupPropertyUpdated).Group }},
		{FieldGroupType, TypeGroupPropertyUpdated, func(e Event) any { return e.(GroupPropertyUpdated).GroupType }},
		{FieldPropertyID, TypeGroupPropertyUpdated, func(e Event) any { return e.(GroupPropertyUpdated).Property }},
	},
}

// Field returns the extractor for the named field of events of type t.
func Field(t Type, name string) (Extractor, bool) {
	if !t.Valid() {
		return Extractor{}, false
	}
	for _, x := range extractors[t] {
		if x.Name == name {
			return x, true
		}
	}
	return Extractor{}, false
}

// MustField is Field for names known at compile time. It panics when the
// field does not exist.
func MustField(t Type, name string) Extractor {
	x, ok := Field(t, name)
	if !ok {
		panic(fmt.Sprintf("event: %s has no field %q", t, name))
	}
	return x
}

// Fields returns the extractors of events of type t in a fixed order.
func Fields(t Type) []Extractor {
	if !t.Valid() {
		return nil
	}
	return append([]Extractor(nil), extractors[t]...)
}

// Describe formats e as its type name followed by its extracted fields.
func Describe(e Event) string {
	var b strings.Builder
	b.WriteString(e.Type().String())
	for _, x := range extractors[e.Type()] {
		fmt.Fprintf(&b, " %s=%v", x.Name, x.Extract(e))
	}
	if u, ok := e.(GroupPropertyUpdated); ok {
		fmt.Fprintf(&b, " previous=%v current=%v", u.Previous, u.Current)
	}
	return b.String()
}
