package event

import (
	"fmt"

	"github.com/roach88/cohort/internal/ir"
)

// Type identifies one kind of observation event.
type Type int

const (
	TypeGroupTypeAdded Type = iota + 1
	TypeGroupAdded
	TypeGroupImminentlyRemoved
	TypeGroupMembershipAdded
	TypeGroupMembershipRemoved
	TypeGroupPropertyDefined
	TypeGroupPropertyUpdated
)

// numTypes is one past the highest Type.
const numTypes = int(TypeGroupPropertyUpdated) + 1

var typeNames = [numTypes]string{
	TypeGroupTypeAdded:         "GroupTypeAdded",
	TypeGroupAdded:             "GroupAdded",
	TypeGroupImminentlyRemoved: "GroupImminentlyRemoved",
	TypeGroupMembershipAdded:   "GroupMembershipAdded",
	TypeGroupMembershipRemoved: "GroupMembershipRemoved",
	TypeGroupPropertyDefined:   "GroupPropertyDefined",
	TypeGroupPropertyUpdated:   "GroupPropertyUpdated",
}

func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Valid reports whether t is a declared event type.
func (t Type) Valid() bool {
	return t > 0 && int(t) < numTypes
}

// Types returns every event type in declaration order.
func Types() []Type {
	out := make([]Type, 0, numTypes-1)
	for t := TypeGroupTypeAdded; int(t) < numTypes; t++ {
		out = append(out, t)
	}
	return out
}

// Event is a sealed interface for observation events.
// Only the structs in this package implement it.
type Event interface {
	eventNode()
	Type() Type
}

// GroupTypeAdded is emitted after a group type is registered.
type GroupTypeAdded struct {
	GroupType ir.GroupTypeID
}

func (GroupTypeAdded) eventNode() {}
func (GroupTypeAdded) Type() Type { return TypeGroupTypeAdded }

// GroupAdded is emitted after a group is created.
type GroupAdded struct {
	Group     ir.GroupID
	GroupType ir.GroupTypeID
}

func (GroupAdded) eventNode() {}
func (GroupAdded) Type() Type { return TypeGroupAdded }

// GroupImminentlyRemoved is emitted when a group is removed. The group
// remains readable until the end of the current tick.
type GroupImminentlyRemoved struct {
	Group     ir.GroupID
	GroupType ir.GroupTypeID
}

func (GroupImminentlyRemoved) eventNode() {}
func (GroupImminentlyRemoved) Type() Type { return TypeGroupImminentlyRemoved }

// GroupMembershipAdded is emitted after a person joins a group.
type GroupMembershipAdded struct {
	Person    ir.PersonID
	Group     ir.GroupID
	GroupType ir.GroupTypeID
}

func (GroupMembershipAdded) eventNode() {}
func (GroupMembershipAdded) Type() Type { return TypeGroupMembershipAdded }

// GroupMembershipRemoved is emitted after a person leaves a group.
type GroupMembershipRemoved struct {
	Person    ir.PersonID
	Group     ir.GroupID
	GroupType ir.GroupTypeID
}

func (GroupMembershipRemoved) eventNode() {}
func (GroupMembershipRemoved) Type() Type { return TypeGroupMembershipRemoved }

// GroupPropertyDefined is emitted after a property is defined on a type.
type GroupPropertyDefined struct {
	GroupType ir.GroupTypeID
	Property  ir.PropertyID
}

func (GroupPropertyDefined) eventNode() {}
func (GroupPropertyDefined) Type() Type { return TypeGroupPropertyDefined }

// GroupPropertyUpdated is emitted after a group property value changes.
// Previous is the value read before the assignment, default included.
type GroupPropertyUpdated struct {
	Group     ir.GroupID
	GroupType ir.GroupTypeID
	Property  ir.PropertyID
	Previous  ir.Value
	Current   ir.Value
}

func (GroupPropertyUpdated) eventNode() {}
func (GroupPropertyUpdated) Type() Type { return TypeGroupPropertyUpdated }
