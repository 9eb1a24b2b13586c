package ir

import "fmt"

// GroupID identifies a group. Ids are issued by a monotonic counter and are
// never reused, even after the group is removed.
type GroupID int

// NoGroup is the null group id. Any negative GroupID is treated as null.
const NoGroup GroupID = -1

// IsNull reports whether the id is the null group id.
func (id GroupID) IsNull() bool {
	return id < 0
}

func (id GroupID) String() string {
	if id.IsNull() {
		return "group(null)"
	}
	return fmt.Sprintf("group(%d)", int(id))
}

// PersonID identifies a member. Person ids are owned by the population
// source; this store only records membership edges.
type PersonID int

// NoPerson is the null person id. Any negative PersonID is treated as null.
const NoPerson PersonID = -1

// IsNull reports whether the id is the null person id.
func (id PersonID) IsNull() bool {
	return id < 0
}

func (id PersonID) String() string {
	if id.IsNull() {
		return "person(null)"
	}
	return fmt.Sprintf("person(%d)", int(id))
}

// GroupTypeID identifies a group type. The empty string is null.
type GroupTypeID string

// IsNull reports whether the id is empty.
func (id GroupTypeID) IsNull() bool {
	return id == ""
}

// PropertyID identifies a property within one group type. The empty string
// is null.
type PropertyID string

// IsNull reports whether the id is empty.
func (id PropertyID) IsNull() bool {
	return id == ""
}
