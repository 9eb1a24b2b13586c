// Package harness runs YAML scenarios against a live group store.
//
// A scenario declares a population, optional CUE schema and a list of
// timed steps. Each step is scheduled on the engine at its time, so the
// run follows the same tick rules as a simulation: steps at equal times
// run in file order and removed groups are purged at the tick boundary.
//
// # Scenario Format
//
//	name: household_lifecycle
//	description: "Members join, leave and are sampled"
//	seed: 7
//	schema: ../schema
//	people: 4
//	streams: [matching]
//	steps:
//	  - at: 0
//	    op: add_group
//	    group_type: Household
//	    values: {tenure: own}
//	    expect_group: 0
//	  - at: 1
//	    op: add_member
//	    person: 0
//	    group: 0
//	  - at: 2
//	    op: set_property
//	    group: 0
//	    property: tenure
//	    value: rent
//	    expect_error: IMMUTABLE_VALUE
//	assertions:
//	  - type: group_members
//	    group: 0
//	    people: [0]
//
// # Operations
//
//   - add_group_type: group_type
//   - define_property: group_type, property, kind, width, symbols, default,
//     mutable, track_times, group_values
//   - add_group: group_type, values, expect_group
//   - add_member, remove_member: person, group
//   - set_property: group, property, value
//   - remove_group: group
//   - remove_person: person
//   - sample: group, weights, exclude, stream, expect_person, expect_empty
//
// Any step may set expect_error to a contract error code. A step that
// fails without expecting it, or succeeds when an error was expected,
// fails the scenario.
//
// # Assertion Types
//
//   - group_members: the members of a group, in any order
//   - person_groups: the groups of a person, in any order
//   - property_value: the effective value of a group property
//   - group_exists: whether a group id is live
//   - group_count: the number of groups of a type
//   - event_count: how many events of a type were published
//
// # Deterministic Testing
//
// Random streams are seeded from the scenario seed, and the final state is
// exported as canonical checkpoint JSON. RunWithGolden compares that JSON
// with testdata/golden/<name>.golden.
package harness
