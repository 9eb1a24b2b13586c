// Package group implements the group membership store.
//
// The Manager is the only writer of group state. Every mutation validates
// all of its preconditions first, in a fixed order (null ids, then
// existence, then semantic checks), and changes nothing when any check
// fails. After a mutation is applied, an observation event is built and
// published only when the bus reports a subscriber for that event type.
//
// Groups are addressed by dense ids from a counter that never goes
// backwards. Removing a group publishes GroupImminentlyRemoved at once and
// queues the group for purging. The owner of the tick loop calls
// PurgePending at each tick boundary, so observers running at the same
// simulation time still see the group.
//
// A Manager is not safe for concurrent use. All calls must come from the
// goroutine that drives the simulation.
package group
