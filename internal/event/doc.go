// Package event defines the observation events emitted by the group store,
// declarative filters over them and a synchronous in-process bus.
//
// Filters never run caller code. A filter is a conjunction of clauses, each
// naming a field extractor of the event type and the value that field must
// equal. The bus evaluates filters itself, so routing stays cheap and
// deterministic.
package event
