// Package property stores group property values and the per-type property
// schema.
//
// A Manager holds one property's values across every group id. Its storage
// is chosen once, from the definition's value kind, and never changes: a
// boolean property lives in two bitsets, an enum in an ordinal table, and so
// on. A Catalog groups the managers of one group type and owns the coverage
// check for mandatory properties, those defined without a default.
//
// Callers validate through the Catalog before writing through a Manager.
// Managers assume their input has been validated and panic on a kind
// mismatch.
package property
