// Package ir provides the foundation types shared by every cohort package.
//
// This package contains identifiers, value kinds, the sealed Value union,
// property definitions, the caller-facing contract error taxonomy and the
// canonical JSON encoding used for checkpoints. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Group and person ids are dense non-negative ints; negative means null
//   - Group type and property ids are strings; empty means null
//   - Value is sealed: only Bool, Int, Float, Enum and Object implement it
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only encoding
//     used for checkpoint digests
package ir
