// Package engine implements the single-writer tick scheduler that drives a
// simulation.
//
// ARCHITECTURE:
//
// Single-Writer Loop:
// Every plan and request runs on the goroutine that called Run, one at a
// time and to completion. Store mutations therefore never interleave.
//
// Tick Processing:
//  1. External requests queued with Enqueue run in the order issued.
//  2. Plans scheduled for the current time run in scheduling order.
//  3. When no work is left at the current time, boundary hooks run. This is
//     where deferred group purges happen.
//  4. Time advances to the next scheduled plan.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Every plan is stamped with a monotonic seq from the Clock. Plans at equal
// times run in seq order, so a replay of the same schedule is identical.
//
// Log and Continue:
// A plan or request that returns an error is logged with its name and the
// current time, and processing continues.
package engine
