package ir

// Version constants for the checkpoint format and the store.
const (
	// SnapshotVersion is the checkpoint schema version.
	SnapshotVersion = "1"

	// StoreVersion is the cohort store version.
	StoreVersion = "0.1.0"
)
