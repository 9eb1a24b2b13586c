package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainCheckpoint = "cohort/checkpoint/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CheckpointDigest computes the content digest of a canonical checkpoint
// encoding. Two stores with equal exports have equal digests.
func CheckpointDigest(canonical []byte) string {
	return hashWithDomain(DomainCheckpoint, canonical)
}
