// Package ironerr defines the typed errors that cross component boundaries,
// following the same hand-rolled sentinel/wrapped-error style the teacher
// module uses throughout decoder.go, keys.go, and verifier.go rather than
// adopting an error-handling library the corpus itself does not use.
package ironerr

import "fmt"

// ManifestMissing means a dataset directory has no manifest file. Fatal for
// read, insert, and delete.
type ManifestMissing struct {
	Dataset string
}

func (e *ManifestMissing) Error() string {
	return fmt.Sprintf("ironclad: dataset %q has no manifest", e.Dataset)
}

// ManifestMalformed means the manifest file exists but failed to parse.
// Fatal for read, insert, and delete.
type ManifestMalformed struct {
	Dataset string
	Cause   error
}

func (e *ManifestMalformed) Error() string {
	return fmt.Sprintf("ironclad: dataset %q has a malformed manifest: %v", e.Dataset, e.Cause)
}

func (e *ManifestMalformed) Unwrap() error { return e.Cause }

// InsufficientShards means fewer than N valid shards were available for a
// stripe. Aborts the read of that stripe, and the whole command.
type InsufficientShards struct {
	Stripe  uint64
	Present int
	Needed  int
}

func (e *InsufficientShards) Error() string {
	return fmt.Sprintf("ironclad: stripe %d has only %d valid shards, need %d",
		e.Stripe, e.Present, e.Needed)
}

// ShardCorrupt marks one shard as failing its integrity check. It is not
// user-fatal by itself: the stripe pipeline catches it and treats the shard
// as an erasure. It is exposed here so callers can log it.
type ShardCorrupt struct {
	Stripe uint64
	Shard  uint16
	Cause  error
}

func (e *ShardCorrupt) Error() string {
	return fmt.Sprintf("ironclad: shard (stripe=%d, shard=%d) failed integrity check: %v",
		e.Stripe, e.Shard, e.Cause)
}

func (e *ShardCorrupt) Unwrap() error { return e.Cause }

// AontIntegrity means the AEAD tag failed to verify after RS decode. This
// should only happen if the integrity gate upstream let a corrupted stripe
// through.
type AontIntegrity struct {
	Stripe uint64
	Cause  error
}

func (e *AontIntegrity) Error() string {
	return fmt.Sprintf("ironclad: stripe %d failed AONT integrity check: %v", e.Stripe, e.Cause)
}

func (e *AontIntegrity) Unwrap() error { return e.Cause }

// IoError wraps an underlying filesystem error with the operation that
// triggered it.
type IoError struct {
	Op    string
	Cause error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("ironclad: %s: %v", e.Op, e.Cause)
}

func (e *IoError) Unwrap() error { return e.Cause }

// InvalidArgument means a command received a bad offset, length, or flag.
// Fatal before any mutation is attempted.
type InvalidArgument struct {
	Msg string
}

func (e *InvalidArgument) Error() string {
	return fmt.Sprintf("ironclad: invalid argument: %s", e.Msg)
}
