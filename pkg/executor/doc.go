// Package executor provides the deletion engine for wd40.
//
// The executor takes one confirmed Candidate at a time and drives it through
// a small state machine:
//
//	Pending -> Sizing -> DryRunSkipped
//	Pending -> Sizing -> Deleting -> Deleted | DeleteFailed
//
// Sizing always happens first so dry runs report real byte estimates. A live
// deletion re-checks that the path is still a real directory, then removes
// it recursively without following symlinks. A failure only affects that
// candidate; partial removals are reported, never rolled back.
//
// An Executor holds no per-candidate state and is safe for concurrent use.
package executor
