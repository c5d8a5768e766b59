// Package filesystem provides filesystem implementations for wd40.
//
// This package contains implementations of the types.FS interface: the
// standard OS filesystem used for real scans, and an afero adapter used by
// tests to build fixture trees in memory.
package filesystem
