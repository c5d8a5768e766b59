// Package testutil provides fixture-tree builders and fault-injecting
// filesystems for wd40 tests.
//
// A tree is described as a map from slash-separated relative paths to file
// contents. Keys ending in "/" create directories:
//
//	testutil.Tree{
//		"proj/Cargo.toml":         "[package]",
//		"proj/target/CACHEDIR.TAG": testutil.CacheDirTag,
//		"proj/target/debug/":      "",
//	}
package testutil
