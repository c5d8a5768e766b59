// Package paths resolves the on-disk locations wd40 reads and writes outside
// the scanned tree: the user configuration file, the audit record directory
// and the diagnostic log.
//
// Locations follow the XDG Base Directory layout. Each one can be pinned with
// an environment variable, which is also how the tests keep runs hermetic:
//
//	WD40_CONFIG_DIR  directory holding config.toml
//	WD40_CACHE_DIR   directory holding the clean-*.log audit records
//	XDG_STATE_HOME   base of the diagnostic log (wd40/wd40.log)
package paths
