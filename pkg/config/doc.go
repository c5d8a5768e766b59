// Package config loads wd40's layered configuration.
//
// Layers, lowest precedence first:
//
//  1. the embedded defaults (embedded/defaults.toml)
//  2. the user file, $XDG_CONFIG_HOME/wd40/config.toml
//  3. a .wd40.toml at the scan root
//  4. WD40_* environment variables (WD40_SCAN_MAX_DEPTH sets scan.max_depth)
//  5. command-line flag overrides
//
// Missing files are skipped. Lists given through the environment are comma
// separated.
package config
