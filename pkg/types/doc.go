// Package types holds the small interfaces shared across wd40's packages.
package types
