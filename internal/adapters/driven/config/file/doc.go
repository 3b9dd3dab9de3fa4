// Package file provides a TOML-backed config store for non-secret
// application settings.
package file
