// Package file provides a TOML file-based key-value store for
// settings and conversation history.
//
// The file is shared with outside collaborators (a settings editor or
// the user's own hands), so the store can watch it for external
// changes and notify the application to reload.
package file
