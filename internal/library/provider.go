// Package library reads and writes scale library files and keeps the scale
// store in step with them.
package library

import "time"

// FileMeta describes one library file.
type FileMeta struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for library file operations. Paths are relative
// to the library root.
type Provider interface {
	// List returns metadata for every file matching the include patterns.
	List() ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Matches reports whether path is a library file.
	Matches(path string) bool
}
