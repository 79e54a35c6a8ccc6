package rosconfig

import (
	"io/fs"
	"time"
)

// Package represents a single rendered script.
// The planner emits one package named "script"; callers may split output
// into more packages, e.g. one per collection.
type Package struct {
	Name    string // Package name (e.g., "script")
	Content []byte // Script content, newline terminated
}

// File represents an additional file (certificates, keys, scripts)
// that should be uploaded alongside the script.
type File struct {
	Path    string      // Path on the device
	Content []byte      // File content (binary-safe)
	Mode    fs.FileMode // Unix file permissions (e.g., 0644, 0600)
}

// Metadata stores information about how and when the script was generated.
type Metadata struct {
	Format    string            // Format identifier ("routeros-script")
	Backend   string            // Backend or source that produced the target
	Generated time.Time         // Timestamp when the bundle was created
	Version   string            // Optional version tag
	Custom    map[string]string // Extensible metadata (checksum, mutation counts)
}

// Bundle represents the complete output of a render operation.
type Bundle struct {
	Packages []Package
	Files    []File
	Metadata Metadata
}

// NewBundle creates an empty Bundle with initialized metadata.
// The Generated timestamp is set to the current time.
func NewBundle(format, backend string) *Bundle {
	return &Bundle{
		Packages: make([]Package, 0),
		Files:    make([]File, 0),
		Metadata: Metadata{
			Format:    format,
			Backend:   backend,
			Generated: time.Now(),
			Custom:    make(map[string]string),
		},
	}
}

// Package returns the package called name.
func (b *Bundle) Package(name string) (Package, bool) {
	for _, p := range b.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}
