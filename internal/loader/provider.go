// Package loader reads Markdown sources from the site root.
package loader

// Provider is the interface for reading site source files.
type Provider interface {
	// List returns the root-relative, slash-separated path of every .md
	// file under dir (relative to the site root), in sorted order.
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to the site root).
	Read(path string) ([]byte, error)
	// Root returns the absolute path of the site root.
	Root() string
}
