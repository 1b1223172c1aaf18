package workspace

// DirEntry is one entry of a directory listing.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FileSystem is the workspace file-system contract consumed by the
// build core. All paths are workspace-relative and /-separated.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	Exists(path string) bool
	MkdirAll(path string) error
	ReadDir(path string) ([]DirEntry, error)
	// Remove deletes a file. Removing an absent file is an error;
	// callers that want idempotent deletion check Exists first.
	Remove(path string) error
}
