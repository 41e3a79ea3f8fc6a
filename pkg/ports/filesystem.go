package ports

// FileSystem abstracts the file operations used by the CLI and the downloader.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	Exists(path string) (bool, error)
	Remove(path string) error
}
