package ports

// Downloader hands a finished file to the user.
type Downloader interface {
	// Download stores data under name and returns where it ended up.
	Download(name, mimeType string, data []byte) (string, error)
}
