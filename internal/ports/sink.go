package ports

// FileSink saves generated files such as CSV exports.
type FileSink interface {
	// WriteFile stores data under name and returns the full path written.
	WriteFile(name string, data []byte) (string, error)
}
