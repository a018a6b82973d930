package filesink

import (
	"fmt"
	"path/filepath"

	"github.com/devbush/compliancecheck/internal/ports"
	"github.com/spf13/afero"
)

// DirSink saves exported files into a directory, creating it on first use
type DirSink struct {
	fs  afero.Fs
	dir string
}

// NewDirSink creates a sink writing into dir. An empty dir means the
// working directory.
func NewDirSink(fs afero.Fs, dir string) *DirSink {
	if dir == "" {
		dir = "."
	}
	return &DirSink{fs: fs, dir: dir}
}

// WriteFile saves data under name and returns the full path
func (s *DirSink) WriteFile(name string, data []byte) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

var _ ports.FileSink = (*DirSink)(nil)
