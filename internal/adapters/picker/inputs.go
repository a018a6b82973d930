package picker

import (
	"bufio"
	"strings"

	"github.com/spf13/afero"
)

// ParseListFile reads a file containing paths, one per line.
// Blank lines and lines starting with # are ignored.
func ParseListFile(fs afero.Fs, path string) ([]string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var paths []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip blank lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		paths = append(paths, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return paths, nil
}

// CollectInputs combines CLI arguments and list file entries.
// Args come first, then file entries; duplicates are removed by Pick.
func CollectInputs(fs afero.Fs, args []string, listFile string) ([]string, error) {
	paths := append([]string{}, args...)

	if listFile != "" {
		filePaths, err := ParseListFile(fs, listFile)
		if err != nil {
			return nil, err
		}
		paths = append(paths, filePaths...)
	}

	return paths, nil
}
