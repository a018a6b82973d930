package filesink

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSink_WriteFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewDirSink(fs, "/reports/march")

	path, err := sink.WriteFile("results.csv", []byte(`"a","b"`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/reports/march", "results.csv"), path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, `"a","b"`, string(data))
}

func TestDirSink_DefaultsToWorkingDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	path, err := NewDirSink(fs, "").WriteFile("results.csv", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "results.csv", path)
}

func TestDirSink_RejectsPaths(t *testing.T) {
	sink := NewDirSink(afero.NewMemMapFs(), "/out")

	for _, name := range []string{"", "../escape.csv", "nested/file.csv"} {
		_, err := sink.WriteFile(name, []byte("x"))
		assert.Error(t, err, "name %q", name)
	}
}

func TestDirSink_ReadOnlyFs(t *testing.T) {
	sink := NewDirSink(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/out")

	_, err := sink.WriteFile("results.csv", []byte("x"))
	assert.Error(t, err)
}
