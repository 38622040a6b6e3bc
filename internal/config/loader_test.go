package config

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewLoader(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		NewLoader("", TypeYAML, fstest.MapFS{})
	}, "config name is not set")
}

func TestLoader_RootConfig(t *testing.T) {
	t.Parallel()

	t.Run("without root config", func(t *testing.T) {
		t.Parallel()

		loader := NewLoader("notebook", TypeYAML, fstest.MapFS{}, WithLogger(zaptest.NewLogger(t)))
		result, err := loader.RootConfig()
		require.ErrorIs(t, err, ErrRootConfigNotFound)
		require.Nil(t, result)
	})

	t.Run("with root config", func(t *testing.T) {
		t.Parallel()

		data := []byte("version: v1alpha1\n")
		fsys := fstest.MapFS{
			"notebook.yaml": {Data: data},
		}
		loader := NewLoader("notebook", TypeYAML, fsys, WithLogger(zaptest.NewLogger(t)))
		result, err := loader.RootConfig()
		require.NoError(t, err)
		require.Equal(t, data, result)
	})
}

func TestLoader_FindConfigChain(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"notebook.yaml":             {Data: []byte("path:notebook.yaml")},
		"nested/notebook.yaml":      {Data: []byte("path:nested/notebook.yaml")},
		"nested/path/notebook.yaml": {Data: []byte("path:nested/path/notebook.yaml")},
		"nested/path/test.ipynb":    {Data: []byte("{}")},
		"other/notebook.yaml":       {Data: []byte("path:other/notebook.yaml")},
		"without/config":            {Mode: fs.ModeDir},
	}
	loader := NewLoader("notebook", TypeYAML, fsys, WithLogger(zaptest.NewLogger(t)))

	testCases := []struct {
		name     string
		path     string
		expected [][]byte
	}{
		{
			name:     "root config",
			path:     "",
			expected: [][]byte{[]byte("path:notebook.yaml")},
		},
		{
			name:     "nested config",
			path:     "nested",
			expected: [][]byte{[]byte("path:notebook.yaml"), []byte("path:nested/notebook.yaml")},
		},
		{
			name: "notebook file",
			path: "nested/path/test.ipynb",
			expected: [][]byte{
				[]byte("path:notebook.yaml"),
				[]byte("path:nested/notebook.yaml"),
				[]byte("path:nested/path/notebook.yaml"),
			},
		},
		{
			name:     "nested without config",
			path:     "without/config",
			expected: [][]byte{[]byte("path:notebook.yaml")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := loader.FindConfigChain(tc.path)
			require.NoError(t, err)
			require.Equal(t, tc.expected, result)
		})
	}

	t.Run("missing path", func(t *testing.T) {
		_, err := loader.FindConfigChain("missing")
		require.Error(t, err)
	})
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		loader := NewLoader("notebook", TypeYAML, fstest.MapFS{"test.ipynb": {Data: []byte("{}")}})
		cfg, err := loader.Load("test.ipynb")
		require.NoError(t, err)
		assert.Equal(t, Default().Undo, cfg.Undo)
	})

	t.Run("chain", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{
			"notebook.toml":        {Data: []byte("version = \"v1alpha1\"\n[undo]\nmax_entries = 5\n[search]\nmax_results_per_cell = 7\n")},
			"nested/notebook.toml": {Data: []byte("version = \"v1alpha1\"\n[undo]\nmax_entries = 10\n")},
			"nested/test.ipynb":    {Data: []byte("{}")},
		}
		loader := NewLoader("notebook", TypeTOML, fsys)
		cfg, err := loader.Load("nested/test.ipynb")
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Undo.MaxEntries)
		assert.Equal(t, 7, cfg.Search.MaxResultsPerCell)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{"notebook.yaml": {Data: []byte("version: v0\n")}}
		loader := NewLoader("notebook", TypeYAML, fsys)
		_, err := loader.Load("")
		require.ErrorContains(t, err, "unknown version: v0")
	})
}
