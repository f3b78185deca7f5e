package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the regcore home directory.
	DefaultDirName = ".regcore"

	// DataDirName is the subdirectory for ingested regulation data and indices.
	DataDirName = "data"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// pagesDirName holds one subdirectory per ingested regulation.
	pagesDirName = "pages"

	// indexDirName holds the lexical and vector index state.
	indexDirName = "index"

	// lexicalDirName is the bleve index subdirectory under indexDirName.
	lexicalDirName = "lexical"

	// vectorDirName is the chromem-go collection subdirectory under indexDirName.
	vectorDirName = "vector"
)

// Dir represents the regcore home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.regcore).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DataPath returns the path to the data directory.
func (d *Dir) DataPath() string {
	return filepath.Join(d.path, DataDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// PagesDir returns the directory holding every ingested regulation.
func (d *Dir) PagesDir() string {
	return filepath.Join(d.DataPath(), pagesDirName)
}

// RegulationDir returns the directory for a single regulation's pages,
// manifest, and table registry.
func (d *Dir) RegulationDir(regID string) string {
	return filepath.Join(d.PagesDir(), regID)
}

// IndexDir returns the root directory for index state.
func (d *Dir) IndexDir() string {
	return filepath.Join(d.DataPath(), indexDirName)
}

// LexicalIndexDir returns the bleve index directory.
func (d *Dir) LexicalIndexDir() string {
	return filepath.Join(d.IndexDir(), lexicalDirName)
}

// VectorIndexDir returns the chromem-go collection directory.
func (d *Dir) VectorIndexDir() string {
	return filepath.Join(d.IndexDir(), vectorDirName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.DataPath(), d.PagesDir(), d.LexicalIndexDir(), d.VectorIndexDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
