package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-regcore")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-regcore" {
			t.Errorf("expected path /tmp/test-regcore, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-regcore")

	t.Run("DataPath", func(t *testing.T) {
		expected := "/tmp/test-regcore/data"
		if dir.DataPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.DataPath())
		}
	})

	t.Run("ConfigPath", func(t *testing.T) {
		expected := "/tmp/test-regcore/config.yaml"
		if dir.ConfigPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.ConfigPath())
		}
	})

	t.Run("PagesDir", func(t *testing.T) {
		expected := "/tmp/test-regcore/data/pages"
		if dir.PagesDir() != expected {
			t.Errorf("expected %s, got %s", expected, dir.PagesDir())
		}
	})

	t.Run("RegulationDir", func(t *testing.T) {
		expected := "/tmp/test-regcore/data/pages/gb-38755-2019"
		if got := dir.RegulationDir("gb-38755-2019"); got != expected {
			t.Errorf("expected %s, got %s", expected, got)
		}
	})

	t.Run("LexicalIndexDir", func(t *testing.T) {
		expected := "/tmp/test-regcore/data/index/lexical"
		if dir.LexicalIndexDir() != expected {
			t.Errorf("expected %s, got %s", expected, dir.LexicalIndexDir())
		}
	})

	t.Run("VectorIndexDir", func(t *testing.T) {
		expected := "/tmp/test-regcore/data/index/vector"
		if dir.VectorIndexDir() != expected {
			t.Errorf("expected %s, got %s", expected, dir.VectorIndexDir())
		}
	})
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	regDir := filepath.Join(tmpDir, "regcore-test")

	dir, err := New(regDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Error("directory should not exist before EnsureExists")
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	if !dir.Exists() {
		t.Error("directory should exist after EnsureExists")
	}

	for _, sub := range []string{dir.DataPath(), dir.PagesDir(), dir.LexicalIndexDir(), dir.VectorIndexDir()} {
		if _, err := os.Stat(sub); os.IsNotExist(err) {
			t.Errorf("expected %s to exist after EnsureExists", sub)
		}
	}
}

func TestDir_ConfigExists(t *testing.T) {
	tmpDir := t.TempDir()
	dir, _ := New(tmpDir)

	if dir.ConfigExists() {
		t.Error("config should not exist initially")
	}

	configPath := dir.ConfigPath()
	if err := os.WriteFile(configPath, []byte("test: true\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if !dir.ConfigExists() {
		t.Error("config should exist after creation")
	}
}
