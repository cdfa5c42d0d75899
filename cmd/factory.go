package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meltosvc/tvc/internal/config"
	"github.com/meltosvc/tvc/internal/engine"
	"github.com/meltosvc/tvc/internal/fs"
)

func findRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ".meltos")); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a meltos repository (or any parent up to /)")
		}
		dir = parent
	}
}

// openEngine discovers the repository root by walking up from the working
// directory for a ".meltos" subtree, loads its meltos.toml, and wires an
// Engine over the disk filesystem rooted there.
func openEngine() (*engine.Engine, error) {
	root, err := findRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(filepath.Join(root, "meltos.toml"))
	if err != nil {
		return nil, err
	}
	return engine.Open(fs.NewDisk(root), cfg, slog.Default()), nil
}
