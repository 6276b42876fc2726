package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputDir writes flat files into one directory and nowhere else.
type OutputDir struct {
	root string // absolute, symlinks resolved
}

// Open creates dir if needed and pins it.
func Open(dir string) (*OutputDir, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("safeio: empty output dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if abs, err = filepath.EvalSymlinks(abs); err != nil {
		return nil, err
	}
	return &OutputDir{root: abs}, nil
}

func (d *OutputDir) Root() string { return d.root }

// WriteFile replaces name inside the directory and returns its path. name
// must be a bare file name. The content is written to a temp file first so
// readers never see a partial artifact, and an existing symlink at name is
// refused.
func (d *OutputDir) WriteFile(name string, data []byte) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("safeio: %q is not a plain file name", name)
	}
	target := filepath.Join(d.root, name)
	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return "", fmt.Errorf("safeio: refusing to write through symlink %s", target)
	}

	tmp, err := os.CreateTemp(d.root, "."+name+".*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	return target, os.Rename(tmp.Name(), target)
}
