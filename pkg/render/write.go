package render

import (
	"os"
	"path/filepath"

	"github.com/mchxo/fates-visualization/pkg/errors"
)

// OutputPath joins dir, name and the format extension.
func OutputPath(dir, name, format string) string {
	return filepath.Join(dir, name+"."+format)
}

// WriteFile writes data to path through a temporary file in the same
// directory, so path either keeps its old content or holds all of data.
func WriteFile(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "write %s", path)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "write %s", path)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "write %s", path)
	}
	if err := os.Rename(name, path); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "write %s", path)
	}
	return nil
}
