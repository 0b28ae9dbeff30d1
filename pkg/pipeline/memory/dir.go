package memory

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const entryExt = ".entry"

// Dir stores one file per entry under a directory.
type Dir struct {
	location string
}

// NewDir creates the directory memory, creating location if needed.
func NewDir(location string) (*Dir, error) {
	if location == "" {
		return nil, ErrLocationEmpty
	}
	if err := os.MkdirAll(location, 0o755); err != nil {
		return nil, errors.Wrapf(err, "unable to create cache directory %s", location)
	}

	return &Dir{location: location}, nil
}

func (d *Dir) Location() string {
	return d.location
}

func (d *Dir) path(key string) string {
	return filepath.Join(d.location, key+entryExt)
}

func (d *Dir) Get(key string) (*Entry, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(d.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}

		return nil, false, errors.Wrapf(err, "unable to read entry %s", key)
	}

	entry, err := decodeEntry(data)
	if err != nil {
		return nil, false, errors.Wrapf(err, "entry %s", key)
	}

	return entry, true, nil
}

// Set writes the entry to a temporary file first, then renames it, so readers never see a partial entry.
func (d *Dir) Set(key string, entry *Entry) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.location, key+"-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "unable to create temporary file for entry %s", key)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err = tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec

		return errors.Wrapf(err, "unable to write entry %s", key)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "unable to close entry %s", key)
	}

	if err = os.Rename(tmp.Name(), d.path(key)); err != nil {
		return errors.Wrapf(err, "unable to move entry %s in place", key)
	}

	return nil
}

func (d *Dir) Clear() error {
	files, err := os.ReadDir(d.location)
	if err != nil {
		return errors.Wrapf(err, "unable to list %s", d.location)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), entryExt) {
			continue
		}
		if err := os.Remove(filepath.Join(d.location, file.Name())); err != nil {
			return errors.Wrapf(err, "unable to remove %s", file.Name())
		}
	}

	return nil
}

var _ Memory = (*Dir)(nil)
