// Package filesystem is the single entry point to disk. Tests swap in an in-memory
// backend with SetMemMapFs.
package filesystem

import (
	"io"
	"os"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

func API() afero.Afero {
	return backend
}

func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// WriteAtomic writes through a temporary sibling and renames it over path, so readers
// never see a partial file.
func WriteAtomic(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"

	f, err := API().Create(tmp)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		_ = f.Close()
		_ = API().Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = API().Remove(tmp)
		return err
	}

	return API().Rename(tmp, path)
}

// GacheFs lets gache persist its tables through the active backend.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
