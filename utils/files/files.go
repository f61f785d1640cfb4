// Package files implements small set of raw file operations used by all
// persistence adapters. Every file handle is closed before function returns.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	DirMode  os.FileMode = 0755
	FileMode os.FileMode = 0644
)

// Exists reports whether path names existing regular file.
func Exists(path string) bool {
	if len(path) == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// EnsureDirFor creates (recursively) parent directory of path. Paths without
// directory part are left alone.
func EnsureDirFor(path string) error {
	dir := filepath.Dir(path)
	if len(strings.TrimSpace(dir)) == 0 || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("unable to create directory '%s': %w", dir, err)
	}
	return nil
}

// ReadAll returns full content of the file.
func ReadAll(path string) (data []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return io.ReadAll(f)
}

// WriteAll creates or truncates the file and writes data to it.
func WriteAll(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FileMode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("unable to close '%s': %w", path, cerr)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("unable to write '%s': %w", path, err)
	}
	return nil
}

// WriteWith is WriteAll for producers which stream their output.
func WriteWith(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FileMode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("unable to close '%s': %w", path, cerr)
		}
	}()
	return fn(f)
}

// Touch creates empty file if it does not exist yet.
func Touch(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, FileMode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return err
	}
	return f.Close()
}
