package ini

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"

	"fser/paths"
	"fser/persist"
	"fser/utils/files"
)

type settings struct {
	enc encoding.Encoding
	dir string
}

// Option configures both key level functions and Serializer.
type Option func(*settings)

// WithCodepage sets text encoding of INI files, nil means UTF-8. Files
// starting with UTF-8 or UTF-16 byte order mark are recognized regardless.
func WithCodepage(enc encoding.Encoding) Option {
	return func(s *settings) { s.enc = enc }
}

// WithBaseDir replaces program directory in default file name.
func WithBaseDir(dir string) Option {
	return func(s *settings) { s.dir = dir }
}

func newSettings(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// DefaultFileName is path of the running program with ".ini" extension,
// all types share the file using different sections. Only WithBaseDir
// option affects the result.
func DefaultFileName(opts ...Option) string {
	return newSettings(opts).defaultFileName()
}

func (s settings) defaultFileName() string {
	name := paths.ProgramFileName(Extension)
	if len(s.dir) > 0 {
		return filepath.Join(s.dir, filepath.Base(name))
	}
	return name
}

func checkSection(section string) error {
	if len(strings.TrimSpace(section)) == 0 {
		return fmt.Errorf("%w: empty section name", persist.ErrInvalidArgument)
	}
	return nil
}

func checkNames(section, key string) error {
	if err := checkSection(section); err != nil {
		return err
	}
	if len(strings.TrimSpace(key)) == 0 {
		return fmt.Errorf("%w: empty key name", persist.ErrInvalidArgument)
	}
	return nil
}

// GetRaw returns string value of the key. Absent key and empty value are
// both reported as ErrNoValue.
func GetRaw(path, section, key string, opts ...Option) (string, error) {
	if len(path) == 0 || !files.Exists(path) {
		return "", fmt.Errorf("%w: %s", persist.ErrNotFound, path)
	}
	if err := checkNames(section, key); err != nil {
		return "", err
	}
	f, err := readFile(path, newSettings(opts).enc)
	if err != nil {
		return "", err
	}
	return lookup(f, section, key)
}

// Get returns value of the key converted to V.
func Get[V any](path, section, key string, opts ...Option) (V, error) {
	var zero V
	raw, err := GetRaw(path, section, key, opts...)
	if err != nil {
		return zero, err
	}
	v, err := parseString[V](raw)
	if err != nil {
		return zero, persist.Conversion(fmt.Errorf("%s in [%s]: %w", key, section, err))
	}
	return v, nil
}

// TryGetValue returns value of the key converted to V. It fails when file
// does not exist, key is absent or empty, V has no string converter or
// value could not be converted.
func TryGetValue[V any](path, section, key string, opts ...Option) (V, bool) {
	v, err := Get[V](path, section, key, opts...)
	return v, err == nil
}

// GetValue is TryGetValue which returns zero value on any failure. It is
// impossible to tell absent key from malformed value.
func GetValue[V any](path, section, key string, opts ...Option) V {
	v, _ := TryGetValue[V](path, section, key, opts...)
	return v
}

func GetInt(path, section, key string, opts ...Option) int {
	return GetValue[int](path, section, key, opts...)
}

func GetUint(path, section, key string, opts ...Option) uint {
	return GetValue[uint](path, section, key, opts...)
}

func GetDouble(path, section, key string, opts ...Option) float64 {
	return GetValue[float64](path, section, key, opts...)
}

func GetString(path, section, key string, opts ...Option) string {
	return GetValue[string](path, section, key, opts...)
}

func GetBool(path, section, key string, opts ...Option) bool {
	return GetValue[bool](path, section, key, opts...)
}

// SetValue writes string representation of value under the key, creating
// directories, file, section and key as needed. The rest of the file
// including comments is kept. Values without dedicated converter are
// written using fmt formatting.
func SetValue(path, section, key string, value any, opts ...Option) error {
	if err := persist.CheckPath(path); err != nil {
		return err
	}
	if err := checkNames(section, key); err != nil {
		return err
	}
	if err := persist.CheckValue(value); err != nil {
		return err
	}
	str, err := formatValue(value)
	if err != nil {
		return persist.Conversion(err)
	}

	s := newSettings(opts)
	if err := files.EnsureDirFor(path); err != nil {
		return err
	}
	if err := files.Touch(path); err != nil {
		return fmt.Errorf("unable to create '%s': %w", path, err)
	}
	f, err := readFile(path, s.enc)
	if err != nil {
		return err
	}
	if err := store(f, section, key, str); err != nil {
		return err
	}
	return writeFile(path, f, s.enc)
}
