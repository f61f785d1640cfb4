// Package bin persists fixed layout values as raw binary files.
package bin

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"

	"fser/paths"
	"fser/persist"
	"fser/utils/files"
)

// Extension of default file names.
const Extension = "bin"

type settings struct {
	order binary.ByteOrder
	dir   string
}

// Option configures Serializer.
type Option func(*settings)

// WithByteOrder selects byte order of multi-byte values, default is little endian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(s *settings) {
		if order != nil {
			s.order = order
		}
	}
}

// WithBaseDir replaces program directory in default file name.
func WithBaseDir(dir string) Option {
	return func(s *settings) { s.dir = dir }
}

// Serializer maps values of fixed layout type T to binary files. It keeps no
// state between calls and may be used concurrently.
type Serializer[T any] struct {
	settings
	log *zap.Logger
}

func New[T any](log *zap.Logger, opts ...Option) *Serializer[T] {
	s := &Serializer[T]{
		settings: settings{order: binary.LittleEndian},
		log:      persist.Logger(log).With(zap.String("format", Extension), zap.String("type", paths.TypeDisplayName[T]())),
	}
	for _, opt := range opts {
		opt(&s.settings)
	}
	return s
}

// DefaultFileName is "{program directory}/{type name}.bin".
func (s *Serializer[T]) DefaultFileName() string {
	return paths.DefaultFileNameIn[T](s.dir, Extension)
}

// Save writes binary image of v to path, creating directories as needed.
func (s *Serializer[T]) Save(path string, v T) error {
	if err := persist.CheckPath(path); err != nil {
		return err
	}
	data, err := Encode(v, s.order)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// Load reads value from binary file. On any error zero value is returned.
func (s *Serializer[T]) Load(path string) (T, error) {
	var zero T
	if !files.Exists(path) {
		return zero, fmt.Errorf("%w: %s", persist.ErrNotFound, path)
	}
	data, err := files.ReadAll(path)
	if err != nil {
		return zero, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	return Decode[T](data, s.order)
}

func (s *Serializer[T]) Serialize(path string, v T) bool {
	return persist.Try(s.log, "serialize", path, s.Save(path, v))
}

func (s *Serializer[T]) SerializeDefault(v T) bool {
	return s.Serialize(s.DefaultFileName(), v)
}

func (s *Serializer[T]) TryDeserialize(path string) (T, bool) {
	v, err := s.Load(path)
	return v, persist.Try(s.log, "deserialize", path, err)
}

func (s *Serializer[T]) TryDeserializeDefault() (T, bool) {
	return s.TryDeserialize(s.DefaultFileName())
}

// ReadFile returns complete content of binary file, false if file does not
// exist or could not be read.
func ReadFile(path string) ([]byte, bool) {
	if !files.Exists(path) {
		return nil, false
	}
	data, err := files.ReadAll(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// WriteFile stores data in path (create or truncate), false on blank path,
// nil data or I/O error.
func WriteFile(path string, data []byte) bool {
	if persist.CheckPath(path) != nil || data == nil {
		return false
	}
	return writeFile(path, data) == nil
}

func writeFile(path string, data []byte) error {
	if err := files.EnsureDirFor(path); err != nil {
		return err
	}
	if err := files.WriteAll(path, data); err != nil {
		return fmt.Errorf("unable to write '%s': %w", path, err)
	}
	return nil
}
