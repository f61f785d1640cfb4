// Package jsondoc persists complete object graphs as indented JSON documents
// with snake_case member names.
package jsondoc

import (
	"fmt"
	"io"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap"

	"fser/paths"
	"fser/persist"
	"fser/utils/files"
)

// Extension of default file names.
const Extension = "json"

const defaultIndent = 2

type settings struct {
	indent   int
	comments bool
	dir      string
}

// Option configures Serializer.
type Option func(*settings)

// WithIndent sets number of spaces per nesting level, 0 produces compact output.
func WithIndent(n int) Option {
	return func(s *settings) { s.indent = max(n, 0) }
}

// WithComments allows comments and trailing commas in documents being read.
func WithComments(allow bool) Option {
	return func(s *settings) { s.comments = allow }
}

// WithBaseDir replaces program directory in default file name.
func WithBaseDir(dir string) Option {
	return func(s *settings) { s.dir = dir }
}

// Serializer maps values of type T to JSON files. It keeps no state between
// calls.
type Serializer[T any] struct {
	settings
	log *zap.Logger
}

func New[T any](log *zap.Logger, opts ...Option) *Serializer[T] {
	s := &Serializer[T]{
		settings: settings{indent: defaultIndent},
		log:      persist.Logger(log).With(zap.String("format", Extension), zap.String("type", paths.TypeDisplayName[T]())),
	}
	for _, opt := range opts {
		opt(&s.settings)
	}
	return s
}

// DefaultFileName is "{program directory}/{type name}.json".
func (s *Serializer[T]) DefaultFileName() string {
	return paths.DefaultFileNameIn[T](s.dir, Extension)
}

// Save writes v to path replacing previous content.
func (s *Serializer[T]) Save(path string, v T) (err error) {
	defer persist.Recover(&err)

	if err := persist.CheckValue(v); err != nil {
		return err
	}
	if err := persist.CheckPath(path); err != nil {
		return err
	}
	// existing file is left intact when encoding fails
	data, err := apiFor(s.indent).Marshal(v)
	if err != nil {
		return persist.Conversion(err)
	}
	if err := files.EnsureDirFor(path); err != nil {
		return err
	}
	return files.WriteWith(path, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	})
}

// Load reads v from path. On any error zero value is returned.
func (s *Serializer[T]) Load(path string) (v T, err error) {
	defer func() {
		if err != nil {
			var zero T
			v = zero
		}
	}()
	defer persist.Recover(&err)

	if !files.Exists(path) {
		return v, fmt.Errorf("%w: %s", persist.ErrNotFound, path)
	}
	data, err := files.ReadAll(path)
	if err != nil {
		return v, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	if s.comments {
		data = jsonc.ToJSON(data)
	}
	if err := apiFor(s.indent).Unmarshal(data, &v); err != nil {
		return v, persist.Conversion(err)
	}
	if persist.IsNil(v) {
		return v, persist.Conversion(fmt.Errorf("document '%s' is null", path))
	}
	return v, nil
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
