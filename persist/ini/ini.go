// Package ini maps structures to sections of Windows style INI files, one
// key per field, and gives direct access to individual keys.
//
// Reading is lenient: every field is read independently and fields which
// could be read are applied even when others failed. Caller learns about
// failure from result, but still gets everything that was resolved.
package ini

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fser/paths"
	"fser/persist"
	"fser/utils/files"
)

// Extension of default file names.
const Extension = "ini"

// Serializer maps structure T (or pointer to it) to INI section. It keeps
// no state between calls.
type Serializer[T any] struct {
	settings
	log *zap.Logger
}

func New[T any](log *zap.Logger, opts ...Option) *Serializer[T] {
	return &Serializer[T]{
		settings: newSettings(opts),
		log:      persist.Logger(log).With(zap.String("format", Extension), zap.String("type", paths.TypeDisplayName[T]())),
	}
}

// DefaultFileName is the same for all types, see package level DefaultFileName.
func (s *Serializer[T]) DefaultFileName() string {
	return s.defaultFileName()
}

// Section is default section name - simple name of T.
func (s *Serializer[T]) Section() string {
	return paths.TypeDisplayName[T]()
}

func structType[T any]() reflect.Type {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// Load is LoadSection using default section name.
func (s *Serializer[T]) Load(path string) (T, error) {
	return s.LoadSection(path, s.Section())
}

// LoadSection creates new instance of T and fills its fields from keys of
// the section. Failures of individual fields are combined into returned
// error, the instance still carries every field that was read successfully.
// When file does not exist zero value is returned.
func (s *Serializer[T]) LoadSection(path, section string) (v T, err error) {
	defer persist.Recover(&err)

	if !files.Exists(path) {
		return v, fmt.Errorf("%w: %s", persist.ErrNotFound, path)
	}
	fields, err := fieldsOf(structType[T]())
	if err != nil {
		return v, persist.Conversion(err)
	}
	f, err := readFile(path, s.enc)
	if err != nil {
		return v, err
	}

	target := reflect.ValueOf(&v).Elem()
	if target.Kind() == reflect.Pointer {
		target.Set(reflect.New(target.Type().Elem()))
		target = target.Elem()
	}

	for _, fd := range fields {
		if fd.err != nil {
			err = multierr.Append(err, persist.Conversion(fd.err))
			continue
		}
		raw, e := lookup(f, section, fd.key)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}
		if e := fd.parse(raw, target.FieldByIndex(fd.index)); e != nil {
			err = multierr.Append(err, persist.Conversion(fmt.Errorf("%s in [%s]: %w", fd.key, section, e)))
		}
	}
	return v, err
}

// Save is SaveSection using default section name.
func (s *Serializer[T]) Save(path string, v T) error {
	return s.SaveSection(path, s.Section(), v)
}

// SaveSection writes every field of v as key of the section. Other sections
// and keys of existing file are kept. Fields which could not be formatted
// are left out and reported in combined error, the rest is still written.
func (s *Serializer[T]) SaveSection(path, section string, v T) (err error) {
	defer persist.Recover(&err)

	if err := persist.CheckValue(v); err != nil {
		return err
	}
	if err := persist.CheckPath(path); err != nil {
		return err
	}
	if err := checkSection(section); err != nil {
		return err
	}
	fields, err := fieldsOf(structType[T]())
	if err != nil {
		return persist.Conversion(err)
	}

	f, err := openFile(path, s.enc)
	if err != nil {
		return err
	}

	var failed error
	source := reflect.Indirect(reflect.ValueOf(v))
	for _, fd := range fields {
		if fd.err != nil {
			failed = multierr.Append(failed, persist.Conversion(fd.err))
			continue
		}
		str, e := fd.format(source.FieldByIndex(fd.index))
		if e != nil {
			failed = multierr.Append(failed, persist.Conversion(fmt.Errorf("%s: %w", fd.key, e)))
			continue
		}
		if err := store(f, section, fd.key, str); err != nil {
			return err
		}
	}
	if err := writeFile(path, f, s.enc); err != nil {
		return err
	}
	return failed
}

func (s *Serializer[T]) Serialize(path string, v T) bool {
	return s.SerializeSection(path, s.Section(), v)
}

func (s *Serializer[T]) SerializeSection(path, section string, v T) bool {
	return persist.Try(s.log, "serialize", path, s.SaveSection(path, section, v))
}

func (s *Serializer[T]) SerializeDefault(v T) bool {
	return s.Serialize(s.DefaultFileName(), v)
}

// TryDeserialize is TryDeserializeSection using default section name.
func (s *Serializer[T]) TryDeserialize(path string) (T, bool) {
	return s.TryDeserializeSection(path, s.Section())
}

// TryDeserializeSection returns true only if every field was read. Note that
// on partial failure returned value is not zero.
func (s *Serializer[T]) TryDeserializeSection(path, section string) (T, bool) {
	v, err := s.LoadSection(path, section)
	return v, persist.Try(s.log, "deserialize", path, err)
}

func (s *Serializer[T]) TryDeserializeDefault() (T, bool) {
	return s.TryDeserialize(s.DefaultFileName())
}
