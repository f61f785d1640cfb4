package ini

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	inifile "gopkg.in/ini.v1"

	"fser/utils/debug"
	"fser/utils/files"
)

// ErrNoValue is returned when key is absent or its value is empty.
var ErrNoValue = errors.New("no value")

// Parsing follows Windows profile API: only "=" separates key from value,
// ";" and "#" start comments only at the beginning of the line, trailing
// backslash is part of the value, value quotes are removed, lines which
// could not be parsed are ignored.
var loadOptions = inifile.LoadOptions{
	IgnoreContinuation:      true,
	IgnoreInlineComment:     true,
	KeyValueDelimiters:      "=",
	SkipUnrecognizableLines: true,
}

func readFile(path string, enc encoding.Encoding) (*inifile.File, error) {
	data, err := files.ReadAll(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	if enc != nil {
		if data, err = enc.NewDecoder().Bytes(data); err != nil {
			return nil, fmt.Errorf("unable to decode '%s': %w", path, err)
		}
	}
	f, err := inifile.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse '%s': %w", path, err)
	}
	return f, nil
}

// openFile loads existing file or starts empty one.
func openFile(path string, enc encoding.Encoding) (*inifile.File, error) {
	if !files.Exists(path) {
		return inifile.Empty(loadOptions), nil
	}
	return readFile(path, enc)
}

func writeFile(path string, f *inifile.File, enc encoding.Encoding) error {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return fmt.Errorf("unable to format '%s': %w", path, err)
	}
	data := buf.Bytes()
	if enc != nil {
		var err error
		if data, err = enc.NewEncoder().Bytes(data); err != nil {
			return fmt.Errorf("unable to encode '%s': %w", path, err)
		}
	}
	if err := files.EnsureDirFor(path); err != nil {
		return err
	}
	return files.WriteAll(path, data)
}

// findSection looks for section ignoring case, exact spelling wins.
func findSection(f *inifile.File, name string) *inifile.Section {
	var folded *inifile.Section
	for _, sec := range f.Sections() {
		if sec.Name() == name {
			return sec
		}
		if folded == nil && strings.EqualFold(sec.Name(), name) {
			folded = sec
		}
	}
	return folded
}

// findKey looks for key ignoring case, exact spelling wins. Unlike
// Section.GetKey it never looks into parent sections.
func findKey(sec *inifile.Section, name string) *inifile.Key {
	var folded *inifile.Key
	for _, k := range sec.Keys() {
		if k.Name() == name {
			return k
		}
		if folded == nil && strings.EqualFold(k.Name(), name) {
			folded = k
		}
	}
	return folded
}

func lookup(f *inifile.File, section, key string) (string, error) {
	sec := findSection(f, section)
	if sec == nil {
		return "", fmt.Errorf("%w: section [%s] not found", ErrNoValue, section)
	}
	k := findKey(sec, key)
	if k == nil {
		return "", fmt.Errorf("%w: key %s not found in [%s]", ErrNoValue, key, section)
	}
	// Value() returns raw text, String() would expand %(name)s references
	value := k.Value()
	if len(value) == 0 {
		return "", fmt.Errorf("%w: key %s in [%s] is empty", ErrNoValue, key, section)
	}
	return value, nil
}

func store(f *inifile.File, section, key, value string) error {
	sec := findSection(f, section)
	if sec == nil {
		var err error
		if sec, err = f.NewSection(section); err != nil {
			return fmt.Errorf("unable to create section [%s]: %w", section, err)
		}
	}
	if k := findKey(sec, key); k != nil {
		k.SetValue(value)
		return nil
	}
	if _, err := sec.NewKey(key, value); err != nil {
		return fmt.Errorf("unable to create key %s in [%s]: %w", key, section, err)
	}
	return nil
}

// Dump renders all sections and keys of INI file as indented tree.
func Dump(path string, opts ...Option) (string, error) {
	s := newSettings(opts)
	f, err := readFile(path, s.enc)
	if err != nil {
		return "", err
	}
	tw := debug.NewTreeWriter()
	tw.Line(0, "%s", path)
	for _, sec := range f.Sections() {
		if sec.Name() == inifile.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		tw.Line(1, "[%s]", sec.Name())
		for _, k := range sec.Keys() {
			tw.KeyValue(2, k.Name(), k.Value())
		}
	}
	return tw.String(), nil
}
