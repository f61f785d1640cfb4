// Package paths derives canonical file locations for persisted types, so
// callers may omit explicit file names.
package paths

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
)

const (
	arrayPrefix = "ArrayOf"
	mapPrefix   = "MapOf"
	unnamedType = "Object"
)

// TypeDisplayName returns file name friendly name of T, see DisplayName.
func TypeDisplayName[T any]() string {
	return DisplayName(reflect.TypeFor[T]())
}

// DisplayName returns simple name of the type: package path is dropped,
// pointers are transparent, unnamed slices and arrays become "ArrayOfX",
// unnamed maps become "MapOfKToV" and anything else without a name is
// "Object".
func DisplayName(t reflect.Type) string {
	if t == nil {
		return unnamedType
	}
	switch t.Kind() {
	case reflect.Pointer:
		return DisplayName(t.Elem())
	case reflect.Slice, reflect.Array:
		if len(t.Name()) == 0 {
			return arrayPrefix + DisplayName(t.Elem())
		}
	case reflect.Map:
		if len(t.Name()) == 0 {
			return mapPrefix + DisplayName(t.Key()) + "To" + DisplayName(t.Elem())
		}
	}
	name := t.Name()
	if len(name) == 0 {
		return unnamedType
	}
	return CleanFileName(stripPackages(name))
}

// stripPackages removes package qualifiers from instantiated generic type
// names: "Box[example.com/m/geo.Point]" becomes "Box[Point]".
func stripPackages(name string) string {
	if !strings.ContainsRune(name, '[') {
		return name
	}
	var (
		b     strings.Builder
		token strings.Builder
	)
	flush := func() {
		s := token.String()
		if i := strings.LastIndexByte(s, '.'); i >= 0 {
			s = s[i+1:]
		}
		b.WriteString(s)
		token.Reset()
	}
	for _, r := range name {
		switch r {
		case '[', ']', ',', '*', ' ':
			flush()
			b.WriteRune(r)
		default:
			token.WriteRune(r)
		}
	}
	flush()
	return b.String()
}

// ProgramDir returns directory of the running executable. When executable
// location could not be resolved current working directory is used instead.
func ProgramDir() string {
	if exe, err := executable(); err == nil {
		return filepath.Dir(exe)
	}
	if wd, err := filepath.Abs("."); err == nil {
		return wd
	}
	return "."
}

// ProgramFileName returns path of the running executable with extension
// replaced by ext.
func ProgramFileName(ext string) string {
	exe, err := executable()
	if err != nil {
		exe = filepath.Join(ProgramDir(), "program")
	}
	return strings.TrimSuffix(exe, filepath.Ext(exe)) + "." + strings.TrimPrefix(ext, ".")
}

func executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		return resolved, nil
	}
	return exe, nil
}

// DefaultFileName returns "{ProgramDir}/{TypeDisplayName}.{ext}". Single
// leading dot in ext is ignored.
func DefaultFileName[T any](ext string) string {
	return DefaultFileNameIn[T]("", ext)
}

// DefaultFileNameIn is DefaultFileName with directory override, empty dir
// means ProgramDir.
func DefaultFileNameIn[T any](dir, ext string) string {
	if len(dir) == 0 {
		dir = ProgramDir()
	}
	return filepath.Join(dir, TypeDisplayName[T]()+"."+strings.TrimPrefix(ext, "."))
}

type cacheKey struct {
	typ reflect.Type
	dir string
	ext string
}

var cache sync.Map // cacheKey -> func() string

// CachedFileName is DefaultFileNameIn computed once per (T, dir, ext) for
// the lifetime of the process. First use may happen concurrently.
func CachedFileName[T any](dir, ext string) string {
	key := cacheKey{typ: reflect.TypeFor[T](), dir: dir, ext: strings.TrimPrefix(ext, ".")}
	if f, ok := cache.Load(key); ok {
		return f.(func() string)()
	}
	f, _ := cache.LoadOrStore(key, sync.OnceValue(func() string {
		return DefaultFileNameIn[T](dir, ext)
	}))
	return f.(func() string)()
}
