package bin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"

	"fser/persist"
	"fser/utils/debug"
)

// Binary image of a value follows explicit layout rather than in-memory
// representation, so files are portable between platforms:
//
//   - fields are written in declaration order, nested structs and arrays inline;
//   - bool, int8, uint8 take 1 byte, int16, uint16 - 2, int32, uint32, float32 - 4,
//     int64, uint64, float64, complex64 - 8, complex128 - 16;
//   - multi-byte values use configured byte order (little endian by default);
//   - there is no implicit padding, blank "_" fields declare padding
//     explicitly, they are written as zeroes and skipped on read.
//
// Platform sized int, uint and uintptr, pointers, strings, slices, maps and
// unexported named fields make type unsupported.

// Field describes single field of the binary image.
type Field struct {
	Name   string
	Type   string
	Offset int
	Size   int
	Fields []Field
}

// Layout describes binary image of a type.
type Layout struct {
	Type   string
	Size   int
	Fields []Field
}

// LayoutOf returns binary layout of T or conversion error if T cannot have one.
func LayoutOf[T any]() (Layout, error) {
	t := reflect.TypeFor[T]()
	size, fields, err := walk(t, 0, t.String())
	if err != nil {
		return Layout{}, persist.Conversion(err)
	}
	return Layout{Type: t.String(), Size: size, Fields: fields}, nil
}

func walk(t reflect.Type, base int, path string) (int, []Field, error) {
	switch t.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return 1, nil, nil
	case reflect.Int16, reflect.Uint16:
		return 2, nil, nil
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 4, nil, nil
	case reflect.Int64, reflect.Uint64, reflect.Float64, reflect.Complex64:
		return 8, nil, nil
	case reflect.Complex128:
		return 16, nil, nil
	case reflect.Array:
		size, _, err := walk(t.Elem(), 0, path+"[]")
		if err != nil {
			return 0, nil, err
		}
		return size * t.Len(), nil, nil
	case reflect.Struct:
		var (
			fields []Field
			offset = base
		)
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() && sf.Name != "_" {
				return 0, nil, fmt.Errorf("%s.%s: unexported field", path, sf.Name)
			}
			size, nested, err := walk(sf.Type, offset, path+"."+sf.Name)
			if err != nil {
				return 0, nil, err
			}
			fields = append(fields, Field{
				Name:   sf.Name,
				Type:   sf.Type.String(),
				Offset: offset,
				Size:   size,
				Fields: nested,
			})
			offset += size
		}
		return offset - base, fields, nil
	}
	return 0, nil, fmt.Errorf("%s: type %s has no fixed size", path, t)
}

// String renders layout as indented tree, one field per line.
func (l Layout) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "%s (%d bytes)", l.Type, l.Size)
	writeFields(tw, 1, l.Fields)
	return tw.String()
}

func writeFields(tw *debug.TreeWriter, depth int, fields []Field) {
	for _, f := range fields {
		tw.Line(depth, "@%d %s %s [%d]", f.Offset, f.Name, f.Type, f.Size)
		writeFields(tw, depth+1, f.Fields)
	}
}

// Size returns size of the binary image of T or -1 when T is not supported.
// Size is the same for all values of T.
func Size[T any]() int {
	l, err := LayoutOf[T]()
	if err != nil {
		return -1
	}
	return l.Size
}

// Encode converts v to its binary image.
func Encode[T any](v T, order binary.ByteOrder) (data []byte, err error) {
	defer persist.Recover(&err)

	size := Size[T]()
	if size < 0 {
		_, err := LayoutOf[T]()
		return nil, err
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if err := binary.Write(buf, order, &v); err != nil {
		return nil, persist.Conversion(err)
	}
	return buf.Bytes(), nil
}

// Decode reconstructs value from its binary image, data length must match
// layout size exactly.
func Decode[T any](data []byte, order binary.ByteOrder) (v T, err error) {
	defer func() {
		if err != nil {
			var zero T
			v = zero
		}
	}()
	defer persist.Recover(&err)

	size := Size[T]()
	if size < 0 {
		_, err := LayoutOf[T]()
		return v, err
	}
	if len(data) != size {
		return v, fmt.Errorf("%w: %d bytes, %s needs %d", persist.ErrConversion, len(data), reflect.TypeFor[T](), size)
	}
	if err := binary.Read(bytes.NewReader(data), order, &v); err != nil {
		return v, persist.Conversion(err)
	}
	return v, nil
}
