package ini

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// field describes single persisted field: key name, location in the struct
// and its string converter. Fields of types without converter carry err
// instead, they fail individually on every read and write.
type field struct {
	key   string
	index []int
	err   error
	coercer
}

type schema struct {
	fields []field
	err    error
}

var schemas sync.Map // reflect.Type -> *schema

// fieldsOf returns persisted fields of struct type t in declaration order.
// Exported fields of embedded structs are promoted in place. Field is
// skipped with `ini:"-"` and renamed with `ini:"Name"`. Descriptors are
// built once per type.
func fieldsOf(t reflect.Type) ([]field, error) {
	if s, ok := schemas.Load(t); ok {
		return s.(*schema).fields, s.(*schema).err
	}
	s := &schema{}
	if t.Kind() != reflect.Struct {
		s.err = fmt.Errorf("%s is not a struct", t)
	} else {
		s.fields = collect(t, nil)
	}
	actual, _ := schemas.LoadOrStore(t, s)
	return actual.(*schema).fields, actual.(*schema).err
}

func collect(t reflect.Type, parent []int) []field {
	var fields []field
	for i := range t.NumField() {
		sf := t.Field(i)
		index := append(append([]int{}, parent...), i)

		tag := sf.Tag.Get("ini")
		if tag == "-" {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && len(tag) == 0 {
			if c, err := coercerFor(sf.Type); err == nil && sf.IsExported() {
				fields = append(fields, field{key: sf.Name, index: index, coercer: c})
				continue
			}
			fields = append(fields, collect(sf.Type, index)...)
			continue
		}
		if !sf.IsExported() {
			continue
		}

		key := sf.Name
		if name, _, _ := strings.Cut(tag, ","); len(name) > 0 {
			key = name
		}
		c, err := coercerFor(sf.Type)
		if err != nil {
			err = fmt.Errorf("field %s: %w", sf.Name, err)
		}
		fields = append(fields, field{key: key, index: index, err: err, coercer: c})
	}
	return fields
}
