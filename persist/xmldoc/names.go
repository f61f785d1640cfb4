package xmldoc

import (
	"encoding/xml"
	"reflect"
	"strings"

	"fser/paths"
)

var xmlNameType = reflect.TypeFor[xml.Name]()

// elementName returns name of element representing value of type t: name
// from XMLName field tag when present, display name otherwise. Tagged names
// carry their own namespace and must not be overridden while encoding.
func elementName(t reflect.Type) (name string, tagged bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName("XMLName"); ok && f.Type == xmlNameType {
			tag := f.Tag.Get("xml")
			if i := strings.LastIndexByte(tag, ' '); i >= 0 {
				// "namespace-URL name"
				tag = tag[i+1:]
			}
			if local, _, _ := strings.Cut(tag, ","); len(local) > 0 {
				return local, true
			}
		}
	}
	return paths.DisplayName(t), false
}

// sequence reports whether T is stored as list of items and returns item type.
func sequence(t reflect.Type) (reflect.Type, bool) {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			// byte blobs are character data
			return nil, false
		}
		return t.Elem(), true
	}
	return nil, false
}
