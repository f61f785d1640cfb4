// Package xmldoc persists complete object graphs as XML documents. Element
// names are Go field names as is, lists are stored as "ArrayOf{Item}"
// elements holding one child per item.
package xmldoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"fser/paths"
	"fser/persist"
	"fser/utils/files"
)

// Extension of default file names.
const Extension = "xml"

const defaultIndent = 2

type settings struct {
	indent int
	dir    string
}

// Option configures Serializer.
type Option func(*settings)

// WithIndent sets number of spaces per nesting level, 0 puts everything on
// a single line.
func WithIndent(n int) Option {
	return func(s *settings) { s.indent = max(n, 0) }
}

// WithBaseDir replaces program directory in default file name.
func WithBaseDir(dir string) Option {
	return func(s *settings) { s.dir = dir }
}

// Serializer maps values of type T to XML files. It keeps no state between
// calls.
type Serializer[T any] struct {
	settings
	root string
	log  *zap.Logger
}

func New[T any](log *zap.Logger, opts ...Option) *Serializer[T] {
	root, _ := elementName(reflect.TypeFor[T]())
	s := &Serializer[T]{
		settings: settings{indent: defaultIndent},
		root:     root,
		log:      persist.Logger(log).With(zap.String("format", Extension), zap.String("type", paths.TypeDisplayName[T]())),
	}
	for _, opt := range opts {
		opt(&s.settings)
	}
	return s
}

// DefaultFileName is "{program directory}/{type name}.xml", computed once
// per type and base directory.
func (s *Serializer[T]) DefaultFileName() string {
	return paths.CachedFileName[T](s.dir, Extension)
}

// RootName is name of document element.
func (s *Serializer[T]) RootName() string {
	return s.root
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
	doc, err := s.document(v)
	if err != nil {
		return persist.Conversion(err)
	}
	if err := files.EnsureDirFor(path); err != nil {
		return err
	}
	return files.WriteWith(path, func(w io.Writer) error {
		_, err := doc.WriteTo(w)
		return err
	})
}

func (s *Serializer[T]) document(v T) (*etree.Document, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := s.encode(enc, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	body := etree.NewDocument()
	if err := body.ReadFromBytes(buf.Bytes()); err != nil {
		return nil, err
	}
	root := body.Root()
	if root == nil {
		return nil, fmt.Errorf("value of %s produced no element", paths.TypeDisplayName[T]())
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	doc.SetRoot(root)
	if s.indent > 0 {
		doc.Indent(s.indent)
	} else {
		doc.Indent(etree.NoIndent)
	}
	return doc, nil
}

func (s *Serializer[T]) encode(enc *xml.Encoder, rv reflect.Value) error {
	start := xml.StartElement{Name: xml.Name{Local: s.root}}
	item, ok := sequence(rv.Type())
	if !ok {
		return encodeElement(enc, rv, start)
	}

	name, _ := elementName(item)
	itemStart := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for i := range rv.Len() {
		// nil item would produce no element and shift the rest of the list
		if v := rv.Index(i); (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
			return fmt.Errorf("item %d of %s is nil", i, s.root)
		}
		if err := encodeElement(enc, rv.Index(i), itemStart); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func encodeElement(enc *xml.Encoder, rv reflect.Value, start xml.StartElement) error {
	if _, tagged := elementName(rv.Type()); tagged {
		return enc.Encode(rv.Interface())
	}
	return enc.EncodeElement(rv.Interface(), start)
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
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
	}
	if err := doc.ReadFromFile(path); err != nil {
		return v, persist.Conversion(fmt.Errorf("unable to parse '%s': %w", path, err))
	}
	root := doc.Root()
	if root == nil {
		return v, persist.Conversion(fmt.Errorf("'%s' has no document element", path))
	}
	if root.Tag != s.root {
		return v, persist.Conversion(fmt.Errorf("'%s' holds <%s>, expected <%s>", path, root.FullTag(), s.root))
	}

	// text is already decoded, re-encode document element alone as UTF-8
	body := etree.NewDocument()
	body.SetRoot(root)
	data, err := body.WriteToBytes()
	if err != nil {
		return v, persist.Conversion(err)
	}
	if err := decode(xml.NewDecoder(bytes.NewReader(data)), reflect.ValueOf(&v).Elem()); err != nil {
		return v, persist.Conversion(err)
	}
	return v, nil
}

func decode(dec *xml.Decoder, rv reflect.Value) error {
	item, ok := sequence(rv.Type())
	if !ok {
		return dec.Decode(rv.Addr().Interface())
	}

	name, _ := elementName(item)
	if rv.Kind() == reflect.Slice {
		// empty list is not nil
		rv.Set(reflect.MakeSlice(rv.Type(), 0, 0))
	}
	depth, index := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				continue
			}
			if t.Name.Local != name {
				if err := dec.Skip(); err != nil {
					return err
				}
				depth--
				continue
			}
			switch rv.Kind() {
			case reflect.Slice:
				elem := reflect.New(item)
				if err := dec.DecodeElement(elem.Interface(), &t); err != nil {
					return err
				}
				rv.Set(reflect.Append(rv, elem.Elem()))
			case reflect.Array:
				if index >= rv.Len() {
					return fmt.Errorf("more than %d <%s> elements", rv.Len(), name)
				}
				if err := dec.DecodeElement(rv.Index(index).Addr().Interface(), &t); err != nil {
					return err
				}
			}
			index++
			depth--
		case xml.EndElement:
			depth--
		}
	}
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
