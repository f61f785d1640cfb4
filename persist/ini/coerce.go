package ini

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrNoConverter is returned for types which have no string representation.
var ErrNoConverter = errors.New("no string converter")

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	stringerType        = reflect.TypeFor[fmt.Stringer]()
	durationType        = reflect.TypeFor[time.Duration]()
)

// coercer converts between INI string values and values of a single type.
type coercer struct {
	parse  func(s string, dst reflect.Value) error
	format func(v reflect.Value) (string, error)
}

// coercerFor returns converter for t. The set is closed:
//
//   - types implementing encoding.TextUnmarshaler together with
//     encoding.TextMarshaler or fmt.Stringer (enumerations, time.Time);
//   - time.Duration in Go duration syntax ("1h30m");
//   - string, verbatim;
//   - bool, strconv.ParseBool syntax ("true", "False", "1");
//   - signed and unsigned integers, decimal, value must fit type size,
//     unsigned types reject sign;
//   - float32 and float64, value must fit type size, shortest round
//     tripping representation is written.
func coercerFor(t reflect.Type) (coercer, error) {
	if t == nil {
		return coercer{}, ErrNoConverter
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) &&
		(t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType) ||
			t.Implements(stringerType) || reflect.PointerTo(t).Implements(stringerType)) {
		return coercer{parse: parseText, format: formatText}, nil
	}
	if t == durationType {
		return coercer{parse: parseDuration, format: formatDuration}, nil
	}
	switch t.Kind() {
	case reflect.String:
		return coercer{
			parse: func(s string, dst reflect.Value) error {
				dst.SetString(s)
				return nil
			},
			format: func(v reflect.Value) (string, error) { return v.String(), nil },
		}, nil
	case reflect.Bool:
		return coercer{parse: parseBool, format: func(v reflect.Value) (string, error) {
			return strconv.FormatBool(v.Bool()), nil
		}}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return coercer{parse: parseInt, format: func(v reflect.Value) (string, error) {
			return strconv.FormatInt(v.Int(), 10), nil
		}}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return coercer{parse: parseUint, format: func(v reflect.Value) (string, error) {
			return strconv.FormatUint(v.Uint(), 10), nil
		}}, nil
	case reflect.Float32, reflect.Float64:
		return coercer{parse: parseFloat, format: func(v reflect.Value) (string, error) {
			return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits()), nil
		}}, nil
	}
	return coercer{}, fmt.Errorf("%w for type %s", ErrNoConverter, t)
}

func parseText(s string, dst reflect.Value) error {
	return dst.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
}

func formatText(v reflect.Value) (string, error) {
	if !v.CanAddr() {
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		v = cp
	}
	for _, c := range []reflect.Value{v, v.Addr()} {
		switch m := c.Interface().(type) {
		case encoding.TextMarshaler:
			b, err := m.MarshalText()
			if err != nil {
				return "", err
			}
			return string(b), nil
		case fmt.Stringer:
			return m.String(), nil
		}
	}
	return "", fmt.Errorf("%w for type %s", ErrNoConverter, v.Type())
}

func parseDuration(s string, dst reflect.Value) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	dst.SetInt(int64(d))
	return nil
}

func formatDuration(v reflect.Value) (string, error) {
	return time.Duration(v.Int()).String(), nil
}

func parseBool(s string, dst reflect.Value) error {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	dst.SetBool(b)
	return nil
}

func parseInt(s string, dst reflect.Value) error {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, dst.Type().Bits())
	if err != nil {
		return err
	}
	dst.SetInt(n)
	return nil
}

func parseUint(s string, dst reflect.Value) error {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, dst.Type().Bits())
	if err != nil {
		return err
	}
	dst.SetUint(n)
	return nil
}

func parseFloat(s string, dst reflect.Value) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), dst.Type().Bits())
	if err != nil {
		return err
	}
	dst.SetFloat(f)
	return nil
}

// parseString converts s into value of type V.
func parseString[V any](s string) (V, error) {
	var v V
	c, err := coercerFor(reflect.TypeFor[V]())
	if err != nil {
		return v, err
	}
	if err := c.parse(s, reflect.ValueOf(&v).Elem()); err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}

// formatValue returns string representation of arbitrary value, types
// without converter fall back to fmt formatting.
func formatValue(value any) (string, error) {
	c, err := coercerFor(reflect.TypeOf(value))
	if err != nil {
		return fmt.Sprint(value), nil
	}
	return c.format(reflect.ValueOf(value))
}
