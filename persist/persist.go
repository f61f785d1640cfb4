// Package persist holds what all format adapters share: error taxonomy and
// conversion of detailed errors into boolean "try" results.
//
// Every adapter offers two forms of each operation. Save/Load return errors
// which may be inspected with errors.Is against ErrNotFound,
// ErrInvalidArgument and ErrConversion. Serialize/TryDeserialize never
// panic, report success as bool and send discarded error to debug log.
package persist

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when file to read does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidArgument is returned before any I/O for blank paths and nil values.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConversion is returned when value could not be mapped to or from its
	// file representation.
	ErrConversion = errors.New("conversion failed")
)

// Conversion marks err as conversion fault.
func Conversion(err error) error {
	if err == nil || errors.Is(err, ErrConversion) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrConversion, err)
}

// CheckPath rejects blank paths.
func CheckPath(path string) error {
	if len(strings.TrimSpace(path)) == 0 {
		return fmt.Errorf("%w: empty path", ErrInvalidArgument)
	}
	return nil
}

// CheckValue rejects nil values.
func CheckValue(v any) error {
	if IsNil(v) {
		return fmt.Errorf("%w: nil %T", ErrInvalidArgument, v)
	}
	return nil
}

// IsNil reports whether v is nil or holds nil pointer, map, slice,
// interface, function or channel.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Recover turns panic raised while walking a value into conversion error.
// Must be deferred directly.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrConversion, r)
	}
}

// Logger never returns nil.
func Logger(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// Try collapses err into boolean result, error details only go to the debug log.
func Try(log *zap.Logger, op, path string, err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrNotFound) {
		log.Debug("Nothing to "+op, zap.String("path", path))
	} else {
		log.Debug("Unable to "+op, zap.String("path", path), zap.Error(err))
	}
	return false
}
