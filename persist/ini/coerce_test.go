package ini

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

// ENUM(small, medium, large)
type Size int

const (
	SizeSmall Size = iota
	SizeMedium
	SizeLarge
)

var sizeNames = []string{"small", "medium", "large"}

func (s Size) String() string {
	if s >= 0 && int(s) < len(sizeNames) {
		return sizeNames[s]
	}
	return fmt.Sprintf("Size(%d)", int(s))
}

func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Size) UnmarshalText(text []byte) error {
	for i, n := range sizeNames {
		if n == string(text) {
			*s = Size(i)
			return nil
		}
	}
	return fmt.Errorf("%s is not a valid Size", text)
}

func TestParseString(t *testing.T) {
	check := func(t *testing.T, ok bool, err error) {
		t.Helper()
		if ok && err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok && err == nil {
			t.Fatal("expected error")
		}
	}

	t.Run("int", func(t *testing.T) {
		v, err := parseString[int](" 42 ")
		check(t, true, err)
		if v != 42 {
			t.Fatalf("got %d", v)
		}
		_, err = parseString[int]("4x")
		check(t, false, err)
	})
	t.Run("int8 overflow", func(t *testing.T) {
		_, err := parseString[int8]("300")
		check(t, false, err)
		v, err := parseString[int8]("-128")
		check(t, true, err)
		if v != math.MinInt8 {
			t.Fatalf("got %d", v)
		}
	})
	t.Run("unsigned rejects sign", func(t *testing.T) {
		_, err := parseString[uint32]("-1")
		check(t, false, err)
		v, err := parseString[uint64]("18446744073709551615")
		check(t, true, err)
		if v != math.MaxUint64 {
			t.Fatalf("got %d", v)
		}
	})
	t.Run("float", func(t *testing.T) {
		v, err := parseString[float64]("0.1")
		check(t, true, err)
		if v != 0.1 {
			t.Fatalf("got %v", v)
		}
		_, err = parseString[float32]("1e40")
		check(t, false, err)
	})
	t.Run("bool", func(t *testing.T) {
		for _, s := range []string{"true", "True", "TRUE", "1"} {
			v, err := parseString[bool](s)
			check(t, true, err)
			if !v {
				t.Fatalf("%q parsed as false", s)
			}
		}
		_, err := parseString[bool]("yes")
		check(t, false, err)
	})
	t.Run("string", func(t *testing.T) {
		v, err := parseString[string](" as is ")
		check(t, true, err)
		if v != " as is " {
			t.Fatalf("got %q", v)
		}
	})
	t.Run("duration", func(t *testing.T) {
		v, err := parseString[time.Duration]("1h30m")
		check(t, true, err)
		if v != 90*time.Minute {
			t.Fatalf("got %v", v)
		}
		_, err = parseString[time.Duration]("90")
		check(t, false, err)
	})
	t.Run("enum", func(t *testing.T) {
		v, err := parseString[Size]("large")
		check(t, true, err)
		if v != SizeLarge {
			t.Fatalf("got %v", v)
		}
		_, err = parseString[Size]("huge")
		check(t, false, err)
	})
	t.Run("time", func(t *testing.T) {
		v, err := parseString[time.Time]("2024-02-29T10:00:00Z")
		check(t, true, err)
		if !v.Equal(time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)) {
			t.Fatalf("got %v", v)
		}
	})
	t.Run("no converter", func(t *testing.T) {
		_, err := parseString[[]int]("1,2")
		if !errors.Is(err, ErrNoConverter) {
			t.Fatalf("error = %v, want ErrNoConverter", err)
		}
		_, err = parseString[any]("x")
		if !errors.Is(err, ErrNoConverter) {
			t.Fatalf("error = %v, want ErrNoConverter", err)
		}
	})
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"int", -7, "-7"},
		{"uint", uint16(7), "7"},
		{"float", 0.1, "0.1"},
		{"float32", float32(0.1), "0.1"},
		{"bool", true, "true"},
		{"duration", 1500 * time.Millisecond, "1.5s"},
		{"enum", SizeMedium, "medium"},
		{"fallback", []int{1, 2}, "[1 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatValue(tt.value)
			if err != nil {
				t.Fatalf("formatValue() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("formatValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
