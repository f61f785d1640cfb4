package ini

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"

	"fser/paths"
	"fser/persist"
)

type Window struct {
	Title   string
	Width   int32
	Height  uint16
	Ratio   float64
	Visible bool
	Delay   time.Duration
	Scale   Size
	Opened  time.Time
	Note    string `ini:"-"`
	Left    int    `ini:"X"`
	hidden  int
}

type Triple struct {
	A, B, C int
}

type Base struct {
	ID int
}

type Derived struct {
	Base
	Name string
}

type Mixed struct {
	A    int
	Tags []string
	C    int
}

type Dirs struct {
	Dir  string
	Port int
}

type Greeting struct {
	Text string
}

func writeText(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unable to write test file: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	s := New[Window](zaptest.NewLogger(t))
	path := filepath.Join(t.TempDir(), "nested", "dir", "window.ini")

	in := Window{
		Title:   "Main window",
		Width:   -1024,
		Height:  768,
		Ratio:   0.1,
		Visible: true,
		Delay:   1500 * time.Millisecond,
		Scale:   SizeLarge,
		Opened:  time.Date(2024, 2, 29, 10, 30, 0, 0, time.UTC),
		Note:    "not persisted",
		Left:    12,
		hidden:  5,
	}
	if !s.Serialize(path, in) {
		t.Fatal("Serialize() failed")
	}

	out, ok := s.TryDeserialize(path)
	if !ok {
		t.Fatal("TryDeserialize() failed")
	}
	if !out.Opened.Equal(in.Opened) {
		t.Errorf("Opened = %v, want %v", out.Opened, in.Opened)
	}
	want := in
	want.Note, want.hidden = "", 0
	want.Opened, out.Opened = time.Time{}, time.Time{}
	if out != want {
		t.Errorf("TryDeserialize() = %+v, want %+v", out, want)
	}

	if got := GetInt(path, "Window", "X"); got != 12 {
		t.Errorf("renamed key X = %d, want 12", got)
	}
	if _, ok := TryGetValue[string](path, "Window", "Note"); ok {
		t.Error("skipped field was written")
	}
	if got := GetString(path, "Window", "Scale"); got != "large" {
		t.Errorf("Scale written as %q, want large", got)
	}
}

func TestPartialApplication(t *testing.T) {
	s := New[Triple](zaptest.NewLogger(t))
	path := filepath.Join(t.TempDir(), "triple.ini")
	writeText(t, path, "[Triple]\nA=1\nC=3\n")

	got, ok := s.TryDeserialize(path)
	if ok {
		t.Fatal("TryDeserialize() succeeded with missing key")
	}
	if got != (Triple{A: 1, C: 3}) {
		t.Fatalf("TryDeserialize() = %+v, want resolved fields applied", got)
	}

	_, err := s.Load(path)
	if n := len(multierr.Errors(err)); n != 1 {
		t.Fatalf("Load() reported %d errors, want 1: %v", n, err)
	}
	if !errors.Is(err, ErrNoValue) {
		t.Fatalf("Load() error = %v, want ErrNoValue", err)
	}
}

func TestPartialFailures(t *testing.T) {
	s := New[Triple](zaptest.NewLogger(t))
	path := filepath.Join(t.TempDir(), "triple.ini")
	writeText(t, path, "[Triple]\nA=x\nB=\nC=3\n")

	got, err := s.Load(path)
	if got != (Triple{C: 3}) {
		t.Fatalf("Load() = %+v", got)
	}
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("Load() reported %d errors, want 2: %v", len(errs), err)
	}
	if !errors.Is(errs[0], persist.ErrConversion) {
		t.Errorf("malformed value error = %v, want ErrConversion", errs[0])
	}
	if !errors.Is(errs[1], ErrNoValue) {
		t.Errorf("empty value error = %v, want ErrNoValue", errs[1])
	}
}

func TestMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.ini")

	v, ok := New[Triple](zaptest.NewLogger(t)).TryDeserialize(path)
	if ok || v != (Triple{}) {
		t.Fatalf("TryDeserialize() = %+v, %v", v, ok)
	}

	p, ok := New[*Triple](zaptest.NewLogger(t)).TryDeserialize(path)
	if ok || p != nil {
		t.Fatalf("TryDeserialize() = %v, %v, want nil", p, ok)
	}

	_, err := New[Triple](nil).Load(path)
	if !errors.Is(err, persist.ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestPointerType(t *testing.T) {
	s := New[*Triple](zaptest.NewLogger(t))
	if s.Section() != "Triple" {
		t.Fatalf("Section() = %q, want Triple", s.Section())
	}
	path := filepath.Join(t.TempDir(), "triple.ini")
	if !s.Serialize(path, &Triple{1, 2, 3}) {
		t.Fatal("Serialize() failed")
	}
	got, ok := s.TryDeserialize(path)
	if !ok || got == nil || *got != (Triple{1, 2, 3}) {
		t.Fatalf("TryDeserialize() = %v, %v", got, ok)
	}
}

func TestInvalidArguments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triple.ini")
	s := New[*Triple](zaptest.NewLogger(t))

	if s.Serialize(path, nil) {
		t.Error("Serialize() accepted nil")
	}
	if err := s.Save(path, nil); !errors.Is(err, persist.ErrInvalidArgument) {
		t.Errorf("Save(nil) error = %v, want ErrInvalidArgument", err)
	}
	if s.Serialize("  ", &Triple{}) {
		t.Error("Serialize() accepted blank path")
	}
	if err := s.SaveSection(path, " ", &Triple{}); !errors.Is(err, persist.ErrInvalidArgument) {
		t.Errorf("SaveSection() error = %v, want ErrInvalidArgument", err)
	}
	if _, ok := s.TryDeserialize(""); ok {
		t.Error("TryDeserialize() accepted empty path")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("invalid arguments caused I/O, found %d entries", len(entries))
	}
}

func TestCaseInsensitiveLookup(t *testing.T) {
	s := New[Triple](zaptest.NewLogger(t))
	path := filepath.Join(t.TempDir(), "triple.ini")

	writeText(t, path, "[triple]\na=1\nB=2\nc=3\n")
	if got, ok := s.TryDeserialize(path); !ok || got != (Triple{1, 2, 3}) {
		t.Fatalf("TryDeserialize() = %+v, %v", got, ok)
	}

	writeText(t, path, "[TRIPLE]\nA=9\nB=9\nC=9\n[Triple]\nA=1\nB=2\nC=3\n")
	if got, ok := s.TryDeserialize(path); !ok || got != (Triple{1, 2, 3}) {
		t.Fatalf("exact section spelling did not win: %+v, %v", got, ok)
	}
}

func TestNoParentFallback(t *testing.T) {
	s := New[Triple](zaptest.NewLogger(t))
	path := filepath.Join(t.TempDir(), "triple.ini")
	writeText(t, path, "[Triple]\nA=1\nB=2\nC=3\n[Triple.Child]\nA=5\n")

	got, ok := s.TryDeserializeSection(path, "Triple.Child")
	if ok || got != (Triple{A: 5}) {
		t.Fatalf("TryDeserializeSection() = %+v, %v", got, ok)
	}
}

func TestSharedFile(t *testing.T) {
	log := zaptest.NewLogger(t)
	path := filepath.Join(t.TempDir(), "app.ini")
	writeText(t, path, "; user settings\n[Other]\nkey=value\n")

	if !New[Triple](log).Serialize(path, Triple{1, 2, 3}) {
		t.Fatal("Serialize(Triple) failed")
	}
	if !New[Derived](log).Serialize(path, Derived{Base: Base{ID: 7}, Name: "seven"}) {
		t.Fatal("Serialize(Derived) failed")
	}
	if !New[Triple](log).SerializeSection(path, "Backup", Triple{4, 5, 6}) {
		t.Fatal("SerializeSection() failed")
	}

	if got, ok := New[Triple](log).TryDeserialize(path); !ok || got != (Triple{1, 2, 3}) {
		t.Errorf("Triple = %+v, %v", got, ok)
	}
	if got, ok := New[Triple](log).TryDeserializeSection(path, "Backup"); !ok || got != (Triple{4, 5, 6}) {
		t.Errorf("Backup = %+v, %v", got, ok)
	}
	if got, ok := New[Derived](log).TryDeserialize(path); !ok || got.ID != 7 || got.Name != "seven" {
		t.Errorf("Derived = %+v, %v", got, ok)
	}
	if got := GetInt(path, "Derived", "ID"); got != 7 {
		t.Errorf("embedded field key ID = %d, want 7", got)
	}
	if got := GetString(path, "Other", "key"); got != "value" {
		t.Errorf("foreign key = %q, want value", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "; user settings") {
		t.Errorf("comment lost:\n%s", data)
	}
}

func TestUnsupportedField(t *testing.T) {
	s := New[Mixed](zaptest.NewLogger(t))
	path := filepath.Join(t.TempDir(), "mixed.ini")

	if s.Serialize(path, Mixed{A: 1, Tags: []string{"a"}, C: 3}) {
		t.Fatal("Serialize() succeeded for slice field")
	}
	if got := GetInt(path, "Mixed", "A"); got != 1 {
		t.Errorf("A written as %d, want 1", got)
	}
	if got := GetInt(path, "Mixed", "C"); got != 3 {
		t.Errorf("C written as %d, want 3", got)
	}
	if _, ok := TryGetValue[string](path, "Mixed", "Tags"); ok {
		t.Error("field without converter was written")
	}

	err := s.Save(path, Mixed{A: 5, C: 7})
	if !errors.Is(err, persist.ErrConversion) || !errors.Is(err, ErrNoConverter) {
		t.Fatalf("Save() error = %v, want ErrConversion and ErrNoConverter", err)
	}

	writeText(t, path, "[Mixed]\nA=1\nC=3\n")
	got, ok := s.TryDeserialize(path)
	if ok {
		t.Fatal("TryDeserialize() succeeded for slice field")
	}
	if got.A != 1 || got.C != 3 || got.Tags != nil {
		t.Fatalf("TryDeserialize() = %+v, want A and C applied", got)
	}

	_, err = s.Load(path)
	if errs := multierr.Errors(err); len(errs) != 1 || !errors.Is(errs[0], ErrNoConverter) {
		t.Fatalf("Load() error = %v, want single ErrNoConverter", err)
	}
}

func TestTrailingBackslash(t *testing.T) {
	s := New[Dirs](zaptest.NewLogger(t))
	path := filepath.Join(t.TempDir(), "dirs.ini")

	want := Dirs{Dir: `C:\data\`, Port: 8080}
	if !s.Serialize(path, want) {
		t.Fatal("Serialize() failed")
	}
	got, ok := s.TryDeserialize(path)
	if !ok || got != want {
		t.Fatalf("TryDeserialize() = %+v, %v, want %+v", got, ok, want)
	}

	if err := SetValue(path, "Dirs", "Port", 9090); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if got := GetString(path, "Dirs", "Dir"); got != want.Dir {
		t.Fatalf("Dir after update = %q, want %q", got, want.Dir)
	}
	if got := GetInt(path, "Dirs", "Port"); got != 9090 {
		t.Fatalf("Port after update = %d, want 9090", got)
	}
}

func TestCodepage(t *testing.T) {
	enc := charmap.Windows1251
	s := New[Greeting](zaptest.NewLogger(t), WithCodepage(enc))
	path := filepath.Join(t.TempDir(), "greeting.ini")

	if !s.Serialize(path, Greeting{Text: "Привет"}) {
		t.Fatal("Serialize() failed")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if utf8.Valid(data) {
		t.Fatalf("file is UTF-8, want windows-1251:\n%s", data)
	}
	encoded, _ := enc.NewEncoder().String("Привет")
	if !strings.Contains(string(data), encoded) {
		t.Fatal("encoded text not found in file")
	}

	got, ok := s.TryDeserialize(path)
	if !ok || got.Text != "Привет" {
		t.Fatalf("TryDeserialize() = %+v, %v", got, ok)
	}
	if got := GetString(path, "Greeting", "Text", WithCodepage(enc)); got != "Привет" {
		t.Fatalf("GetString() = %q", got)
	}
}

func TestDefaultFileName(t *testing.T) {
	dir := t.TempDir()
	s := New[Triple](zaptest.NewLogger(t), WithBaseDir(dir))

	want := filepath.Join(dir, filepath.Base(paths.ProgramFileName(Extension)))
	if got := s.DefaultFileName(); got != want {
		t.Fatalf("DefaultFileName() = %q, want %q", got, want)
	}
	if got := DefaultFileName(WithBaseDir(dir), WithCodepage(charmap.Windows1251)); got != want {
		t.Fatalf("package DefaultFileName() = %q, want %q", got, want)
	}
	if got := DefaultFileName(); got != New[Triple](nil).DefaultFileName() {
		t.Fatalf("package DefaultFileName() = %q differs from serializer", got)
	}
	if !strings.HasSuffix(New[Triple](nil).DefaultFileName(), ".ini") {
		t.Fatal("default name has no .ini extension")
	}

	if !s.SerializeDefault(Triple{7, 8, 9}) {
		t.Fatal("SerializeDefault() failed")
	}
	if got, ok := s.TryDeserializeDefault(); !ok || got != (Triple{7, 8, 9}) {
		t.Fatalf("TryDeserializeDefault() = %+v, %v", got, ok)
	}
}
