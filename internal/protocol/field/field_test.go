package field

import (
	"errors"
	"reflect"
	"testing"
)

func strptr(s string) *string { return &s }

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter(64)
	w.U64(42)
	w.U8(3)
	w.String("")
	w.String("héllo")
	w.Strings([]string{"-jar", "", "agent.jar"})
	w.OptionalStringMap(map[string]*string{
		"PATH": strptr("/usr/bin"),
		"HOME": nil,
		"":     strptr(""),
	})
	b, err := w.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}

	r := NewReader(b)
	if got := r.U64(); got != 42 {
		t.Fatalf("u64 got=%d", got)
	}
	if got := r.U8(); got != 3 {
		t.Fatalf("u8 got=%d", got)
	}
	if got := r.String(); got != "" {
		t.Fatalf("empty string got=%q", got)
	}
	if got := r.String(); got != "héllo" {
		t.Fatalf("string got=%q", got)
	}
	if got := r.Strings(); !reflect.DeepEqual(got, []string{"-jar", "", "agent.jar"}) {
		t.Fatalf("strings got=%q", got)
	}
	env := r.OptionalStringMap()
	want := map[string]*string{"PATH": strptr("/usr/bin"), "HOME": nil, "": strptr("")}
	if !reflect.DeepEqual(env, want) {
		t.Fatalf("env mismatch: %v", env)
	}
	if err := r.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
}

func TestOptionalStringMapIsDeterministic(t *testing.T) {
	m := map[string]*string{"b": strptr("2"), "a": nil, "c": strptr("3"), "d": nil}
	first := NewWriter(0)
	first.OptionalStringMap(m)
	a, _ := first.Bytes()
	for i := 0; i < 20; i++ {
		next := NewWriter(0)
		next.OptionalStringMap(m)
		b, _ := next.Bytes()
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("encoding differs between runs")
		}
	}
}

func TestReaderShortFieldIsSticky(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 5, 'a', 'b'})
	if got := r.String(); got != "" {
		t.Fatalf("expected empty string on failure, got %q", got)
	}
	if !errors.Is(r.Err(), ErrShortField) {
		t.Fatalf("expected ErrShortField, got %v", r.Err())
	}
	_ = r.U64()
	if !errors.Is(r.Finish(), ErrShortField) {
		t.Fatalf("expected sticky ErrShortField, got %v", r.Finish())
	}
}

func TestReaderTrailingBytes(t *testing.T) {
	r := NewReader([]byte{7, 0xff})
	_ = r.U8()
	if err := r.Finish(); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestReaderRejectsInvalidUTF8(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 2, 0xc3, 0x28})
	_ = r.String()
	if !errors.Is(r.Err(), ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", r.Err())
	}
}

func TestWriterRejectsInvalidUTF8(t *testing.T) {
	w := NewWriter(0)
	w.String("ok")
	w.String(string([]byte{0xff}))
	if _, err := w.Bytes(); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestReaderBadPresenceByte(t *testing.T) {
	// count=1, key="k", presence=2
	r := NewReader([]byte{0, 0, 0, 1, 0, 0, 0, 1, 'k', 2})
	if got := r.OptionalStringMap(); got != nil {
		t.Fatalf("expected nil map on failure, got %v", got)
	}
	if !errors.Is(r.Err(), ErrBadPresence) {
		t.Fatalf("expected ErrBadPresence, got %v", r.Err())
	}
}

func TestReaderHugeCountDoesNotAllocate(t *testing.T) {
	r := NewReader([]byte{0xff, 0xff, 0xff, 0xff})
	if got := r.Strings(); got != nil {
		t.Fatalf("expected nil list, got %d entries", len(got))
	}
	if !errors.Is(r.Err(), ErrShortField) {
		t.Fatalf("expected ErrShortField, got %v", r.Err())
	}
}
