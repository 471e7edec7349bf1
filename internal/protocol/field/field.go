package field

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

var (
	ErrShortField    = errors.New("field: short field value")
	ErrTrailingBytes = errors.New("field: trailing bytes after message")
	ErrInvalidUTF8   = errors.New("field: string is not valid utf-8")
	ErrBadPresence   = errors.New("field: invalid presence byte")
	ErrTooLong       = errors.New("field: value too long")
)

// Writer appends primitive wire fields to a byte slice.
//
// Strings are a u32 big-endian length followed by UTF-8 bytes. Lists and maps
// are a u32 big-endian count followed by their elements.
type Writer struct {
	buf []byte
	err error
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the encoded fields, or the first error hit while writing.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

func (w *Writer) U8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) U32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *Writer) U64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

func (w *Writer) String(s string) {
	if w.err != nil {
		return
	}
	if !utf8.ValidString(s) {
		w.err = ErrInvalidUTF8
		return
	}
	if uint64(len(s)) > uint64(^uint32(0)) {
		w.err = fmt.Errorf("%w: string of %d bytes", ErrTooLong, len(s))
		return
	}
	w.U32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *Writer) Strings(list []string) {
	w.U32(uint32(len(list)))
	for _, s := range list {
		w.String(s)
	}
}

// OptionalStringMap writes entries sorted by key. A nil value is written as
// absent.
func (w *Writer) OptionalStringMap(m map[string]*string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w.U32(uint32(len(keys)))
	for _, k := range keys {
		w.String(k)
		v := m[k]
		if v == nil {
			w.U8(0)
			continue
		}
		w.U8(1)
		w.String(*v)
	}
}

// Reader consumes primitive wire fields from a byte slice. The first failure
// is sticky: later calls return zero values and Err reports it.
type Reader struct {
	buf []byte
	off int
	err error
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Err() error {
	return r.err
}

// Finish reports the sticky error, or ErrTrailingBytes when input remains.
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if rest := len(r.buf) - r.off; rest != 0 {
		return fmt.Errorf("%w: %d", ErrTrailingBytes, rest)
	}
	return nil
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.err = fmt.Errorf("%w: want %d bytes at offset %d, have %d", ErrShortField, n, r.off, len(r.buf)-r.off)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *Reader) U64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *Reader) String() string {
	n := r.U32()
	if r.err != nil {
		return ""
	}
	if uint64(n) > uint64(len(r.buf)-r.off) {
		r.err = fmt.Errorf("%w: string length %d exceeds remaining %d", ErrShortField, n, len(r.buf)-r.off)
		return ""
	}
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.err = ErrInvalidUTF8
		return ""
	}
	return string(b)
}

func (r *Reader) Strings() []string {
	n := r.count()
	if r.err != nil {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.String())
	}
	if r.err != nil {
		return nil
	}
	return out
}

func (r *Reader) OptionalStringMap() map[string]*string {
	n := r.count()
	if r.err != nil {
		return nil
	}
	out := make(map[string]*string, n)
	for i := 0; i < n && r.err == nil; i++ {
		key := r.String()
		switch present := r.U8(); {
		case r.err != nil:
		case present == 0:
			out[key] = nil
		case present == 1:
			v := r.String()
			out[key] = &v
		default:
			r.err = fmt.Errorf("%w: %d for key %q", ErrBadPresence, present, key)
		}
	}
	if r.err != nil {
		return nil
	}
	return out
}

// count reads an element count and bounds it by the remaining input, since
// every element occupies at least one byte.
func (r *Reader) count() int {
	n := r.U32()
	if r.err != nil {
		return 0
	}
	if uint64(n) > uint64(len(r.buf)-r.off) {
		r.err = fmt.Errorf("%w: count %d exceeds remaining %d", ErrShortField, n, len(r.buf)-r.off)
		return 0
	}
	return int(n)
}
