package buffer

import (
	"database/sql/driver"
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

// ArrayElement is a narrow char or byte (byte) or a UTF-16 code unit (uint16).
type ArrayElement interface {
	byte | uint16
}

// TrimPolicy controls the trimming of CHAR values on read.
type TrimPolicy uint8

const (
	TrimNone  TrimPolicy = 0
	TrimRight TrimPolicy = 0x1
	TrimLeft  TrimPolicy = 0x2
)

// Array is a buffer of a fixed number of elements. CHAR and WCHAR arrays
// reserve one extra element for the terminating zero.
type Array[E ArrayElement] struct {
	base
	data     []E
	capacity int
	trim     TrimPolicy
}

var (
	_ ColumnBuffer = (*Array[byte])(nil)
	_ ColumnBuffer = (*Array[uint16])(nil)
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// NewChar creates a narrow character buffer holding up to capacity bytes.
func NewChar(queryName string, sqlType sqltype.SqlType, capacity int, flags ColumnFlags) *Array[byte] {
	a := &Array[byte]{
		base:     newBase(queryName, sqlType, sqltype.CChar, flags),
		data:     make([]byte, capacity+1),
		capacity: capacity,
	}
	a.SetColumnSize(capacity)
	return a
}

// NewWChar creates a wide character buffer holding up to capacity UTF-16 code units.
func NewWChar(queryName string, sqlType sqltype.SqlType, capacity int, flags ColumnFlags) *Array[uint16] {
	a := &Array[uint16]{
		base:     newBase(queryName, sqlType, sqltype.CWChar, flags),
		data:     make([]uint16, capacity+1),
		capacity: capacity,
	}
	a.SetColumnSize(capacity)
	return a
}

// NewBinary creates a binary buffer holding up to capacity bytes.
func NewBinary(queryName string, sqlType sqltype.SqlType, capacity int, flags ColumnFlags) *Array[byte] {
	a := &Array[byte]{
		base:     newBase(queryName, sqlType, sqltype.CBinary, flags),
		data:     make([]byte, capacity),
		capacity: capacity,
	}
	a.SetColumnSize(capacity)
	return a
}

// Capacity is the number of usable elements, without the terminator.
func (a *Array[E]) Capacity() int {
	return a.capacity
}

func (a *Array[E]) elemSize() int {
	var e E
	if any(e) == any(uint16(0)) {
		return 2
	}
	return 1
}

func (a *Array[E]) isChar() bool {
	return a.cType == sqltype.CChar || a.cType == sqltype.CWChar
}

func (a *Array[E]) BufferLength() int {
	return len(a.data) * a.elemSize()
}

func (a *Array[E]) SetTrim(p TrimPolicy) {
	a.trim = p
}

func (a *Array[E]) Trim() TrimPolicy {
	return a.trim
}

// validLen is the number of valid elements according to the indicator.
func (a *Array[E]) validLen() int {
	cb := a.Cb()
	switch {
	case cb == sqltype.NTS:
		for i, e := range a.data {
			if e == 0 {
				return i
			}
		}
		return a.capacity
	case cb < 0:
		return 0
	}
	n := int(cb) / a.elemSize()
	return min(n, a.capacity)
}

// Elements returns the valid range of the buffer, or a NullValueError.
func (a *Array[E]) Elements() ([]E, error) {
	if a.IsNull() {
		return nil, a.nullValue()
	}
	return a.data[:a.validLen()], nil
}

// SetValue copies elems into the buffer. cb is the byte length to report,
// NTS makes the buffer zero terminated.
func (a *Array[E]) SetValue(elems []E, cb int64) error {
	limit := a.capacity
	if cb == sqltype.NTS && a.isChar() {
		limit = len(a.data)
	}
	if len(elems) > limit {
		return sqlerr.IllegalArgument("'%s' holds %d elements, got %d", a.queryName, a.capacity, len(elems))
	}
	n := copy(a.data, elems)
	clear(a.data[n:])
	if cb == sqltype.NTS {
		a.ind.SetCb(sqltype.NTS)
		return nil
	}
	if cb < 0 {
		return sqlerr.IllegalArgument("invalid length %d for '%s'", cb, a.queryName)
	}
	a.ind.SetCb(cb)
	return nil
}

// Bytes returns the valid bytes of a CHAR or BINARY buffer. For WCHAR it
// returns the UTF-16LE encoding of the valid code units.
func (a *Array[E]) Bytes() ([]byte, error) {
	elems, err := a.Elements()
	if err != nil {
		return nil, err
	}
	switch v := any(elems).(type) {
	case []byte:
		return append([]byte(nil), v...), nil
	case []uint16:
		buf := make([]byte, len(v)*2)
		for i, u := range v {
			binary.LittleEndian.PutUint16(buf[i*2:], u)
		}
		return buf, nil
	}
	return nil, sqlerr.Assertion("unhandled array type %T", a)
}

// SetBytes sets a BINARY buffer, or a CHAR buffer from raw bytes.
func (a *Array[E]) SetBytes(b []byte) error {
	switch d := any(a.data).(type) {
	case []byte:
		if len(b) > a.capacity {
			return sqlerr.IllegalArgument("'%s' holds %d bytes, got %d", a.queryName, a.capacity, len(b))
		}
		n := copy(d, b)
		clear(d[n:])
		a.ind.SetCb(int64(len(b)))
		return nil
	case []uint16:
		if len(b)%2 != 0 {
			return sqlerr.IllegalArgument("odd number of bytes for wide buffer '%s'", a.queryName)
		}
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = binary.LittleEndian.Uint16(b[i*2:])
		}
		return a.SetValue(any(units).([]E), int64(len(b)))
	}
	return sqlerr.Assertion("unhandled array type %T", a)
}

// String returns the text of a CHAR or WCHAR buffer, trimmed according to
// the trim policy.
func (a *Array[E]) String() (string, error) {
	elems, err := a.Elements()
	if err != nil {
		return "", err
	}
	var s string
	switch v := any(elems).(type) {
	case []byte:
		s = string(v)
	case []uint16:
		s, err = decodeUTF16(v)
		if err != nil {
			return "", err
		}
	}
	if a.trim&TrimRight != 0 {
		s = strings.TrimRight(s, " ")
	}
	if a.trim&TrimLeft != 0 {
		s = strings.TrimLeft(s, " ")
	}
	return s, nil
}

// SetString sets a CHAR buffer from s, or a WCHAR buffer from the UTF-16
// encoding of s.
func (a *Array[E]) SetString(s string) error {
	switch any(a.data).(type) {
	case []byte:
		return a.SetBytes([]byte(s))
	case []uint16:
		units, err := encodeUTF16(s)
		if err != nil {
			return err
		}
		if len(units) > a.capacity {
			return sqlerr.IllegalArgument("'%s' holds %d code units, got %d", a.queryName, a.capacity, len(units))
		}
		return a.SetValue(any(units).([]E), int64(len(units)*2))
	}
	return sqlerr.Assertion("unhandled array type %T", a)
}

// UUID reads a GUID column bound as 16 bytes of BINARY.
func (a *Array[E]) UUID() (uuid.UUID, error) {
	b, err := a.Bytes()
	if err != nil {
		return uuid.Nil, err
	}
	if len(b) == 16 {
		return uuid.FromBytes(b)
	}
	// drivers without a binary GUID form hand out the text form
	return uuid.ParseBytes(b)
}

func (a *Array[E]) SetUUID(id uuid.UUID) error {
	return a.SetBytes(id[:])
}

func (a *Array[E]) BindColumn(ordinal int, b Binder) error {
	return bindColumn(a, ordinal, b)
}

func (a *Array[E]) BindParameter(ordinal int, b Binder, queryParamInfo bool) error {
	return bindParameter(a, ordinal, b, queryParamInfo)
}

func (a *Array[E]) Accept(v Visitor) error {
	switch b := any(a).(type) {
	case *Array[byte]:
		if b.cType == sqltype.CBinary {
			return v.VisitBinary(b)
		}
		return v.VisitChar(b)
	case *Array[uint16]:
		return v.VisitWChar(b)
	}
	return sqlerr.Assertion("unhandled array type %T", a)
}

func (a *Array[E]) sealed() {}

// Store copies a fetched value. A value longer than the capacity is
// truncated; Cb then reports the full length like a driver does.
func (a *Array[E]) Store(src any) error {
	if src == nil {
		a.SetNull()
		return nil
	}
	var full []byte
	var err error
	if a.cType == sqltype.CBinary {
		full, err = convertBinary(src)
	} else {
		full, err = convertText(src)
	}
	if err != nil {
		return err
	}
	switch d := any(a.data).(type) {
	case []byte:
		n := copy(d[:a.capacity], full)
		clear(d[n:])
		a.ind.SetCb(int64(len(full)))
	case []uint16:
		units, err := encodeUTF16(string(full))
		if err != nil {
			return err
		}
		n := copy(d[:a.capacity], units)
		clear(d[n:])
		a.ind.SetCb(int64(len(units) * 2))
	}
	return nil
}

func (a *Array[E]) Load(desc ParamDesc) (driver.Value, error) {
	if a.IsNull() {
		return nil, nil
	}
	if a.cType == sqltype.CBinary {
		return a.Bytes()
	}
	elems, _ := a.Elements()
	switch v := any(elems).(type) {
	case []byte:
		return string(v), nil
	case []uint16:
		return decodeUTF16(v)
	}
	return nil, errors.Errorf("Load() does not support %T", a)
}

func encodeUTF16(s string) ([]uint16, error) {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, sqlerr.IllegalArgument("cannot encode '%s' as UTF-16: %s", s, err.Error())
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return units, nil
}

func decodeUTF16(units []uint16) (string, error) {
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}
	b, err := utf16le.NewDecoder().Bytes(buf)
	if err != nil {
		return "", sqlerr.IllegalArgument("invalid UTF-16 data: %s", err.Error())
	}
	return string(b), nil
}
