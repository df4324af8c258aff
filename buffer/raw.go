package buffer

import (
	"bytes"
	"database/sql/driver"
	"encoding/binary"
	"math"

	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/pkg/errors"
)

// RawPointer binds memory owned by the caller. The buffer only knows the
// C type and the length of the region; values are encoded in the native
// byte order of the C structs.
type RawPointer struct {
	base
	mem []byte
}

var _ ColumnBuffer = (*RawPointer)(nil)

// NewRawPointer wraps mem. Fixed size C types need at least Size() bytes.
func NewRawPointer(queryName string, sqlType sqltype.SqlType, cType sqltype.CType, mem []byte, flags ColumnFlags) (*RawPointer, error) {
	if size := cType.Size(); size > 0 && len(mem) < size {
		return nil, sqlerr.IllegalArgument("%s needs %d bytes, '%s' has %d", cType, size, queryName, len(mem))
	}
	switch cType {
	case sqltype.CShort, sqltype.CSShort, sqltype.CLong, sqltype.CSLong, sqltype.CSBigInt,
		sqltype.CFloat, sqltype.CDouble, sqltype.CNumeric, sqltype.CTypeDate, sqltype.CTypeTime,
		sqltype.CTimestamp, sqltype.CChar, sqltype.CWChar, sqltype.CBinary:
	default:
		return nil, sqlerr.NotSupported("raw pointer of %s", cType)
	}
	return &RawPointer{base: newBase(queryName, sqlType, cType, flags), mem: mem}, nil
}

// Mem returns the caller owned region.
func (r *RawPointer) Mem() []byte {
	return r.mem
}

func (r *RawPointer) BufferLength() int {
	return len(r.mem)
}

func (r *RawPointer) BindColumn(ordinal int, b Binder) error {
	return bindColumn(r, ordinal, b)
}

func (r *RawPointer) BindParameter(ordinal int, b Binder, queryParamInfo bool) error {
	return bindParameter(r, ordinal, b, queryParamInfo)
}

func (r *RawPointer) Accept(v Visitor) error {
	return v.VisitRawPointer(r)
}

func (r *RawPointer) sealed() {}

func (r *RawPointer) numericShape() (uint8, uint8) {
	var precision, scale uint8
	if size, ok := r.ColumnSize(); ok {
		precision = uint8(size)
	}
	if digits, ok := r.DecimalDigits(); ok {
		scale = uint8(digits)
	}
	return precision, scale
}

// Store encodes a fetched value into the caller's memory.
func (r *RawPointer) Store(src any) error {
	if src == nil {
		r.SetNull()
		return nil
	}
	var enc []byte
	switch r.cType {
	case sqltype.CShort, sqltype.CSShort:
		i, err := convertInt64(src)
		if err != nil {
			return err
		}
		if i < math.MinInt16 || i > math.MaxInt16 {
			return sqlerr.IllegalArgument("value %d of '%s' is out of range for %s", i, r.queryName, r.cType)
		}
		enc = binary.NativeEndian.AppendUint16(nil, uint16(int16(i)))
	case sqltype.CLong, sqltype.CSLong:
		i, err := convertInt64(src)
		if err != nil {
			return err
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return sqlerr.IllegalArgument("value %d of '%s' is out of range for %s", i, r.queryName, r.cType)
		}
		enc = binary.NativeEndian.AppendUint32(nil, uint32(int32(i)))
	case sqltype.CSBigInt:
		i, err := convertInt64(src)
		if err != nil {
			return err
		}
		enc = binary.NativeEndian.AppendUint64(nil, uint64(i))
	case sqltype.CFloat:
		f, err := convertFloat64(src)
		if err != nil {
			return err
		}
		enc = binary.NativeEndian.AppendUint32(nil, math.Float32bits(float32(f)))
	case sqltype.CDouble:
		f, err := convertFloat64(src)
		if err != nil {
			return err
		}
		enc = binary.NativeEndian.AppendUint64(nil, math.Float64bits(f))
	case sqltype.CNumeric:
		precision, scale := r.numericShape()
		n, err := convertNumeric(src, precision, scale)
		if err != nil {
			return err
		}
		enc, _ = n.MarshalBinary()
	case sqltype.CTypeDate:
		ts, err := convertTimestamp(src)
		if err != nil {
			return err
		}
		enc, _ = ts.Date().MarshalBinary()
	case sqltype.CTypeTime:
		t, err := convertTime(src)
		if err != nil {
			return err
		}
		enc, _ = t.MarshalBinary()
	case sqltype.CTimestamp:
		ts, err := convertTimestamp(src)
		if err != nil {
			return err
		}
		enc, _ = ts.MarshalBinary()
	case sqltype.CChar:
		text, err := convertText(src)
		if err != nil {
			return err
		}
		return r.storeVariable(text, r.terminator())
	case sqltype.CWChar:
		text, err := convertText(src)
		if err != nil {
			return err
		}
		units, err := encodeUTF16(string(text))
		if err != nil {
			return err
		}
		enc = make([]byte, 0, len(units)*2)
		for _, u := range units {
			enc = binary.NativeEndian.AppendUint16(enc, u)
		}
		return r.storeVariable(enc, r.terminator())
	case sqltype.CBinary:
		b, err := convertBinary(src)
		if err != nil {
			return err
		}
		return r.storeVariable(b, r.terminator())
	}
	copy(r.mem, enc)
	r.ind.SetCb(int64(len(enc)))
	return nil
}

// storeVariable copies a variable length value, truncating it to the region
// and zero terminating text when there is room.
func (r *RawPointer) storeVariable(b []byte, terminator int) error {
	room := len(r.mem) - terminator
	if room < 0 {
		room = 0
	}
	n := copy(r.mem[:room], b)
	clear(r.mem[n:])
	r.ind.SetCb(int64(len(b)))
	return nil
}

// decode reads the caller's memory as a typed value.
func (r *RawPointer) decode() (any, error) {
	switch r.cType {
	case sqltype.CShort, sqltype.CSShort:
		return int16(binary.NativeEndian.Uint16(r.mem)), nil
	case sqltype.CLong, sqltype.CSLong:
		return int32(binary.NativeEndian.Uint32(r.mem)), nil
	case sqltype.CSBigInt:
		return int64(binary.NativeEndian.Uint64(r.mem)), nil
	case sqltype.CFloat:
		return math.Float32frombits(binary.NativeEndian.Uint32(r.mem)), nil
	case sqltype.CDouble:
		return math.Float64frombits(binary.NativeEndian.Uint64(r.mem)), nil
	case sqltype.CNumeric:
		var n Numeric
		if err := n.UnmarshalBinary(r.mem); err != nil {
			return nil, err
		}
		return n, nil
	case sqltype.CTypeDate:
		var d Date
		if err := d.UnmarshalBinary(r.mem); err != nil {
			return nil, err
		}
		return d, nil
	case sqltype.CTypeTime:
		var t Time
		if err := t.UnmarshalBinary(r.mem); err != nil {
			return nil, err
		}
		return t, nil
	case sqltype.CTimestamp:
		var ts Timestamp
		if err := ts.UnmarshalBinary(r.mem); err != nil {
			return nil, err
		}
		return ts, nil
	case sqltype.CChar, sqltype.CBinary, sqltype.CWChar:
		return r.variable(), nil
	}
	return nil, sqlerr.NotSupported("raw pointer of %s", r.cType)
}

func (r *RawPointer) variable() []byte {
	cb := r.Cb()
	if cb == sqltype.NTS {
		if r.cType == sqltype.CWChar {
			for i := 0; i+1 < len(r.mem); i += 2 {
				if r.mem[i] == 0 && r.mem[i+1] == 0 {
					return r.mem[:i]
				}
			}
			return r.mem
		}
		if idx := bytes.IndexByte(r.mem, 0); idx >= 0 {
			return r.mem[:idx]
		}
		return r.mem
	}
	// a truncated value ends before the terminator storeVariable kept room for
	valid := len(r.mem) - r.terminator()
	if valid < 0 {
		valid = 0
	}
	return r.mem[:min(int(cb), valid)]
}

func (r *RawPointer) terminator() int {
	switch r.cType {
	case sqltype.CChar:
		return 1
	case sqltype.CWChar:
		return 2
	}
	return 0
}

// Value decodes the memory region, or returns a NullValueError.
func (r *RawPointer) Value() (any, error) {
	if r.IsNull() {
		return nil, r.nullValue()
	}
	return r.decode()
}

// SetValue encodes v into the memory region.
func (r *RawPointer) SetValue(v any) error {
	if v == nil {
		return sqlerr.IllegalArgument("use SetNull to set '%s' NULL", r.queryName)
	}
	return r.Store(v)
}

func (r *RawPointer) Load(desc ParamDesc) (driver.Value, error) {
	if r.IsNull() {
		return nil, nil
	}
	v, err := r.decode()
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case Numeric:
		return driverNumeric(x, desc)
	case Date:
		return x.String(), nil
	case Time:
		return x.String(), nil
	case Timestamp:
		return driverTimestamp(x, desc), nil
	case []byte:
		switch r.cType {
		case sqltype.CChar:
			return string(x), nil
		case sqltype.CWChar:
			units := make([]uint16, len(x)/2)
			for i := range units {
				units[i] = binary.NativeEndian.Uint16(x[i*2:])
			}
			return decodeUTF16(units)
		}
		return append([]byte(nil), x...), nil
	}
	return nil, errors.Errorf("Load() does not support %T", v)
}
