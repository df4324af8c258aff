package buffer

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/stretchr/testify/require"
)

// recordingBinder captures binds instead of handing them to a statement.
type recordingBinder struct {
	cols     map[int]Target
	params   map[int]Target
	descs    map[int]ParamDesc
	describe func(ordinal int) (ParamDesc, error)
}

func newRecordingBinder() *recordingBinder {
	return &recordingBinder{cols: map[int]Target{}, params: map[int]Target{}, descs: map[int]ParamDesc{}}
}

func (r *recordingBinder) BindCol(ordinal int, target Target) error {
	r.cols[ordinal] = target
	return nil
}

func (r *recordingBinder) BindParam(ordinal int, target Target, desc ParamDesc) error {
	r.params[ordinal] = target
	r.descs[ordinal] = desc
	return nil
}

func (r *recordingBinder) DescribeParam(ordinal int) (ParamDesc, error) {
	if r.describe == nil {
		return ParamDesc{}, sqlerr.NotSupported("describe parameter")
	}
	return r.describe(ordinal)
}

func TestLengthIndicator(t *testing.T) {
	li := NewLengthIndicator()
	require.True(t, li.IsNull())
	require.Equal(t, sqltype.NullData, li.Cb())

	li.SetCb(12)
	require.False(t, li.IsNull())
	require.Equal(t, int64(12), li.Cb())

	li.SetCb(0)
	require.False(t, li.IsNull())

	li.SetNull()
	require.True(t, li.IsNull())
}

func TestColumnFlags(t *testing.T) {
	f := FlagSelect | FlagInsert
	require.True(t, f.Has(FlagSelect))
	require.False(t, f.Has(FlagWrite))
	f.Set(FlagUpdate)
	require.True(t, f.Has(FlagReadWrite))
	f.Clear(FlagInsert)
	require.False(t, f.Has(FlagInsert))
	require.Equal(t, "SELECT|UPDATE", f.String())
	require.Equal(t, "NONE", FlagNone.String())
}

func TestScalarNull(t *testing.T) {
	s := NewShort("tsmallint", FlagReadWrite)
	require.True(t, s.IsNull())
	_, err := s.Value()
	require.ErrorIs(t, err, sqlerr.ErrNullValue)

	s.SetValue(-32768)
	v, err := s.Value()
	require.NoError(t, err)
	require.Equal(t, int16(-32768), v)
	require.Equal(t, int64(2), s.Cb())

	s.SetNull()
	require.True(t, s.IsNull())
	loaded, err := s.Load(ParamDesc{})
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestScalarDefaults(t *testing.T) {
	require.Equal(t, sqltype.SmallInt, NewScalar[int16]("a", sqltype.Unknown, FlagRead).SqlType())
	require.Equal(t, sqltype.Numeric, NewScalar[Numeric]("a", sqltype.Unknown, FlagRead).SqlType())
	require.Equal(t, sqltype.CSBigInt, NewBigInt("a", FlagRead).CType())
	require.Equal(t, sqltype.CTimestamp, NewTimestamp("a", FlagRead).CType())
	require.Equal(t, 16, NewTimestamp("a", FlagRead).BufferLength())
	require.Equal(t, sqltype.Integer, NewScalar[int32]("a", sqltype.Integer, FlagRead).SqlType())
}

func TestScalarStore(t *testing.T) {
	s := NewShort("s", FlagRead)
	require.NoError(t, s.Store(int64(-32768)))
	v, _ := s.Value()
	require.Equal(t, int16(-32768), v)

	err := s.Store(int64(32768))
	require.ErrorIs(t, err, sqlerr.ErrIllegalArgument)

	require.NoError(t, s.Store(nil))
	require.True(t, s.IsNull())

	l := NewLong("l", FlagRead)
	require.NoError(t, l.Store([]byte("2147483647")))
	lv, _ := l.Value()
	require.Equal(t, int32(2147483647), lv)

	d := NewDouble("d", FlagRead)
	require.NoError(t, d.Store("-3.5"))
	dv, _ := d.Value()
	require.Equal(t, -3.5, dv)

	r := NewReal("r", FlagRead)
	require.NoError(t, r.Store(float64(3.14)))
	rv, _ := r.Value()
	require.Equal(t, float32(3.14), rv)
	loaded, err := r.Load(ParamDesc{})
	require.NoError(t, err)
	require.Equal(t, 3.14, loaded)
}

func TestScalarStoreNumeric(t *testing.T) {
	n := NewNumericBuffer("n", 18, 10, FlagRead)
	require.NoError(t, n.Store("-12345678.9012345678"))
	v, err := n.Value()
	require.NoError(t, err)
	require.Equal(t, uint8(18), v.Precision)
	require.Equal(t, uint8(10), v.Scale)
	require.Equal(t, uint8(0), v.Sign)
	require.Equal(t, "-12345678.9012345678", v.String())

	// drivers returning floats are formatted before scaling
	n2 := NewNumericBuffer("n2", 5, 3, FlagRead)
	require.NoError(t, n2.Store(float64(12.345)))
	v2, _ := n2.Value()
	require.Equal(t, "12.345", v2.String())

	loaded, err := n2.Load(ParamDesc{DecimalDigits: -1})
	require.NoError(t, err)
	require.Equal(t, "12.345", loaded)

	loaded, err = n2.Load(ParamDesc{DecimalDigits: 1})
	require.NoError(t, err)
	require.Equal(t, "12.3", loaded)
}

func TestScalarTemporal(t *testing.T) {
	ts := NewTimestamp("ts", FlagReadWrite)
	require.NoError(t, ts.Store(time.Date(1983, 1, 1, 13, 55, 56, 123456789, time.UTC)))
	v, err := ts.Value()
	require.NoError(t, err)
	require.Equal(t, Timestamp{1983, 1, 1, 13, 55, 56, 123456789}, v)

	for _, tt := range []struct {
		digits int
		want   driver.Value
	}{
		{-1, "1983-01-01 13:55:56.123456789"},
		{0, "1983-01-01 13:55:56"},
		{3, "1983-01-01 13:55:56.123"},
		{6, "1983-01-01 13:55:56.123456"},
	} {
		got, err := ts.Load(ParamDesc{DecimalDigits: tt.digits})
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}

	require.NoError(t, ts.Store("2011-02-03 04:05:06.5"))
	v, _ = ts.Value()
	require.Equal(t, uint32(500000000), v.Fraction)

	d := NewDate("d", FlagRead)
	require.NoError(t, d.Store("1983-01-26"))
	dv, _ := d.Value()
	require.Equal(t, Date{1983, 1, 26}, dv)
	loaded, _ := d.Load(ParamDesc{})
	require.Equal(t, "1983-01-26", loaded)

	tm := NewTime("t", FlagRead)
	require.NoError(t, tm.Store([]byte("13:55:56")))
	tv, _ := tm.Value()
	require.Equal(t, Time{13, 55, 56}, tv)

	require.Error(t, tm.Store("not a time"))
}

func TestArrayChar(t *testing.T) {
	c := NewChar("tchar", sqltype.Char, 10, FlagReadWrite)
	require.Equal(t, 11, c.BufferLength())
	require.Equal(t, 10, c.Capacity())
	require.True(t, c.IsNull())

	require.NoError(t, c.SetString("abc"))
	require.Equal(t, int64(3), c.Cb())
	s, err := c.String()
	require.NoError(t, err)
	require.Equal(t, "abc", s)

	// fixed CHAR columns come back padded
	require.NoError(t, c.Store("abc       "))
	s, _ = c.String()
	require.Equal(t, "abc       ", s)
	c.SetTrim(TrimRight)
	s, _ = c.String()
	require.Equal(t, "abc", s)

	// exact capacity is never trimmed
	require.NoError(t, c.SetString("abcdefghij"))
	s, _ = c.String()
	require.Equal(t, "abcdefghij", s)

	err = c.SetString("abcdefghijk")
	require.ErrorIs(t, err, sqlerr.ErrIllegalArgument)

	// overlong fetched values are truncated, Cb keeps the full length
	require.NoError(t, c.Store("abcdefghijklmno"))
	require.Equal(t, int64(15), c.Cb())
	s, _ = c.String()
	require.Equal(t, "abcdefghij", s)
}

func TestArrayCharNTS(t *testing.T) {
	c := NewChar("tchar", sqltype.VarChar, 5, FlagReadWrite)
	require.NoError(t, c.SetValue([]byte{'h', 'i', 0}, sqltype.NTS))
	require.Equal(t, sqltype.NTS, c.Cb())
	s, err := c.String()
	require.NoError(t, err)
	require.Equal(t, "hi", s)
	v, err := c.Load(ParamDesc{})
	require.NoError(t, err)
	require.Equal(t, "hi", v)

	require.Error(t, c.SetValue([]byte("toolong"), sqltype.NTS))
}

func TestArrayWChar(t *testing.T) {
	w := NewWChar("twchar", sqltype.WVarChar, 8, FlagReadWrite)
	require.Equal(t, 18, w.BufferLength())
	require.NoError(t, w.SetString("ä€𝄞"))
	// ä and € are one code unit each, the clef is a surrogate pair
	require.Equal(t, int64(8), w.Cb())
	s, err := w.String()
	require.NoError(t, err)
	require.Equal(t, "ä€𝄞", s)

	raw, err := w.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0xe4, 0x00, 0xac, 0x20, 0x34, 0xd8, 0x1e, 0xdd}, raw)

	require.NoError(t, w.Store([]byte("hello")))
	require.Equal(t, int64(10), w.Cb())
	v, err := w.Load(ParamDesc{})
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestArrayBinary(t *testing.T) {
	fixed := NewBinary("tbinary", sqltype.Binary, 16, FlagReadWrite)
	varblob := NewBinary("tvarbinary", sqltype.VarBinary, 20, FlagReadWrite)

	in16 := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	require.NoError(t, fixed.Store(in16))
	require.Equal(t, int64(16), fixed.Cb())
	out, err := fixed.Bytes()
	require.NoError(t, err)
	require.Equal(t, in16, out)

	in5 := []byte{0xde, 0xad, 0xbe, 0xef, 0x01}
	require.NoError(t, varblob.Store(in5))
	require.Equal(t, int64(5), varblob.Cb())
	out, _ = varblob.Bytes()
	require.Equal(t, in5, out)

	loaded, err := varblob.Load(ParamDesc{})
	require.NoError(t, err)
	require.Equal(t, in5, loaded)
}

func TestArrayUUID(t *testing.T) {
	g := NewBinary("tguid", sqltype.Guid, 16, FlagReadWrite)
	id := uuid.MustParse("9a1b6bd8-4c5e-4e8a-9a62-4c1d8b3c2f10")
	require.NoError(t, g.SetUUID(id))
	got, err := g.UUID()
	require.NoError(t, err)
	require.Equal(t, id, got)

	text := NewBinary("tguid", sqltype.Guid, 36, FlagRead)
	require.NoError(t, text.Store(id.String()))
	got, err = text.UUID()
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestRawPointer(t *testing.T) {
	mem := make([]byte, 8)
	r, err := NewRawPointer("id", sqltype.BigInt, sqltype.CSBigInt, mem, FlagReadWrite)
	require.NoError(t, err)
	require.True(t, r.IsNull())

	require.NoError(t, r.Store(int64(-101)))
	require.Equal(t, int64(8), r.Cb())
	v, err := r.Value()
	require.NoError(t, err)
	require.Equal(t, int64(-101), v)

	// the caller's memory is written in place
	other, err := NewRawPointer("id", sqltype.BigInt, sqltype.CSBigInt, mem, FlagRead)
	require.NoError(t, err)
	other.SetCb(8)
	v, _ = other.Value()
	require.Equal(t, int64(-101), v)

	_, err = NewRawPointer("short", sqltype.BigInt, sqltype.CSBigInt, make([]byte, 4), FlagRead)
	require.ErrorIs(t, err, sqlerr.ErrIllegalArgument)
}

func TestRawPointerStructs(t *testing.T) {
	num, err := NewRawPointer("n", sqltype.Numeric, sqltype.CNumeric, make([]byte, 19), FlagRead)
	require.NoError(t, err)
	num.SetColumnSize(5)
	num.SetDecimalDigits(3)
	require.NoError(t, num.Store("-12.345"))
	mem := num.Mem()
	require.Equal(t, byte(5), mem[0])
	require.Equal(t, byte(3), mem[1])
	require.Equal(t, byte(0), mem[2])
	loaded, err := num.Load(ParamDesc{DecimalDigits: -1})
	require.NoError(t, err)
	require.Equal(t, "-12.345", loaded)

	ts, err := NewRawPointer("ts", sqltype.TypeTimestamp, sqltype.CTimestamp, make([]byte, 16), FlagRead)
	require.NoError(t, err)
	require.NoError(t, ts.Store("1983-01-01 13:55:56.5"))
	v, err := ts.Value()
	require.NoError(t, err)
	require.Equal(t, Timestamp{1983, 1, 1, 13, 55, 56, 500000000}, v)
}

func TestRawPointerChar(t *testing.T) {
	c, err := NewRawPointer("c", sqltype.VarChar, sqltype.CChar, make([]byte, 6), FlagRead)
	require.NoError(t, err)
	require.NoError(t, c.Store("abc"))
	require.Equal(t, int64(3), c.Cb())
	require.Equal(t, []byte{'a', 'b', 'c', 0, 0, 0}, c.Mem())
	s, err := String(c)
	require.NoError(t, err)
	require.Equal(t, "abc", s)

	c.SetCb(sqltype.NTS)
	s, _ = String(c)
	require.Equal(t, "abc", s)

	w, err := NewRawPointer("w", sqltype.WVarChar, sqltype.CWChar, make([]byte, 12), FlagRead)
	require.NoError(t, err)
	require.NoError(t, w.Store("hé"))
	s, err = String(w)
	require.NoError(t, err)
	require.Equal(t, "hé", s)
}

func TestRawPointerTruncation(t *testing.T) {
	c, err := NewRawPointer("c", sqltype.VarChar, sqltype.CChar, make([]byte, 4), FlagRead)
	require.NoError(t, err)
	require.NoError(t, c.Store("abcdef"))
	// cb reports the full length, the value is what fit before the terminator
	require.Equal(t, int64(6), c.Cb())
	require.Equal(t, []byte{'a', 'b', 'c', 0}, c.Mem())
	s, err := String(c)
	require.NoError(t, err)
	require.Equal(t, "abc", s)

	w, err := NewRawPointer("w", sqltype.WVarChar, sqltype.CWChar, make([]byte, 6), FlagRead)
	require.NoError(t, err)
	require.NoError(t, w.Store("abcd"))
	require.Equal(t, int64(8), w.Cb())
	s, err = String(w)
	require.NoError(t, err)
	require.Equal(t, "ab", s)

	b, err := NewRawPointer("b", sqltype.VarBinary, sqltype.CBinary, make([]byte, 2), FlagRead)
	require.NoError(t, err)
	require.NoError(t, b.Store([]byte{1, 2, 3}))
	raw, err := b.Value()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, raw)
}

func TestBindParameter(t *testing.T) {
	b := newRecordingBinder()

	s := NewShort("tsmallint", FlagReadWrite|FlagNullable)
	require.NoError(t, s.BindParameter(1, b, false))
	require.Equal(t, ParamDesc{SqlType: sqltype.SmallInt, DecimalDigits: -1, Nullable: sqltype.Nullable}, b.descs[1])
	require.Same(t, s, b.params[1])

	n := NewScalar[Numeric]("tnumeric", sqltype.Numeric, FlagReadWrite)
	err := n.BindParameter(2, b, false)
	require.ErrorIs(t, err, sqlerr.ErrAssertion)
	n.SetColumnSize(18)
	n.SetDecimalDigits(10)
	require.NoError(t, n.BindParameter(2, b, false))
	require.Equal(t, 18, b.descs[2].ColumnSize)
	require.Equal(t, 10, b.descs[2].DecimalDigits)

	ts := NewTimestamp("tts", FlagReadWrite)
	require.ErrorIs(t, ts.BindParameter(3, b, false), sqlerr.ErrAssertion)

	// drivers that cannot describe parameters surface that
	err = NewLong("tint", FlagReadWrite).BindParameter(4, b, true)
	require.ErrorIs(t, err, sqlerr.ErrNotSupported)

	b.describe = func(ordinal int) (ParamDesc, error) {
		return ParamDesc{SqlType: sqltype.Integer, ColumnSize: 10, Nullable: sqltype.Nullable}, nil
	}
	require.NoError(t, NewLong("tint", FlagReadWrite).BindParameter(4, b, true))
	require.Equal(t, sqltype.Integer, b.descs[4].SqlType)

	require.ErrorIs(t, s.BindColumn(0, b), sqlerr.ErrAssertion)
	require.NoError(t, s.BindColumn(1, b))
	require.Same(t, s, b.cols[1])
}

func TestAccessors(t *testing.T) {
	short := NewShort("s", FlagRead)
	long := NewLong("l", FlagRead)
	bigint := NewBigInt("b", FlagRead)
	short.SetValue(-32768)
	long.SetValue(5)
	bigint.SetValue(5)

	v16, err := Int16(short)
	require.NoError(t, err)
	require.Equal(t, int16(-32768), v16)

	// narrowing is decided by type, not by value
	_, err = Int16(long)
	require.ErrorIs(t, err, sqlerr.ErrNarrowing)
	_, err = Int32(bigint)
	require.ErrorIs(t, err, sqlerr.ErrNarrowing)

	v32, err := Int32(short)
	require.NoError(t, err)
	require.Equal(t, int32(-32768), v32)
	v64, err := Int64(long)
	require.NoError(t, err)
	require.Equal(t, int64(5), v64)

	f, err := Float64(long)
	require.NoError(t, err)
	require.Equal(t, 5.0, f)

	_, err = Int64(NewShort("null", FlagRead))
	require.ErrorIs(t, err, sqlerr.ErrNullValue)

	c := NewChar("c", sqltype.Char, 4, FlagRead)
	require.NoError(t, SetValue(c, "ab"))
	s, err := String(c)
	require.NoError(t, err)
	require.Equal(t, "ab", s)
	_, err = Int64(c)
	require.ErrorIs(t, err, sqlerr.ErrNarrowing)
	require.ErrorIs(t, SetValue(c, "abcde"), sqlerr.ErrIllegalArgument)

	ts := NewTimestamp("ts", FlagRead)
	require.NoError(t, SetValue(ts, time.Date(2020, 2, 29, 1, 2, 3, 0, time.UTC)))
	tv, err := TimeValue(ts, time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2020, 2, 29, 1, 2, 3, 0, time.UTC), tv)

	n := NewNumericBuffer("n", 5, 3, FlagRead)
	require.NoError(t, SetValue(n, "1.5"))
	s, _ = String(n)
	require.Equal(t, "1.500", s)

	require.NoError(t, SetValue(n, nil))
	require.True(t, n.IsNull())
}

type countingVisitor struct {
	scalars, arrays, raws int
}

func (c *countingVisitor) VisitShort(*Scalar[int16]) error         { c.scalars++; return nil }
func (c *countingVisitor) VisitLong(*Scalar[int32]) error          { c.scalars++; return nil }
func (c *countingVisitor) VisitBigInt(*Scalar[int64]) error        { c.scalars++; return nil }
func (c *countingVisitor) VisitReal(*Scalar[float32]) error        { c.scalars++; return nil }
func (c *countingVisitor) VisitDouble(*Scalar[float64]) error      { c.scalars++; return nil }
func (c *countingVisitor) VisitNumeric(*Scalar[Numeric]) error     { c.scalars++; return nil }
func (c *countingVisitor) VisitDate(*Scalar[Date]) error           { c.scalars++; return nil }
func (c *countingVisitor) VisitTime(*Scalar[Time]) error           { c.scalars++; return nil }
func (c *countingVisitor) VisitTimestamp(*Scalar[Timestamp]) error { c.scalars++; return nil }
func (c *countingVisitor) VisitChar(*Array[byte]) error            { c.arrays++; return nil }
func (c *countingVisitor) VisitWChar(*Array[uint16]) error         { c.arrays++; return nil }
func (c *countingVisitor) VisitBinary(*Array[byte]) error          { c.arrays++; return nil }
func (c *countingVisitor) VisitRawPointer(*RawPointer) error       { c.raws++; return nil }

func TestVisitor(t *testing.T) {
	raw, _ := NewRawPointer("r", sqltype.Integer, sqltype.CSLong, make([]byte, 4), FlagRead)
	bufs := []ColumnBuffer{
		NewShort("a", FlagRead), NewLong("b", FlagRead), NewBigInt("c", FlagRead),
		NewReal("d", FlagRead), NewDouble("e", FlagRead), NewNumericBuffer("f", 5, 2, FlagRead),
		NewDate("g", FlagRead), NewTime("h", FlagRead), NewTimestamp("i", FlagRead),
		NewChar("j", sqltype.Char, 2, FlagRead), NewWChar("k", sqltype.WChar, 2, FlagRead),
		NewBinary("l", sqltype.Binary, 2, FlagRead), raw,
	}
	v := &countingVisitor{}
	for _, b := range bufs {
		require.NoError(t, b.Accept(v))
	}
	require.Equal(t, 9, v.scalars)
	require.Equal(t, 3, v.arrays)
	require.Equal(t, 1, v.raws)
}

func TestTypeMap(t *testing.T) {
	m := DefaultSql2BufferMap()
	c, err := m.BufferType(sqltype.Real)
	require.NoError(t, err)
	require.Equal(t, sqltype.CFloat, c)
	c, _ = m.BufferType(sqltype.WVarChar)
	require.Equal(t, sqltype.CWChar, c)

	_, err = m.BufferType(sqltype.SSXml)
	require.ErrorIs(t, err, sqlerr.ErrNotSupported)

	c, _ = WCharSql2BufferMap().BufferType(sqltype.VarChar)
	require.Equal(t, sqltype.CWChar, c)
	c, _ = CharSql2BufferMap().BufferType(sqltype.WChar)
	require.Equal(t, sqltype.CChar, c)

	custom := m.With(map[sqltype.SqlType]sqltype.CType{sqltype.Real: sqltype.CDouble})
	c, _ = custom.BufferType(sqltype.Real)
	require.Equal(t, sqltype.CDouble, c)
	c, _ = m.BufferType(sqltype.Real)
	require.Equal(t, sqltype.CFloat, c, "With must not modify the source map")

	custom.Unregister(sqltype.Real)
	_, err = custom.BufferType(sqltype.Real)
	require.Error(t, err)
	custom.Register(sqltype.SSXml, sqltype.CWChar)
	c, _ = custom.BufferType(sqltype.SSXml)
	require.Equal(t, sqltype.CWChar, c)
}

func TestNewColumnBuffer(t *testing.T) {
	m := DefaultSql2BufferMap()
	tests := []struct {
		desc  ColumnDesc
		cType sqltype.CType
		check func(t *testing.T, b ColumnBuffer)
	}{
		{ColumnDesc{QueryName: "a", SqlType: sqltype.SmallInt}, sqltype.CSShort, func(t *testing.T, b ColumnBuffer) {
			require.IsType(t, &Scalar[int16]{}, b)
		}},
		{ColumnDesc{QueryName: "b", SqlType: sqltype.Numeric, ColumnSize: 18, DecimalDigits: 10, HasSize: true, HasDigits: true}, sqltype.CNumeric, func(t *testing.T, b ColumnBuffer) {
			size, _ := b.ColumnSize()
			digits, _ := b.DecimalDigits()
			require.Equal(t, 18, size)
			require.Equal(t, 10, digits)
		}},
		{ColumnDesc{QueryName: "c", SqlType: sqltype.VarChar, ColumnSize: 128, HasSize: true}, sqltype.CChar, func(t *testing.T, b ColumnBuffer) {
			require.Equal(t, 128, b.(*Array[byte]).Capacity())
		}},
		{ColumnDesc{QueryName: "d", SqlType: sqltype.LongVarChar}, sqltype.CChar, func(t *testing.T, b ColumnBuffer) {
			require.Equal(t, defaultLongSize, b.(*Array[byte]).Capacity())
		}},
		{ColumnDesc{QueryName: "g", SqlType: sqltype.LongVarChar, ColumnSize: 2147483647, HasSize: true}, sqltype.CChar, func(t *testing.T, b ColumnBuffer) {
			require.Equal(t, defaultLongSize, b.(*Array[byte]).Capacity())
			size, ok := b.ColumnSize()
			require.True(t, ok)
			require.Equal(t, defaultLongSize, size)
		}},
		{ColumnDesc{QueryName: "e", SqlType: sqltype.Guid}, sqltype.CBinary, func(t *testing.T, b ColumnBuffer) {
			require.Equal(t, 16, b.(*Array[byte]).Capacity())
		}},
		{ColumnDesc{QueryName: "f", SqlType: sqltype.TypeTimestamp, DecimalDigits: 3, HasDigits: true}, sqltype.CTimestamp, func(t *testing.T, b ColumnBuffer) {
			digits, ok := b.DecimalDigits()
			require.True(t, ok)
			require.Equal(t, 3, digits)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.desc.QueryName, func(t *testing.T) {
			b, err := NewColumnBuffer(m, tt.desc, FlagReadWrite)
			require.NoError(t, err)
			require.Equal(t, tt.cType, b.CType())
			require.Equal(t, tt.desc.SqlType, b.SqlType())
			require.Equal(t, tt.desc.QueryName, b.QueryName())
			require.True(t, b.IsNull())
			tt.check(t, b)
		})
	}

	_, err := NewColumnBuffer(m, ColumnDesc{QueryName: "x", SqlType: sqltype.SSXml}, FlagRead)
	require.ErrorIs(t, err, sqlerr.ErrNotSupported)
}
