package buffer

import (
	"strconv"
	"time"

	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
)

// Visitor has one method per buffer variant; ColumnBuffer.Accept calls the
// method matching the concrete buffer.
type Visitor interface {
	VisitShort(b *Scalar[int16]) error
	VisitLong(b *Scalar[int32]) error
	VisitBigInt(b *Scalar[int64]) error
	VisitReal(b *Scalar[float32]) error
	VisitDouble(b *Scalar[float64]) error
	VisitNumeric(b *Scalar[Numeric]) error
	VisitDate(b *Scalar[Date]) error
	VisitTime(b *Scalar[Time]) error
	VisitTimestamp(b *Scalar[Timestamp]) error
	VisitChar(b *Array[byte]) error
	VisitWChar(b *Array[uint16]) error
	VisitBinary(b *Array[byte]) error
	VisitRawPointer(b *RawPointer) error
}

// Value returns the value of any buffer as a Go value: int16, int32, int64,
// float32, float64, Numeric, Date, Time, Timestamp, string or []byte.
func Value(b ColumnBuffer) (any, error) {
	g := &getter{}
	if err := b.Accept(g); err != nil {
		return nil, err
	}
	return g.v, nil
}

type getter struct {
	v any
}

func getScalar[T ScalarValue](g *getter, b *Scalar[T]) error {
	v, err := b.Value()
	g.v = v
	return err
}

func (g *getter) VisitShort(b *Scalar[int16]) error         { return getScalar(g, b) }
func (g *getter) VisitLong(b *Scalar[int32]) error          { return getScalar(g, b) }
func (g *getter) VisitBigInt(b *Scalar[int64]) error        { return getScalar(g, b) }
func (g *getter) VisitReal(b *Scalar[float32]) error        { return getScalar(g, b) }
func (g *getter) VisitDouble(b *Scalar[float64]) error      { return getScalar(g, b) }
func (g *getter) VisitNumeric(b *Scalar[Numeric]) error     { return getScalar(g, b) }
func (g *getter) VisitDate(b *Scalar[Date]) error           { return getScalar(g, b) }
func (g *getter) VisitTime(b *Scalar[Time]) error           { return getScalar(g, b) }
func (g *getter) VisitTimestamp(b *Scalar[Timestamp]) error { return getScalar(g, b) }

func (g *getter) VisitRawPointer(b *RawPointer) error {
	v, err := b.Value()
	if err != nil {
		return err
	}
	if raw, ok := v.([]byte); ok {
		switch b.CType() {
		case sqltype.CChar:
			v = string(raw)
		case sqltype.CWChar:
			v, err = b.Load(ParamDesc{DecimalDigits: -1})
		default:
			v = append([]byte(nil), raw...)
		}
	}
	g.v = v
	return err
}

func (g *getter) VisitChar(b *Array[byte]) (err error) {
	g.v, err = b.String()
	return
}

func (g *getter) VisitWChar(b *Array[uint16]) (err error) {
	g.v, err = b.String()
	return
}

func (g *getter) VisitBinary(b *Array[byte]) (err error) {
	g.v, err = b.Bytes()
	return
}

// Int16 reads a SMALLINT buffer. Reading a wider integer fails with a
// NarrowingError, whatever the value.
func Int16(b ColumnBuffer) (int16, error) {
	v, err := Value(b)
	if err != nil {
		return 0, err
	}
	if i, ok := v.(int16); ok {
		return i, nil
	}
	return 0, narrowing(b, v, "int16")
}

// Int32 reads a SMALLINT or INTEGER buffer.
func Int32(b ColumnBuffer) (int32, error) {
	v, err := Value(b)
	if err != nil {
		return 0, err
	}
	switch i := v.(type) {
	case int16:
		return int32(i), nil
	case int32:
		return i, nil
	}
	return 0, narrowing(b, v, "int32")
}

// Int64 reads any integer buffer, and NUMERIC buffers with scale 0.
func Int64(b ColumnBuffer) (int64, error) {
	v, err := Value(b)
	if err != nil {
		return 0, err
	}
	switch i := v.(type) {
	case int16:
		return int64(i), nil
	case int32:
		return int64(i), nil
	case int64:
		return i, nil
	case Numeric:
		if i.Scale == 0 {
			if x, ok := i.Int64(); ok {
				return x, nil
			}
		}
	}
	return 0, narrowing(b, v, "int64")
}

// Float64 reads floating point, integer and NUMERIC buffers.
func Float64(b ColumnBuffer) (float64, error) {
	v, err := Value(b)
	if err != nil {
		return 0, err
	}
	switch f := v.(type) {
	case float32:
		return float64(f), nil
	case float64:
		return f, nil
	case int16, int32, int64:
		i, _ := convertInt64(f)
		return float64(i), nil
	case Numeric:
		return f.Float64(), nil
	}
	return 0, narrowing(b, v, "float64")
}

// String renders any buffer as text. Date and time values use the ISO
// forms, numerics keep their scale.
func String(b ColumnBuffer) (string, error) {
	v, err := Value(b)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case Numeric:
		return x.String(), nil
	case Date:
		return x.String(), nil
	case Time:
		return x.String(), nil
	case Timestamp:
		return x.String(), nil
	}
	return "", narrowing(b, v, "string")
}

// TimeValue reads a DATE or TIMESTAMP buffer as a time.Time in loc.
func TimeValue(b ColumnBuffer, loc *time.Location) (time.Time, error) {
	v, err := Value(b)
	if err != nil {
		return time.Time{}, err
	}
	switch x := v.(type) {
	case Date:
		return x.Time(loc), nil
	case Timestamp:
		return x.Time(loc), nil
	}
	return time.Time{}, narrowing(b, v, "time.Time")
}

func narrowing(b ColumnBuffer, v any, to string) error {
	return sqlerr.Narrowing(b.QueryName(), b.CType().String(), to)
}

// SetValue stores v into any buffer, converting it the same way fetched
// values are converted. Integers stored into narrower integer buffers are
// range checked, text longer than an array is rejected instead of being
// truncated; v == nil sets the buffer NULL.
func SetValue(b ColumnBuffer, v any) error {
	if v == nil {
		b.SetNull()
		return nil
	}
	switch a := b.(type) {
	case *Array[byte]:
		if a.CType() == sqltype.CBinary {
			raw, err := convertBinary(v)
			if err != nil {
				return err
			}
			return a.SetBytes(raw)
		}
		text, err := convertText(v)
		if err != nil {
			return err
		}
		return a.SetBytes(text)
	case *Array[uint16]:
		text, err := convertText(v)
		if err != nil {
			return err
		}
		return a.SetString(string(text))
	}
	return b.Store(v)
}
