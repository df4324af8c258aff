package buffer

import (
	"encoding/binary"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
)

// Numeric is the SQL_NUMERIC_STRUCT: an unscaled magnitude stored as a
// 16 byte little-endian integer, with a separate sign (1 positive, 0 negative)
// and the precision and scale it was produced with.
type Numeric struct {
	Precision uint8
	Scale     uint8
	Sign      uint8
	Val       [sqltype.NumericMaxLen]byte
}

const (
	NumericSignNegative = 0
	NumericSignPositive = 1
)

var maxNumericMagnitude = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// NewNumeric builds a numeric from an unscaled value; the represented value is
// unscaled / 10^scale. A precision of zero disables the digit count check.
func NewNumeric(precision, scale uint8, unscaled *big.Int) (Numeric, error) {
	n := Numeric{Precision: precision, Scale: scale, Sign: NumericSignPositive}
	mag := new(big.Int).Abs(unscaled)
	if mag.Cmp(maxNumericMagnitude) > 0 {
		return Numeric{}, sqlerr.IllegalArgument("numeric %s exceeds %d bytes", unscaled.String(), sqltype.NumericMaxLen)
	}
	if precision > 0 && mag.Sign() != 0 && len(mag.String()) > int(precision) {
		return Numeric{}, sqlerr.IllegalArgument("numeric %s exceeds precision %d", unscaled.String(), precision)
	}
	if unscaled.Sign() < 0 {
		n.Sign = NumericSignNegative
	}
	be := mag.Bytes()
	for i, b := range be {
		n.Val[len(be)-1-i] = b
	}
	return n, nil
}

// NumericFromInt64 builds a numeric whose unscaled value is v.
func NumericFromInt64(v int64, precision, scale uint8) (Numeric, error) {
	return NewNumeric(precision, scale, big.NewInt(v))
}

// ParseNumeric parses a decimal literal such as "-1234.5678" and scales it
// to the given scale. Extra fraction digits are truncated.
func ParseNumeric(s string, precision, scale uint8) (Numeric, error) {
	lit := strings.TrimSpace(s)
	if lit == "" {
		return Numeric{}, sqlerr.IllegalArgument("empty numeric literal")
	}
	if strings.ContainsAny(lit, "eE") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return Numeric{}, sqlerr.IllegalArgument("invalid numeric literal '%s'", s)
		}
		lit = strconv.FormatFloat(f, 'f', -1, 64)
	}
	neg := false
	switch lit[0] {
	case '-':
		neg = true
		lit = lit[1:]
	case '+':
		lit = lit[1:]
	}
	intPart, fracPart, _ := strings.Cut(lit, ".")
	if intPart == "" && fracPart == "" {
		return Numeric{}, sqlerr.IllegalArgument("invalid numeric literal '%s'", s)
	}
	if len(fracPart) > int(scale) {
		fracPart = fracPart[:scale]
	} else {
		fracPart += strings.Repeat("0", int(scale)-len(fracPart))
	}
	digits := intPart + fracPart
	if digits == "" {
		digits = "0"
	}
	unscaled, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Numeric{}, sqlerr.IllegalArgument("invalid numeric literal '%s'", s)
	}
	if neg {
		unscaled.Neg(unscaled)
	}
	return NewNumeric(precision, scale, unscaled)
}

// NumericFromFloat64 converts a float by way of its shortest decimal text.
func NumericFromFloat64(f float64, precision, scale uint8) (Numeric, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Numeric{}, sqlerr.IllegalArgument("numeric cannot hold %v", f)
	}
	return ParseNumeric(strconv.FormatFloat(f, 'f', -1, 64), precision, scale)
}

// Unscaled returns the signed unscaled value.
func (n Numeric) Unscaled() *big.Int {
	be := make([]byte, len(n.Val))
	for i, b := range n.Val {
		be[len(n.Val)-1-i] = b
	}
	v := new(big.Int).SetBytes(be)
	if n.Sign == NumericSignNegative {
		v.Neg(v)
	}
	return v
}

// Int64 reinterprets the low 8 magnitude bytes as the unscaled value. This is
// only valid when the upper 8 bytes are zero and the magnitude fits a signed
// 64 bit integer; ok reports whether that holds.
func (n Numeric) Int64() (v int64, ok bool) {
	for _, b := range n.Val[8:] {
		if b != 0 {
			return 0, false
		}
	}
	u := binary.LittleEndian.Uint64(n.Val[:8])
	if u > math.MaxInt64 {
		return 0, false
	}
	v = int64(u)
	if n.Sign == NumericSignNegative {
		v = -v
	}
	return v, true
}

// String formats the value with exactly Scale fraction digits.
func (n Numeric) String() string {
	u := n.Unscaled()
	neg := u.Sign() < 0
	digits := new(big.Int).Abs(u).String()
	if n.Scale > 0 {
		if len(digits) <= int(n.Scale) {
			digits = strings.Repeat("0", int(n.Scale)-len(digits)+1) + digits
		}
		cut := len(digits) - int(n.Scale)
		digits = digits[:cut] + "." + digits[cut:]
	}
	if neg {
		return "-" + digits
	}
	return digits
}

func (n Numeric) Float64() float64 {
	f, _ := strconv.ParseFloat(n.String(), 64)
	return f
}

// Rescale returns the same value with another precision and scale. Lowering
// the scale truncates fraction digits.
func (n Numeric) Rescale(precision, scale uint8) (Numeric, error) {
	if scale == n.Scale {
		return NewNumeric(precision, scale, n.Unscaled())
	}
	return ParseNumeric(n.String(), precision, scale)
}

func (n Numeric) IsZero() bool {
	for _, b := range n.Val {
		if b != 0 {
			return false
		}
	}
	return true
}

// Equal compares the represented values, ignoring precision.
func (n Numeric) Equal(o Numeric) bool {
	scale := max(n.Scale, o.Scale)
	a, err1 := n.Rescale(0, scale)
	b, err2 := o.Rescale(0, scale)
	if err1 != nil || err2 != nil {
		return false
	}
	return a.Unscaled().Cmp(b.Unscaled()) == 0
}

func (n Numeric) MarshalBinary() ([]byte, error) {
	buf := make([]byte, sqltype.NumericStructSize)
	buf[0] = n.Precision
	buf[1] = n.Scale
	buf[2] = n.Sign
	copy(buf[3:], n.Val[:])
	return buf, nil
}

func (n *Numeric) UnmarshalBinary(buf []byte) error {
	if len(buf) < sqltype.NumericStructSize {
		return sqlerr.IllegalArgument("numeric struct needs %d bytes, got %d", sqltype.NumericStructSize, len(buf))
	}
	n.Precision = buf[0]
	n.Scale = buf[1]
	n.Sign = buf[2]
	copy(n.Val[:], buf[3:sqltype.NumericStructSize])
	return nil
}
