package buffer

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/pkg/errors"
)

// The convertXxx functions turn the values database/sql drivers hand out
// (int64, float64, bool, []byte, string, time.Time and a few driver specific
// types) into the C side representation of a buffer.

func convertInt64(src any) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, sqlerr.IllegalArgument("value %d overflows int64", v)
		}
		return int64(v), nil
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseInt64(string(v))
	case string:
		return parseInt64(v)
	case Numeric:
		if v.Scale == 0 {
			if i, ok := v.Int64(); ok {
				return i, nil
			}
		}
		return floatToInt64(v.Float64())
	default:
		return 0, errors.Errorf("convertInt64() does not support %T", src)
	}
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, sqlerr.IllegalArgument("value %v overflows int64", f)
	}
	return int64(f), nil
}

func parseInt64(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, sqlerr.IllegalArgument("cannot convert '%s' to an integer", s)
	}
	return floatToInt64(f)
}

func convertFloat64(src any) (float64, error) {
	switch v := src.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case []byte:
		return parseFloat64(string(v))
	case string:
		return parseFloat64(v)
	case Numeric:
		return v.Float64(), nil
	default:
		i, err := convertInt64(src)
		if err != nil {
			return 0, errors.Errorf("convertFloat64() does not support %T", src)
		}
		return float64(i), nil
	}
}

func parseFloat64(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, sqlerr.IllegalArgument("cannot convert '%s' to a float", s)
	}
	return f, nil
}

// convertNumeric converts to a numeric of the given precision and scale.
// Floats are formatted with the scale first, so 0.1 stays 0.1 and does not
// pick up the binary representation error.
func convertNumeric(src any, precision, scale uint8) (Numeric, error) {
	switch v := src.(type) {
	case Numeric:
		return v.Rescale(precision, scale)
	case float64:
		return NumericFromFloat64(v, precision, scale)
	case float32:
		return ParseNumeric(strconv.FormatFloat(float64(v), 'f', -1, 32), precision, scale)
	case []byte:
		return ParseNumeric(string(v), precision, scale)
	case string:
		return ParseNumeric(v, precision, scale)
	case fmt.Stringer:
		// pgtype.Numeric and duckdb.Decimal both render a decimal literal
		return ParseNumeric(v.String(), precision, scale)
	default:
		i, err := convertInt64(src)
		if err != nil {
			return Numeric{}, errors.Errorf("convertNumeric() does not support %T", src)
		}
		return ParseNumeric(strconv.FormatInt(i, 10), precision, scale)
	}
}

func convertTimestamp(src any) (Timestamp, error) {
	switch v := src.(type) {
	case time.Time:
		return TimestampOf(v), nil
	case Timestamp:
		return v, nil
	case Date:
		return Timestamp{Year: v.Year, Month: v.Month, Day: v.Day}, nil
	case []byte:
		return ParseTimestamp(string(v))
	case string:
		return ParseTimestamp(v)
	default:
		return Timestamp{}, errors.Errorf("convertTimestamp() does not support %T", src)
	}
}

func convertTime(src any) (Time, error) {
	switch v := src.(type) {
	case time.Time:
		return TimeOf(v), nil
	case time.Duration:
		d := v.Truncate(time.Second)
		return Time{Hour: uint16(d / time.Hour), Minute: uint16(d % time.Hour / time.Minute), Second: uint16(d % time.Minute / time.Second)}, nil
	case Time:
		return v, nil
	case []byte:
		return ParseTime(string(v))
	case string:
		return ParseTime(v)
	default:
		return Time{}, errors.Errorf("convertTime() does not support %T", src)
	}
}

// convertText renders a driver value as the text a CHAR buffer receives.
func convertText(src any) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case int64:
		return strconv.AppendInt(nil, v, 10), nil
	case float64:
		return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
	case bool:
		return strconv.AppendBool(nil, v), nil
	case time.Time:
		return []byte(TimestampOf(v).Format(9)), nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	default:
		return nil, errors.Errorf("convertText() does not support %T", src)
	}
}

func convertBinary(src any) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case [16]byte:
		return v[:], nil
	default:
		return nil, errors.Errorf("convertBinary() does not support %T", src)
	}
}

// driverNumeric renders a numeric parameter. Drivers accept decimal text for
// NUMERIC and DECIMAL columns.
func driverNumeric(n Numeric, desc ParamDesc) (driver.Value, error) {
	if desc.DecimalDigits >= 0 && desc.DecimalDigits != int(n.Scale) {
		r, err := n.Rescale(0, uint8(desc.DecimalDigits))
		if err != nil {
			return nil, err
		}
		n = r
	}
	return n.String(), nil
}

func driverTimestamp(ts Timestamp, desc ParamDesc) driver.Value {
	digits := desc.DecimalDigits
	if digits < 0 {
		digits = 9
	}
	s := ts.Format(digits)
	// trailing zero fraction digits are noise for most drivers
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}
