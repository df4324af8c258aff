package browse

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/machbase/neo-odbc/buffer"
)

const layoutDefault = "2006-01-02 15:04:05.999999999"

// layouts by upper case name; the names of the time package constants
// spelled without the separators.
var layouts = map[string]string{
	"-":           layoutDefault,
	"DEFAULT":     layoutDefault,
	"DATETIME":    time.DateTime,
	"DATE":        time.DateOnly,
	"TIME":        time.TimeOnly,
	"ANSIC":       time.ANSIC,
	"UNIX":        time.UnixDate,
	"RUBY":        time.RubyDate,
	"RFC822":      time.RFC822,
	"RFC822Z":     time.RFC822Z,
	"RFC850":      time.RFC850,
	"RFC1123":     time.RFC1123,
	"RFC1123Z":    time.RFC1123Z,
	"RFC3339":     time.RFC3339,
	"RFC3339NANO": time.RFC3339Nano,
	"KITCHEN":     time.Kitchen,
	"STAMP":       time.Stamp,
	"STAMPMILLI":  time.StampMilli,
	"STAMPMICRO":  time.StampMicro,
	"STAMPNANO":   time.StampNano,
}

// Timeformat resolves a format name, case-insensitively. Anything else is
// taken as a Go layout.
func Timeformat(f string) string {
	if m, ok := layouts[strings.ToUpper(f)]; ok {
		return m
	}
	return f
}

// FormatValue renders a column value as returned by buffer.Value. Timestamps
// use the time format, "EPOCH" prints them as unix nanoseconds.
func FormatValue(v any, timeformat string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	switch val := v.(type) {
	case nil:
		return "NULL"
	case buffer.Timestamp:
		if strings.EqualFold(timeformat, "EPOCH") {
			return fmt.Sprintf("%d", val.Time(loc).UnixNano())
		}
		return val.Time(loc).Format(Timeformat(timeformat))
	case []byte:
		return hex.EncodeToString(val)
	case float32:
		return fmt.Sprintf("%g", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
