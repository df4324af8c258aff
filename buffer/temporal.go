package buffer

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
)

// Date is the SQL_DATE_STRUCT.
type Date struct {
	Year  int16
	Month uint16
	Day   uint16
}

// Time is the SQL_TIME_STRUCT.
type Time struct {
	Hour   uint16
	Minute uint16
	Second uint16
}

// Timestamp is the SQL_TIMESTAMP_STRUCT. Fraction is in nanoseconds.
type Timestamp struct {
	Year     int16
	Month    uint16
	Day      uint16
	Hour     uint16
	Minute   uint16
	Second   uint16
	Fraction uint32
}

func DateOf(t time.Time) Date {
	return Date{Year: int16(t.Year()), Month: uint16(t.Month()), Day: uint16(t.Day())}
}

func TimeOf(t time.Time) Time {
	return Time{Hour: uint16(t.Hour()), Minute: uint16(t.Minute()), Second: uint16(t.Second())}
}

func TimestampOf(t time.Time) Timestamp {
	return Timestamp{
		Year: int16(t.Year()), Month: uint16(t.Month()), Day: uint16(t.Day()),
		Hour: uint16(t.Hour()), Minute: uint16(t.Minute()), Second: uint16(t.Second()),
		Fraction: uint32(t.Nanosecond()),
	}
}

func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, loc)
}

func (t Time) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute + time.Duration(t.Second)*time.Second
}

func (ts Timestamp) Time(loc *time.Location) time.Time {
	return time.Date(int(ts.Year), time.Month(ts.Month), int(ts.Day),
		int(ts.Hour), int(ts.Minute), int(ts.Second), int(ts.Fraction), loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (ts Timestamp) String() string {
	return ts.Format(9)
}

// Format renders the timestamp with the given number of fractional digits.
// The fraction is truncated, not rounded, like the drivers do.
func (ts Timestamp) Format(digits int) string {
	s := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second)
	if digits <= 0 {
		return s
	}
	if digits > 9 {
		digits = 9
	}
	frac := fmt.Sprintf("%09d", ts.Fraction)
	return s + "." + frac[:digits]
}

// Date returns the date part of the timestamp.
func (ts Timestamp) Date() Date {
	return Date{Year: ts.Year, Month: ts.Month, Day: ts.Day}
}

// TimeOfDay returns the time part of the timestamp, without fraction.
func (ts Timestamp) TimeOfDay() Time {
	return Time{Hour: ts.Hour, Minute: ts.Minute, Second: ts.Second}
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339Nano,
}

var timeLayouts = []string{
	"15:04:05.999999999",
	"15:04:05",
	"15:04",
}

// ParseTimestamp parses the textual forms drivers hand out for DATE and
// TIMESTAMP values. A trailing zone is kept as given, no conversion happens.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimestampOf(t), nil
		}
	}
	// "2006-01-02 15:04:05 +0000 UTC" as produced by time.Time.String()
	if idx := strings.Index(s, " +"); idx > 0 {
		return ParseTimestamp(s[:idx])
	}
	return Timestamp{}, sqlerr.IllegalArgument("cannot parse '%s' as timestamp", s)
}

// ParseTime parses a time of day; a date part, if present, is ignored.
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOf(t), nil
		}
	}
	ts, err := ParseTimestamp(s)
	if err != nil {
		return Time{}, sqlerr.IllegalArgument("cannot parse '%s' as time", s)
	}
	return ts.TimeOfDay(), nil
}

func (d Date) MarshalBinary() ([]byte, error) {
	buf := make([]byte, sqltype.DateStructSize)
	binary.NativeEndian.PutUint16(buf[0:], uint16(d.Year))
	binary.NativeEndian.PutUint16(buf[2:], d.Month)
	binary.NativeEndian.PutUint16(buf[4:], d.Day)
	return buf, nil
}

func (d *Date) UnmarshalBinary(buf []byte) error {
	if len(buf) < sqltype.DateStructSize {
		return sqlerr.IllegalArgument("date struct needs %d bytes, got %d", sqltype.DateStructSize, len(buf))
	}
	d.Year = int16(binary.NativeEndian.Uint16(buf[0:]))
	d.Month = binary.NativeEndian.Uint16(buf[2:])
	d.Day = binary.NativeEndian.Uint16(buf[4:])
	return nil
}

func (t Time) MarshalBinary() ([]byte, error) {
	buf := make([]byte, sqltype.TimeStructSize)
	binary.NativeEndian.PutUint16(buf[0:], t.Hour)
	binary.NativeEndian.PutUint16(buf[2:], t.Minute)
	binary.NativeEndian.PutUint16(buf[4:], t.Second)
	return buf, nil
}

func (t *Time) UnmarshalBinary(buf []byte) error {
	if len(buf) < sqltype.TimeStructSize {
		return sqlerr.IllegalArgument("time struct needs %d bytes, got %d", sqltype.TimeStructSize, len(buf))
	}
	t.Hour = binary.NativeEndian.Uint16(buf[0:])
	t.Minute = binary.NativeEndian.Uint16(buf[2:])
	t.Second = binary.NativeEndian.Uint16(buf[4:])
	return nil
}

func (ts Timestamp) MarshalBinary() ([]byte, error) {
	buf := make([]byte, sqltype.TimestampStructSize)
	binary.NativeEndian.PutUint16(buf[0:], uint16(ts.Year))
	binary.NativeEndian.PutUint16(buf[2:], ts.Month)
	binary.NativeEndian.PutUint16(buf[4:], ts.Day)
	binary.NativeEndian.PutUint16(buf[6:], ts.Hour)
	binary.NativeEndian.PutUint16(buf[8:], ts.Minute)
	binary.NativeEndian.PutUint16(buf[10:], ts.Second)
	binary.NativeEndian.PutUint32(buf[12:], ts.Fraction)
	return buf, nil
}

func (ts *Timestamp) UnmarshalBinary(buf []byte) error {
	if len(buf) < sqltype.TimestampStructSize {
		return sqlerr.IllegalArgument("timestamp struct needs %d bytes, got %d", sqltype.TimestampStructSize, len(buf))
	}
	ts.Year = int16(binary.NativeEndian.Uint16(buf[0:]))
	ts.Month = binary.NativeEndian.Uint16(buf[2:])
	ts.Day = binary.NativeEndian.Uint16(buf[4:])
	ts.Hour = binary.NativeEndian.Uint16(buf[6:])
	ts.Minute = binary.NativeEndian.Uint16(buf[8:])
	ts.Second = binary.NativeEndian.Uint16(buf[10:])
	ts.Fraction = binary.NativeEndian.Uint32(buf[12:])
	return nil
}
