package buffer

import "github.com/machbase/neo-odbc/sqltype"

// LengthIndicator holds the length/indicator value of a bound buffer: the
// number of bytes the driver transferred, or the NULL sentinel.
type LengthIndicator struct {
	cb int64
}

// NewLengthIndicator returns an indicator in the NULL state.
func NewLengthIndicator() LengthIndicator {
	return LengthIndicator{cb: sqltype.NullData}
}

func (li *LengthIndicator) Cb() int64 {
	return li.cb
}

// SetCb sets the length. Any value other than the NULL sentinel clears NULL.
func (li *LengthIndicator) SetCb(cb int64) {
	li.cb = cb
}

func (li *LengthIndicator) SetNull() {
	li.cb = sqltype.NullData
}

func (li *LengthIndicator) IsNull() bool {
	return li.cb == sqltype.NullData
}
