package stmt

import (
	"context"
	"log/slog"

	"github.com/machbase/neo-odbc/buffer"
)

// CursorType selects how ExecuteQuery exposes its result set.
type CursorType int

const (
	// CursorStatic reads the whole result set when the query executes and
	// scrolls over the copy in any direction.
	CursorStatic CursorType = iota
	// CursorForwardOnly streams rows from the driver; only FetchNext works.
	CursorForwardOnly
)

func (c CursorType) String() string {
	if c == CursorForwardOnly {
		return "forward-only"
	}
	return "static"
}

// ParamDescriber describes the parameters of a statement text. It is asked
// once, when a statement is prepared.
type ParamDescriber interface {
	DescribeParams(ctx context.Context, sqlText string) ([]buffer.ParamDesc, error)
}

// CursorTracker counts the cursors that hold a connection busy.
// AcquireCursor fails when another cursor is open and the connection cannot
// serve more than one.
type CursorTracker interface {
	AcquireCursor() error
	ReleaseCursor()
}

// ErrorDecoder converts a driver error into the error returned to the caller.
type ErrorDecoder func(op string, err error) error

type Option func(*Statement)

func WithCursorType(ct CursorType) Option {
	return func(s *Statement) {
		s.cursorType = ct
	}
}

func WithDescriber(d ParamDescriber) Option {
	return func(s *Statement) {
		s.describer = d
	}
}

func WithCursorTracker(t CursorTracker) Option {
	return func(s *Statement) {
		s.tracker = t
	}
}

func WithErrorDecoder(dec ErrorDecoder) Option {
	return func(s *Statement) {
		s.decode = dec
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Statement) {
		if l != nil {
			s.log = l
		}
	}
}
