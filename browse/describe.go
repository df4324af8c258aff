package browse

import (
	"context"
	"slices"

	"github.com/machbase/neo-odbc/buffer"
	"github.com/machbase/neo-odbc/catalog"
	"github.com/machbase/neo-odbc/table"
	"github.com/pkg/errors"
)

// TableDescription is the buffer mapping Open produced for a table.
type TableDescription struct {
	Table      catalog.TableInfo    `json:"table" yaml:"table"`
	QueryName  string               `json:"query_name" yaml:"query_name"`
	PrimaryKey []string             `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Columns    []*ColumnDescription `json:"columns" yaml:"columns"`
}

type ColumnDescription struct {
	Index         int    `json:"index" yaml:"index"`
	Name          string `json:"name" yaml:"name"`
	SqlType       string `json:"sql_type" yaml:"sql_type"`
	CType         string `json:"c_type" yaml:"c_type"`
	ColumnSize    int    `json:"column_size" yaml:"column_size"`
	DecimalDigits int    `json:"decimal_digits" yaml:"decimal_digits"`
	BufferLength  int    `json:"buffer_length" yaml:"buffer_length"`
	Flags         string `json:"flags" yaml:"flags"`
}

// Describe opens the table for reading and reports its columns. A column
// size or digits of -1 means the catalog did not report one.
func Describe(ctx context.Context, db table.DB, name, schema string, flags table.OpenFlags) (*TableDescription, error) {
	t := table.NewByName(db, table.AccessSelectWhere|table.AccessSelectPK, name, schema, "", "")
	if err := t.Open(ctx, flags); err != nil {
		return nil, errors.Wrapf(err, "describe %s", name)
	}
	defer t.Close()

	d := &TableDescription{Table: t.Info(), QueryName: t.QueryName()}
	for _, i := range t.ColumnIndexes() {
		b, err := t.Column(i)
		if err != nil {
			return nil, err
		}
		d.Columns = append(d.Columns, describeColumn(i, b))
	}
	for _, i := range t.PrimaryKeyIndexes() {
		idx := slices.IndexFunc(d.Columns, func(c *ColumnDescription) bool { return c.Index == i })
		if idx >= 0 {
			d.PrimaryKey = append(d.PrimaryKey, d.Columns[idx].Name)
		}
	}
	return d, nil
}

func describeColumn(index int, b buffer.ColumnBuffer) *ColumnDescription {
	size, _ := b.ColumnSize()
	digits, _ := b.DecimalDigits()
	return &ColumnDescription{
		Index:         index,
		Name:          b.QueryName(),
		SqlType:       b.SqlType().String(),
		CType:         b.CType().String(),
		ColumnSize:    size,
		DecimalDigits: digits,
		BufferLength:  b.BufferLength(),
		Flags:         b.Flags().String(),
	}
}
