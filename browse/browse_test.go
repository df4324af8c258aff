package browse_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/machbase/neo-odbc/browse"
	"github.com/machbase/neo-odbc/buffer"
	"github.com/machbase/neo-odbc/database"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/machbase/neo-odbc/table"
	"github.com/machbase/neo-odbc/testdb"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTimeformat(t *testing.T) {
	require.Equal(t, "2006-01-02T15:04:05Z07:00", browse.Timeformat("rfc3339"))
	require.Equal(t, "15:04", browse.Timeformat("15:04"))
	require.Equal(t, time.Kitchen, browse.Timeformat("Kitchen"))
	require.Equal(t, time.DateOnly, browse.Timeformat("date"))

	ts := buffer.Timestamp{Year: 1983, Month: 1, Day: 26, Hour: 13, Minute: 55, Second: 56, Fraction: 123456000}
	require.Equal(t, "1983-01-26 13:55:56.123456", browse.FormatValue(ts, "default", time.UTC))
	require.Equal(t, "1983-01-26 13:55:56", browse.FormatValue(ts, "datetime", time.UTC))
	require.Equal(t, "412437356123456000", browse.FormatValue(ts, "epoch", time.UTC))
	require.Equal(t, "NULL", browse.FormatValue(nil, "", nil))
	require.Equal(t, "abcd", browse.FormatValue([]byte{0xab, 0xcd}, "", nil))
	require.Equal(t, "1983-01-26", browse.FormatValue(buffer.Date{Year: 1983, Month: 1, Day: 26}, "", nil))
	require.Equal(t, "-13", browse.FormatValue(int16(-13), "", nil))
}

func TestDescribe(t *testing.T) {
	db := testdb.Open(t, database.AutoCommit)
	d, err := browse.Describe(context.Background(), db, "integertypes", "", table.OpenNone)
	require.NoError(t, err)
	require.Equal(t, "main.integertypes", d.QueryName)
	require.Equal(t, []string{"idintegertypes"}, d.PrimaryKey)
	require.Len(t, d.Columns, 4)
	require.Equal(t, "tint", d.Columns[2].Name)
	require.Equal(t, sqltype.Integer.String(), d.Columns[2].SqlType)
	require.Equal(t, sqltype.CSLong.String(), d.Columns[2].CType)
	require.Equal(t, 4, d.Columns[2].BufferLength)

	var out bytes.Buffer
	require.NoError(t, browse.RenderDescription(&out, d, browse.OutputTable))
	require.Contains(t, out.String(), "main.integertypes")
	require.Contains(t, out.String(), "primary key: idintegertypes")

	out.Reset()
	require.NoError(t, browse.RenderDescription(&out, d, browse.OutputYaml))
	var back browse.TableDescription
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &back))
	require.Equal(t, d.QueryName, back.QueryName)
	require.Len(t, back.Columns, 4)

	require.ErrorIs(t, browse.RenderDescription(&out, d, "xml"), sqlerr.ErrIllegalArgument)

	_, err = browse.Describe(context.Background(), db, "geometrytypes", "", table.OpenNone)
	require.ErrorIs(t, err, sqlerr.ErrNotSupported)
	d, err = browse.Describe(context.Background(), db, "geometrytypes", "", table.OpenSkipUnsupportedColumns)
	require.NoError(t, err)
	require.Len(t, d.Columns, 2)
	require.Equal(t, 2, d.Columns[1].Index)
}

func TestDoSelect(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t, database.AutoCommit)
	tbl := table.NewByName(db, table.AccessSelectWhere, "integertypes", "", "", "")
	require.NoError(t, tbl.Open(ctx, table.OpenNone))
	defer tbl.Close()

	var names []string
	var rows [][]any
	ended := false
	n, err := browse.DoSelect(ctx, &browse.QueryContext{
		Table: tbl,
		Where: "idintegertypes >= 6",
		OnFetchStart: func(cols []buffer.ColumnBuffer) {
			for _, c := range cols {
				names = append(names, c.QueryName())
			}
		},
		OnFetch: func(_ int64, values []any) bool {
			rows = append(rows, append([]any(nil), values...))
			return true
		},
		OnFetchEnd: func() { ended = true },
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.True(t, ended)
	require.False(t, tbl.IsSelecting())
	require.Equal(t, []string{"idintegertypes", "tsmallint", "tint", "tbigint"}, names)
	require.Equal(t, []any{int32(6), nil, nil, int64(9223372036854775807)}, rows[0])
	require.Equal(t, []any{int32(7), int16(-13), int32(26), int64(10502)}, rows[1])

	n, err = browse.DoSelect(ctx, &browse.QueryContext{Table: tbl, Limit: 3})
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	n, err = browse.DoSelect(ctx, &browse.QueryContext{
		Table:   tbl,
		OnFetch: func(rownum int64, _ []any) bool { return rownum < 2 },
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestRowsRenderer(t *testing.T) {
	values := [][]any{
		{int32(1), "abc", nil},
		{int32(2), "Русский", buffer.Timestamp{Year: 2024, Month: 2, Day: 29, Hour: 23, Minute: 59, Second: 1}},
		{int32(3), "true", nil},
		{int32(4), "123", nil},
	}
	render := func(format string) string {
		r, err := browse.NewRowsRenderer(format)
		require.NoError(t, err)
		var out bytes.Buffer
		require.NoError(t, r.OpenRender(&browse.RowsRendererContext{
			Writer:       &out,
			Rownum:       true,
			Heading:      true,
			TimeLocation: time.UTC,
			TimeFormat:   "datetime",
			ColumnNames:  []string{"id", "name", "ts"},
		}))
		for i, v := range values {
			require.NoError(t, r.RenderRow(int64(i+1), v))
		}
		require.NoError(t, r.CloseRender())
		return out.String()
	}

	text := render(browse.OutputTable)
	require.Contains(t, text, "ROWNUM")
	require.Contains(t, text, "Русский")
	require.Contains(t, text, "2024-02-29 23:59:01")
	require.Contains(t, text, "NULL")

	var rows []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(render(browse.OutputYaml)), &rows))
	require.Len(t, rows, 4)
	require.Equal(t, 1, rows[0]["rownum"])
	require.Equal(t, 1, rows[0]["id"])
	require.Equal(t, "abc", rows[0]["name"])
	require.Nil(t, rows[0]["ts"])
	require.Contains(t, rows[0], "ts")
	require.Equal(t, "2024-02-29 23:59:01", rows[1]["ts"])
	// text that looks like a bool or a number stays text
	require.Equal(t, "true", rows[2]["name"])
	require.Equal(t, "123", rows[3]["name"])

	_, err := browse.NewRowsRenderer("csv")
	require.ErrorIs(t, err, sqlerr.ErrIllegalArgument)
}
