package browse

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/machbase/neo-odbc/catalog"
	"github.com/machbase/neo-odbc/sqlerr"
	"gopkg.in/yaml.v3"
)

const (
	OutputTable = "table"
	OutputYaml  = "yaml"
)

type RowsRendererContext struct {
	Writer       io.Writer
	Rownum       bool
	Heading      bool
	TimeLocation *time.Location
	TimeFormat   string
	ColumnNames  []string
	ColumnTypes  []string
}

type RowsRenderer interface {
	OpenRender(ctx *RowsRendererContext) error
	RenderRow(rownum int64, values []any) error
	CloseRender() error
}

// NewRowsRenderer returns the renderer for an output format.
func NewRowsRenderer(format string) (RowsRenderer, error) {
	switch strings.ToLower(format) {
	case "", OutputTable:
		return &boxRenderer{}, nil
	case OutputYaml:
		return &yamlRenderer{}, nil
	}
	return nil, sqlerr.IllegalArgument("unknown output format '%s'", format)
}

type boxRenderer struct {
	ctx *RowsRendererContext
	tw  table.Writer
}

func (r *boxRenderer) OpenRender(ctx *RowsRendererContext) error {
	r.ctx = ctx
	r.tw = table.NewWriter()
	r.tw.SetOutputMirror(ctx.Writer)
	r.tw.SetStyle(table.StyleLight)
	if ctx.Heading {
		hdr := table.Row{}
		if ctx.Rownum {
			hdr = append(hdr, "ROWNUM")
		}
		for _, n := range ctx.ColumnNames {
			hdr = append(hdr, n)
		}
		r.tw.AppendHeader(hdr)
	}
	return nil
}

func (r *boxRenderer) RenderRow(rownum int64, values []any) error {
	row := make(table.Row, 0, len(values)+1)
	if r.ctx.Rownum {
		row = append(row, rownum)
	}
	for _, v := range values {
		row = append(row, FormatValue(v, r.ctx.TimeFormat, r.ctx.TimeLocation))
	}
	r.tw.AppendRow(row)
	return nil
}

func (r *boxRenderer) CloseRender() error {
	r.tw.Render()
	return nil
}

// yamlRenderer writes one yaml document holding a list of rows, each a map
// from column name to the formatted value. NULL stays null.
type yamlRenderer struct {
	ctx  *RowsRendererContext
	rows []yaml.Node
}

func (r *yamlRenderer) OpenRender(ctx *RowsRendererContext) error {
	r.ctx = ctx
	r.rows = r.rows[:0]
	return nil
}

func (r *yamlRenderer) RenderRow(rownum int64, values []any) error {
	m := yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, val *yaml.Node) {
		m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, val)
	}
	if r.ctx.Rownum {
		add("rownum", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%d", rownum)})
	}
	for i, v := range values {
		name := fmt.Sprintf("col%d", i)
		if i < len(r.ctx.ColumnNames) {
			name = r.ctx.ColumnNames[i]
		}
		if v == nil {
			add(name, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"})
			continue
		}
		add(name, &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlTag(v), Value: FormatValue(v, r.ctx.TimeFormat, r.ctx.TimeLocation)})
	}
	r.rows = append(r.rows, m)
	return nil
}

// yamlTag keeps numbers numbers; everything else, timestamps and text that
// looks like a number or a bool included, stays a string.
func yamlTag(v any) string {
	switch v.(type) {
	case int16, int32, int64:
		return "!!int"
	case float32, float64:
		return "!!float"
	}
	return "!!str"
}

func (r *yamlRenderer) CloseRender() error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for i := range r.rows {
		seq.Content = append(seq.Content, &r.rows[i])
	}
	enc := yaml.NewEncoder(r.ctx.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

// RenderDescription writes the column mapping of a table.
func RenderDescription(w io.Writer, d *TableDescription, format string) error {
	switch strings.ToLower(format) {
	case "", OutputTable:
		fmt.Fprintf(w, "%s\n", d.QueryName)
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"#", "NAME", "SQL TYPE", "C TYPE", "SIZE", "DIGITS", "LENGTH", "FLAGS"})
		for _, c := range d.Columns {
			tw.AppendRow(table.Row{c.Index, c.Name, c.SqlType, c.CType, c.ColumnSize, c.DecimalDigits, c.BufferLength, c.Flags})
		}
		tw.Render()
		if len(d.PrimaryKey) > 0 {
			fmt.Fprintf(w, "primary key: %s\n", strings.Join(d.PrimaryKey, ", "))
		}
		return nil
	case OutputYaml:
		return encodeYaml(w, d)
	}
	return sqlerr.IllegalArgument("unknown output format '%s'", format)
}

// RenderTables writes a table list.
func RenderTables(w io.Writer, tables []catalog.TableInfo, format string) error {
	switch strings.ToLower(format) {
	case "", OutputTable:
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"CATALOG", "SCHEMA", "NAME", "TYPE"})
		for _, t := range tables {
			tw.AppendRow(table.Row{t.Catalog, t.Schema, t.Name, t.Type})
		}
		tw.Render()
		return nil
	case OutputYaml:
		return encodeYaml(w, tables)
	}
	return sqlerr.IllegalArgument("unknown output format '%s'", format)
}

func encodeYaml(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
