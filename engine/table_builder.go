package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from views and pivots
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Column discovery uses view.DimensionKeys() / view.DateKeys().
// ============================================================================

// BuildRecordTable lists the records of a view, one row per record.
// offset/limit page through the view; limit <= 0 lists everything after offset.
func BuildRecordTable(title string, view RecordView, offset, limit int) *TableData {
	if view.Len() == 0 {
		return &TableData{
			Title:   title,
			Columns: []Column{},
			Rows:    [][]string{},
		}
	}

	dimKeys := view.DimensionKeys()
	dateKeys := view.DateKeys()
	columns := make([]Column, 0, len(dimKeys)+len(dateKeys))

	for _, key := range dateKeys {
		columns = append(columns, Column{
			Key:   key,
			Label: LabelForDimension(key),
			Type:  "date",
			Align: "center",
		})
	}
	for _, key := range dimKeys {
		columns = append(columns, Column{
			Key:   key,
			Label: LabelForDimension(key),
			Type:  "text",
			Align: "left",
		})
	}

	start, end := pageBounds(view.Len(), offset, limit)
	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		row := make([]string, 0, len(columns))
		for _, key := range dateKeys {
			if t, ok := view.Date(i, key); ok {
				row = append(row, t.Format("2006-01-02"))
			} else {
				row = append(row, "")
			}
		}
		for _, key := range dimKeys {
			row = append(row, view.Dimension(i, key))
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: fmt.Sprintf("Total (%s casos)", FormatInt(view.Len())),
			Values: map[string]string{
				"count":  strconv.Itoa(view.Len()),
				"offset": strconv.Itoa(start),
				"shown":  strconv.Itoa(end - start),
			},
		},
	}
}

func pageBounds(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

// ============================================================================
// PIVOT TABLE — Row header + one column per combination + row total
// ============================================================================

// BuildPivotTable renders a pivot as TableData with row totals and a column-total summary.
func BuildPivotTable(title string, p *PivotTable) *TableData {
	if p.IsEmpty() {
		return &TableData{
			Title:   title,
			Columns: []Column{},
			Rows:    [][]string{},
		}
	}

	columns := make([]Column, 0, len(p.Columns)+2)
	columns = append(columns, Column{
		Key:   p.RowDimension,
		Label: LabelForDimension(p.RowDimension),
		Type:  "text",
		Align: "left",
	})
	for j := range p.Columns {
		columns = append(columns, Column{Key: pivotColumnKey(j), Label: p.ColumnLabel(j), Type: "number", Align: "right"})
	}
	columns = append(columns, Column{Key: "total", Label: "Total", Type: "number", Align: "right"})

	rowTotals := p.RowTotals()
	rows := make([][]string, 0, len(p.Rows))
	for i, r := range p.Rows {
		row := make([]string, 0, len(columns))
		row = append(row, r)
		for _, v := range p.Cells[i] {
			row = append(row, strconv.Itoa(v))
		}
		row = append(row, strconv.Itoa(rowTotals[i]))
		rows = append(rows, row)
	}

	values := make(map[string]string, len(p.Columns)+1)
	for j, v := range p.ColumnTotals() {
		values[pivotColumnKey(j)] = strconv.Itoa(v)
	}
	values["total"] = strconv.Itoa(p.Total())

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{Label: "Total", Values: values},
	}
}

// pivotColumnKey keys combination columns by position, so a category value
// such as "total" cannot collide with the grand-total key.
func pivotColumnKey(j int) string {
	return "c" + strconv.Itoa(j)
}
