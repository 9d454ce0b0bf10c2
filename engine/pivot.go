package engine

import (
	"errors"
	"sort"
	"strings"
)

// ============================================================================
// PIVOT — Zero-filled cross tabulation
// ============================================================================
// Unlike CountBy, every observed (row, column combination) pair gets a cell,
// and pairs with no records hold 0.
// ============================================================================

// ErrNoPivotColumns is returned when a pivot is requested without column dimensions.
var ErrNoPivotColumns = errors.New("pivot needs at least one column dimension")

// ColumnSeparator joins the values of a column combination into one label.
const ColumnSeparator = " / "

// PivotTable is a row × column-combination count matrix.
type PivotTable struct {
	RowDimension     string     `json:"rowDimension"`
	ColumnDimensions []string   `json:"columnDimensions"`
	Rows             []string   `json:"rows"`
	Columns          [][]string `json:"columns"`
	Cells            [][]int    `json:"cells"`
}

// BuildPivot cross-tabulates a view by one row dimension and one or more column dimensions.
// Records missing the row value or any column value are left out.
func BuildPivot(view RecordView, rowDim string, colDims []string) (*PivotTable, error) {
	if len(colDims) == 0 {
		return nil, ErrNoPivotColumns
	}

	type cellKey struct{ row, col string }
	counts := make(map[cellKey]int)
	rowSet := make(map[string]bool)
	colSet := make(map[string][]string)

	for i := 0; i < view.Len(); i++ {
		row := view.Dimension(i, rowDim)
		if row == "" {
			continue
		}
		combo := make([]string, len(colDims))
		complete := true
		for j, dim := range colDims {
			combo[j] = view.Dimension(i, dim)
			if combo[j] == "" {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		col := strings.Join(combo, "\x00")
		rowSet[row] = true
		if _, ok := colSet[col]; !ok {
			colSet[col] = combo
		}
		counts[cellKey{row, col}]++
	}

	p := &PivotTable{
		RowDimension:     rowDim,
		ColumnDimensions: append([]string(nil), colDims...),
		Rows:             make([]string, 0, len(rowSet)),
		Columns:          make([][]string, 0, len(colSet)),
	}
	for r := range rowSet {
		p.Rows = append(p.Rows, r)
	}
	sort.Strings(p.Rows)

	colKeys := make([]string, 0, len(colSet))
	for k := range colSet {
		colKeys = append(colKeys, k)
	}
	sort.Slice(colKeys, func(i, j int) bool { return lessTuple(colSet[colKeys[i]], colSet[colKeys[j]]) })
	for _, k := range colKeys {
		p.Columns = append(p.Columns, colSet[k])
	}

	p.Cells = make([][]int, len(p.Rows))
	for i, r := range p.Rows {
		p.Cells[i] = make([]int, len(colKeys))
		for j, c := range colKeys {
			p.Cells[i][j] = counts[cellKey{r, c}]
		}
	}
	return p, nil
}

func lessTuple(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// ColumnLabel joins the values of the j-th column combination.
func (p *PivotTable) ColumnLabel(j int) string {
	return strings.Join(p.Columns[j], ColumnSeparator)
}

// Cell returns the count at a row and column combination, or 0 if either is unknown.
func (p *PivotTable) Cell(row string, combo ...string) int {
	ri := sort.SearchStrings(p.Rows, row)
	if ri >= len(p.Rows) || p.Rows[ri] != row {
		return 0
	}
	for j, c := range p.Columns {
		if equalTuple(c, combo) {
			return p.Cells[ri][j]
		}
	}
	return 0
}

func equalTuple(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// RowMap returns one row as column label → count, including zero cells.
func (p *PivotTable) RowMap(row string) map[string]int {
	ri := sort.SearchStrings(p.Rows, row)
	if ri >= len(p.Rows) || p.Rows[ri] != row {
		return nil
	}
	m := make(map[string]int, len(p.Columns))
	for j := range p.Columns {
		m[p.ColumnLabel(j)] = p.Cells[ri][j]
	}
	return m
}

// RowTotals sums each row.
func (p *PivotTable) RowTotals() []int {
	totals := make([]int, len(p.Rows))
	for i, row := range p.Cells {
		for _, v := range row {
			totals[i] += v
		}
	}
	return totals
}

// ColumnTotals sums each column.
func (p *PivotTable) ColumnTotals() []int {
	totals := make([]int, len(p.Columns))
	for _, row := range p.Cells {
		for j, v := range row {
			totals[j] += v
		}
	}
	return totals
}

// Total sums every cell.
func (p *PivotTable) Total() int {
	n := 0
	for _, v := range p.RowTotals() {
		n += v
	}
	return n
}

// IsEmpty reports whether the pivot has no rows.
func (p *PivotTable) IsEmpty() bool {
	return p == nil || len(p.Rows) == 0
}
