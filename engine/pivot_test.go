package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pivotView() RecordView {
	mk := func(dept, sex, hosp, area string) Record {
		r := rec(dept, "", "2023-01-10", "", sex)
		r.Dimensions[KeyHospitalization] = hosp
		r.Dimensions[KeyArea] = area
		return r
	}
	return NewSliceView([]Record{
		mk("Antioquia", "M", "1", "Cabecera"),
		mk("Antioquia", "F", "2", "Cabecera"),
		mk("Antioquia", "F", "2", "Rural disperso"),
		mk("Chocó", "M", "2", "Cabecera"),
		mk("Chocó", "", "1", "Cabecera"),
		mk("", "M", "1", "Cabecera"),
		mk("Valle del Cauca", "F", "", "Centro poblado"),
	})
}

func TestBuildPivotZeroFills(t *testing.T) {
	p, err := BuildPivot(pivotView(), KeyDepartment, []string{KeySex})
	require.NoError(t, err)

	assert.Equal(t, []string{"Antioquia", "Chocó", "Valle del Cauca"}, p.Rows)
	assert.Equal(t, [][]string{{"F"}, {"M"}}, p.Columns)
	assert.Equal(t, [][]int{{2, 1}, {0, 1}, {1, 0}}, p.Cells)
	assert.Equal(t, 0, p.Cell("Chocó", "F"))
	assert.Equal(t, 2, p.Cell("Antioquia", "F"))
	assert.Equal(t, 0, p.Cell("Amazonas", "F"))
}

func TestBuildPivotMultipleColumns(t *testing.T) {
	p, err := BuildPivot(pivotView(), KeyDepartment, []string{KeySex, KeyHospitalization})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"F", "2"}, {"M", "1"}, {"M", "2"}}, p.Columns)
	assert.Equal(t, "F / 2", p.ColumnLabel(0))
	assert.Equal(t, map[string]int{"F / 2": 2, "M / 1": 1, "M / 2": 0}, p.RowMap("Antioquia"))
	// Valle del Cauca has no hospitalization value and drops out.
	assert.Equal(t, []string{"Antioquia", "Chocó"}, p.Rows)
}

func TestBuildPivotMassConservation(t *testing.T) {
	view := pivotView()
	for _, cols := range [][]string{
		{KeySex},
		{KeyArea},
		{KeySex, KeyArea},
		{KeySex, KeyHospitalization, KeyArea},
	} {
		p, err := BuildPivot(view, KeyDepartment, cols)
		require.NoError(t, err)

		complete := 0
		for i := 0; i < view.Len(); i++ {
			ok := view.Dimension(i, KeyDepartment) != ""
			for _, c := range cols {
				ok = ok && view.Dimension(i, c) != ""
			}
			if ok {
				complete++
			}
		}
		assert.Equal(t, complete, p.Total(), "columns %v", cols)
	}
}

func TestBuildPivotTotals(t *testing.T) {
	p, err := BuildPivot(pivotView(), KeyDepartment, []string{KeyArea})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2, 1}, p.RowTotals())
	sum := 0
	for _, v := range p.ColumnTotals() {
		sum += v
	}
	assert.Equal(t, p.Total(), sum)
}

func TestBuildPivotNoColumns(t *testing.T) {
	_, err := BuildPivot(pivotView(), KeyDepartment, nil)
	assert.ErrorIs(t, err, ErrNoPivotColumns)
}

func TestBuildPivotEmptyView(t *testing.T) {
	p, err := BuildPivot(NewSliceView(nil), KeyDepartment, []string{KeySex})
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
	assert.Equal(t, 0, p.Total())
}

func TestBuildPivotTable(t *testing.T) {
	p, err := BuildPivot(pivotView(), KeyDepartment, []string{KeySex})
	require.NoError(t, err)

	table := BuildPivotTable("Tabla resumen", p)
	require.Len(t, table.Columns, 4)
	assert.Equal(t, "Departamento", table.Columns[0].Label)
	assert.Equal(t, "total", table.Columns[3].Key)
	assert.Equal(t, []string{"Antioquia", "2", "1", "3"}, table.Rows[0])
	assert.Equal(t, "5", table.Summary.Values["total"])
	assert.Equal(t, "3", table.Summary.Values["c0"])
	assert.Equal(t, "F", table.Columns[1].Label)
}

func TestBuildPivotTableCategoryNamedTotal(t *testing.T) {
	view := NewSliceView([]Record{
		{Dimensions: map[string]string{KeyDepartment: "Antioquia", KeyArea: "total"}},
		{Dimensions: map[string]string{KeyDepartment: "Antioquia", KeyArea: "rural"}},
		{Dimensions: map[string]string{KeyDepartment: "Chocó", KeyArea: "rural"}},
	})
	p, err := BuildPivot(view, KeyDepartment, []string{KeyArea})
	require.NoError(t, err)

	table := BuildPivotTable("Tabla resumen", p)
	assert.Equal(t, "3", table.Summary.Values["total"], "grand total is not overwritten")
	assert.Equal(t, "2", table.Summary.Values["c0"])
	assert.Equal(t, "1", table.Summary.Values["c1"])
	assert.Equal(t, "total", table.Columns[2].Label)
}

func TestBuildPivotChart(t *testing.T) {
	p, err := BuildPivot(pivotView(), KeyDepartment, []string{KeySex})
	require.NoError(t, err)

	chart := BuildPivotChart("Tabla resumen", p)
	require.NotNil(t, chart)
	assert.Equal(t, ChartStackedBar, chart.ChartType)
	require.Len(t, chart.Series, 2)
	assert.Equal(t, "F", chart.Series[0].Name)
	assert.Equal(t, []ChartPoint{{"Antioquia", 2}, {"Chocó", 0}, {"Valle del Cauca", 1}}, chart.Series[0].Data)

	assert.Nil(t, BuildPivotChart("x", &PivotTable{}))
}
