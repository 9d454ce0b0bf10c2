package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBarChart(t *testing.T) {
	groups := CountBy(ApplyFilters(sampleView(), allCriteria()), KeySex, SortLabelAsc)
	chart := BuildBarChart("Distribución por sexo", KeySex, groups)

	require.NotNil(t, chart)
	assert.Equal(t, ChartBar, chart.ChartType)
	assert.Equal(t, "Sexo", chart.XAxis)
	require.Len(t, chart.Series, 1)
	assert.Equal(t, []ChartPoint{{Label: "F", Value: 2}, {Label: "M", Value: 3}}, chart.Series[0].Data)

	assert.Nil(t, BuildBarChart("vacío", KeySex, nil))
}

func TestBuildAreaChartSpansRange(t *testing.T) {
	filtered := ApplyFilters(sampleView(), allCriteria())
	groups := CountByDate(filtered, KeySymptomOnset, BucketMonth)
	chart := BuildAreaChart("Series de tiempo", KeySymptomOnset, groups, fullYear())

	require.NotNil(t, chart)
	assert.Equal(t, ChartArea, chart.ChartType)
	assert.Equal(t, []string{"2023-01-01", "2023-12-31"}, chart.XRange)
	assert.Equal(t, "2023-01", chart.Series[0].Data[0].Label)
}

func TestBuildText(t *testing.T) {
	filtered := ApplyFilters(sampleView(), allCriteria())
	text := BuildText(filtered)

	assert.Equal(t, 6, text.Count)
	assert.Equal(t, "Antioquia", text.Top, "ties resolve to the first department by name")
	assert.Equal(t, "6 casos (2023-01-10 – 2023-03-01). Mayor número en Antioquia.", text.Reply())

	empty := BuildText(NewSliceView(nil))
	assert.Equal(t, "No hay casos para los filtros seleccionados.", empty.Reply())
}

func TestBuildRecordTableColumns(t *testing.T) {
	filtered := ApplyFilters(sampleView(), allCriteria())
	table := BuildRecordTable("Casos", filtered, 0, 0)

	keys := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		keys[i] = c.Key
	}
	assert.Equal(t, []string{KeyConsultationDate, KeySymptomOnset, KeyDepartment, KeyMunicipality, KeySex}, keys)
	require.Len(t, table.Rows, 6)
	assert.Equal(t, []string{"2023-01-10", "2023-01-08", "Antioquia", "Medellín", "M"}, table.Rows[0])
	assert.Equal(t, "6", table.Summary.Values["shown"])
}
