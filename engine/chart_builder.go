package engine

// ============================================================================
// CHART BUILDER — Produces ChartConfig from Aggregates and Pivots
// ============================================================================
// Output matches the frontend ChartConfig shape; no rendering happens here.
// An empty aggregate yields nil so callers can skip the chart.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#1F4E79", "#2E86C1", "#5DADE2", "#A9CCE3", "#117864",
	"#48C9B0", "#B03A2E", "#E59866", "#7D3C98", "#5D6D7E",
}

// Chart types produced by the builders.
const (
	ChartBar        = "bar"
	ChartArea       = "area"
	ChartStackedBar = "stacked_bar"
)

// BuildBarChart renders an aggregate as a single-series bar chart.
func BuildBarChart(title string, dimension string, groups Aggregate) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}
	config := &ChartConfig{
		ChartType:  ChartBar,
		Title:      title,
		XAxis:      LabelForDimension(dimension),
		YAxis:      "Casos",
		ShowLegend: false,
		ShowGrid:   true,
	}
	config.Series = buildSingleSeries(groups, "Casos")
	config.Colors = assignColors(len(config.Series))
	return config
}

// BuildAreaChart renders a chronological aggregate as an area chart.
// The x axis spans the requested date range even where no cases fall.
func BuildAreaChart(title string, dateKey string, groups Aggregate, rng DateRange) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}
	config := &ChartConfig{
		ChartType:  ChartArea,
		Title:      title,
		XAxis:      LabelForDimension(dateKey),
		YAxis:      "Casos",
		XRange:     []string{rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02")},
		ShowLegend: false,
		ShowGrid:   true,
	}
	config.Series = buildSingleSeries(groups, "Casos")
	config.Colors = assignColors(len(config.Series))
	return config
}

// BuildPivotChart renders a pivot as a stacked bar: one series per column combination.
func BuildPivotChart(title string, p *PivotTable) *ChartConfig {
	if p.IsEmpty() {
		return nil
	}
	config := &ChartConfig{
		ChartType:  ChartStackedBar,
		Title:      title,
		XAxis:      LabelForDimension(p.RowDimension),
		YAxis:      "Casos",
		ShowLegend: true,
		ShowGrid:   true,
	}
	config.Series = buildMultiSeries(p)
	config.Colors = assignColors(len(config.Series))
	return config
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(groups Aggregate, seriesName string) []ChartSeries {
	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{
			Label: g.Label,
			Value: float64(g.Count),
		})
	}

	return []ChartSeries{{
		Name: seriesName,
		Data: points,
	}}
}

func buildMultiSeries(p *PivotTable) []ChartSeries {
	series := make([]ChartSeries, 0, len(p.Columns))
	for j := range p.Columns {
		points := make([]ChartPoint, 0, len(p.Rows))
		for i, row := range p.Rows {
			points = append(points, ChartPoint{
				Label: row,
				Value: float64(p.Cells[i][j]),
			})
		}
		series = append(series, ChartSeries{
			Name:  p.ColumnLabel(j),
			Data:  points,
			Color: defaultColors[j%len(defaultColors)],
		})
	}
	return series
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
