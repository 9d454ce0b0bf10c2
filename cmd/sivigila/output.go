package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spektr-org/sivigila/engine"
)

// render writes one dashboard output in the requested format.
func render(w io.Writer, dash *engine.Dashboard, output, format string) error {
	switch format {
	case "text":
		_, err := fmt.Fprintln(w, dash.Reply)
		return err
	case "csv":
		return writeCSV(w, dash, output)
	case "json", "pretty":
		v, err := selectOutput(dash, output)
		if err != nil {
			return err
		}
		return writeJSON(w, v, format)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func selectOutput(dash *engine.Dashboard, output string) (interface{}, error) {
	switch output {
	case outputDashboard:
		return dash, nil
	case outputRecords:
		return dash.Records, nil
	case outputDepartments:
		return dash.ByDepartment, nil
	case outputTimeSeries:
		return dash.TimeSeries, nil
	case outputCategory:
		return dash.ByCategory, nil
	case outputPivot:
		return dash.PivotTable, nil
	default:
		return nil, fmt.Errorf("unknown output %q", output)
	}
}

// ============================================================================
// CSV OUTPUT — Charts and tables as Sheets-ready CSV
// ============================================================================

func writeCSV(w io.Writer, dash *engine.Dashboard, output string) error {
	cw := csv.NewWriter(w)

	switch output {
	case outputRecords:
		writeTableCSV(cw, dash.Records)
	case outputPivot, outputDashboard:
		writeTableCSV(cw, dash.PivotTable)
	case outputDepartments:
		writeChartCSV(cw, dash.ByDepartment)
	case outputTimeSeries:
		writeChartCSV(cw, dash.TimeSeries)
	case outputCategory:
		writeChartCSV(cw, dash.ByCategory)
	default:
		return fmt.Errorf("unknown output %q", output)
	}

	cw.Flush()
	return cw.Error()
}

func writeChartCSV(cw *csv.Writer, chart *engine.ChartConfig) {
	if chart == nil || len(chart.Series) == 0 {
		cw.Write([]string{"Result", "No data"})
		return
	}

	xLabel := chart.XAxis
	yLabel := chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	// Single series → two columns
	if len(chart.Series) == 1 {
		cw.Write([]string{xLabel, yLabel})
		for _, d := range chart.Series[0].Data {
			cw.Write([]string{d.Label, fmtNum(d.Value)})
		}
		return
	}

	// Multi-series → label + one column per series
	headers := []string{xLabel}
	for _, s := range chart.Series {
		headers = append(headers, s.Name)
	}
	cw.Write(headers)

	for i, d := range chart.Series[0].Data {
		row := []string{d.Label}
		for _, s := range chart.Series {
			if i < len(s.Data) {
				row = append(row, fmtNum(s.Data[i].Value))
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
}

func writeTableCSV(cw *csv.Writer, table *engine.TableData) {
	if table == nil || len(table.Columns) == 0 {
		cw.Write([]string{"Result", "No data"})
		return
	}

	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Label
	}
	cw.Write(headers)
	for _, row := range table.Rows {
		cw.Write(row)
	}

	if table.Summary != nil {
		total := make([]string, len(table.Columns))
		total[0] = table.Summary.Label
		for i, c := range table.Columns {
			if v, ok := table.Summary.Values[c.Key]; ok && i > 0 {
				total[i] = v
			}
		}
		cw.Write(total)
	}
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// HELPERS
// ============================================================================

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
