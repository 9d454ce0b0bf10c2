package engine

import (
	"errors"
	"fmt"
	"log"
)

// ============================================================================
// EXECUTOR — One request in, every dashboard output back
// ============================================================================
// Entry point: Execute(req, view, opts...)
//
// Pipeline:
//   1. Normalize the request (defaults for category, pivot columns, bucket)
//   2. Apply criteria → SubView
//   3. Count by department, symptom-onset bucket, category, department code
//   4. Pivot department × selected columns
//   5. Dispatch to builders (chart / table / text)
//
// Every call recomputes from the view; nothing is cached between calls.
// ============================================================================

// Errors returned for requests the pipeline cannot interpret.
var (
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrInvalidDateRange = errors.New("date range start is after end")
)

// Request is everything a dashboard render depends on.
type Request struct {
	Criteria     Criteria
	Category     string   // one of CategoryKeys
	PivotColumns []string // subset of CategoryKeys
	Bucket       string   // time series bucket
	Offset       int      // record table paging
	Limit        int
}

// Dashboard is the render-ready output of Execute.
type Dashboard struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Reply   string `json:"reply"`

	Text         *TextData    `json:"text"`
	ByDepartment *ChartConfig `json:"byDepartment,omitempty"`
	TimeSeries   *ChartConfig `json:"timeSeries,omitempty"`
	ByCategory   *ChartConfig `json:"byCategory,omitempty"`
	PivotChart   *ChartConfig `json:"pivotChart,omitempty"`
	Pivot        *PivotTable  `json:"pivot,omitempty"`
	PivotTable   *TableData   `json:"pivotTable"`
	Records      *TableData   `json:"records"`

	// Counts per department geocode, for the choropleth join.
	DepartmentCodes map[string]int `json:"departmentCodes"`

	Request *Request `json:"-"`
}

// Execute filters the view with the request criteria and builds every output.
func Execute(req Request, view RecordView, opts ...Option) (*Dashboard, error) {
	cfg := applyOptions(opts)

	req, err := normalizeRequest(req, cfg)
	if err != nil {
		return nil, err
	}

	// 1. Filter → SubView (zero-copy)
	filtered := ApplyFilters(view, req.Criteria)
	log.Printf("🔧 Sivigila: %d cases after filtering (from %d)", filtered.Len(), view.Len())

	text := BuildText(filtered)
	dash := &Dashboard{
		Success: true,
		Count:   filtered.Len(),
		Reply:   text.Reply(),
		Text:    text,
		Request: &req,
	}

	// 2. Aggregates
	byDept := Top(CountBy(filtered, KeyDepartment, SortValueAsc), cfg.TopN)
	series := CountByDate(filtered, KeySymptomOnset, req.Bucket)
	byCat := CountBy(filtered, req.Category, SortLabelAsc)
	dash.DepartmentCodes = CountBy(filtered, KeyDepartmentCode, SortLabelAsc).Map()

	pivot, err := BuildPivot(filtered, KeyDepartment, req.PivotColumns)
	if err != nil {
		return nil, fmt.Errorf("pivot: %w", err)
	}

	// 3. Builders
	dash.ByDepartment = BuildBarChart("Casos por departamento", KeyDepartment, byDept)
	dash.TimeSeries = BuildAreaChart("Series de tiempo", KeySymptomOnset, series, req.Criteria.DateRange)
	dash.ByCategory = BuildBarChart("Distribución por "+LabelForDimension(req.Category), req.Category, byCat)
	dash.Pivot = pivot
	dash.PivotChart = BuildPivotChart("Tabla resumen", pivot)
	dash.PivotTable = BuildPivotTable("Tabla resumen", pivot)
	dash.Records = BuildRecordTable("Casos", filtered, req.Offset, req.Limit)

	return dash, nil
}

// NormalizeRequest fills request defaults and rejects keys the pipeline does not know.
func NormalizeRequest(req Request, opts ...Option) (Request, error) {
	return normalizeRequest(req, applyOptions(opts))
}

func normalizeRequest(req Request, cfg *config) (Request, error) {
	if !req.Criteria.DateRange.Valid() {
		return req, ErrInvalidDateRange
	}

	if req.Category == "" {
		req.Category = cfg.Category
	}
	if !IsCategoryKey(req.Category) {
		return req, fmt.Errorf("%w: category %q", ErrUnknownDimension, req.Category)
	}

	if len(req.PivotColumns) == 0 {
		req.PivotColumns = cfg.PivotColumns
	}
	seen := make(map[string]bool, len(req.PivotColumns))
	cols := make([]string, 0, len(req.PivotColumns))
	for _, c := range req.PivotColumns {
		if !IsCategoryKey(c) {
			return req, fmt.Errorf("%w: pivot column %q", ErrUnknownDimension, c)
		}
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	req.PivotColumns = cols

	if req.Bucket == "" {
		req.Bucket = cfg.TimeBucket
	}
	if !IsBucket(req.Bucket) {
		return req, fmt.Errorf("%w: bucket %q", ErrUnknownDimension, req.Bucket)
	}

	if req.Limit <= 0 {
		req.Limit = cfg.RecordPageSize
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return req, nil
}
