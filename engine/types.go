package engine

import (
	"sort"
	"time"
)

// ============================================================================
// SIVIGILA ENGINE TYPES — Case Filtering and Aggregation
// ============================================================================
// Records are read through RecordView (dimensions + dates).
// Criteria narrow a view; Groups, PivotTable and the builders summarize it.
//
// Dependency: engine has ZERO external dependencies.
// ============================================================================

// Canonical dimension and date keys bound by the dataset package.
const (
	KeyDepartment      = "department"
	KeyMunicipality    = "municipality"
	KeyDepartmentCode  = "department_code"
	KeySex             = "sex"
	KeyHospitalization = "hospitalization_status"
	KeyArea            = "area"

	KeyConsultationDate = "consultation_date"
	KeySymptomOnset     = "symptom_onset_date"
)

// CategoryKeys are the dimensions offered for the category chart and pivot columns.
var CategoryKeys = []string{KeySex, KeyHospitalization, KeyArea}

// IsCategoryKey reports whether key is one of CategoryKeys.
func IsCategoryKey(key string) bool {
	for _, k := range CategoryKeys {
		if k == key {
			return true
		}
	}
	return false
}

// AllLabel is the display label of the "no restriction" choice.
const AllLabel = "Todos"

// ============================================================================
// RECORD — Generic data row
// ============================================================================

// Record is a single data row with string dimensions and calendar dates.
// A missing dimension is the empty string; a missing date is absent from Dates.
type Record struct {
	Dimensions map[string]string    `json:"dimensions"`
	Dates      map[string]time.Time `json:"dates"`
}

// ============================================================================
// REGION SELECTION — tagged variant instead of a sentinel string
// ============================================================================

// RegionSelection is either every region or a specific set of regions.
// The zero value selects every region.
type RegionSelection struct {
	specific bool
	values   map[string]struct{}
}

// AllRegions selects every region.
func AllRegions() RegionSelection {
	return RegionSelection{}
}

// SpecificRegions selects exactly the given regions. With no values it matches nothing.
func SpecificRegions(values ...string) RegionSelection {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return RegionSelection{specific: true, values: set}
}

// IsAll returns true if no restriction applies.
func (s RegionSelection) IsAll() bool { return !s.specific }

// Contains reports whether a region value passes the selection.
func (s RegionSelection) Contains(value string) bool {
	if !s.specific {
		return true
	}
	_, ok := s.values[value]
	return ok
}

// Values returns the selected regions sorted, or nil for AllRegions.
func (s RegionSelection) Values() []string {
	if !s.specific {
		return nil
	}
	out := make([]string, 0, len(s.values))
	for v := range s.values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ============================================================================
// CRITERIA
// ============================================================================

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange truncates both ends to calendar dates (UTC).
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: calendarDate(start), End: calendarDate(end)}
}

// Valid reports whether Start is not after End.
func (r DateRange) Valid() bool {
	return !r.Start.After(r.End)
}

// Contains reports whether t falls on a calendar date inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := calendarDate(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Criteria define which cases to include. All predicates are AND-combined.
type Criteria struct {
	DateRange      DateRange
	Departments    RegionSelection
	Municipalities RegionSelection
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group is one (key, count) entry of an aggregate.
type Group struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Count int        `json:"count"`
	View  RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// Aggregate is an ordered list of groups.
type Aggregate []Group

// Map returns the aggregate as a key → count mapping.
func (a Aggregate) Map() map[string]int {
	m := make(map[string]int, len(a))
	for _, g := range a {
		m[g.Key] = g.Count
	}
	return m
}

// Total sums the counts of every group.
func (a Aggregate) Total() int {
	n := 0
	for _, g := range a {
		n += g.Count
	}
	return n
}

// ============================================================================
// OPTIONS
// ============================================================================

// Choice is one entry of a selection widget. The ALL choice has All set and no Value.
type Choice struct {
	All   bool   `json:"all"`
	Value string `json:"value,omitempty"`
	Label string `json:"label"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	XRange     []string      `json:"xRange,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "date"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is the headline summary of a filtered view.
type TextData struct {
	Value  string `json:"value"`
	Count  int    `json:"count"`
	Period string `json:"period"`
	Top    string `json:"top,omitempty"`
}
