package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ============================================================================
// AGGREGATORS — Grouping, Counting, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// Groups with no records never appear; missing keys are dropped.
// ============================================================================

// Sort modes accepted by SortGroups.
const (
	SortValueAsc  = "value_asc"
	SortValueDesc = "value_desc"
	SortLabelAsc  = "label_asc"
	SortDateAsc   = "date_asc"
)

// Time buckets accepted by CountByDate.
const (
	BucketDay   = "day"
	BucketWeek  = "week"
	BucketMonth = "month"
)

// IsBucket reports whether b is a known time bucket.
func IsBucket(b string) bool {
	return b == BucketDay || b == BucketWeek || b == BucketMonth
}

// CountBy groups a view by a dimension and counts records per group.
// Records with an empty value for the dimension are not counted.
func CountBy(view RecordView, dimension string, sortBy string) Aggregate {
	groups := groupBy(view, func(i int) string { return view.Dimension(i, dimension) })
	SortGroups(groups, sortBy)
	return groups
}

// CountByDate groups a view by a date key truncated to a bucket, in chronological order.
// Records without the date are not counted.
func CountByDate(view RecordView, dateKey string, bucket string) Aggregate {
	groups := groupBy(view, func(i int) string {
		t, ok := view.Date(i, dateKey)
		if !ok {
			return ""
		}
		return BucketKey(t, bucket)
	})
	SortGroups(groups, SortDateAsc)
	return groups
}

// BucketKey formats t as the key of its bucket.
// Weeks are keyed by the date of their Monday.
func BucketKey(t time.Time, bucket string) string {
	switch bucket {
	case BucketMonth:
		return t.Format("2006-01")
	case BucketWeek:
		d := calendarDate(t)
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset).Format("2006-01-02")
	default:
		return t.Format("2006-01-02")
	}
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBy(view RecordView, keyFn func(int) string) Aggregate {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := keyFn(i)
		if key == "" {
			continue
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make(Aggregate, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			Count: len(grouped[key]),
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts aggregate groups by the specified sort mode.
// Ties on count fall back to the key so output is deterministic.
func SortGroups(groups Aggregate, sortBy string) {
	switch sortBy {
	case SortValueAsc:
		sort.SliceStable(groups, func(i, j int) bool {
			if groups[i].Count != groups[j].Count {
				return groups[i].Count < groups[j].Count
			}
			return groups[i].Key < groups[j].Key
		})
	case SortValueDesc:
		sort.SliceStable(groups, func(i, j int) bool {
			if groups[i].Count != groups[j].Count {
				return groups[i].Count > groups[j].Count
			}
			return groups[i].Key < groups[j].Key
		})
	case SortLabelAsc, SortDateAsc:
		// Bucket keys are zero-padded ISO dates, so lexical order is chronological.
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	default:
		// preserve grouping order
	}
}

// Top keeps the n groups with the highest counts, preserving the current order.
// n <= 0 keeps everything.
func Top(groups Aggregate, n int) Aggregate {
	if n <= 0 || len(groups) <= n {
		return groups
	}
	ranked := make(Aggregate, len(groups))
	copy(ranked, groups)
	SortGroups(ranked, SortValueDesc)
	keep := make(map[string]bool, n)
	for _, g := range ranked[:n] {
		keep[g.Key] = true
	}
	out := make(Aggregate, 0, n)
	for _, g := range groups {
		if keep[g.Key] {
			out = append(out, g)
		}
	}
	return out
}

// ============================================================================
// OPTIONS
// ============================================================================

// UniqueValues returns distinct non-empty values for a dimension, sorted.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	sort.Strings(result)
	return result
}

// DepartmentOptions lists every department, ALL first.
func DepartmentOptions(view RecordView) []Choice {
	return withAll(UniqueValues(view, KeyDepartment))
}

// MunicipalityOptions lists municipalities of the selected departments, ALL first.
// With AllRegions the whole view is used.
func MunicipalityOptions(view RecordView, departments RegionSelection) []Choice {
	return withAll(UniqueValues(FilterRegions(view, departments), KeyMunicipality))
}

func withAll(values []string) []Choice {
	choices := make([]Choice, 0, len(values)+1)
	choices = append(choices, Choice{All: true, Label: AllLabel})
	for _, v := range values {
		choices = append(choices, Choice{Value: v, Label: v})
	}
	return choices
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with dot thousands separators (es-CO).
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s.%03d", FormatInt(n/1000), n%1000)
}

var dimensionLabels = map[string]string{
	KeyDepartment:       "Departamento",
	KeyMunicipality:     "Municipio",
	KeyDepartmentCode:   "Código departamento",
	KeySex:              "Sexo",
	KeyHospitalization:  "Hospitalizado",
	KeyArea:             "Área",
	KeyConsultationDate: "Fecha de consulta",
	KeySymptomOnset:     "Inicio de síntomas",
}

// LabelForDimension returns a display label for a dimension or date key.
func LabelForDimension(dimension string) string {
	if label, ok := dimensionLabels[dimension]; ok {
		return label
	}
	if len(dimension) == 0 {
		return ""
	}
	return strings.ToUpper(dimension[:1]) + strings.ReplaceAll(dimension[1:], "_", " ")
}
