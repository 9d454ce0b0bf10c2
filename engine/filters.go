package engine

import "time"

// ============================================================================
// FILTERS — Date and Region Filtering via RecordView
// ============================================================================
// Single-pass filter: checks every predicate per record in one loop.
// Returns a SubView (index list into parent) — zero data copy.
// ============================================================================

// ApplyFilters returns a view of records matching the criteria.
// A record passes iff its consultation date lies in the range (inclusive),
// its department is selected, and its municipality is selected.
// Records without a consultation date never pass.
func ApplyFilters(view RecordView, criteria Criteria) RecordView {
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if matches(view, i, criteria) {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

func matches(view RecordView, i int, c Criteria) bool {
	date, ok := view.Date(i, KeyConsultationDate)
	if !ok || !c.DateRange.Contains(date) {
		return false
	}
	if !c.Departments.IsAll() && !c.Departments.Contains(view.Dimension(i, KeyDepartment)) {
		return false
	}
	if !c.Municipalities.IsAll() && !c.Municipalities.Contains(view.Dimension(i, KeyMunicipality)) {
		return false
	}
	return true
}

// FilterRegions narrows a view by department only. Used to scope municipality options.
func FilterRegions(view RecordView, departments RegionSelection) RecordView {
	if departments.IsAll() {
		return view
	}
	indices := make([]int, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if departments.Contains(view.Dimension(i, KeyDepartment)) {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

// DateBounds returns the earliest and latest value of a date key.
// ok is false when no record carries the date.
func DateBounds(view RecordView, key string) (DateRange, bool) {
	var lo, hi time.Time
	found := false
	for i := 0; i < view.Len(); i++ {
		t, ok := view.Date(i, key)
		if !ok {
			continue
		}
		if !found || t.Before(lo) {
			lo = t
		}
		if !found || t.After(hi) {
			hi = t
		}
		found = true
	}
	if !found {
		return DateRange{}, false
	}
	return NewDateRange(lo, hi), true
}
