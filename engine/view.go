package engine

import (
	"sort"
	"time"
)

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns consumer data. It reads through this interface.
//
// Implementations:
//   SliceView      — wraps []Record (tests, ad-hoc data)
//   DomainView[T]  — reads typed structs via accessor functions (zero-copy)
//   SubView        — filtered subset (indices into parent, zero-copy)
//
// Consumers register accessors once at init; engine reads on every request.
// ============================================================================

// RecordView provides indexed access to a dataset.
// The engine calls Dimension/Date in tight loops — keep implementations fast.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Date(index int, key string) (time.Time, bool)
	DimensionKeys() []string // available dimension keys
	DateKeys() []string      // available date keys
}

// ============================================================================
// SLICE VIEW — wraps []Record
// ============================================================================

// SliceView wraps a []Record slice as a RecordView.
type SliceView struct {
	records  []Record
	dimKeys  []string
	dateKeys []string
}

// NewSliceView creates a RecordView from a []Record slice.
func NewSliceView(records []Record) RecordView {
	v := &SliceView{records: records}
	v.cacheKeys()
	return v
}

func (v *SliceView) cacheKeys() {
	dimSeen := make(map[string]bool)
	dateSeen := make(map[string]bool)
	for _, r := range v.records {
		for k := range r.Dimensions {
			if !dimSeen[k] {
				dimSeen[k] = true
				v.dimKeys = append(v.dimKeys, k)
			}
		}
		for k := range r.Dates {
			if !dateSeen[k] {
				dateSeen[k] = true
				v.dateKeys = append(v.dateKeys, k)
			}
		}
	}
	sort.Strings(v.dimKeys)
	sort.Strings(v.dateKeys)
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.records) {
		return ""
	}
	return v.records[i].Dimensions[key]
}

func (v *SliceView) Date(i int, key string) (time.Time, bool) {
	if i < 0 || i >= len(v.records) {
		return time.Time{}, false
	}
	t, ok := v.records[i].Dates[key]
	return t, ok
}

func (v *SliceView) DimensionKeys() []string { return v.dimKeys }
func (v *SliceView) DateKeys() []string      { return v.dateKeys }

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent — no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	// Flatten nested sub views so lookups stay one hop from the data.
	if sv, ok := parent.(*SubView); ok {
		flat := make([]int, len(indices))
		for i, idx := range indices {
			flat[i] = sv.indices[idx]
		}
		return &SubView{parent: sv.parent, indices: flat}
	}
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Date(i int, key string) (time.Time, bool) {
	if i < 0 || i >= len(v.indices) {
		return time.Time{}, false
	}
	return v.parent.Date(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) DateKeys() []string      { return v.parent.DateKeys() }

// Indices returns the root-view positions of every record in view.
// For a view that is not a SubView this is 0..Len()-1.
func Indices(view RecordView) []int {
	if sv, ok := view.(*SubView); ok {
		out := make([]int, len(sv.indices))
		copy(out, sv.indices)
		return out
	}
	out := make([]int, view.Len())
	for i := range out {
		out[i] = i
	}
	return out
}

// ============================================================================
// DOMAIN ADAPTER — Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := engine.NewDomainAdapter[Case]().
//	    Dimension(engine.KeyDepartment, func(c Case) string { return c.Department }).
//	    Date(engine.KeyConsultationDate, func(c Case) (time.Time, bool) { return c.Consultation.Get() })
//
//	view := adapter.Bind(cases)
//	filtered := engine.ApplyFilters(view, criteria)
//
// ============================================================================

// DomainAdapter builds a RecordView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	dimOrder  []string
	dateOrder []string
	dims      map[string]func(T) string
	dates     map[string]func(T) (time.Time, bool)
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		dims:  make(map[string]func(T) string),
		dates: make(map[string]func(T) (time.Time, bool)),
	}
}

// Dimension registers a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, exists := a.dims[key]; !exists {
		a.dimOrder = append(a.dimOrder, key)
	}
	a.dims[key] = fn
	return a
}

// Date registers a date accessor.
func (a *DomainAdapter[T]) Date(key string, fn func(T) (time.Time, bool)) *DomainAdapter[T] {
	if _, exists := a.dates[key]; !exists {
		a.dateOrder = append(a.dateOrder, key)
	}
	a.dates[key] = fn
	return a
}

// Bind creates a RecordView from a data slice. Zero-copy — holds reference.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{
		data:     data,
		dims:     a.dims,
		dates:    a.dates,
		dimKeys:  a.dimOrder,
		dateKeys: a.dateOrder,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data     []T
	dims     map[string]func(T) string
	dates    map[string]func(T) (time.Time, bool)
	dimKeys  []string
	dateKeys []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.data) {
		return ""
	}
	if fn, ok := v.dims[key]; ok {
		return fn(v.data[i])
	}
	return ""
}

func (v *DomainView[T]) Date(i int, key string) (time.Time, bool) {
	if i < 0 || i >= len(v.data) {
		return time.Time{}, false
	}
	if fn, ok := v.dates[key]; ok {
		return fn(v.data[i])
	}
	return time.Time{}, false
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) DateKeys() []string      { return v.dateKeys }
