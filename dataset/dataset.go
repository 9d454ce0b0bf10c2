// Package dataset loads SIVIGILA case exports into an immutable, engine-ready snapshot.
package dataset

import (
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/sivigila/engine"
)

// Dataset is an immutable snapshot of cases. It is built once and only read afterwards;
// a reload builds a new Dataset rather than changing this one.
type Dataset struct {
	ID       uuid.UUID
	Source   string
	LoadedAt time.Time

	cases []Case
	view  engine.RecordView
}

// New copies cases into a fresh snapshot.
func New(cases []Case, source string) *Dataset {
	owned := make([]Case, len(cases))
	copy(owned, cases)
	return &Dataset{
		ID:       uuid.New(),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		cases:    owned,
		view:     caseAdapter.Bind(owned),
	}
}

// View exposes the snapshot to the engine.
func (d *Dataset) View() engine.RecordView { return d.view }

// Len returns the number of cases.
func (d *Dataset) Len() int { return len(d.cases) }

// Case returns the i-th case by value.
func (d *Dataset) Case(i int) Case { return d.cases[i] }

// Cases returns a copy of every case.
func (d *Dataset) Cases() []Case {
	out := make([]Case, len(d.cases))
	copy(out, d.cases)
	return out
}
