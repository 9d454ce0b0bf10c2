package dataset

import "sync/atomic"

// Holder keeps the current snapshot. Readers take the pointer once per request;
// a reload swaps in a new snapshot without touching the old one.
type Holder struct {
	current atomic.Pointer[Dataset]
}

// NewHolder starts with ds as the current snapshot.
func NewHolder(ds *Dataset) *Holder {
	h := &Holder{}
	h.current.Store(ds)
	return h
}

// Current returns the snapshot in use.
func (h *Holder) Current() *Dataset { return h.current.Load() }

// Swap installs ds and returns the previous snapshot.
func (h *Holder) Swap(ds *Dataset) *Dataset { return h.current.Swap(ds) }
