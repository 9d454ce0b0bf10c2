package engine

import "fmt"

// ============================================================================
// TEXT BUILDER — Headline summary of a filtered view
// ============================================================================

// BuildText produces the case count, consultation period and leading department.
func BuildText(view RecordView) *TextData {
	if view.Len() == 0 {
		return &TextData{
			Value:  "0",
			Count:  0,
			Period: DerivePeriod(view),
		}
	}

	data := &TextData{
		Value:  FormatInt(view.Len()),
		Count:  view.Len(),
		Period: DerivePeriod(view),
	}
	if ranked := CountBy(view, KeyDepartment, SortValueDesc); len(ranked) > 0 {
		data.Top = ranked[0].Label
	}
	return data
}

// Reply renders a one-line sentence from TextData.
func (t *TextData) Reply() string {
	if t.Count == 0 {
		return "No hay casos para los filtros seleccionados."
	}
	if t.Top == "" {
		return fmt.Sprintf("%s casos (%s).", t.Value, t.Period)
	}
	return fmt.Sprintf("%s casos (%s). Mayor número en %s.", t.Value, t.Period, t.Top)
}

// ============================================================================
// PERIOD HELPER
// ============================================================================

// DerivePeriod builds a human-readable consultation period from a view.
func DerivePeriod(view RecordView) string {
	if view.Len() == 0 {
		return "Sin datos"
	}
	rng, ok := DateBounds(view, KeyConsultationDate)
	if !ok {
		return "Sin fecha"
	}
	if rng.Start.Equal(rng.End) {
		return rng.Start.Format("2006-01-02")
	}
	return fmt.Sprintf("%s – %s", rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))
}
