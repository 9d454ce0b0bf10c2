package schema

// ============================================================================
// SCHEMA — Describes the shape of the loaded case dataset
// ============================================================================
// Built from a RecordView after every load so clients can discover which
// dimensions exist, how many values they carry, and which dates are usable.
// ============================================================================

// Config describes the complete shape of a dataset.
type Config struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
	Rows   int    `json:"rows"`

	Dimensions []DimensionMeta `json:"dimensions"`
	Dates      []DateMeta      `json:"dates"`
}

// DimensionMeta describes a string field used for grouping/filtering.
type DimensionMeta struct {
	Key             string   `json:"key"`
	DisplayName     string   `json:"displayName"`
	SourceColumn    string   `json:"sourceColumn,omitempty"`
	SampleValues    []string `json:"sampleValues"`
	UniqueCount     int      `json:"uniqueCount"`
	MissingCount    int      `json:"missingCount"`
	Groupable       bool     `json:"groupable"`
	Filterable      bool     `json:"filterable"`
	Parent          string   `json:"parent,omitempty"` // Parent dimension key for hierarchies
	CardinalityHint string   `json:"cardinalityHint"`  // "low", "medium", "high"
}

// DateMeta describes a calendar-date field.
type DateMeta struct {
	Key          string `json:"key"`
	DisplayName  string `json:"displayName"`
	SourceColumn string `json:"sourceColumn,omitempty"`
	Min          string `json:"min,omitempty"`
	Max          string `json:"max,omitempty"`
	MissingCount int    `json:"missingCount"`
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// Dimension looks up a dimension by key.
func (c Config) Dimension(key string) (DimensionMeta, bool) {
	for _, d := range c.Dimensions {
		if d.Key == key {
			return d, true
		}
	}
	return DimensionMeta{}, false
}
