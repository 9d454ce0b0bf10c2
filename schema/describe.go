package schema

import (
	"sort"

	"github.com/spektr-org/sivigila/engine"
)

// ============================================================================
// DESCRIBE — Profiles every dimension and date key of a view
// ============================================================================
// Flow:
//   1. Per dimension: unique values, missing count, samples, cardinality
//   2. Per date: min / max / missing
//   3. Hierarchies: A is parent of B when every B value maps to one A value
// ============================================================================

const maxSamples = 10

// Describe profiles view. columns maps engine keys to the export column they came from.
func Describe(name, source string, view engine.RecordView, columns map[string]string) *Config {
	cfg := &Config{
		Name:       name,
		Source:     source,
		Rows:       view.Len(),
		Dimensions: []DimensionMeta{},
		Dates:      []DateMeta{},
	}

	uniques := make(map[string]map[string]bool)
	for _, key := range view.DimensionKeys() {
		seen := make(map[string]bool)
		missing := 0
		for i := 0; i < view.Len(); i++ {
			v := view.Dimension(i, key)
			if v == "" {
				missing++
				continue
			}
			seen[v] = true
		}
		uniques[key] = seen
		cfg.Dimensions = append(cfg.Dimensions, DimensionMeta{
			Key:             key,
			DisplayName:     engine.LabelForDimension(key),
			SourceColumn:    columns[key],
			SampleValues:    collectSamples(seen, maxSamples),
			UniqueCount:     len(seen),
			MissingCount:    missing,
			Groupable:       true,
			Filterable:      key == engine.KeyDepartment || key == engine.KeyMunicipality,
			CardinalityHint: cardinalityHint(len(seen)),
		})
	}

	for _, key := range view.DateKeys() {
		meta := DateMeta{
			Key:          key,
			DisplayName:  engine.LabelForDimension(key),
			SourceColumn: columns[key],
		}
		if rng, ok := engine.DateBounds(view, key); ok {
			meta.Min = rng.Start.Format("2006-01-02")
			meta.Max = rng.End.Format("2006-01-02")
		}
		for i := 0; i < view.Len(); i++ {
			if _, ok := view.Date(i, key); !ok {
				meta.MissingCount++
			}
		}
		cfg.Dates = append(cfg.Dates, meta)
	}

	detectHierarchies(cfg.Dimensions, view, uniques)
	return cfg
}

func cardinalityHint(n int) string {
	switch {
	case n <= 10:
		return "low"
	case n <= 100:
		return "medium"
	default:
		return "high"
	}
}

// ============================================================================
// HIERARCHY DETECTION
// ============================================================================

// detectHierarchies finds parent/child relationships between dimensions.
// If every value of dimension B maps to exactly one value of dimension A,
// and A has fewer unique values, then A is parent of B.
// When multiple valid parents exist, picks the closest (highest cardinality).
func detectHierarchies(dimensions []DimensionMeta, view engine.RecordView, uniques map[string]map[string]bool) {
	for i := range dimensions {
		childKey := dimensions[i].Key
		bestParent := ""
		bestParentUniques := 0

		for j := range dimensions {
			if i == j {
				continue
			}
			parentKey := dimensions[j].Key

			// Parent must have fewer unique values than child
			if len(uniques[parentKey]) >= len(uniques[childKey]) {
				continue
			}

			childToParent := make(map[string]string)
			isHierarchy := true
			for r := 0; r < view.Len(); r++ {
				child := view.Dimension(r, childKey)
				parent := view.Dimension(r, parentKey)
				if child == "" || parent == "" {
					continue
				}
				if existing, ok := childToParent[child]; ok {
					if existing != parent {
						isHierarchy = false
						break
					}
				} else {
					childToParent[child] = parent
				}
			}

			if isHierarchy && len(childToParent) > 1 && len(uniques[parentKey]) > bestParentUniques {
				bestParent = parentKey
				bestParentUniques = len(uniques[parentKey])
			}
		}

		if bestParent != "" {
			dimensions[i].Parent = bestParent
		}
	}
}

// collectSamples picks up to max representative values.
func collectSamples(uniqueSet map[string]bool, max int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}

	// Sort for deterministic output
	sort.Strings(samples)

	if len(samples) > max {
		samples = samples[:max]
	}
	return samples
}
