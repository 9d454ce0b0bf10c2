// Package geo joins per-department case counts onto GeoJSON boundaries for choropleth maps.
package geo

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// DefaultCodeWidth is the digit count of a DANE department code ("05", "27").
const DefaultCodeWidth = 2

// CasesProperty is the feature property that receives the joined count.
const CasesProperty = "cases"

// ErrMissingCodeProperty is returned when a boundary feature has no join code.
var ErrMissingCodeProperty = errors.New("feature has no code property")

// Boundaries is a parsed boundary collection keyed by a feature property.
type Boundaries struct {
	CodeProperty string
	Width        int

	collection *geojson.FeatureCollection
}

// LoadBoundaries parses a FeatureCollection and checks every feature carries codeProperty.
func LoadBoundaries(data []byte, codeProperty string) (*Boundaries, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	for i, f := range fc.Features {
		if _, ok := f.Properties[codeProperty]; !ok {
			return nil, fmt.Errorf("%w: feature %d lacks %q", ErrMissingCodeProperty, i, codeProperty)
		}
	}
	return &Boundaries{CodeProperty: codeProperty, Width: DefaultCodeWidth, collection: fc}, nil
}

// LoadBoundariesFile reads and parses a GeoJSON file.
func LoadBoundariesFile(path, codeProperty string) (*Boundaries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	return LoadBoundaries(data, codeProperty)
}

// Len returns the number of boundary features.
func (b *Boundaries) Len() int { return len(b.collection.Features) }

// Codes returns the normalized code of every feature, in file order.
func (b *Boundaries) Codes() []string {
	codes := make([]string, len(b.collection.Features))
	for i, f := range b.collection.Features {
		codes[i] = b.code(f)
	}
	return codes
}

func (b *Boundaries) code(f *geojson.Feature) string {
	return NormalizeCode(f.Properties[b.CodeProperty], b.Width)
}

// Map is a choropleth-ready collection.
type Map struct {
	Features  *geojson.FeatureCollection `json:"features"`
	Max       int                        `json:"max"`
	Total     int                        `json:"total"`
	Unmatched []string                   `json:"unmatched"` // codes with cases but no boundary
}

// Choropleth copies the boundaries and sets CasesProperty on each feature from counts.
// Features without cases get 0. The receiver is not modified.
func (b *Boundaries) Choropleth(counts map[string]int) *Map {
	normalized := make(map[string]int, len(counts))
	for raw, n := range counts {
		code := NormalizeCode(raw, b.Width)
		if code == "" {
			continue
		}
		normalized[code] += n
	}

	out := geojson.NewFeatureCollection()
	m := &Map{Features: out, Unmatched: []string{}}
	matched := make(map[string]bool, len(b.collection.Features))

	for _, src := range b.collection.Features {
		f := geojson.NewFeature(src.Geometry)
		f.ID = src.ID
		f.BBox = src.BBox
		f.Properties = src.Properties.Clone()

		code := b.code(src)
		n := normalized[code]
		matched[code] = true
		f.Properties[CasesProperty] = n
		if n > m.Max {
			m.Max = n
		}
		m.Total += n
		out.Append(f)
	}

	for code := range normalized {
		if !matched[code] {
			m.Unmatched = append(m.Unmatched, code)
		}
	}
	sort.Strings(m.Unmatched)
	return m
}

// NormalizeCode renders a code property as text and zero-pads numeric codes to width.
// Missing or empty values yield "".
func NormalizeCode(v interface{}, width int) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	default:
		s = strings.TrimSpace(fmt.Sprint(t))
	}
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f == float64(int64(f)) {
		s = strconv.FormatInt(int64(f), 10)
		if len(s) < width {
			s = strings.Repeat("0", width-len(s)) + s
		}
	}
	return s
}
