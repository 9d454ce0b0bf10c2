package dataset

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/spektr-org/sivigila/engine"
)

// Case is one SIVIGILA surveillance record. JSON tags follow the export column names.
type Case struct {
	Index          Text `json:"index"`
	Department     Text `json:"Departamento_ocurrencia"`
	Municipality   Text `json:"Municipio_ocurrencia"`
	DepartmentCode Text `json:"COD_DPTO_O"`
	Sex            Text `json:"SEXO"`
	Hospitalized   Text `json:"PAC_HOS"`
	Area           Text `json:"AREA"`
	Consultation   Date `json:"FEC_CON"`
	SymptomOnset   Date `json:"INI_SIN"`
}

// caseAdapter binds Case fields to the engine's canonical keys.
var caseAdapter = engine.NewDomainAdapter[Case]().
	Dimension(engine.KeyDepartment, func(c Case) string { return string(c.Department) }).
	Dimension(engine.KeyMunicipality, func(c Case) string { return string(c.Municipality) }).
	Dimension(engine.KeyDepartmentCode, func(c Case) string { return string(c.DepartmentCode) }).
	Dimension(engine.KeySex, func(c Case) string { return string(c.Sex) }).
	Dimension(engine.KeyHospitalization, func(c Case) string { return string(c.Hospitalized) }).
	Dimension(engine.KeyArea, func(c Case) string { return string(c.Area) }).
	Date(engine.KeyConsultationDate, func(c Case) (time.Time, bool) { return c.Consultation.Get() }).
	Date(engine.KeySymptomOnset, func(c Case) (time.Time, bool) { return c.SymptomOnset.Get() })

// SourceColumns maps engine keys to the export column each one is read from.
var SourceColumns = map[string]string{
	engine.KeyDepartment:       "Departamento_ocurrencia",
	engine.KeyMunicipality:     "Municipio_ocurrencia",
	engine.KeyDepartmentCode:   "COD_DPTO_O",
	engine.KeySex:              "SEXO",
	engine.KeyHospitalization:  "PAC_HOS",
	engine.KeyArea:             "AREA",
	engine.KeyConsultationDate: "FEC_CON",
	engine.KeySymptomOnset:     "INI_SIN",
}

// ============================================================================
// TEXT — categorical value that may arrive as a string, a number, or null
// ============================================================================

// Text is a trimmed categorical value. Missing values are empty.
type Text string

// UnmarshalJSON accepts strings, numbers (1.0 → "1") and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ParseText(s)
		return nil
	}
	*t = ParseText(string(data))
	return nil
}

// ParseText trims a raw value and renders whole numbers without decimals.
func ParseText(raw string) Text {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) && strings.ContainsAny(s, ".eE") {
		return Text(strconv.FormatInt(int64(f), 10))
	}
	return Text(s)
}

// ============================================================================
// DATE — calendar date that may be missing or unparseable
// ============================================================================

// Date is a calendar date. Invalid dates are treated as missing.
type Date struct {
	Time  time.Time
	Valid bool
}

// NewDate wraps a valid time, truncated to its calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// Get returns the date and whether it is present.
func (d Date) Get() (time.Time, bool) {
	return d.Time, d.Valid
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"02/01/2006 15:04:05",
}

// ParseDate coerces a raw value to a Date. Anything unparseable is missing.
func ParseDate(raw string) Date {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t)
		}
	}
	return Date{}
}

// UnmarshalJSON accepts date strings, epoch milliseconds and null. It never fails.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*d = Date{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*d = ParseDate(s)
		}
		return nil
	}
	if ms, err := strconv.ParseFloat(string(data), 64); err == nil {
		*d = NewDate(time.UnixMilli(int64(ms)).UTC())
	}
	return nil
}

// MarshalJSON writes the date as YYYY-MM-DD, or null when missing.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}
