package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ============================================================================
// CSV HELPER — Parses CSV exports into []Case
// ============================================================================
// Header names are matched case-insensitively against the export column
// names. Unmapped columns are skipped, malformed rows are skipped.
// ============================================================================

type caseField func(c *Case, val string)

var csvFields = map[string]caseField{
	"index":                   func(c *Case, v string) { c.Index = ParseText(v) },
	"departamento_ocurrencia": func(c *Case, v string) { c.Department = ParseText(v) },
	"municipio_ocurrencia":    func(c *Case, v string) { c.Municipality = ParseText(v) },
	"cod_dpto_o":              func(c *Case, v string) { c.DepartmentCode = ParseText(v) },
	"sexo":                    func(c *Case, v string) { c.Sex = ParseText(v) },
	"pac_hos":                 func(c *Case, v string) { c.Hospitalized = ParseText(v) },
	"area":                    func(c *Case, v string) { c.Area = ParseText(v) },
	"fec_con":                 func(c *Case, v string) { c.Consultation = ParseDate(v) },
	"ini_sin":                 func(c *Case, v string) { c.SymptomOnset = ParseDate(v) },
}

// DecodeCSV parses CSV with a header row into cases.
func DecodeCSV(r io.Reader) ([]Case, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	mappings := make([]caseField, len(headers))
	for i, h := range headers {
		mappings[i] = csvFields[toSnakeCase(h)]
	}

	var cases []Case
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		var c Case
		for i, val := range row {
			if i >= len(mappings) {
				break
			}
			if set := mappings[i]; set != nil {
				set(&c, val)
			}
		}
		cases = append(cases, c)
	}

	return cases, nil
}

// toSnakeCase converts "Column Name" → "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
