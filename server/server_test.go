package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/sivigila/dataset"
	"github.com/spektr-org/sivigila/engine"
	"github.com/spektr-org/sivigila/geo"
	"github.com/spektr-org/sivigila/schema"
)

const boundariesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"DPTO": "05"}, "geometry": {"type": "Point", "coordinates": [-75.5, 6.2]}},
    {"type": "Feature", "properties": {"DPTO": "27"}, "geometry": {"type": "Point", "coordinates": [-76.6, 5.7]}}
  ]
}`

// TestMain puts gin in test mode for every test in the package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func date(s string) dataset.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return dataset.NewDate(t)
}

func fixtureCases() []dataset.Case {
	return []dataset.Case{
		{Department: "Antioquia", Municipality: "Medellín", DepartmentCode: "5", Sex: "M", Consultation: date("2023-01-10"), SymptomOnset: date("2023-01-08")},
		{Department: "Antioquia", Municipality: "Bello", DepartmentCode: "05", Sex: "F", Consultation: date("2023-02-01"), SymptomOnset: date("2023-01-30")},
		{Department: "Chocó", Municipality: "Quibdó", DepartmentCode: "27", Sex: "M", Consultation: date("2023-03-01"), SymptomOnset: date("2023-02-27")},
		{Department: "Antioquia", Municipality: "Medellín", DepartmentCode: "5", Sex: "F", SymptomOnset: date("2023-01-02")},
		{Department: "Valle del Cauca", Municipality: "Cali", DepartmentCode: "76", Sex: "F", Consultation: date("2023-01-20"), SymptomOnset: date("2023-01-18")},
	}
}

func newTestRouter(t *testing.T, withMap bool) *gin.Engine {
	t.Helper()
	holder := dataset.NewHolder(dataset.New(fixtureCases(), "fixture"))
	var boundaries *geo.Boundaries
	if withMap {
		var err error
		boundaries, err = geo.LoadBoundaries([]byte(boundariesGeoJSON), "DPTO")
		require.NoError(t, err)
	}
	return New(holder, boundaries, engine.WithTopN(0)).NewRouter()
}

func perform(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, false)
	w := perform(router, http.MethodGet, "/api/v1/healthz", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 5, body["cases"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	req.Header.Set(RequestIDHeader, "6f1c2b5e-8a77-4c3d-9a51-0e2f4b7d9c10")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "6f1c2b5e-8a77-4c3d-9a51-0e2f4b7d9c10", w.Header().Get(RequestIDHeader))
}

func TestSchema(t *testing.T) {
	router := newTestRouter(t, false)
	w := perform(router, http.MethodGet, "/api/v1/schema", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cfg schema.Config
	decode(t, w, &cfg)
	assert.Equal(t, 5, cfg.Rows)
	dept, ok := cfg.Dimension(engine.KeyDepartment)
	require.True(t, ok)
	assert.Equal(t, "Departamento_ocurrencia", dept.SourceColumn)
	assert.Equal(t, 3, dept.UniqueCount)
}

func TestOptions(t *testing.T) {
	router := newTestRouter(t, false)

	var depts struct{ Options []engine.Choice }
	w := perform(router, http.MethodGet, "/api/v1/options/departments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &depts)
	require.Len(t, depts.Options, 4)
	assert.True(t, depts.Options[0].All)
	assert.Equal(t, "Antioquia", depts.Options[1].Value)

	var munis struct{ Options []engine.Choice }
	w = perform(router, http.MethodGet, "/api/v1/options/municipalities?department=Antioquia", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &munis)
	require.Len(t, munis.Options, 3)
	assert.Equal(t, "Bello", munis.Options[1].Value)
	assert.Equal(t, "Medellín", munis.Options[2].Value)

	var dates map[string]string
	w = perform(router, http.MethodGet, "/api/v1/options/dates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &dates)
	assert.Equal(t, "2023-01-10", dates["start"])
	assert.Equal(t, "2023-03-01", dates["end"])
}

func TestListCases(t *testing.T) {
	router := newTestRouter(t, false)

	var all struct {
		Count int
		Table engine.TableData
	}
	w := perform(router, http.MethodGet, "/api/v1/cases", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &all)
	assert.Equal(t, 4, all.Count, "cases without a consultation date are excluded")

	var page struct {
		Count int
		Table engine.TableData
	}
	w = perform(router, http.MethodGet, "/api/v1/cases?department=Antioquia&start=2023-01-01&end=2023-01-31&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Equal(t, 1, page.Count)
	assert.Len(t, page.Table.Rows, 1)
}

func TestRegionNamesWithCommas(t *testing.T) {
	const sanAndres = "Archipiélago de San Andrés, Providencia y Santa Catalina"
	holder := dataset.NewHolder(dataset.New([]dataset.Case{
		{Department: sanAndres, Municipality: "San Andrés", Consultation: date("2023-01-10")},
		{Department: "Bogotá, D.C.", Municipality: "Bogotá, D.C.", Consultation: date("2023-01-11")},
		{Department: "Antioquia", Municipality: "Medellín", Consultation: date("2023-01-12")},
	}, "fixture"))
	router := New(holder, nil).NewRouter()

	var resp struct{ Count int }
	w := perform(router, http.MethodGet, "/api/v1/cases?department="+url.QueryEscape(sanAndres), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, 1, resp.Count)

	q := url.Values{"department": {sanAndres, "Bogotá, D.C."}}
	w = perform(router, http.MethodGet, "/api/v1/cases?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, 2, resp.Count)

	var munis struct{ Options []engine.Choice }
	w = perform(router, http.MethodGet, "/api/v1/options/municipalities?department="+url.QueryEscape(sanAndres), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &munis)
	require.Len(t, munis.Options, 2)
	assert.Equal(t, "San Andrés", munis.Options[1].Value)
}

func TestListCasesValidation(t *testing.T) {
	router := newTestRouter(t, false)

	tests := []struct {
		name string
		path string
		code string
	}{
		{"inverted range", "/api/v1/cases?start=2023-03-01&end=2023-01-01", ErrorCodeValidation},
		{"bad date", "/api/v1/cases?start=01-03-2023", ErrorCodeInvalidDate},
		{"bad limit", "/api/v1/cases?limit=ten", ErrorCodeValidation},
		{"negative offset", "/api/v1/cases?offset=-1", ErrorCodeValueOutOfRange},
		{"bad bucket", "/api/v1/aggregates/timeseries?bucket=year", ErrorCodeInvalidEnum},
		{"bad category", "/api/v1/aggregates/categories/department", ErrorCodeInvalidEnum},
		{"bad pivot column", "/api/v1/pivot?columns=municipality", ErrorCodeInvalidEnum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusBadRequest, w.Code)
			var apiErr APIError
			decode(t, w, &apiErr)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestEmptyDepartmentSelectionMatchesNothing(t *testing.T) {
	router := newTestRouter(t, false)

	var resp struct{ Count int }
	w := perform(router, http.MethodGet, "/api/v1/cases?department=", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, 0, resp.Count)
}

func TestAggregates(t *testing.T) {
	router := newTestRouter(t, false)

	var depts struct {
		Groups []engine.Group
		Chart  engine.ChartConfig
	}
	w := perform(router, http.MethodGet, "/api/v1/aggregates/departments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &depts)
	require.Len(t, depts.Groups, 3)
	assert.Equal(t, "Antioquia", depts.Groups[2].Key, "ascending by count")
	assert.Equal(t, 2, depts.Groups[2].Count)
	assert.Equal(t, "bar", depts.Chart.ChartType)

	w = perform(router, http.MethodGet, "/api/v1/aggregates/departments?top=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &depts)
	require.Len(t, depts.Groups, 1)

	var series struct {
		Bucket string
		Groups []engine.Group
	}
	w = perform(router, http.MethodGet, "/api/v1/aggregates/timeseries?bucket=month", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &series)
	assert.Equal(t, "month", series.Bucket)
	require.Len(t, series.Groups, 2)
	assert.Equal(t, "2023-01", series.Groups[0].Key)
	assert.Equal(t, 3, series.Groups[0].Count)

	var cats struct{ Groups []engine.Group }
	w = perform(router, http.MethodGet, "/api/v1/aggregates/categories/sex", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cats)
	assert.Equal(t, map[string]int{"F": 2, "M": 2}, engine.Aggregate(cats.Groups).Map())
}

func TestPivot(t *testing.T) {
	router := newTestRouter(t, false)

	var resp struct {
		Pivot engine.PivotTable
		Table engine.TableData
	}
	w := perform(router, http.MethodGet, "/api/v1/pivot?columns=sex", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, []string{"Antioquia", "Chocó", "Valle del Cauca"}, resp.Pivot.Rows)
	assert.Equal(t, [][]string{{"F"}, {"M"}}, resp.Pivot.Columns)
	assert.Equal(t, [][]int{{1, 1}, {0, 1}, {1, 0}}, resp.Pivot.Cells)
	assert.Len(t, resp.Table.Rows, 3)
}

func TestMap(t *testing.T) {
	w := perform(newTestRouter(t, false), http.MethodGet, "/api/v1/map", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var m struct {
		Features struct {
			Features []struct {
				Properties map[string]interface{}
			}
		}
		Max       int
		Unmatched []string
	}
	w = perform(newTestRouter(t, true), http.MethodGet, "/api/v1/map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &m)
	require.Len(t, m.Features.Features, 2)
	assert.EqualValues(t, 2, m.Features.Features[0].Properties["cases"])
	assert.EqualValues(t, 1, m.Features.Features[1].Properties["cases"])
	assert.Equal(t, []string{"76"}, m.Unmatched)
}

func TestDashboard(t *testing.T) {
	router := newTestRouter(t, true)

	var dash struct {
		Success      bool
		Count        int
		Reply        string
		ByDepartment *engine.ChartConfig
		PivotTable   *engine.TableData
		Map          *struct{ Max int }
	}
	w := perform(router, http.MethodPost, "/api/v1/dashboard", map[string]interface{}{
		"start":        "2023-01-01",
		"end":          "2023-12-31",
		"departments":  []string{"Antioquia", "Chocó"},
		"pivotColumns": []string{"sex"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &dash)
	assert.True(t, dash.Success)
	assert.Equal(t, 3, dash.Count)
	assert.NotEmpty(t, dash.Reply)
	require.NotNil(t, dash.ByDepartment)
	require.NotNil(t, dash.Map)
	assert.Equal(t, 2, dash.Map.Max)

	var none struct{ Count int }
	w = perform(router, http.MethodPost, "/api/v1/dashboard", `{"departments": []}`)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &none)
	assert.Equal(t, 0, none.Count)

	w = perform(router, http.MethodPost, "/api/v1/dashboard", `{"departments":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodPost, "/api/v1/dashboard", `{"category": "department"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReloadIsVisibleToNextRequest(t *testing.T) {
	holder := dataset.NewHolder(dataset.New(fixtureCases(), "fixture"))
	router := New(holder, nil).NewRouter()

	holder.Swap(dataset.New(fixtureCases()[:1], "reloaded"))

	var body map[string]interface{}
	w := perform(router, http.MethodGet, "/api/v1/healthz", nil)
	decode(t, w, &body)
	assert.EqualValues(t, 1, body["cases"])
	assert.Equal(t, "reloaded", body["source"])
}
