package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spektr-org/sivigila/dataset"
	"github.com/spektr-org/sivigila/engine"
	"github.com/spektr-org/sivigila/geo"
	"github.com/spektr-org/sivigila/schema"
)

// Health reports the snapshot being served.
func (a *API) Health(c *gin.Context) {
	ds, _ := a.view()
	RespondWithSuccess(c, http.StatusOK, gin.H{
		"status":   "ok",
		"dataset":  ds.ID,
		"source":   ds.Source,
		"cases":    ds.Len(),
		"loadedAt": ds.LoadedAt.Format(time.RFC3339),
	})
}

// Schema profiles the dimensions and dates of the current snapshot.
func (a *API) Schema(c *gin.Context) {
	ds, view := a.view()
	RespondWithSuccess(c, http.StatusOK, schema.Describe("sivigila", ds.Source, view, dataset.SourceColumns))
}

// DepartmentOptions lists every department with the ALL choice first.
func (a *API) DepartmentOptions(c *gin.Context) {
	_, view := a.view()
	RespondWithSuccess(c, http.StatusOK, gin.H{"options": engine.DepartmentOptions(view)})
}

// MunicipalityOptions lists the municipalities of the selected departments.
// Without a department parameter every municipality is offered.
func (a *API) MunicipalityOptions(c *gin.Context) {
	_, view := a.view()
	sel := engine.AllRegions()
	if vals, ok := c.GetQueryArray("department"); ok {
		sel = engine.SpecificRegions(regionValues(vals)...)
	}
	RespondWithSuccess(c, http.StatusOK, gin.H{"options": engine.MunicipalityOptions(view, sel)})
}

// DateOptions returns the consultation-date bounds used as the default range.
func (a *API) DateOptions(c *gin.Context) {
	_, view := a.view()
	bounds, ok := engine.DateBounds(view, engine.KeyConsultationDate)
	if !ok {
		RespondWithError(c, http.StatusNotFound, ErrorCodeNoData, "No case carries a consultation date", nil)
		return
	}
	RespondWithSuccess(c, http.StatusOK, gin.H{
		"start": bounds.Start.Format(dateLayout),
		"end":   bounds.End.Format(dateLayout),
	})
}

// ListCases returns one page of the filtered cases.
func (a *API) ListCases(c *gin.Context) {
	req, filtered, ok := a.filter(c)
	if !ok {
		return
	}
	RespondWithSuccess(c, http.StatusOK, gin.H{
		"count": filtered.Len(),
		"table": engine.BuildRecordTable("Casos", filtered, req.Offset, req.Limit),
	})
}

// CasesByDepartment returns the department ranking chart.
func (a *API) CasesByDepartment(c *gin.Context) {
	_, filtered, ok := a.filter(c)
	if !ok {
		return
	}
	top, err := queryInt(c, "top")
	if err != nil || top < 0 {
		RespondWithError(c, http.StatusBadRequest, ErrorCodeValueOutOfRange, "top must be a non-negative integer", nil)
		return
	}
	groups := engine.CountBy(filtered, engine.KeyDepartment, engine.SortValueAsc)
	groups = engine.Top(groups, top)
	RespondWithSuccess(c, http.StatusOK, gin.H{
		"groups": groups,
		"chart":  engine.BuildBarChart("Casos por departamento", engine.KeyDepartment, groups),
	})
}

// TimeSeries returns symptom-onset counts per bucket as an area chart.
func (a *API) TimeSeries(c *gin.Context) {
	req, filtered, ok := a.filter(c)
	if !ok {
		return
	}
	groups := engine.CountByDate(filtered, engine.KeySymptomOnset, req.Bucket)
	RespondWithSuccess(c, http.StatusOK, gin.H{
		"bucket": req.Bucket,
		"groups": groups,
		"chart":  engine.BuildAreaChart("Series de tiempo", engine.KeySymptomOnset, groups, req.Criteria.DateRange),
	})
}

// CasesByCategory returns the distribution of one category dimension.
func (a *API) CasesByCategory(c *gin.Context) {
	dim := c.Param("dimension")
	if !engine.IsCategoryKey(dim) {
		RespondWithError(c, http.StatusBadRequest, ErrorCodeInvalidEnum, "Unknown category dimension", gin.H{"dimension": dim, "allowed": engine.CategoryKeys})
		return
	}
	_, filtered, ok := a.filter(c)
	if !ok {
		return
	}
	groups := engine.CountBy(filtered, dim, engine.SortLabelAsc)
	RespondWithSuccess(c, http.StatusOK, gin.H{
		"dimension": dim,
		"groups":    groups,
		"chart":     engine.BuildBarChart("Distribución por "+engine.LabelForDimension(dim), dim, groups),
	})
}

// Pivot cross-tabulates departments against the requested columns.
func (a *API) Pivot(c *gin.Context) {
	req, filtered, ok := a.filter(c)
	if !ok {
		return
	}
	p, err := engine.BuildPivot(filtered, engine.KeyDepartment, req.PivotColumns)
	if err != nil {
		respondRequestError(c, err)
		return
	}
	RespondWithSuccess(c, http.StatusOK, gin.H{
		"pivot": p,
		"table": engine.BuildPivotTable("Tabla resumen", p),
		"chart": engine.BuildPivotChart("Tabla resumen", p),
	})
}

// Map joins department-code counts onto the boundary collection.
func (a *API) Map(c *gin.Context) {
	if a.boundaries == nil {
		RespondWithError(c, http.StatusServiceUnavailable, ErrorCodeServiceUnavailable, "No boundary file configured", nil)
		return
	}
	_, filtered, ok := a.filter(c)
	if !ok {
		return
	}
	counts := engine.CountBy(filtered, engine.KeyDepartmentCode, engine.SortLabelAsc).Map()
	RespondWithSuccess(c, http.StatusOK, a.boundaries.Choropleth(counts))
}

// dashboardResponse adds the choropleth to the engine output when boundaries are loaded.
type dashboardResponse struct {
	*engine.Dashboard
	Map *geo.Map `json:"map,omitempty"`
}

// Dashboard computes every output for one request body.
func (a *API) Dashboard(c *gin.Context) {
	var body dashboardRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondWithError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}
	_, view := a.view()
	req, err := body.toRequest(view)
	if err != nil {
		respondRequestError(c, err)
		return
	}
	dash, err := engine.Execute(req, view, a.opts...)
	if err != nil {
		respondRequestError(c, err)
		return
	}
	resp := dashboardResponse{Dashboard: dash}
	if a.boundaries != nil {
		resp.Map = a.boundaries.Choropleth(dash.DepartmentCodes)
	}
	RespondWithSuccess(c, http.StatusOK, resp)
}

// filter parses the query, normalizes it and applies the criteria to the current snapshot.
func (a *API) filter(c *gin.Context) (engine.Request, engine.RecordView, bool) {
	_, view := a.view()
	req, err := queryRequest(c, view)
	if err == nil {
		req, err = engine.NormalizeRequest(req, a.opts...)
	}
	if err != nil {
		respondRequestError(c, err)
		return req, nil, false
	}
	return req, engine.ApplyFilters(view, req.Criteria), true
}
