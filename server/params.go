package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spektr-org/sivigila/engine"
)

const dateLayout = "2006-01-02"

// paramError is a request problem reported back as a 400.
type paramError struct {
	code  string
	field string
	msg   string
}

func (e *paramError) Error() string { return e.field + ": " + e.msg }

// dashboardRequest is the POST /dashboard body. A null or missing region list means
// every region; an empty list selects nothing.
type dashboardRequest struct {
	Start          string   `json:"start"`
	End            string   `json:"end"`
	Departments    []string `json:"departments"`
	Municipalities []string `json:"municipalities"`
	Category       string   `json:"category"`
	PivotColumns   []string `json:"pivotColumns"`
	Bucket         string   `json:"bucket"`
	Offset         int      `json:"offset"`
	Limit          int      `json:"limit"`
}

// toRequest resolves the body against the current view's date bounds.
func (b dashboardRequest) toRequest(view engine.RecordView) (engine.Request, error) {
	rng, err := dateRange(view, b.Start, b.End)
	if err != nil {
		return engine.Request{}, err
	}
	if b.Offset < 0 || b.Limit < 0 {
		return engine.Request{}, &paramError{code: ErrorCodeValueOutOfRange, field: "offset/limit", msg: "must not be negative"}
	}
	return engine.Request{
		Criteria: engine.Criteria{
			DateRange:      rng,
			Departments:    regions(b.Departments, b.Departments != nil),
			Municipalities: regions(b.Municipalities, b.Municipalities != nil),
		},
		Category:     b.Category,
		PivotColumns: b.PivotColumns,
		Bucket:       b.Bucket,
		Offset:       b.Offset,
		Limit:        b.Limit,
	}, nil
}

// queryRequest reads criteria and paging from the query string.
func queryRequest(c *gin.Context, view engine.RecordView) (engine.Request, error) {
	body := dashboardRequest{
		Start:        c.Query("start"),
		End:          c.Query("end"),
		Category:     c.Query("category"),
		PivotColumns: splitValues(c.QueryArray("columns")),
		Bucket:       c.Query("bucket"),
	}
	if vals, ok := c.GetQueryArray("department"); ok {
		body.Departments = nonNil(regionValues(vals))
	}
	if vals, ok := c.GetQueryArray("municipality"); ok {
		body.Municipalities = nonNil(regionValues(vals))
	}

	var err error
	if body.Offset, err = queryInt(c, "offset"); err != nil {
		return engine.Request{}, err
	}
	if body.Limit, err = queryInt(c, "limit"); err != nil {
		return engine.Request{}, err
	}
	return body.toRequest(view)
}

// dateRange parses start/end; a missing end point defaults to the dataset's
// consultation-date bound.
func dateRange(view engine.RecordView, start, end string) (engine.DateRange, error) {
	bounds, _ := engine.DateBounds(view, engine.KeyConsultationDate)
	lo, hi := bounds.Start, bounds.End

	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return engine.DateRange{}, &paramError{code: ErrorCodeInvalidDate, field: "start", msg: "expected YYYY-MM-DD"}
		}
		lo = t
	}
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return engine.DateRange{}, &paramError{code: ErrorCodeInvalidDate, field: "end", msg: "expected YYYY-MM-DD"}
		}
		hi = t
	}
	return engine.NewDateRange(lo, hi), nil
}

func regions(values []string, present bool) engine.RegionSelection {
	if !present {
		return engine.AllRegions()
	}
	return engine.SpecificRegions(values...)
}

// regionValues takes repeated parameters as-is. Region names may contain commas
// ("Bogotá, D.C."), so they are never split.
func regionValues(values []string) []string {
	var out []string
	for _, v := range values {
		if p := strings.TrimSpace(v); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitValues accepts repeated parameters and comma-separated lists of dimension keys.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &paramError{code: ErrorCodeValidation, field: key, msg: "must be an integer"}
	}
	return n, nil
}

// respondRequestError maps parameter and engine errors to 400 responses.
func respondRequestError(c *gin.Context, err error) {
	var pe *paramError
	switch {
	case errors.As(err, &pe):
		RespondWithError(c, http.StatusBadRequest, pe.code, "Invalid request parameter", gin.H{pe.field: pe.msg})
	case errors.Is(err, engine.ErrInvalidDateRange):
		RespondWithError(c, http.StatusBadRequest, ErrorCodeValidation, "start must not be after end", nil)
	case errors.Is(err, engine.ErrUnknownDimension):
		RespondWithError(c, http.StatusBadRequest, ErrorCodeInvalidEnum, "Unknown dimension", gin.H{"reason": err.Error(), "allowed": engine.CategoryKeys})
	default:
		RespondWithError(c, http.StatusInternalServerError, ErrorCodeInternalServerError, fmt.Sprintf("request failed: %v", err), nil)
	}
}
