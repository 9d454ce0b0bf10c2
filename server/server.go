// Package server exposes the case dashboard as a JSON API.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/spektr-org/sivigila/dataset"
	"github.com/spektr-org/sivigila/engine"
	"github.com/spektr-org/sivigila/geo"
)

// API serves the current dataset snapshot. Each request reads the snapshot once,
// so a concurrent reload never mixes two datasets in one response.
type API struct {
	holder     *dataset.Holder
	boundaries *geo.Boundaries
	opts       []engine.Option
}

// New builds an API. boundaries may be nil, in which case /map answers 503.
func New(holder *dataset.Holder, boundaries *geo.Boundaries, opts ...engine.Option) *API {
	return &API{holder: holder, boundaries: boundaries, opts: opts}
}

// NewRouter returns a gin engine with logging, recovery, request ids and every route.
func (a *API) NewRouter() *gin.Engine {
	r := gin.Default()
	r.Use(RequestID())
	a.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API under /api/v1.
func (a *API) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/healthz", a.Health)
		v1.GET("/schema", a.Schema)

		options := v1.Group("/options")
		{
			options.GET("/departments", a.DepartmentOptions)
			options.GET("/municipalities", a.MunicipalityOptions)
			options.GET("/dates", a.DateOptions)
		}

		v1.GET("/cases", a.ListCases)

		aggregates := v1.Group("/aggregates")
		{
			aggregates.GET("/departments", a.CasesByDepartment)
			aggregates.GET("/timeseries", a.TimeSeries)
			aggregates.GET("/categories/:dimension", a.CasesByCategory)
		}

		v1.GET("/pivot", a.Pivot)
		v1.GET("/map", a.Map)
		v1.POST("/dashboard", a.Dashboard)
	}
}

func (a *API) view() (*dataset.Dataset, engine.RecordView) {
	ds := a.holder.Current()
	return ds, ds.View()
}
