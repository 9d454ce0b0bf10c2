// Package sivigila filters and aggregates SIVIGILA surveillance cases into
// render-ready dashboard outputs.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/sivigila/dataset"
//	    "github.com/spektr-org/sivigila/engine"
//	)
//
//	ds, err := dataset.LoadFile("casos.json")
//	dash, err := engine.Execute(engine.Request{
//	    Criteria: engine.Criteria{
//	        DateRange:      engine.NewDateRange(start, end),
//	        Departments:    engine.SpecificRegions("Antioquia"),
//	        Municipalities: engine.AllRegions(),
//	    },
//	}, ds.View(), engine.WithTopN(10))
//
// The engine reads cases through a zero-copy RecordView and returns chart
// configs, tables and a text summary. The server package exposes the same
// outputs as a JSON API; geo joins department counts onto GeoJSON boundaries.
// The engine never calls any external service; all computation is local.
package sivigila
