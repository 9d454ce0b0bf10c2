package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spektr-org/sivigila/config"
	"github.com/spektr-org/sivigila/engine"
)

// Outputs selectable with --output.
const (
	outputDashboard   = "dashboard"
	outputRecords     = "records"
	outputDepartments = "departments"
	outputTimeSeries  = "timeseries"
	outputCategory    = "category"
	outputPivot       = "pivot"
)

type summaryFlags struct {
	file           string
	start, end     string
	departments    []string
	municipalities []string
	category       string
	pivot          []string
	bucket         string
	limit          int
	offset         int
	format         string
	output         string
	outFile        string
}

func newSummaryCommand() *cobra.Command {
	var f summaryFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Filter cases and print one dashboard output",
		Example: `  sivigila summary --file casos.json --department Antioquia --format text
  sivigila summary --start 2023-01-01 --end 2023-06-30 --output pivot --pivot sex,area --format csv --out pivot.csv
  sivigila summary --output timeseries --bucket week --format pretty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runSummary(cmd, cfg, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.file, "file", "", "Data file (default DATA_PATH or the configured store)")
	fl.StringVar(&f.start, "start", "", "First consultation date, YYYY-MM-DD (default earliest)")
	fl.StringVar(&f.end, "end", "", "Last consultation date, YYYY-MM-DD (default latest)")
	fl.StringArrayVar(&f.departments, "department", nil, "Department to include, repeatable (default all)")
	fl.StringArrayVar(&f.municipalities, "municipality", nil, "Municipality to include, repeatable (default all)")
	fl.StringVar(&f.category, "category", "", "Category chart dimension: sex, hospitalization_status, area")
	fl.StringSliceVar(&f.pivot, "pivot", nil, "Pivot column dimensions")
	fl.StringVar(&f.bucket, "bucket", "", "Time series bucket: day, week, month")
	fl.IntVar(&f.limit, "limit", 0, "Record table page size")
	fl.IntVar(&f.offset, "offset", 0, "Record table offset")
	fl.StringVar(&f.format, "format", "json", "Output format: json, pretty, text, csv")
	fl.StringVar(&f.output, "output", outputDashboard, "What to print: dashboard, records, departments, timeseries, category, pivot")
	fl.StringVar(&f.outFile, "out", "", "Write output to file instead of stdout")
	return cmd
}

func runSummary(cmd *cobra.Command, cfg config.Config, f summaryFlags) error {
	ds, err := loadDataset(cmd.Context(), cfg, f.file)
	if err != nil {
		return err
	}
	view := ds.View()

	req, err := f.request(view)
	if err != nil {
		return err
	}
	dash, err := engine.Execute(req, view, cfg.EngineOptions()...)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if f.outFile != "" {
		file, err := os.Create(f.outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		w = file
	}

	if err := render(w, dash, f.output, f.format); err != nil {
		return err
	}
	if f.outFile != "" {
		log.Printf("📄 %s written to %s", f.output, f.outFile)
	}
	return nil
}

// request turns the flags into an engine request. Missing dates default to the data's bounds.
func (f summaryFlags) request(view engine.RecordView) (engine.Request, error) {
	bounds, _ := engine.DateBounds(view, engine.KeyConsultationDate)
	start, err := parseFlagDate("start", f.start, bounds.Start)
	if err != nil {
		return engine.Request{}, err
	}
	end, err := parseFlagDate("end", f.end, bounds.End)
	if err != nil {
		return engine.Request{}, err
	}

	req := engine.Request{
		Criteria: engine.Criteria{
			DateRange:      engine.NewDateRange(start, end),
			Departments:    engine.AllRegions(),
			Municipalities: engine.AllRegions(),
		},
		Category:     f.category,
		PivotColumns: f.pivot,
		Bucket:       f.bucket,
		Offset:       f.offset,
		Limit:        f.limit,
	}
	if len(f.departments) > 0 {
		req.Criteria.Departments = engine.SpecificRegions(f.departments...)
	}
	if len(f.municipalities) > 0 {
		req.Criteria.Municipalities = engine.SpecificRegions(f.municipalities...)
	}
	return req, nil
}

func parseFlagDate(name, v string, def time.Time) (time.Time, error) {
	if v == "" {
		return def, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", name, v)
	}
	return t, nil
}
