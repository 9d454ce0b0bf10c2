package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	TopN           int      // departments kept in the ranking chart (0 = all)
	TimeBucket     string   // bucket for the symptom-onset series
	Category       string   // category chart dimension when the request leaves it empty
	PivotColumns   []string // pivot columns when the request leaves them empty
	RecordPageSize int      // rows in the record table when the request leaves limit at 0
}

// WithTopN limits the department ranking chart to the n largest departments.
func WithTopN(n int) Option {
	return func(c *config) {
		c.TopN = n
	}
}

// WithTimeBucket sets the default bucket ("day", "week", "month") for the time series.
func WithTimeBucket(bucket string) Option {
	return func(c *config) {
		if IsBucket(bucket) {
			c.TimeBucket = bucket
		}
	}
}

// WithDefaultCategory sets the category chart dimension used when a request has none.
func WithDefaultCategory(key string) Option {
	return func(c *config) {
		if IsCategoryKey(key) {
			c.Category = key
		}
	}
}

// WithDefaultPivotColumns sets the pivot columns used when a request has none.
// An empty list is ignored so a pivot always has at least one column.
func WithDefaultPivotColumns(keys ...string) Option {
	return func(c *config) {
		if len(keys) > 0 {
			c.PivotColumns = append([]string(nil), keys...)
		}
	}
}

// WithRecordPageSize sets the default number of rows in the record table.
func WithRecordPageSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.RecordPageSize = n
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		TimeBucket:     BucketDay,
		Category:       KeySex,
		PivotColumns:   []string{KeySex},
		RecordPageSize: 50,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
