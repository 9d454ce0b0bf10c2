// Package config loads dashboard settings from .env, an optional YAML file, and the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/sivigila/engine"
	"github.com/spektr-org/sivigila/geo"
)

// Data sources.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultDataPath     = "data/sivigila.json"
	defaultPort         = ":8080"
	defaultCodeProperty = "DPTO"
	defaultPageSize     = 50
	maxPageSize         = 1000
	maxTopN             = 64
)

// Config holds every setting the server and CLI need.
type Config struct {
	DataPath        string
	DataDriver      string
	DataDSN         string
	GeoJSONPath     string
	GeoCodeProperty string
	GeoCodeWidth    int
	HTTPPort        string
	WatchData       bool

	TopN            int
	TimeBucket      string
	DefaultCategory string
	PivotColumns    []string
	RecordPageSize  int
}

type fileConfig struct {
	DataPath        string   `yaml:"data_path"`
	DataDriver      string   `yaml:"data_driver"`
	DataDSN         string   `yaml:"data_dsn"`
	GeoJSONPath     string   `yaml:"geojson_path"`
	GeoCodeProperty string   `yaml:"geo_code_property"`
	GeoCodeWidth    *int     `yaml:"geo_code_width"`
	HTTPPort        string   `yaml:"http_port"`
	WatchData       *bool    `yaml:"watch_data"`
	TopN            *int     `yaml:"top_n"`
	TimeBucket      string   `yaml:"time_bucket"`
	DefaultCategory string   `yaml:"default_category"`
	PivotColumns    []string `yaml:"pivot_columns"`
	RecordPageSize  *int     `yaml:"record_page_size"`
}

// Load reads .env (if present), then DASHBOARD_CONFIG (if set), then environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	var fc fileConfig
	if path := os.Getenv("DASHBOARD_CONFIG"); path != "" {
		var err error
		fc, err = loadFileConfig(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
	}

	cfg := Config{
		DataPath:        firstNonEmpty(os.Getenv("DATA_PATH"), fc.DataPath, defaultDataPath),
		DataDriver:      strings.ToLower(firstNonEmpty(os.Getenv("DATA_DRIVER"), fc.DataDriver, DriverFile)),
		DataDSN:         firstNonEmpty(os.Getenv("DATA_DSN"), fc.DataDSN),
		GeoJSONPath:     firstNonEmpty(os.Getenv("GEOJSON_PATH"), fc.GeoJSONPath),
		GeoCodeProperty: firstNonEmpty(os.Getenv("GEO_CODE_PROPERTY"), fc.GeoCodeProperty, defaultCodeProperty),
		GeoCodeWidth:    getenvInt("GEO_CODE_WIDTH", intOr(fc.GeoCodeWidth, geo.DefaultCodeWidth)),
		HTTPPort:        firstNonEmpty(os.Getenv("HTTP_PORT"), fc.HTTPPort, defaultPort),
		WatchData:       getenvBool("WATCH_DATA", boolOr(fc.WatchData, false)),
		TopN:            clampInt(getenvInt("TOP_N", intOr(fc.TopN, 0)), 0, maxTopN),
		TimeBucket:      strings.ToLower(firstNonEmpty(os.Getenv("TIME_BUCKET"), fc.TimeBucket, engine.BucketDay)),
		DefaultCategory: firstNonEmpty(os.Getenv("DEFAULT_CATEGORY"), fc.DefaultCategory, engine.KeySex),
		PivotColumns:    fc.PivotColumns,
		RecordPageSize:  clampInt(getenvInt("RECORD_PAGE_SIZE", intOr(fc.RecordPageSize, defaultPageSize)), 1, maxPageSize),
	}
	if v := os.Getenv("PIVOT_COLUMNS"); v != "" {
		cfg.PivotColumns = splitList(v)
	}
	if len(cfg.PivotColumns) == 0 {
		cfg.PivotColumns = []string{engine.KeySex}
	}
	if !strings.HasPrefix(cfg.HTTPPort, ":") {
		cfg.HTTPPort = ":" + cfg.HTTPPort
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	log.Printf("config: driver=%s data=%s geojson=%s port=%s watch=%t", cfg.DataDriver, cfg.source(), cfg.GeoJSONPath, cfg.HTTPPort, cfg.WatchData)
	return cfg, nil
}

// Validate rejects settings the dashboard cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.DataDriver {
	case DriverFile:
		if c.DataPath == "" {
			errs = append(errs, errors.New("DATA_PATH is required for the file driver"))
		}
	case DriverSQLite, DriverPostgres:
		if c.DataDSN == "" {
			errs = append(errs, fmt.Errorf("DATA_DSN is required for the %s driver", c.DataDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATA_DRIVER %q", c.DataDriver))
	}
	if !engine.IsBucket(c.TimeBucket) {
		errs = append(errs, fmt.Errorf("unknown TIME_BUCKET %q", c.TimeBucket))
	}
	if !engine.IsCategoryKey(c.DefaultCategory) {
		errs = append(errs, fmt.Errorf("unknown DEFAULT_CATEGORY %q", c.DefaultCategory))
	}
	for _, col := range c.PivotColumns {
		if !engine.IsCategoryKey(col) {
			errs = append(errs, fmt.Errorf("unknown pivot column %q", col))
		}
	}
	if c.WatchData && c.DataDriver != DriverFile {
		errs = append(errs, errors.New("WATCH_DATA requires the file driver"))
	}
	return errors.Join(errs...)
}

// EngineOptions turns the dashboard defaults into engine options.
func (c Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithTopN(c.TopN),
		engine.WithTimeBucket(c.TimeBucket),
		engine.WithDefaultCategory(c.DefaultCategory),
		engine.WithDefaultPivotColumns(c.PivotColumns...),
		engine.WithRecordPageSize(c.RecordPageSize),
	}
}

func (c Config) source() string {
	if c.DataDriver == DriverFile {
		return c.DataPath
	}
	return c.DataDriver + " dsn"
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse yaml: %w", err)
	}
	return fc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %t", key, v, def)
		return def
	}
	return b
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
