package dataset

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrUnsupportedDriver is returned by OpenStore for drivers other than sqlite and postgres.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

const importBatchSize = 500

// caseRow is the relational form of a Case.
type caseRow struct {
	ID               uint       `gorm:"primaryKey"`
	SourceIndex      string     `gorm:"size:32"`
	Department       string     `gorm:"index;size:128"`
	Municipality     string     `gorm:"size:128"`
	DepartmentCode   string     `gorm:"size:8"`
	Sex              string     `gorm:"size:8"`
	Hospitalized     string     `gorm:"size:8"`
	Area             string     `gorm:"size:32"`
	ConsultationDate *time.Time `gorm:"index"`
	SymptomOnsetDate *time.Time
}

func (caseRow) TableName() string { return "cases" }

func toRow(c Case) caseRow {
	return caseRow{
		SourceIndex:      string(c.Index),
		Department:       string(c.Department),
		Municipality:     string(c.Municipality),
		DepartmentCode:   string(c.DepartmentCode),
		Sex:              string(c.Sex),
		Hospitalized:     string(c.Hospitalized),
		Area:             string(c.Area),
		ConsultationDate: datePtr(c.Consultation),
		SymptomOnsetDate: datePtr(c.SymptomOnset),
	}
}

func (r caseRow) toCase() Case {
	return Case{
		Index:          Text(r.SourceIndex),
		Department:     Text(r.Department),
		Municipality:   Text(r.Municipality),
		DepartmentCode: Text(r.DepartmentCode),
		Sex:            Text(r.Sex),
		Hospitalized:   Text(r.Hospitalized),
		Area:           Text(r.Area),
		Consultation:   fromPtr(r.ConsultationDate),
		SymptomOnset:   fromPtr(r.SymptomOnsetDate),
	}
}

func datePtr(d Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

// fromPtr reads the calendar date in UTC. pgx returns timestamptz in the session
// zone, where midnight UTC falls on the previous day west of Greenwich.
func fromPtr(t *time.Time) Date {
	if t == nil {
		return Date{}
	}
	return NewDate(t.UTC())
}

// Store reads and writes cases in a SQL table.
type Store struct {
	db *gorm.DB
}

// OpenStore connects to sqlite (dsn is a file path or "file::memory:") or postgres
// and migrates the cases table.
func OpenStore(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return NewStore(db)
}

// NewStore wraps an existing connection and migrates the cases table.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&caseRow{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate cases table: %w", err)
	}
	return &Store{db: db}, nil
}

// Load reads every case in insertion order into a new Dataset.
func (s *Store) Load(ctx context.Context) (*Dataset, error) {
	var rows []caseRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load cases: %w", err)
	}
	cases := make([]Case, len(rows))
	for i, r := range rows {
		cases[i] = r.toCase()
	}
	ds := New(cases, "db:cases")
	log.Printf("📊 Loaded %d cases from database", ds.Len())
	return ds, nil
}

// Import writes cases to the table in batches. With replace set, existing rows are removed first.
func (s *Store) Import(ctx context.Context, cases []Case, replace bool) (int, error) {
	rows := make([]caseRow, len(cases))
	for i, c := range cases {
		rows[i] = toRow(c)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replace {
			if err := tx.Where("1 = 1").Delete(&caseRow{}).Error; err != nil {
				return fmt.Errorf("failed to clear cases table: %w", err)
			}
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, importBatchSize).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import cases: %w", err)
	}
	log.Printf("💾 Imported %d cases", len(rows))
	return len(rows), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
