package services

import (
	"context"
	"fmt"
	"time"

	"github.com/boscod/portfolio-api/internal/models"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"
)

// Caps for the dashboard stats lists
const (
	TopCountriesLimit = 10
	TopBrowsersLimit  = 5
	TopOSLimit        = 5

	// MaxVisitorPageSize bounds the recent-visitors page
	MaxVisitorPageSize = 200
)

// VisitorService owns the reads and writes on the visitors table. Unlike the
// other handlers it takes its DB handle explicitly so tests can run it
// against an in-memory database.
type VisitorService struct {
	db *bun.DB
}

func NewVisitorService(db *bun.DB) *VisitorService {
	return &VisitorService{db: db}
}

// Log inserts one visitor record. Append-only: records are never updated.
func (s *VisitorService) Log(ctx context.Context, visitor *models.Visitor) error {
	_, err := s.db.NewInsert().Model(visitor).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert visitor: %w", err)
	}
	return nil
}

// Recent returns the most recent visitor records, newest first. The limit is
// clamped to MaxVisitorPageSize.
func (s *VisitorService) Recent(ctx context.Context, limit, offset int) ([]models.Visitor, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > MaxVisitorPageSize {
		limit = MaxVisitorPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var visitors []models.Visitor
	err := s.db.NewSelect().
		Model(&visitors).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch visitors: %w", err)
	}
	return visitors, nil
}

// Count returns the total number of logged visits
func (s *VisitorService) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*models.Visitor)(nil)).Count(ctx)
}

// CountryCount is one row of the per-country breakdown
type CountryCount struct {
	Country string `bun:"country" json:"country"`
	Count   int    `bun:"count" json:"count"`
}

// DeviceTypeCount is one row of the per-device breakdown
type DeviceTypeCount struct {
	Type  string `bun:"device_type" json:"type"`
	Count int    `bun:"count" json:"count"`
}

// BrowserCount is one row of the per-browser breakdown
type BrowserCount struct {
	Browser string `bun:"browser" json:"browser"`
	Count   int    `bun:"count" json:"count"`
}

// OSCount is one row of the per-OS breakdown
type OSCount struct {
	OS    string `bun:"os" json:"os"`
	Count int    `bun:"count" json:"count"`
}

// VisitorStats is the dashboard summary over the whole visitor log
type VisitorStats struct {
	Total           int               `json:"total"`
	UniqueCountries int               `json:"unique_countries"`
	TopCountries    []CountryCount    `json:"top_countries"`
	DeviceTypes     []DeviceTypeCount `json:"device_types"`
	TopBrowsers     []BrowserCount    `json:"top_browsers"`
	TopOS           []OSCount         `json:"top_os"`
}

// Stats computes the dashboard summary. Grouping excludes rows with a NULL
// value for the grouped column, so unique_countries undercounts visits
// without a resolvable geo header. That matches the existing dashboards and
// is kept on purpose.
func (s *VisitorService) Stats(ctx context.Context) (*VisitorStats, error) {
	stats := &VisitorStats{
		TopCountries: []CountryCount{},
		DeviceTypes:  []DeviceTypeCount{},
		TopBrowsers:  []BrowserCount{},
		TopOS:        []OSCount{},
	}

	total, err := s.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}
	stats.Total = total

	err = s.db.NewSelect().
		Model((*models.Visitor)(nil)).
		ColumnExpr("COUNT(DISTINCT country)").
		Where("country IS NOT NULL").
		Scan(ctx, &stats.UniqueCountries)
	if err != nil {
		return nil, fmt.Errorf("failed to count countries: %w", err)
	}

	err = s.db.NewSelect().
		Model((*models.Visitor)(nil)).
		Column("country").
		ColumnExpr("COUNT(*) AS count").
		Where("country IS NOT NULL").
		Group("country").
		OrderExpr("count DESC").
		Limit(TopCountriesLimit).
		Scan(ctx, &stats.TopCountries)
	if err != nil {
		return nil, fmt.Errorf("failed to group by country: %w", err)
	}

	err = s.db.NewSelect().
		Model((*models.Visitor)(nil)).
		Column("device_type").
		ColumnExpr("COUNT(*) AS count").
		Where("device_type IS NOT NULL").
		Group("device_type").
		OrderExpr("count DESC").
		Scan(ctx, &stats.DeviceTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to group by device type: %w", err)
	}

	err = s.db.NewSelect().
		Model((*models.Visitor)(nil)).
		Column("browser").
		ColumnExpr("COUNT(*) AS count").
		Where("browser IS NOT NULL").
		Group("browser").
		OrderExpr("count DESC").
		Limit(TopBrowsersLimit).
		Scan(ctx, &stats.TopBrowsers)
	if err != nil {
		return nil, fmt.Errorf("failed to group by browser: %w", err)
	}

	err = s.db.NewSelect().
		Model((*models.Visitor)(nil)).
		Column("os").
		ColumnExpr("COUNT(*) AS count").
		Where("os IS NOT NULL").
		Group("os").
		OrderExpr("count DESC").
		Limit(TopOSLimit).
		Scan(ctx, &stats.TopOS)
	if err != nil {
		return nil, fmt.Errorf("failed to group by os: %w", err)
	}

	return stats, nil
}

// ExportExcel builds an xlsx workbook of the most recent visits for the
// dashboard download button.
func (s *VisitorService) ExportExcel(ctx context.Context) (*excelize.File, error) {
	visitors, err := s.Recent(ctx, MaxVisitorPageSize, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Visitors"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Time", "Path", "IP", "Country", "City", "Device", "Browser", "Browser Version", "OS", "OS Version"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, v := range visitors {
		values := []interface{}{
			v.CreatedAt.Format(time.RFC3339),
			v.Path,
			deref(v.IP),
			deref(v.Country),
			deref(v.City),
			v.DeviceType,
			v.Browser,
			deref(v.BrowserVersion),
			v.OS,
			deref(v.OSVersion),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
