package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/boscod/portfolio-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.NewCreateTable().
		Model((*models.Visitor)(nil)).
		IfNotExists().
		Exec(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = db.NewDropTable().Model((*models.Visitor)(nil)).IfExists().Exec(context.Background())
		db.Close()
	})

	return db
}

func strPtr(s string) *string {
	return &s
}

func seedVisit(t *testing.T, svc *VisitorService, path string, country *string, deviceType, browser, os string, at time.Time) {
	t.Helper()

	v := &models.Visitor{
		Path:       path,
		Country:    country,
		DeviceType: deviceType,
		Browser:    browser,
		OS:         os,
		CreatedAt:  at,
	}
	require.NoError(t, svc.Log(context.Background(), v))
}

func TestLogAndCount(t *testing.T) {
	svc := NewVisitorService(newTestDB(t))
	ctx := context.Background()

	now := time.Now()
	seedVisit(t, svc, "/", strPtr("US"), "desktop", "Chrome", "Windows", now)
	seedVisit(t, svc, "/blog", strPtr("US"), "mobile", "Safari", "iOS", now)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecentOrderAndPaging(t *testing.T) {
	svc := NewVisitorService(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedVisit(t, svc, fmt.Sprintf("/page-%d", i), nil, "desktop", "Chrome", "Linux", base.Add(time.Duration(i)*time.Minute))
	}

	visitors, err := svc.Recent(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, visitors, 2)
	assert.Equal(t, "/page-4", visitors[0].Path)
	assert.Equal(t, "/page-3", visitors[1].Path)

	// Offset skips the newest rows
	visitors, err = svc.Recent(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, visitors, 2)
	assert.Equal(t, "/page-2", visitors[0].Path)
}

func TestStatsAggregation(t *testing.T) {
	svc := NewVisitorService(newTestDB(t))
	ctx := context.Background()

	now := time.Now()

	// 3x US, 2x ID, 1x FR plus two visits with no resolvable country
	for i := 0; i < 3; i++ {
		seedVisit(t, svc, "/", strPtr("US"), "desktop", "Chrome", "Windows", now)
	}
	for i := 0; i < 2; i++ {
		seedVisit(t, svc, "/", strPtr("ID"), "mobile", "Safari", "iOS", now)
	}
	seedVisit(t, svc, "/", strPtr("FR"), "tablet", "Firefox", "Linux", now)
	seedVisit(t, svc, "/", nil, "desktop", "Chrome", "Windows", now)
	seedVisit(t, svc, "/", nil, "desktop", "unknown", "unknown", now)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 8, stats.Total)

	// Rows without a country are excluded from the country breakdown
	assert.Equal(t, 3, stats.UniqueCountries)
	require.Len(t, stats.TopCountries, 3)
	assert.Equal(t, CountryCount{Country: "US", Count: 3}, stats.TopCountries[0])
	assert.Equal(t, CountryCount{Country: "ID", Count: 2}, stats.TopCountries[1])
	assert.Equal(t, CountryCount{Country: "FR", Count: 1}, stats.TopCountries[2])

	require.Len(t, stats.DeviceTypes, 3)
	assert.Equal(t, DeviceTypeCount{Type: "desktop", Count: 4}, stats.DeviceTypes[0])

	require.Len(t, stats.TopBrowsers, 4)
	assert.Equal(t, BrowserCount{Browser: "Chrome", Count: 4}, stats.TopBrowsers[0])

	require.Len(t, stats.TopOS, 4)
	assert.Equal(t, OSCount{OS: "Windows", Count: 4}, stats.TopOS[0])
}

func TestStatsLimitsTopCountries(t *testing.T) {
	svc := NewVisitorService(newTestDB(t))
	ctx := context.Background()

	now := time.Now()

	// 12 countries with strictly decreasing visit counts so the ordering is
	// unambiguous
	for i := 0; i < 12; i++ {
		country := fmt.Sprintf("C%02d", i)
		for j := 0; j < 12-i; j++ {
			seedVisit(t, svc, "/", strPtr(country), "desktop", "Chrome", "Linux", now)
		}
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	require.Len(t, stats.TopCountries, TopCountriesLimit)
	assert.Equal(t, "C00", stats.TopCountries[0].Country)
	assert.Equal(t, 12, stats.TopCountries[0].Count)
	assert.Equal(t, "C09", stats.TopCountries[TopCountriesLimit-1].Country)
}

func TestStatsEmptyLog(t *testing.T) {
	svc := NewVisitorService(newTestDB(t))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.UniqueCountries)
	assert.Empty(t, stats.TopCountries)
	assert.Empty(t, stats.DeviceTypes)
	assert.Empty(t, stats.TopBrowsers)
	assert.Empty(t, stats.TopOS)
}

func TestRecentClampsLimit(t *testing.T) {
	svc := NewVisitorService(newTestDB(t))
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 3; i++ {
		seedVisit(t, svc, "/", nil, "desktop", "Chrome", "Linux", now)
	}

	// A limit beyond the cap must not error; the cap only matters once the
	// log is large enough, so here it just returns everything.
	visitors, err := svc.Recent(ctx, 100000, 0)
	require.NoError(t, err)
	assert.Len(t, visitors, 3)

	// Zero and negative limits fall back to the default page size
	visitors, err = svc.Recent(ctx, 0, -5)
	require.NoError(t, err)
	assert.Len(t, visitors, 3)
}

func TestExportExcel(t *testing.T) {
	svc := NewVisitorService(newTestDB(t))
	ctx := context.Background()

	seedVisit(t, svc, "/about", strPtr("US"), "mobile", "Chrome", "Android", time.Now())

	f, err := svc.ExportExcel(ctx)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Visitors")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Path", rows[0][1])
	assert.Equal(t, "/about", rows[1][1])
}
