package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boscod/portfolio-api/internal/models"
	"github.com/boscod/portfolio-api/internal/services"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTrackApp(t *testing.T, notify NotifyVisitFunc) (*fiber.App, *bun.DB) {
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

	handler := NewVisitorHandler(services.NewVisitorService(db), notify)

	app := fiber.New()
	app.Post("/api/track", handler.Track)
	return app, db
}

func postTrack(t *testing.T, app *fiber.App, body string, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/track", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestTrackEndToEnd(t *testing.T) {
	app, db := newTrackApp(t, nil)

	ua := "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	resp := postTrack(t, app, `{"path":"/blog/hello"}`, map[string]string{
		"User-Agent":   ua,
		"CF-IPCountry": "ID",
		"CF-IPCity":    "Jakarta",
		"X-Real-IP":    "203.0.113.7",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	var v models.Visitor
	require.NoError(t, db.NewSelect().Model(&v).Scan(context.Background()))
	assert.Equal(t, "/blog/hello", v.Path)
	assert.Equal(t, "mobile", v.DeviceType)
	assert.Equal(t, "Chrome", v.Browser)
	require.NotNil(t, v.BrowserVersion)
	assert.Equal(t, "120.0.0.0", *v.BrowserVersion)
	assert.Equal(t, "Android", v.OS)
	require.NotNil(t, v.OSVersion)
	assert.Equal(t, "13", *v.OSVersion)
	require.NotNil(t, v.Country)
	assert.Equal(t, "ID", *v.Country)
	require.NotNil(t, v.City)
	assert.Equal(t, "Jakarta", *v.City)
	require.NotNil(t, v.IP)
	assert.Equal(t, "203.0.113.7", *v.IP)
}

func TestTrackMissingPath(t *testing.T) {
	app, _ := newTrackApp(t, nil)

	resp := postTrack(t, app, `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postTrack(t, app, `not json at all`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTrackTruncatesLongValues(t *testing.T) {
	app, db := newTrackApp(t, nil)

	longPath := "/" + strings.Repeat("a", 10000)
	longUA := strings.Repeat("x", 2000)
	resp := postTrack(t, app, `{"path":"`+longPath+`"}`, map[string]string{
		"User-Agent": longUA,
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var v models.Visitor
	require.NoError(t, db.NewSelect().Model(&v).Scan(context.Background()))
	assert.Len(t, v.Path, models.MaxPathLen)
	require.NotNil(t, v.UserAgent)
	assert.Len(t, *v.UserAgent, models.MaxUserAgentLen)
}

func TestTrackSoftFailureOnPersistenceError(t *testing.T) {
	app, db := newTrackApp(t, nil)

	// Drop the table out from under the handler to simulate an outage
	_, err := db.NewDropTable().Model((*models.Visitor)(nil)).Exec(context.Background())
	require.NoError(t, err)

	resp := postTrack(t, app, `{"path":"/"}`, nil)

	// Still HTTP 200: a telemetry outage must not surface to the client
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
}

func TestTrackNotifiesPublicVisits(t *testing.T) {
	notified := make(chan string, 1)
	app, _ := newTrackApp(t, func(path string, country, city *string) error {
		notified <- path
		return nil
	})

	resp := postTrack(t, app, `{"path":"/projects"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case path := <-notified:
		assert.Equal(t, "/projects", path)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a visit notification")
	}
}

func TestTrackSkipsInternalPaths(t *testing.T) {
	notified := make(chan string, 1)
	app, _ := newTrackApp(t, func(path string, country, city *string) error {
		notified <- path
		return nil
	})

	for _, path := range []string{"/dashboard", "/dashboard/visitors", "/api/track"} {
		resp := postTrack(t, app, `{"path":"`+path+`"}`, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	select {
	case path := <-notified:
		t.Fatalf("unexpected notification for internal path %s", path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestTrackNotifierFailureDoesNotAffectResponse(t *testing.T) {
	app, _ := newTrackApp(t, func(path string, country, city *string) error {
		return assert.AnError
	})

	resp := postTrack(t, app, `{"path":"/about"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
}
