package http

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go.climdata.io/sunshine-api/internal/domain"
	"go.climdata.io/sunshine-api/internal/usecase"
)

type fakeSource struct {
	field *domain.Field
	info  *domain.DatasetInfo
}

func (s *fakeSource) Load() (*domain.Field, error)           { return s.field, nil }
func (s *fakeSource) Describe() (*domain.DatasetInfo, error) { return s.info, nil }

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	src := &fakeSource{
		field: &domain.Field{
			Name:  "SDU",
			Units: "hours",
			Time:  time.Date(1983, time.January, 1, 0, 0, 0, 0, time.UTC),
			Lon:   []float64{5.0, 5.5, 6.0},
			Lat:   []float64{47.0, 47.5},
			Values: [][]float64{
				{60, 62, 64},
				{70, math.NaN(), 74},
			},
		},
		info: &domain.DatasetInfo{
			Path:         "/data/sdu.nc",
			DataVariable: "SDU",
			DataUnits:    "hours",
			TimeSteps:    1,
		},
	}
	return SetupRouter(usecase.NewInspectUseCase(src))
}

func get(t *testing.T, router *gin.Engine, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := get(t, testRouter(), "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetDataset(t *testing.T) {
	w := get(t, testRouter(), "/v1/dataset")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var info domain.DatasetInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if info.DataVariable != "SDU" {
		t.Errorf("expected SDU, got %s", info.DataVariable)
	}
}

func TestGetStats(t *testing.T) {
	w := get(t, testRouter(), "/v1/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp usecase.StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Stats.Count != 5 || resp.Stats.Missing != 1 {
		t.Errorf("unexpected stats: %+v", resp.Stats)
	}

	w = get(t, testRouter(), "/v1/stats?unit=minutes")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for minutes, got %d", w.Code)
	}

	w = get(t, testRouter(), "/v1/stats?unit=lightyears")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad unit, got %d", w.Code)
	}
}

func TestGetPoint(t *testing.T) {
	w := get(t, testRouter(), "/v1/point?lat=47.0&lon=5.25")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp usecase.PointResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Value == nil || *resp.Value != 61 {
		t.Errorf("expected 61, got %v", resp.Value)
	}

	for _, url := range []string{
		"/v1/point",
		"/v1/point?lat=abc&lon=5",
		"/v1/point?lat=47&lon=xyz",
		"/v1/point?lat=95&lon=5",
		"/v1/point?lat=47&lon=999",
	} {
		if w := get(t, testRouter(), url); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", url, w.Code)
		}
	}
}

func TestGetRender(t *testing.T) {
	w := get(t, testRouter(), "/v1/render?style=raw")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %s", ct)
	}
	// PNG magic bytes.
	if !strings.HasPrefix(w.Body.String(), "\x89PNG") {
		t.Error("response body is not a PNG")
	}

	for _, url := range []string{
		"/v1/render?style=contour",
		"/v1/render?projection=polar",
		"/v1/render?width=abc",
		"/v1/render?width=99999",
	} {
		if w := get(t, testRouter(), url); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", url, w.Code)
		}
	}
}

func TestGetTidy(t *testing.T) {
	w := get(t, testRouter(), "/v1/tidy")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %s", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 7 { // header + 6 cells
		t.Errorf("expected 7 lines, got %d", len(lines))
	}

	w = get(t, testRouter(), "/v1/tidy?missing=drop")
	lines = strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 6 {
		t.Errorf("expected 6 lines with missing dropped, got %d", len(lines))
	}

	if w := get(t, testRouter(), "/v1/tidy?missing=maybe"); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad missing param, got %d", w.Code)
	}
}
