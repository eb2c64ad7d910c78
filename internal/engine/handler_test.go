package engine

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestServer(f *fixture) *echo.Echo {
	e := echo.New()
	NewHandler(f.engine, zerolog.Nop()).RegisterRoutes(e)
	return e
}

func TestTickAnyMethodRunsTick(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		f := newFixture()
		e := newTestServer(f)

		req := httptest.NewRequest(method, "/tick", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s /tick: status %d, want 200", method, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s /tick: invalid JSON: %v", method, err)
		}
		if body["message"] != "Operational data updated successfully" {
			t.Errorf("%s /tick: unexpected body %v", method, body)
		}
		if f.log.index("seeder") < 0 {
			t.Errorf("%s /tick should run the tick", method)
		}
	}
}

func TestTickOptionsIsEmptyPreflight(t *testing.T) {
	f := newFixture()
	e := newTestServer(f)

	req := httptest.NewRequest(http.MethodOptions, "/tick", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("OPTIONS /tick: status %d, want 200", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "" {
		t.Errorf("OPTIONS /tick should have an empty body, got %q", rec.Body.String())
	}
	if len(f.log.calls) != 0 {
		t.Errorf("OPTIONS must not trigger a tick, ran %v", f.log.calls)
	}
}

func TestTickFailureReturns500WithError(t *testing.T) {
	f := newFixture()
	f.visits.err = errors.New("census query failed")
	e := newTestServer(f)

	req := httptest.NewRequest(http.MethodPost, "/tick", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !strings.Contains(body["error"], "census query failed") {
		t.Errorf("error body should carry the failure, got %v", body)
	}
}

func TestLastReportLifecycle(t *testing.T) {
	f := newFixture()
	e := newTestServer(f)

	req := httptest.NewRequest(http.MethodGet, "/tick/last", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("before any tick: status %d, want 404", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/tick", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("tick failed with status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/tick/last", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("after tick: status %d, want 200", rec.Code)
	}
	var report TickReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid report JSON: %v", err)
	}
	if !report.Success {
		t.Error("last report should reflect the successful tick")
	}
}

func TestFailedTickIsStillRecorded(t *testing.T) {
	f := newFixture()
	f.seeder.err = errors.New("seed failure")
	e := newTestServer(f)

	req := httptest.NewRequest(http.MethodPost, "/tick", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/tick/last", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("last report should exist after a failed tick, got %d", rec.Code)
	}
	var report TickReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid report JSON: %v", err)
	}
	if report.Success {
		t.Error("failed tick should be recorded as unsuccessful")
	}
}
