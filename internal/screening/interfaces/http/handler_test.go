package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	screeningapp "carbonsite-engine/internal/screening/application"
	screening "carbonsite-engine/internal/screening/domain"
	"carbonsite-engine/internal/screening/infrastructure/memory"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	service, err := screeningapp.NewService(memory.NewSiteRepository(), screening.Weights{}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	handler, err := NewHandler(service, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return handler
}

func siteJSON(id string) string {
	return `{
		"site_id": "` + id + `",
		"name": "Site ` + id + `",
		"country": "DE",
		"region": "Test",
		"co2_volume_tpy": 1000000,
		"co2_concentration": 85,
		"co2_impurities": "Low",
		"power_price_eur_mwh": 70,
		"power_availability": 99,
		"renewable_energy_share": 30,
		"emissions_intensity": 400,
		"eu_ets_price": 85,
		"cbam_applicable": true,
		"industrial_zone": "Chemical",
		"utility_availability": "Good",
		"transport_access": "Good",
		"labor_costs": 30,
		"land_costs": 200,
		"tax_incentives": 10
	}`
}

func postSite(t *testing.T, handler *Handler, id string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sites", strings.NewReader(siteJSON(id)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestCreateAndGetSite(t *testing.T) {
	handler := newTestHandler(t)

	if resp := postSite(t, handler, "DE001"); resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp := postSite(t, handler, "DE001"); resp.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites/DE001", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.Code)
	}
	var site screening.Site
	if err := json.Unmarshal(resp.Body.Bytes(), &site); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if site.SiteID != "DE001" || site.Country != "DE" {
		t.Errorf("unexpected site %+v", site)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sites/NOPE", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("missing: expected 404, got %d", resp.Code)
	}
}

func TestCreateSiteRejectsBadPayload(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sites", strings.NewReader("{not json"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad json: expected 400, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/sites", strings.NewReader(`{"site_id":"X1"}`))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("invalid site: expected 400, got %d", resp.Code)
	}
}

func TestEvaluateAndTop(t *testing.T) {
	handler := newTestHandler(t)
	postSite(t, handler, "DE001")
	postSite(t, handler, "DE002")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites/evaluate", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("evaluate: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var scored []screening.ScoredSite
	if err := json.Unmarshal(resp.Body.Bytes(), &scored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(scored) != 2 {
		t.Fatalf("scored = %d, want 2", len(scored))
	}
	if scored[0].Ranking != 1 || scored[1].Ranking != 2 {
		t.Errorf("rankings = %d, %d", scored[0].Ranking, scored[1].Ranking)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sites/top?n=1", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("top: expected 200, got %d", resp.Code)
	}
	var top []screening.ScoredSite
	if err := json.Unmarshal(resp.Body.Bytes(), &top); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("top = %d, want 1", len(top))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sites/top?n=zero", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad n: expected 400, got %d", resp.Code)
	}
}

func TestEvaluateEmptyIsConflict(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites/evaluate", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestFilterQuery(t *testing.T) {
	handler := newTestHandler(t)
	postSite(t, handler, "DE001")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites/filter?countries=DE&min_co2_volume_tpy=500000", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("filter: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var matches []screening.ScoredSite
	if err := json.Unmarshal(resp.Body.Bytes(), &matches); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sites/filter?min_total_score=abc", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad filter: expected 400, got %d", resp.Code)
	}
}
