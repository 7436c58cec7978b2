// README: End-to-end tests of the HTTP surface over the in-memory stores.
package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "reclaim/internal/http"
	"reclaim/internal/http/middleware"
	"reclaim/internal/lock"
	"reclaim/internal/maps"
	"reclaim/internal/modules/catalog"
	"reclaim/internal/modules/fleet"
	"reclaim/internal/modules/lifecycle"
	"reclaim/internal/modules/valuation"
)

func buildTestRouter(t *testing.T, rps float64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cat := catalog.Default()
	drivers := fleet.NewMemoryStore()
	svc := lifecycle.NewService(
		lifecycle.NewMemoryStore(drivers),
		valuation.NewCalculator(cat),
		lock.NewMemoryLocker(),
		maps.StaticEstimator{Km: 80},
		zap.NewNop(),
		lifecycle.Options{LockTimeout: time.Second, StoreTimeout: time.Second},
	)
	return apihttp.NewRouter(apihttp.RouterDeps{
		Lifecycle:      svc,
		Fleet:          fleet.NewService(drivers, cat),
		Catalog:        cat,
		Log:            zap.NewNop(),
		RateLimitRPS:   rps,
		RateLimitBurst: 2,
	})
}

func doRequest(r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func createBooking(t *testing.T, r *gin.Engine) map[string]any {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/v1/bookings", map[string]any{
		"site": map[string]any{
			"name":     "Acme HQ",
			"address":  "1 High Street, Leeds",
			"postcode": "ls1 1aa",
		},
		"assets": []map[string]any{
			{"categoryId": "laptop", "quantity": 4},
			{"categoryId": "monitor", "quantity": 2},
		},
		"scheduledDate":  "2026-03-02T00:00:00Z",
		"charityPercent": 10,
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create booking: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode(t, w)
}

func registerDriver(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/v1/drivers", map[string]any{
		"name":        "Sam Driver",
		"vehicleReg":  "ab12 cde",
		"vehicleType": "van",
		"fuelType":    "diesel",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register driver: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	d := decode(t, w)
	if d["vehicleReg"] != "AB12 CDE" {
		t.Errorf("expected normalised registration, got %v", d["vehicleReg"])
	}
	return d["id"].(string)
}

func TestHealth(t *testing.T) {
	r := buildTestRouter(t, 0)
	w := doRequest(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
}

func TestCreateBooking(t *testing.T) {
	r := buildTestRouter(t, 0)
	b := createBooking(t, r)
	if b["status"] != "created" {
		t.Errorf("expected created, got %v", b["status"])
	}
	if b["estimatedCO2e"] != float64(1460) {
		t.Errorf("expected 1460 kg, got %v", b["estimatedCO2e"])
	}
	site := b["site"].(map[string]any)
	if site["postcode"] != "LS1 1AA" {
		t.Errorf("expected normalised postcode, got %v", site["postcode"])
	}

	w := doRequest(r, http.MethodGet, "/api/v1/bookings/"+b["id"].(string), nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("get booking: expected 200, got %d", w.Code)
	}
}

func TestCreateBookingRejectsBadInput(t *testing.T) {
	r := buildTestRouter(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid json: expected 400, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPost, "/api/v1/bookings", map[string]any{
		"site":          map[string]any{"address": "1 High Street", "postcode": "LS1 1AA"},
		"assets":        []map[string]any{{"categoryId": "toaster", "quantity": 1}},
		"scheduledDate": "2026-03-02T00:00:00Z",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown category: expected 400, got %d", w.Code)
	}
}

func TestUnknownBookingIsNotFound(t *testing.T) {
	r := buildTestRouter(t, 0)
	w := doRequest(r, http.MethodGet, "/api/v1/bookings/missing", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestUnknownActorTypeRejected(t *testing.T) {
	r := buildTestRouter(t, 0)
	w := doRequest(r, http.MethodGet, "/api/v1/bookings", nil, map[string]string{
		middleware.ActorTypeHeader: "customer",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestJobFlow(t *testing.T) {
	r := buildTestRouter(t, 0)
	driverID := registerDriver(t, r)
	b := createBooking(t, r)
	bookingPath := "/api/v1/bookings/" + b["id"].(string)

	w := doRequest(r, http.MethodPost, bookingPath+"/assign", map[string]any{"driverId": driverID}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("assign: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	assigned := decode(t, w)
	if assigned["status"] != "scheduled" {
		t.Errorf("expected scheduled, got %v", assigned["status"])
	}
	jobPath := "/api/v1/jobs/" + assigned["jobId"].(string)

	w = doRequest(r, http.MethodPost, bookingPath+"/assign", map[string]any{"driverId": driverID}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("second assign: expected 409, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPost, jobPath+"/status", map[string]any{"status": "en-route"}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("transition without evidence: expected 409, got %d", w.Code)
	}

	driverHeaders := map[string]string{
		middleware.ActorTypeHeader: "driver",
		middleware.ActorIDHeader:   driverID,
	}
	w = doRequest(r, http.MethodPost, jobPath+"/advance", map[string]any{
		"status":    "en-route",
		"photos":    []string{"photos/van.jpg"},
		"signature": "sig",
	}, driverHeaders)
	if w.Code != http.StatusOK {
		t.Fatalf("advance: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if j := decode(t, w); j["status"] != "en-route" {
		t.Errorf("expected en-route, got %v", j["status"])
	}

	w = doRequest(r, http.MethodPost, jobPath+"/evidence", map[string]any{
		"status":    "en-route",
		"photos":    []string{"photos/again.jpg"},
		"signature": "sig",
	}, driverHeaders)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate evidence: expected 409, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPost, jobPath+"/evidence", map[string]any{"status": "arrived"}, driverHeaders)
	if w.Code != http.StatusBadRequest {
		t.Errorf("evidence without photos: expected 400, got %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, bookingPath+"/completion", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("completion: expected 200, got %d", w.Code)
	}
	if c := decode(t, w); c["satisfied"] != false {
		t.Errorf("expected gate unsatisfied, got %v", c["satisfied"])
	}

	w = doRequest(r, http.MethodPost, bookingPath+"/approve", nil, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("approve: expected 409, got %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, bookingPath+"/history", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", w.Code)
	}
	events := decode(t, w)["events"].([]any)
	if len(events) < 3 {
		t.Errorf("expected at least 3 events, got %d", len(events))
	}
}

func TestCatalogCategories(t *testing.T) {
	r := buildTestRouter(t, 0)
	w := doRequest(r, http.MethodGet, "/api/v1/catalog/categories", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	cats := decode(t, w)["categories"].([]any)
	if len(cats) == 0 {
		t.Error("expected categories")
	}
}

func TestRateLimit(t *testing.T) {
	r := buildTestRouter(t, 0.001)
	for i := 0; i < 2; i++ {
		if w := doRequest(r, http.MethodGet, "/api/v1/drivers", nil, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	if w := doRequest(r, http.MethodGet, "/api/v1/drivers", nil, nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
}
