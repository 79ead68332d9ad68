package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/safeyatra/geomark/internal/adapters/http"
	"github.com/safeyatra/geomark/internal/adapters/memory"
	"github.com/safeyatra/geomark/internal/core/domain"
	"github.com/safeyatra/geomark/internal/core/usecases"
)

// ---- Mock repositories ----

type mockAuthorityRepo struct {
	accounts map[string]domain.AuthorityAccount
}

func newMockAuthorityRepo() *mockAuthorityRepo {
	return &mockAuthorityRepo{accounts: make(map[string]domain.AuthorityAccount)}
}

func (m *mockAuthorityRepo) Insert(ctx context.Context, a *domain.AuthorityAccount) error {
	m.accounts[a.ID] = *a
	return nil
}

func (m *mockAuthorityRepo) GetByID(ctx context.Context, id string) (*domain.AuthorityAccount, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (m *mockAuthorityRepo) List(ctx context.Context, status domain.AuthorityStatus) ([]domain.AuthorityAccount, error) {
	var out []domain.AuthorityAccount
	for _, a := range m.accounts {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAuthorityRepo) UpdateStatus(ctx context.Context, id string, status domain.AuthorityStatus) error {
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	m.accounts[id] = a
	return nil
}

type mockKYCRepo struct {
	apps map[string]domain.KYCApplication
}

func newMockKYCRepo() *mockKYCRepo {
	return &mockKYCRepo{apps: make(map[string]domain.KYCApplication)}
}

func (m *mockKYCRepo) Insert(ctx context.Context, app *domain.KYCApplication) error {
	m.apps[app.ID] = *app
	return nil
}

func (m *mockKYCRepo) GetByID(ctx context.Context, id string) (*domain.KYCApplication, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (m *mockKYCRepo) List(ctx context.Context, status domain.KYCStatus) ([]domain.KYCApplication, error) {
	var out []domain.KYCApplication
	for _, a := range m.apps {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockKYCRepo) UpdateStatus(ctx context.Context, id string, status domain.KYCStatus) error {
	a, ok := m.apps[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	m.apps[id] = a
	return nil
}

type mockResolver struct {
	owners map[string]string // token -> owner
}

func (m *mockResolver) Resolve(ctx context.Context, token string) (string, error) {
	if owner, ok := m.owners[token]; ok {
		return owner, nil
	}
	return "", fmt.Errorf("unknown token")
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{
		Fences: usecases.NewFenceService(memory.NewFenceRepo(), nil, nil),
		Admin:  usecases.NewAdminService(newMockAuthorityRepo(), newMockKYCRepo()),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func createArea(t *testing.T, app *fiber.App, body string) domain.GeoFence {
	t.Helper()
	req := httptest.NewRequest("POST", "/mark-area", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	var f domain.GeoFence
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	return f
}

// ---- Area handler tests ----

func TestCreateArea_DefaultsAndDerived(t *testing.T) {
	app := setupApp(makeDeps())

	f := createArea(t, app, `{"latitude": 28.4595, "longitude": 77.0266, "radius": 500}`)

	if f.ID == "" {
		t.Error("expected generated id")
	}
	if f.UserID != domain.AnonymousOwner {
		t.Errorf("expected anonymous owner, got %q", f.UserID)
	}
	if f.Status != domain.StatusActive {
		t.Errorf("expected active status, got %q", f.Status)
	}
	if f.Description != "Fenced area at 28.459500, 77.026600" {
		t.Errorf("unexpected derived description: %q", f.Description)
	}
	if f.Area == 0 {
		t.Error("expected derived area to be set")
	}
	if f.LocationString != "28.459500, 77.026600" {
		t.Errorf("unexpected locationString: %q", f.LocationString)
	}
}

func TestCreateArea_ValidationErrors(t *testing.T) {
	app := setupApp(makeDeps())

	long := strings.Repeat("x", 501)
	body := fmt.Sprintf(`{"latitude": 95, "longitude": 0, "radius": 0, "description": %q}`, long)
	req := httptest.NewRequest("POST", "/mark-area", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code   string                  `json:"code"`
		Errors []domain.FieldViolation `json:"errors"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "validation_failed" {
		t.Errorf("expected validation_failed, got %s", apiErr.Code)
	}
	if len(apiErr.Errors) != 3 {
		t.Fatalf("expected 3 violations (latitude, radius, description), got %d: %+v", len(apiErr.Errors), apiErr.Errors)
	}
}

func TestCreateArea_Duplicate(t *testing.T) {
	app := setupApp(makeDeps())

	createArea(t, app, `{"latitude": 10.0, "longitude": 20.0, "radius": 100}`)

	req := httptest.NewRequest("POST", "/mark-area",
		strings.NewReader(`{"latitude": 10.0004, "longitude": 20.0, "radius": 100}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "conflict" {
		t.Errorf("expected conflict code, got %s", apiErr.Code)
	}
}

func TestGetArea_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/area/nope", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateArea_RadiusOnly(t *testing.T) {
	app := setupApp(makeDeps())
	f := createArea(t, app, `{"latitude": 28.4595, "longitude": 77.0266, "radius": 500, "description": "Cyber Hub"}`)

	req := httptest.NewRequest("PUT", "/area/"+f.ID, strings.NewReader(`{"radius": 750}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var updated domain.GeoFence
	json.NewDecoder(resp.Body).Decode(&updated)
	if updated.Radius != 750 {
		t.Errorf("expected radius 750, got %f", updated.Radius)
	}
	if updated.Latitude != f.Latitude || updated.Longitude != f.Longitude {
		t.Error("center must be untouched by a radius-only update")
	}
	if updated.Description != "Cyber Hub" {
		t.Errorf("description must be untouched, got %q", updated.Description)
	}
}

func TestUpdateArea_InvalidBody(t *testing.T) {
	app := setupApp(makeDeps())
	f := createArea(t, app, `{"latitude": 1, "longitude": 1, "radius": 100}`)

	req := httptest.NewRequest("PUT", "/area/"+f.ID, strings.NewReader(`{"latitude": 200}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteArea_EchoAndSecondDelete(t *testing.T) {
	app := setupApp(makeDeps())
	f := createArea(t, app, `{"latitude": 5, "longitude": 5, "radius": 200}`)

	req := httptest.NewRequest("DELETE", "/area/"+f.ID, nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Message     string          `json:"message"`
		DeletedArea domain.GeoFence `json:"deletedArea"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Message == "" {
		t.Error("expected a message")
	}
	if result.DeletedArea.ID != f.ID {
		t.Errorf("expected deletedArea %s, got %s", f.ID, result.DeletedArea.ID)
	}

	// Second delete must 404
	req = httptest.NewRequest("DELETE", "/area/"+f.ID, nil)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestListAreas_Pagination(t *testing.T) {
	app := setupApp(makeDeps())
	for i := 0; i < 5; i++ {
		createArea(t, app, fmt.Sprintf(`{"latitude": %d, "longitude": %d, "radius": 100}`, 10+i, 10+i))
	}

	req := httptest.NewRequest("GET", "/areas?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.GeoFence `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 areas in page, got %d", len(result.Data))
	}
}

// ---- Spatial query tests ----

func TestNearby_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/nearby", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request error, got %s", apiErr.Code)
	}
}

func TestNearby_DistanceFilterAndOrdering(t *testing.T) {
	app := setupApp(makeDeps())
	// ~787 m and ~1400 m from origin respectively
	createArea(t, app, `{"latitude": 0.005, "longitude": 0.005, "radius": 100, "description": "near"}`)
	createArea(t, app, `{"latitude": 0.0089, "longitude": 0.0089, "radius": 100, "description": "far"}`)

	req := httptest.NewRequest("GET", "/nearby?latitude=0&longitude=0&maxDistance=1000", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var result struct {
		Areas []domain.GeoFence `json:"areas"`
		Count int               `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count != 1 {
		t.Fatalf("expected 1 area inside 1000m, got %d", result.Count)
	}
	if result.Areas[0].Description != "near" {
		t.Errorf("expected the near area, got %q", result.Areas[0].Description)
	}
	if result.Areas[0].Distance == nil {
		t.Fatal("expected per-item distance")
	}
	if d := *result.Areas[0].Distance; d < 700 || d > 900 {
		t.Errorf("distance out of expected band: %f", d)
	}
}

func TestNearby_InvalidQueryPoint(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/nearby?latitude=95&longitude=0&maxDistance=100", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestIntersecting_Overlap(t *testing.T) {
	app := setupApp(makeDeps())
	// Center ~1112 m east of origin with radius 700: overlaps a 500 m query circle
	createArea(t, app, `{"latitude": 0, "longitude": 0.01, "radius": 700, "description": "overlap"}`)
	// ~5560 m away, far outside
	createArea(t, app, `{"latitude": 0, "longitude": 0.05, "radius": 100, "description": "apart"}`)

	req := httptest.NewRequest("GET", "/intersecting?latitude=0&longitude=0&radius=500", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Areas []domain.GeoFence `json:"areas"`
		Count int               `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count != 1 {
		t.Fatalf("expected 1 intersecting area, got %d", result.Count)
	}
	if result.Areas[0].Description != "overlap" {
		t.Errorf("expected the overlapping area, got %q", result.Areas[0].Description)
	}
}

// ---- Owner scoping ----

func TestMyAreas_OwnerFromBearerToken(t *testing.T) {
	resolver := &mockResolver{owners: map[string]string{"tok-alice": "alice"}}
	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Identity = resolver
	}))

	// alice creates one fence, an anonymous caller another
	req := httptest.NewRequest("POST", "/mark-area",
		strings.NewReader(`{"latitude": 30, "longitude": 30, "radius": 100}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok-alice")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	createArea(t, app, `{"latitude": 40, "longitude": 40, "radius": 100}`)

	req = httptest.NewRequest("GET", "/my-areas", nil)
	req.Header.Set("Authorization", "Bearer tok-alice")
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Areas []domain.GeoFence `json:"areas"`
		Count int               `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count != 1 {
		t.Fatalf("expected alice to own 1 area, got %d", result.Count)
	}
	if result.Areas[0].UserID != "alice" {
		t.Errorf("expected owner alice, got %q", result.Areas[0].UserID)
	}
}

func TestMyAreas_InvalidToken(t *testing.T) {
	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Identity = &mockResolver{owners: map[string]string{}}
	}))

	req := httptest.NewRequest("GET", "/my-areas", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestStats_EmptyOwner(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/stats", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stats domain.FenceStats
	json.NewDecoder(resp.Body).Decode(&stats)
	if stats.TotalAreas != 0 || stats.TotalCoverage != 0 {
		t.Errorf("expected zero-valued aggregates, got %+v", stats)
	}
}

// ---- Counter bumps ----

func TestAlertAndTouch(t *testing.T) {
	app := setupApp(makeDeps())
	f := createArea(t, app, `{"latitude": 12, "longitude": 12, "radius": 300}`)

	req := httptest.NewRequest("POST", "/area/"+f.ID+"/alert", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("alert: expected 200, got %d", resp.StatusCode)
	}
	var bumped domain.GeoFence
	json.NewDecoder(resp.Body).Decode(&bumped)
	if bumped.TotalAlerts != 1 {
		t.Errorf("expected totalAlerts 1, got %d", bumped.TotalAlerts)
	}
	if bumped.LastAlert == nil {
		t.Error("expected lastAlert timestamp")
	}

	req = httptest.NewRequest("POST", "/area/"+f.ID+"/touch", nil)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("touch: expected 200, got %d", resp.StatusCode)
	}
	var touched domain.GeoFence
	json.NewDecoder(resp.Body).Decode(&touched)
	if touched.LastAccessed == nil {
		t.Error("expected lastAccessed timestamp")
	}
}

// ---- Admin surfaces ----

func TestAuthorityLifecycle(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/admin/authorities",
		strings.NewReader(`{"name": "Gurugram Police", "email": "ops@ggn.gov.in", "region": "Haryana"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var account domain.AuthorityAccount
	json.NewDecoder(resp.Body).Decode(&account)
	if account.Status != domain.AuthorityPending {
		t.Errorf("expected pending status, got %q", account.Status)
	}

	req = httptest.NewRequest("POST", "/admin/authorities/"+account.ID+"/status",
		strings.NewReader(`{"status": "approved"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var approved domain.AuthorityAccount
	json.NewDecoder(resp.Body).Decode(&approved)
	if approved.Status != domain.AuthorityApproved {
		t.Errorf("expected approved, got %q", approved.Status)
	}

	req = httptest.NewRequest("GET", "/admin/authorities?status=approved", nil)
	resp, _ = app.Test(req, -1)
	var list struct {
		Count int `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&list)
	if list.Count != 1 {
		t.Errorf("expected 1 approved authority, got %d", list.Count)
	}
}

func TestAuthority_MissingFields(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/admin/authorities", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestKYCLifecycle(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/admin/kyc",
		strings.NewReader(`{"userId": "u1", "fullName": "Asha Rao", "documentType": "passport", "documentNumber": "P1234567"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var app1 domain.KYCApplication
	json.NewDecoder(resp.Body).Decode(&app1)
	if app1.Status != domain.KYCPending {
		t.Errorf("expected pending, got %q", app1.Status)
	}

	req = httptest.NewRequest("POST", "/admin/kyc/"+app1.ID+"/status",
		strings.NewReader(`{"status": "verified"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("POST", "/admin/kyc/"+app1.ID+"/status",
		strings.NewReader(`{"status": "bogus"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for unknown status, got %d", resp.StatusCode)
	}
}

// ---- WebSocket availability ----

func TestWebSocket_UnavailableWithoutEventStream(t *testing.T) {
	// No NATS connection wired: the endpoint must refuse up front
	// instead of accepting the upgrade and dropping the socket.
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/ws", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "service_unavailable" {
		t.Errorf("expected service_unavailable, got %q", body.Code)
	}
}
