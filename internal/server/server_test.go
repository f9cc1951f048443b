package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"transformline/internal/config"
	"transformline/internal/db"
	"transformline/internal/engine"
	"transformline/internal/finance"
	"transformline/internal/migrate"
	"transformline/internal/orchestrator"
)

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T, auth AuthConfig) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn, config.Default())
	handler, err := New(Config{Engine: e, BasePath: "/v0", Auth: auth, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func errorCode(t *testing.T, data []byte) string {
	t.Helper()
	var env struct {
		Error apiErrorBody `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal error envelope: %v (%s)", err, string(data))
	}
	return env.Error.Code
}

func TestProjection(t *testing.T) {
	srv, cleanup := newTestServer(t, AuthConfig{})
	defer cleanup()
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/projections", map[string]any{
		"costs":         []map[string]any{{"category": "infrastructure", "year_1": 100}},
		"discount_rate": 0,
		"horizon_years": 2,
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("projection status %d: %s", res.StatusCode, string(data))
	}
	var p finance.Projection
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal projection: %v", err)
	}
	if p.NPV != -100 || p.TotalCost != 100 || len(p.Cashflow) != 2 {
		t.Fatalf("unexpected projection %+v", p)
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/projections", map[string]any{"horizon_years": -1}, nil)
	if res.StatusCode != http.StatusBadRequest || errorCode(t, data) != "bad_request" {
		t.Fatalf("expected bad_request, got %d %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/projections", map[string]any{
		"costs": []map[string]any{{"category": "snacks", "year_1": 1}},
	}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected schema validation to fail with 400, got %d %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/projections/sensitivity", map[string]any{
		"costs":    []map[string]any{{"category": "talent", "year_1": 100}},
		"benefits": []map[string]any{{"category": "cost_reduction", "year_1": 80, "year_2": 80, "confidence": 1, "realization_probability": 1}},
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("sensitivity status %d: %s", res.StatusCode, string(data))
	}
	var sens finance.SensitivityReport
	_ = json.Unmarshal(data, &sens)
	if len(sens.Variables) != 3 {
		t.Fatalf("expected default sweep, got %+v", sens.Variables)
	}
}

func TestTransformationLifecycle(t *testing.T) {
	srv, cleanup := newTestServer(t, AuthConfig{})
	defer cleanup()
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/transformations", map[string]any{
		"name":             "Acme",
		"industry":         "retail",
		"size":             "medium",
		"current_maturity": 2,
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
	var plan orchestrator.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		t.Fatalf("unmarshal plan: %v", err)
	}
	if plan.TimelineWeeks != 33 || plan.CurrentPhase != orchestrator.PhaseFoundation {
		t.Fatalf("unexpected plan %+v", plan)
	}
	base := srv.URL + "/v0/transformations/" + plan.ID

	res, data = doJSON(t, client, http.MethodPost, base+"/readiness", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("readiness status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, base+"/roadmap", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("roadmap status %d: %s", res.StatusCode, string(data))
	}
	var roadmap []orchestrator.RoadmapPhase
	_ = json.Unmarshal(data, &roadmap)
	if len(roadmap) != 4 {
		t.Fatalf("expected 4 roadmap phases, got %d", len(roadmap))
	}

	for i := 0; i < 3; i++ {
		res, data = doJSON(t, client, http.MethodPost, base+"/advance", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("advance %d status %d: %s", i, res.StatusCode, string(data))
		}
	}
	res, data = doJSON(t, client, http.MethodPost, base+"/advance", nil, nil)
	if res.StatusCode != http.StatusConflict || errorCode(t, data) != "final_phase" {
		t.Fatalf("expected final_phase conflict, got %d %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodGet, base+"/progress", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("progress status %d: %s", res.StatusCode, string(data))
	}
	var progress orchestrator.Progress
	_ = json.Unmarshal(data, &progress)
	if progress.CompletionPercentage != 100 {
		t.Fatalf("expected 100%% completion, got %v", progress.CompletionPercentage)
	}

	res, data = doJSON(t, client, http.MethodPut, base+"/target", map[string]any{"target_maturity": 5}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("target status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/transformations/missing/progress", nil, nil)
	if res.StatusCode != http.StatusNotFound || errorCode(t, data) != "not_found" {
		t.Fatalf("expected not_found, got %d %s", res.StatusCode, string(data))
	}
}

func TestAssessmentAndCaseAttachedToPlan(t *testing.T) {
	srv, cleanup := newTestServer(t, AuthConfig{})
	defer cleanup()
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/assessments", map[string]any{
		"organization_name": "Acme",
		"responses":         map[string]int{"data_maturity": 9},
	}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected invalid response rejected, got %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/assessments", map[string]any{
		"organization_name": "Acme",
		"industry":          "retail",
		"responses":         map[string]int{"data_maturity": 2, "strategic_alignment": 4},
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("assessment status %d: %s", res.StatusCode, string(data))
	}
	var assessment engine.Assessment
	if err := json.Unmarshal(data, &assessment); err != nil {
		t.Fatalf("unmarshal assessment: %v", err)
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/transformations", map[string]any{
		"name": "Acme", "industry": "retail", "current_maturity": 2,
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
	var plan orchestrator.Plan
	_ = json.Unmarshal(data, &plan)

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/transformations/"+plan.ID+"/readiness", map[string]any{"assessment_id": assessment.ID}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("readiness status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/business-cases", map[string]any{
		"organization_name":    "Acme",
		"initiative_name":      "Demand forecasting",
		"industry":             "retail",
		"investment_budget":    1000000,
		"strategic_objectives": []string{"Revenue growth"},
		"plan_id":              plan.ID,
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("case status %d: %s", res.StatusCode, string(data))
	}
	var stored engine.StoredCase
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("unmarshal case: %v", err)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/transformations/"+plan.ID, nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get plan status %d: %s", res.StatusCode, string(data))
	}
	var got orchestrator.Plan
	_ = json.Unmarshal(data, &got)
	if got.Budget != stored.Case.Projection.TotalCost {
		t.Fatalf("plan budget %v, want %v", got.Budget, stored.Case.Projection.TotalCost)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/business-cases/"+stored.ID+"/presentation", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("presentation status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/business-cases", map[string]any{
		"organization_name": "Acme", "investment_budget": 10, "plan_id": "missing",
	}, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected unknown plan, got %d %s", res.StatusCode, string(data))
	}
}

func TestEventsPagination(t *testing.T) {
	srv, cleanup := newTestServer(t, AuthConfig{})
	defer cleanup()
	client := srv.Client()
	for i := 0; i < 3; i++ {
		res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/transformations", map[string]any{
			"name": fmt.Sprintf("Org %d", i), "current_maturity": 1,
		}, nil)
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("create status %d: %s", res.StatusCode, string(data))
		}
	}

	seen := map[int64]bool{}
	cursor := ""
	for page := 0; page < 3; page++ {
		url := srv.URL + "/v0/events?limit=2"
		if cursor != "" {
			url += "&cursor=" + cursor
		}
		res, data := doJSON(t, client, http.MethodGet, url, nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("events status %d: %s", res.StatusCode, string(data))
		}
		var body paginatedEvents
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("unmarshal events: %v", err)
		}
		for _, e := range body.Items {
			if seen[e.ID] {
				t.Fatalf("event %d returned twice", e.ID)
			}
			seen[e.ID] = true
		}
		if body.NextCursor == "" {
			break
		}
		cursor = body.NextCursor
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 events across pages, got %d", len(seen))
	}

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/events?cursor=abc", nil, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad cursor rejected, got %d %s", res.StatusCode, string(data))
	}
}

func TestBearerAuth(t *testing.T) {
	secret := "test-secret"
	srv, cleanup := newTestServer(t, AuthConfig{JWTSecret: secret})
	defer cleanup()
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health should not need auth: %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/transformations", nil, nil)
	if res.StatusCode != http.StatusUnauthorized || errorCode(t, data) != "unauthorized" {
		t.Fatalf("expected unauthorized, got %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/transformations", nil, map[string]string{"Authorization": "Bearer nope"})
	if res.StatusCode != http.StatusUnauthorized || errorCode(t, data) != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %d %s", res.StatusCode, string(data))
	}
	other, err := IssueToken("other-secret", "mallory", nil, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	res, _ = doJSON(t, client, http.MethodGet, srv.URL+"/v0/transformations", nil, map[string]string{"Authorization": "Bearer " + other})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("token signed with another secret accepted: %d", res.StatusCode)
	}

	token, err := IssueToken(secret, "alice", []string{"consultant"}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v0/transformations", map[string]any{"name": "Acme", "current_maturity": 3}, headers)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/events", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("events status %d: %s", res.StatusCode, string(data))
	}
	var body paginatedEvents
	_ = json.Unmarshal(data, &body)
	if len(body.Items) != 1 || body.Items[0].ActorID != "alice" {
		t.Fatalf("expected event by alice, got %+v", body.Items)
	}
}

func TestOpenAPIAndDocs(t *testing.T) {
	srv, cleanup := newTestServer(t, AuthConfig{JWTSecret: "s"})
	defer cleanup()
	client := srv.Client()
	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/openapi.json", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("openapi status %d", res.StatusCode)
	}
	var oas map[string]any
	if err := json.Unmarshal(data, &oas); err != nil {
		t.Fatalf("unmarshal openapi: %v", err)
	}
	paths, _ := oas["paths"].(map[string]any)
	if _, ok := paths["/v0/transformations/{id}/advance"]; !ok {
		t.Fatalf("advance route missing from openapi")
	}
	res, _ = doJSON(t, client, http.MethodGet, srv.URL+"/docs", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("docs status %d", res.StatusCode)
	}
}

func TestHealthReportsSchemaVersion(t *testing.T) {
	srv, cleanup := newTestServer(t, AuthConfig{})
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health: %d %s", res.StatusCode, string(data))
	}
	var got healthResponse
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	latest, err := migrate.Latest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.Status != "ok" || got.Version != latest || got.Latest != latest {
		t.Fatalf("unexpected health %+v, latest %d", got, latest)
	}
}
