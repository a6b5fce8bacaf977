package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mlucchetti/rfdrelax/internal/config"
	"github.com/mlucchetti/rfdrelax/internal/core/domain"
	"github.com/mlucchetti/rfdrelax/internal/core/ports"
)

type relaxerFake struct {
	result  *domain.RelaxResult
	err     error
	gotOpts domain.RelaxOptions
}

func (f *relaxerFake) Relax(_ context.Context, query domain.Query, opts domain.RelaxOptions) (*domain.RelaxResult, error) {
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.RelaxResult{
		Status:   domain.RelaxStatusExact,
		Original: query,
		Relaxed:  query,
		Matches:  1,
	}, nil
}

type listerFake struct {
	rfds []domain.RFD
	err  error
}

func (f listerFake) Candidates(context.Context, domain.Query) ([]domain.RFD, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rfds, nil
}

type jobServiceFake struct {
	job *domain.RelaxJob
	err error
}

func (f jobServiceFake) Submit(_ context.Context, query domain.Query, opts domain.RelaxOptions) (*domain.RelaxJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.job != nil {
		return f.job, nil
	}
	return &domain.RelaxJob{ID: "job-1", Query: query, Options: opts, Status: domain.JobStatusPending}, nil
}

func (f jobServiceFake) GetByID(context.Context, string) (*domain.RelaxJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.job, nil
}

func newTestHandler(cfg config.Config, relaxer ports.QueryRelaxer, lister ports.CandidateLister, jobs ports.RelaxJobService) http.Handler {
	return NewRouter(cfg, nil, relaxer, lister, jobs).Handler()
}

func mustTestRFD(t *testing.T, rhs string, attrs []string, thresholds map[string]float64) domain.RFD {
	t.Helper()
	rfd, err := domain.NewRFD(rhs, attrs, thresholds)
	if err != nil {
		t.Fatalf("NewRFD(%s) error = %v", rhs, err)
	}
	return rfd
}

func TestHealthzReportsOK(t *testing.T) {
	handler := newTestHandler(config.Config{}, &relaxerFake{}, listerFake{}, jobServiceFake{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header on response")
	}
}

func TestRelaxQueryReturnsResult(t *testing.T) {
	relaxer := &relaxerFake{result: &domain.RelaxResult{
		Status:     domain.RelaxStatusRelaxed,
		Matches:    3,
		Candidates: 2,
		Rounds: []domain.RelaxRound{
			{RFD: "(age <= 2) ---> (price <= 10)", Expr: "age in [28, 29, 30, 31, 32]", Matches: 3},
		},
	}}
	handler := newTestHandler(config.Config{}, relaxer, listerFake{}, jobServiceFake{})

	payload := `{"query":[{"attr":"age","value":30},{"attr":"city","value":"Rome"}],"min_matches":2}`
	req := httptest.NewRequest(http.MethodPost, "/v1/relax", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var resp struct {
		Status string `json:"status"`
		Rounds []struct {
			Expr string `json:"expr"`
		} `json:"rounds"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "relaxed" {
		t.Fatalf("expected relaxed status, got %q", resp.Status)
	}
	if len(resp.Rounds) != 1 || resp.Rounds[0].Expr != "age in [28, 29, 30, 31, 32]" {
		t.Fatalf("unexpected rounds payload: %+v", resp.Rounds)
	}
	if relaxer.gotOpts.MinMatches != 2 {
		t.Fatalf("expected min_matches forwarded, got %d", relaxer.gotOpts.MinMatches)
	}
}

func TestRelaxQueryRejectsEmptyQuery(t *testing.T) {
	handler := newTestHandler(config.Config{}, &relaxerFake{}, listerFake{}, jobServiceFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/relax", bytes.NewReader([]byte(`{"query":[]}`)))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty query, got %d", res.Code)
	}
}

func TestRelaxQueryRejectsWrongMethod(t *testing.T) {
	handler := newTestHandler(config.Config{}, &relaxerFake{}, listerFake{}, jobServiceFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/relax", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestSubmitRelaxationReturns202(t *testing.T) {
	handler := newTestHandler(config.Config{}, &relaxerFake{}, listerFake{}, jobServiceFake{})

	payload := `{"query":[{"attr":"age","value":30}],"min_matches":2,"max_rounds":1}`
	req := httptest.NewRequest(http.MethodPost, "/v1/relaxations", bytes.NewReader([]byte(payload)))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	var job struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&job); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if job.ID != "job-1" || job.Status != "pending" {
		t.Fatalf("unexpected job payload: %+v", job)
	}
}

func TestGetRelaxationReturnsJob(t *testing.T) {
	stored := &domain.RelaxJob{
		ID:     "job-2",
		Status: domain.JobStatusDone,
		Result: &domain.RelaxResult{Status: domain.RelaxStatusExact, Matches: 4},
	}
	handler := newTestHandler(config.Config{}, &relaxerFake{}, listerFake{}, jobServiceFake{job: stored})

	req := httptest.NewRequest(http.MethodGet, "/v1/relaxations/job-2", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var job struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Result *struct {
			Matches int `json:"matches"`
		} `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&job); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if job.ID != "job-2" || job.Status != "done" {
		t.Fatalf("unexpected job payload: %+v", job)
	}
	if job.Result == nil || job.Result.Matches != 4 {
		t.Fatalf("expected embedded result, got %+v", job.Result)
	}
}

func TestGetRelaxationRequiresID(t *testing.T) {
	handler := newTestHandler(config.Config{}, &relaxerFake{}, listerFake{}, jobServiceFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/relaxations/", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without job id, got %d", res.Code)
	}
}

func TestListRFDsRendersRules(t *testing.T) {
	schema := []string{"age", "city", "price"}
	lister := listerFake{rfds: []domain.RFD{
		mustTestRFD(t, "price", schema, map[string]float64{"price": 10}),
		mustTestRFD(t, "price", schema, map[string]float64{"age": 2, "price": 10}),
	}}
	handler := newTestHandler(config.Config{}, &relaxerFake{}, lister, jobServiceFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/rfds?attr=age&attr=city", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var resp struct {
		Count int `json:"count"`
		RFDs  []struct {
			RHS       string `json:"rhs"`
			Rule      string `json:"rule"`
			Wildcards int    `json:"wildcards"`
		} `json:"rfds"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.RFDs) != 2 {
		t.Fatalf("expected 2 dependencies, got %+v", resp)
	}
	if resp.RFDs[0].Rule != "---> (price <= 10)" {
		t.Fatalf("unexpected rule rendering: %q", resp.RFDs[0].Rule)
	}
	if resp.RFDs[0].Wildcards != 2 {
		t.Fatalf("expected 2 wildcards, got %d", resp.RFDs[0].Wildcards)
	}
	if resp.RFDs[1].Rule != "(age <= 2) ---> (price <= 10)" {
		t.Fatalf("unexpected rule rendering: %q", resp.RFDs[1].Rule)
	}
}
