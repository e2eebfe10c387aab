package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"courtflow/auth"
	"courtflow/court"
	"courtflow/dispute"
	"courtflow/phase"
)

type stubAuthService struct {
	user        *auth.User
	registerErr error
	loginResult auth.LoginResult
	loginErr    error
	verifyID    string
	verifyRole  auth.Role
	verifyErr   error
}

func (s *stubAuthService) Register(_ context.Context, _ auth.RegisterRequest) (*auth.User, error) {
	return s.user, s.registerErr
}

func (s *stubAuthService) Login(_ context.Context, _ auth.LoginRequest) (auth.LoginResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) VerifyToken(_ string) (string, auth.Role, error) {
	return s.verifyID, s.verifyRole, s.verifyErr
}

type stubCourtService struct {
	record   court.Record
	records  []court.Record
	upserted []court.UpsertParams
	err      error
}

func (s *stubCourtService) GetByID(_ context.Context, _ string) (court.Record, error) {
	return s.record, s.err
}

func (s *stubCourtService) List(_ context.Context, _ int) ([]court.Record, error) {
	return s.records, s.err
}

func (s *stubCourtService) UpsertConfig(_ context.Context, params court.UpsertParams) (court.Record, error) {
	if s.err != nil {
		return court.Record{}, s.err
	}
	s.upserted = append(s.upserted, params)
	return court.Record{ID: params.ID, Name: params.Name}, nil
}

type stubDisputeService struct {
	records []dispute.Record
	view    dispute.View
	events  []dispute.Event
	err     error

	gotAt *int64
}

func (s *stubDisputeService) List(_ context.Context, _ string, _ phase.DisputeState) ([]dispute.Record, error) {
	return s.records, s.err
}

func (s *stubDisputeService) Get(_ context.Context, _ string, at *int64) (dispute.View, error) {
	s.gotAt = at
	return s.view, s.err
}

func (s *stubDisputeService) Events(_ context.Context, _ string) ([]dispute.Event, error) {
	return s.events, s.err
}

func viewerServer(courts CourtService, disputes DisputeService) *Server {
	return NewServer(&stubAuthService{verifyID: "u1", verifyRole: auth.RoleViewer}, courts, disputes, nil)
}

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Authorization", "Bearer token")
	return req
}

func TestHealthzSkipsAuth(t *testing.T) {
	server := viewerServer(&stubCourtService{}, &stubDisputeService{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	server := viewerServer(&stubCourtService{}, &stubDisputeService{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courts", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleCourt_Success(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	server := viewerServer(&stubCourtService{
		record: court.Record{
			ID:           "0xc0",
			Name:         "General Court",
			ChainID:      1,
			TermDuration: 28800000,
			UpdatedAt:    now,
		},
	}, &stubDisputeService{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/courts/0xc0", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp courtResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "0xc0" || resp.TermDuration != 28800000 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.UpdatedAt != now.Format(time.RFC3339) {
		t.Fatalf("expected updatedAt %s, got %s", now.Format(time.RFC3339), resp.UpdatedAt)
	}
}

func TestHandleCourt_NotFound(t *testing.T) {
	server := viewerServer(&stubCourtService{err: court.ErrNotFound}, &stubDisputeService{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/courts/missing", ""))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleDisputes_List(t *testing.T) {
	server := viewerServer(&stubCourtService{}, &stubDisputeService{
		records: []dispute.Record{
			{ID: "d1", CourtID: "0xc0", State: phase.StateAdjudicating},
			{ID: "d2", CourtID: "0xc0", State: phase.StateEvidence},
		},
	})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/disputes?court=0xc0", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Items []disputeResponse `json:"items"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if payload.Total != 2 || payload.Items[0].ID != "d1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestHandleDisputes_InvalidState(t *testing.T) {
	server := viewerServer(&stubCourtService{}, &stubDisputeService{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/disputes?state=Bogus", ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleDispute_PassesAtOverride(t *testing.T) {
	next := int64(2000)
	disputes := &stubDisputeService{
		view: dispute.View{
			Record:  dispute.Record{ID: "d1", State: phase.StateEvidence},
			Current: phase.Result{Phase: phase.PhaseEvidence, NextTransition: &next},
			Timeline: []phase.TimelineItem{
				{Phase: phase.PhaseCreated},
				{Phase: phase.PhaseEvidence, EndTime: 2000, Active: true},
			},
		},
	}
	server := viewerServer(&stubCourtService{}, disputes)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/disputes/d1?at=1500", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if disputes.gotAt == nil || *disputes.gotAt != 1500 {
		t.Fatalf("expected at=1500 to reach the service, got %+v", disputes.gotAt)
	}

	var resp disputeDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Current.Phase != phase.PhaseEvidence || len(resp.Timeline) != 2 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestHandleDispute_BadAt(t *testing.T) {
	server := viewerServer(&stubCourtService{}, &stubDisputeService{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/disputes/d1?at=notanumber", ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleDispute_NotFound(t *testing.T) {
	server := viewerServer(&stubCourtService{}, &stubDisputeService{err: dispute.ErrNotFound})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/disputes/missing", ""))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleDispute_EngineErrorUnprocessable(t *testing.T) {
	server := viewerServer(&stubCourtService{}, &stubDisputeService{err: phase.ErrEmptyRounds})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/disputes/d1", ""))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestHandleUpsertCourt_RequiresOperator(t *testing.T) {
	server := viewerServer(&stubCourtService{}, &stubDisputeService{})

	body := `{"id":"0xc0","termDuration":1000}`
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodPost, "/api/courts", body))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandleUpsertCourt_OperatorSuccess(t *testing.T) {
	courts := &stubCourtService{}
	server := NewServer(&stubAuthService{verifyID: "u1", verifyRole: auth.RoleOperator}, courts, &stubDisputeService{}, nil)

	body := `{"id":"0xc0","name":"General Court","termDuration":1000,"evidenceTerms":2}`
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodPost, "/api/courts", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(courts.upserted) != 1 || courts.upserted[0].ID != "0xc0" {
		t.Fatalf("expected upsert to reach the service, got %+v", courts.upserted)
	}
}

func TestHandleUpsertCourt_RejectsNegativeConfig(t *testing.T) {
	server := NewServer(&stubAuthService{verifyID: "u1", verifyRole: auth.RoleOperator}, &stubCourtService{}, &stubDisputeService{}, nil)

	body := `{"id":"0xc0","termDuration":-5}`
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodPost, "/api/courts", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRegister_Duplicate(t *testing.T) {
	server := NewServer(&stubAuthService{registerErr: auth.ErrDuplicateEmail}, &stubCourtService{}, &stubDisputeService{}, nil)

	body := `{"email":"juror@example.com","password":"strongpassword","full_name":"Casey Juror"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	server := NewServer(&stubAuthService{loginErr: auth.ErrInvalidCredentials}, &stubCourtService{}, &stubDisputeService{}, nil)

	body := `{"email":"juror@example.com","password":"wrong"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleDisputeEvents(t *testing.T) {
	now := time.Now().UTC()
	server := viewerServer(&stubCourtService{}, &stubDisputeService{
		events: []dispute.Event{
			{ID: 1, DisputeID: "d1", Type: dispute.EventStateChanged, Payload: map[string]any{"from": "Evidence", "to": "Adjudicating"}, CreatedAt: now},
		},
	})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/disputes/d1/events", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Items []eventResponse `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].Type != dispute.EventStateChanged {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
