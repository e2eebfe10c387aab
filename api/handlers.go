package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"courtflow/auth"
	"courtflow/court"
	"courtflow/dispute"
	"courtflow/phase"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateEmail):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("register account", "error", err)
			writeError(w, http.StatusBadRequest, "invalid registration")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(*user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.authService.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

func (s *Server) handleCourts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records, err := s.courtService.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list courts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]courtResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, toCourtResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (s *Server) handleCourt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing court id")
		return
	}

	rec, err := s.courtService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, court.ErrNotFound) {
			writeError(w, http.StatusNotFound, "court not found")
			return
		}
		s.logger.Error("get court", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toCourtResponse(rec))
}

func (s *Server) handleUpsertCourt(w http.ResponseWriter, r *http.Request) {
	if roleFromContext(r.Context()) != auth.RoleOperator {
		writeError(w, http.StatusForbidden, "operator role required")
		return
	}

	var req struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		ChainID       int64  `json:"chainId"`
		CurrentTermID int64  `json:"currentTermId"`

		TermDuration            int64 `json:"termDuration"`
		FirstTermStartTime      int64 `json:"firstTermStartTime"`
		EvidenceTerms           int64 `json:"evidenceTerms"`
		CommitTerms             int64 `json:"commitTerms"`
		RevealTerms             int64 `json:"revealTerms"`
		AppealTerms             int64 `json:"appealTerms"`
		AppealConfirmationTerms int64 `json:"appealConfirmationTerms"`
		MaxRegularAppealRounds  int64 `json:"maxRegularAppealRounds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "court id is required")
		return
	}

	cfg := phase.CourtConfig{
		TermDuration:            req.TermDuration,
		FirstTermStartTime:      req.FirstTermStartTime,
		EvidenceTerms:           req.EvidenceTerms,
		CommitTerms:             req.CommitTerms,
		RevealTerms:             req.RevealTerms,
		AppealTerms:             req.AppealTerms,
		AppealConfirmationTerms: req.AppealConfirmationTerms,
		MaxRegularAppealRounds:  req.MaxRegularAppealRounds,
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.courtService.UpsertConfig(r.Context(), court.UpsertParams{
		ID:                      req.ID,
		Name:                    req.Name,
		ChainID:                 req.ChainID,
		CurrentTermID:           req.CurrentTermID,
		TermDuration:            req.TermDuration,
		FirstTermStartTime:      req.FirstTermStartTime,
		EvidenceTerms:           req.EvidenceTerms,
		CommitTerms:             req.CommitTerms,
		RevealTerms:             req.RevealTerms,
		AppealTerms:             req.AppealTerms,
		AppealConfirmationTerms: req.AppealConfirmationTerms,
		MaxRegularAppealRounds:  req.MaxRegularAppealRounds,
	})
	if err != nil {
		s.logger.Error("upsert court", "id", req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toCourtResponse(rec))
}

func (s *Server) handleDisputes(w http.ResponseWriter, r *http.Request) {
	courtID := r.URL.Query().Get("court")
	state := phase.DisputeState(r.URL.Query().Get("state"))
	if state != "" && !validState(state) {
		writeError(w, http.StatusBadRequest, "invalid state filter")
		return
	}

	records, err := s.disputeService.List(r.Context(), courtID, state)
	if err != nil {
		s.logger.Error("list disputes", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]disputeResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, toDisputeResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (s *Server) handleDispute(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing dispute id")
		return
	}

	var at *int64
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at timestamp")
			return
		}
		at = &parsed
	}

	view, err := s.disputeService.Get(r.Context(), id, at)
	if err != nil {
		switch {
		case errors.Is(err, dispute.ErrNotFound), errors.Is(err, court.ErrNotFound):
			writeError(w, http.StatusNotFound, "dispute not found")
		case errors.Is(err, phase.ErrMalformedConfig),
			errors.Is(err, phase.ErrEmptyRounds),
			errors.Is(err, phase.ErrUnknownDisputeState):
			s.logger.Error("resolve dispute", "id", id, "error", err)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.logger.Error("get dispute", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toDisputeDetailResponse(view))
}

func (s *Server) handleDisputeEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing dispute id")
		return
	}

	events, err := s.disputeService.Events(r.Context(), id)
	if err != nil {
		s.logger.Error("list dispute events", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		items = append(items, toEventResponse(ev))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func validState(state phase.DisputeState) bool {
	switch state {
	case phase.StateEvidence, phase.StateJuryDrafting, phase.StateAdjudicating, phase.StateRuled:
		return true
	default:
		return false
	}
}
