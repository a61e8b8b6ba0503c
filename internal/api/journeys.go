package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/showup-club/showup/internal/domain"
)

// ─── Journey API ────────────────────────────────────────────────────────────
//
// POST /v1/journeys  create (caller = creator)
// GET  /v1/journeys  caller's journey ids
// GET  /v1/journeys/{id}  full record
// POST /v1/journeys/{id}/show-ups  record progress
// POST /v1/journeys/{id}/complete  settle
// GET  /v1/journeys/{id}/events  notification history
// GET  /v1/users/{identity}/journeys  ids created by identity

type createJourneyRequest struct {
	Action      string `json:"action"`
	Format      string `json:"format"`
	Duration    int64  `json:"duration"`
	DailyValue  int64  `json:"daily_value"`
	Description string `json:"description"`
	Sink        string `json:"sink"`
	Fee         int64  `json:"fee"`
	Attached    int64  `json:"attached"`
}

type showUpRequest struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

// journeyView is a journey plus its derived target and window end.
type journeyView struct {
	domain.Journey
	Target int64     `json:"target"`
	EndsAt time.Time `json:"ends_at"`
}

func (s *Server) view(j domain.Journey) journeyView {
	return journeyView{
		Journey: j,
		Target:  j.Target(),
		EndsAt:  j.EndsAt(s.journeys.Config().DayLength),
	}
}

func (s *Server) handleCreateJourney(w http.ResponseWriter, r *http.Request) {
	caller, _ := Caller(r.Context())

	var req createJourneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "invalid_parameter")
		return
	}
	sink, err := domain.ParseIdentity(req.Sink)
	if err != nil {
		s.writeDomainError(w, &domain.ValidationError{Field: "sink", Err: err})
		return
	}

	id, err := s.journeys.Create(r.Context(), caller, domain.JourneyParams{
		Action:      req.Action,
		Format:      req.Format,
		Duration:    req.Duration,
		DailyValue:  req.DailyValue,
		Description: req.Description,
		Sink:        sink,
		Fee:         domain.Amount(req.Fee),
		Attached:    domain.Amount(req.Attached),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleMyJourneys(w http.ResponseWriter, r *http.Request) {
	caller, _ := Caller(r.Context())
	ids, err := s.journeys.JourneyIDs(r.Context(), caller)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"journey_ids": ids})
}

func (s *Server) handleUserJourneys(w http.ResponseWriter, r *http.Request) {
	who, ok := identityParam(w, r)
	if !ok {
		return
	}
	ids, err := s.journeys.JourneyIDsForUser(r.Context(), who)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"identity": who, "journey_ids": ids})
}

func (s *Server) handleGetJourney(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyIDParam(w, r)
	if !ok {
		return
	}
	j, err := s.journeys.Journey(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(*j))
}

func (s *Server) handleShowUp(w http.ResponseWriter, r *http.Request) {
	caller, _ := Caller(r.Context())
	id, ok := journeyIDParam(w, r)
	if !ok {
		return
	}
	var req showUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "invalid_parameter")
		return
	}
	if err := s.journeys.ShowUp(r.Context(), caller, id, req.Amount, req.Note); err != nil {
		s.writeDomainError(w, err)
		return
	}
	j, err := s.journeys.Journey(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(*j))
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	caller, _ := Caller(r.Context())
	id, ok := journeyIDParam(w, r)
	if !ok {
		return
	}
	settlement, err := s.journeys.Complete(r.Context(), caller, id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlement)
}

func (s *Server) handleJourneyEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := journeyIDParam(w, r)
	if !ok {
		return
	}
	events, err := s.journeys.Events(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"journey_id": id, "events": events})
}

// ─── Path Parameters ────────────────────────────────────────────────────────

func journeyIDParam(w http.ResponseWriter, r *http.Request) (domain.JourneyID, bool) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		// Ids are dense from zero, so anything else names no journey.
		writeError(w, http.StatusNotFound, "journey not found: "+raw, "not_found")
		return 0, false
	}
	return domain.JourneyID(n), true
}

func identityParam(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	who, err := domain.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), domain.ErrorKind(err))
		return "", false
	}
	return who, true
}
