package api

import (
	"encoding/json"
	"net/http"

	"github.com/showup-club/showup/internal/domain"
)

// ─── Ledger & Fee API ───────────────────────────────────────────────────────
//
// GET /v1/balances/{identity}  accrued balance
// GET /v1/balances/{identity}/statement  ledger entries
// POST /v1/withdrawals  withdraw caller's balance
// GET /v1/fee-beneficiary  current fee beneficiary
// PUT /v1/fee-beneficiary  transfer the role

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	who, ok := identityParam(w, r)
	if !ok {
		return
	}
	bal, err := s.ledger.BalanceOf(r.Context(), who)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"identity": who, "balance": bal})
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	who, ok := identityParam(w, r)
	if !ok {
		return
	}
	entries, err := s.ledger.Statement(r.Context(), who)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"identity": who, "entries": entries})
}

type withdrawRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, _ := Caller(r.Context())
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "invalid_parameter")
		return
	}
	payout, err := s.ledger.Withdraw(r.Context(), caller, domain.Amount(req.Amount))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payout)
}

func (s *Server) handleFeeBeneficiary(w http.ResponseWriter, r *http.Request) {
	who, err := s.access.CurrentFeeBeneficiary(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"beneficiary": who})
}

type transferRequest struct {
	Beneficiary string `json:"beneficiary"`
}

func (s *Server) handleTransferFeeBeneficiary(w http.ResponseWriter, r *http.Request) {
	caller, _ := Caller(r.Context())
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "invalid_parameter")
		return
	}
	// Malformed text is passed through as-is so the controller reports
	// NotAuthorized before InvalidRecipient.
	next, err := domain.ParseIdentity(req.Beneficiary)
	if err != nil {
		next = domain.Identity(req.Beneficiary)
	}
	if err := s.access.TransferFeeBeneficiary(r.Context(), caller, next); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"beneficiary": next})
}
