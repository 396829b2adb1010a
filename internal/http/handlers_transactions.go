package http

import (
	"net/http"
	"sync/atomic"

	"kesef/internal/log"
)

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	caller, _ := callerFrom(r.Context())
	owner := caller.ID
	if req.UserID != "" && req.UserID != caller.ID {
		if !caller.IsAdmin {
			ErrorResponse(http.StatusForbidden, "access denied").Write(w)
			return
		}
		owner = req.UserID
	}

	res, err := s.svc.Transactions.Add(r.Context(), owner, req.input())
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.countOutlier(res.Verdict.IsOutlier)

	msg := "transaction added"
	if res.Verdict.IsOutlier {
		msg = "transaction added and flagged as unusual"
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Message(msg).
		Field("transaction", res.Transaction).
		Field("isOutlier", res.Verdict.IsOutlier).
		Field("reasons", res.Verdict.Reasons).
		Field("confidence", res.Verdict.Confidence).
		Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if !ownerOrAdmin(r, userID) {
		ErrorResponse(http.StatusForbidden, "access denied").Write(w)
		return
	}
	txs, err := s.svc.Transactions.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().
		Field("transactions", txs).
		Field("count", len(txs)).
		Write(w)
}

// handleDeleteTransaction lets admins delete on behalf of the owner.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r.Context())
	id := r.PathValue("id")

	owner := caller.ID
	if caller.IsAdmin {
		if tx, err := s.svc.Transactions.Get(r.Context(), id); err == nil {
			owner = tx.UserID
		}
	}
	if err := s.svc.Transactions.Delete(r.Context(), owner, id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	atomic.AddInt64(&s.metrics.transactionsDeleted, 1)
	NewJSONResponse().Message("transaction deleted").Write(w)
}
