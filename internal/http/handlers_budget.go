package http

import (
	"net/http"

	"kesef/internal/log"
)

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	caller, _ := callerFrom(r.Context())
	userID := caller.ID
	if req.UserID != "" {
		if !ownerOrAdmin(r, req.UserID) {
			ErrorResponse(http.StatusForbidden, "access denied").Write(w)
			return
		}
		userID = req.UserID
	}

	goals, habits := req.domain()
	prefs, err := s.svc.Budget.SavePreferences(r.Context(), userID, goals, habits)
	if err != nil {
		writeError(w, r, "save_preferences", err)
		return
	}
	NewJSONResponse().
		Message("preferences saved").
		Field("preferences", prefs).
		Write(w)
}

// userScoped resolves {userId} and answers 403 unless the caller may read it.
func (s *Server) userScoped(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.PathValue("userId")
	if !ownerOrAdmin(r, userID) {
		ErrorResponse(http.StatusForbidden, "access denied").Write(w)
		return "", false
	}
	return userID, true
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userScoped(w, r)
	if !ok {
		return
	}
	prefs, err := s.svc.Budget.Preferences(r.Context(), userID)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Field("preferences", prefs).Write(w)
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userScoped(w, r)
	if !ok {
		return
	}
	summary, err := s.svc.Budget.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, r, log.OpSummary, err)
		return
	}
	NewJSONResponse().Field("summary", summary).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userScoped(w, r)
	if !ok {
		return
	}
	overview, err := s.svc.Budget.Overview(r.Context(), userID)
	if err != nil {
		writeError(w, r, log.OpSummary, err)
		return
	}
	NewJSONResponse().Field("dashboard", overview).Write(w)
}
