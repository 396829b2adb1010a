package http

import (
	"net/http"
	"sync/atomic"

	"kesef/internal/core"
	"kesef/internal/log"
)

type publicUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func toPublicUser(u core.User) publicUser {
	return publicUser{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	u, err := s.svc.Users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, log.OpRegister, err)
		return
	}
	atomic.AddInt64(&s.metrics.registrations, 1)
	NewJSONResponse().
		Status(http.StatusCreated).
		Message("user registered").
		Field("user", toPublicUser(u)).
		Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	u, err := s.svc.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		atomic.AddInt64(&s.metrics.failedLogins, 1)
		writeError(w, r, log.OpLogin, err)
		return
	}
	NewJSONResponse().
		Message("login successful").
		Field("user", toPublicUser(u)).
		Write(w)
}

func (s *Server) handleUsersData(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.UsersData(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().
		Field("users", users).
		Field("totalUsers", len(users)).
		Write(w)
}

func (s *Server) handleMakeAdmin(w http.ResponseWriter, r *http.Request) {
	var req makeAdminRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	u, err := s.svc.Users.MakeAdmin(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, "make_admin", err)
		return
	}
	NewJSONResponse().
		Message(u.Email + " is now an admin").
		Field("user", toPublicUser(u)).
		Write(w)
}
