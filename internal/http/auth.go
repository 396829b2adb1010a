package http

import (
	"context"
	"net/http"

	"kesef/internal/core"
	"kesef/internal/log"
)

// UserIDHeader identifies the caller. Sessions are the client's concern.
const UserIDHeader = "X-User-ID"

type userContextKey struct{}

func withCaller(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

func callerFrom(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(core.User)
	return u, ok
}

// withUser resolves the caller or answers 401.
func (s *Server) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.svc.Users.Authenticate(r.Context(), r.Header.Get(UserIDHeader))
		if err != nil {
			status, msg := statusFor(err)
			if status == http.StatusNotFound {
				status, msg = http.StatusUnauthorized, "unknown user"
			}
			ErrorResponse(status, msg).Write(w)
			return
		}
		ctx := withCaller(r.Context(), u)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUserID, u.ID))
		next(w, r.WithContext(ctx))
	}
}

// withAdmin is withUser restricted to admins.
func (s *Server) withAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request) {
		u, _ := callerFrom(r.Context())
		if !u.IsAdmin {
			ErrorResponse(http.StatusForbidden, "admin privileges required").Write(w)
			return
		}
		next(w, r)
	})
}

// ownerOrAdmin lets a caller read their own data, and admins anyone's.
func ownerOrAdmin(r *http.Request, userID string) bool {
	u, ok := callerFrom(r.Context())
	return ok && (u.ID == userID || u.IsAdmin)
}
