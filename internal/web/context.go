package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/reelistapp/reelist/internal/model"
	"github.com/reelistapp/reelist/internal/store"
)

type contextKey string

const userContextKey contextKey = "user"

// sessionCookie is the name of the session cookie set at login.
const sessionCookie = "reelist_session"

// userFrom returns the authenticated user stored on the request context.
func userFrom(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(userContextKey).(model.User)
	return u, ok
}

// requireAuth resolves the session cookie to a user and attaches it to the
// request context. Requests without a valid session get a 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			respondJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "authentication required",
			})
			return
		}

		user, err := s.store.UserBySession(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "session expired",
				})
				return
			}
			respondError(r.Context(), w, http.StatusInternalServerError, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireMember checks that the authenticated user is a member of the list
// and returns their role. Writes the error response itself on failure.
func (s *Server) requireMember(w http.ResponseWriter, r *http.Request, listID string) (model.Role, bool) {
	user, ok := userFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
		return "", false
	}

	role, err := s.store.MemberRole(r.Context(), listID, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondJSON(w, http.StatusForbidden, map[string]string{
				"error": "not a member of this list",
			})
			return "", false
		}
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return "", false
	}
	return role, true
}

// requireEditor is requireMember plus an edit-permission check.
func (s *Server) requireEditor(w http.ResponseWriter, r *http.Request, listID string) bool {
	role, ok := s.requireMember(w, r, listID)
	if !ok {
		return false
	}
	if !role.CanEdit() {
		respondJSON(w, http.StatusForbidden, map[string]string{
			"error": "viewer role cannot modify this list",
		})
		return false
	}
	return true
}
