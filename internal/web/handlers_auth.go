package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/reelistapp/reelist/internal/auth"
	"github.com/reelistapp/reelist/internal/logging"
	"github.com/reelistapp/reelist/internal/model"
	"github.com/reelistapp/reelist/internal/store"
)

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondBadRequest(w, "a valid email is required")
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Email[:strings.Index(req.Email, "@")]
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	if _, err := s.store.UserByEmail(r.Context(), req.Email); err == nil {
		respondJSON(w, http.StatusConflict, map[string]string{
			"error": "an account with this email already exists",
		})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	user, err := s.store.CreateUser(r.Context(), model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
	})
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	if err := s.startSession(w, r, user); err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	logging.FromContext(r.Context()).Info("user registered", "user_id", user.ID)
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	user, err := s.store.UserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "invalid email or password",
			})
			return
		}
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "invalid email or password",
		})
		return
	}

	if err := s.startSession(w, r, user); err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if err := s.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			logging.FromContext(r.Context()).Warn("delete session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// startSession creates a session row and sets the session cookie.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user model.User) error {
	token, err := auth.NewSessionToken()
	if err != nil {
		return err
	}
	expires := auth.SessionExpiry()
	if err := s.store.CreateSession(r.Context(), token, user.ID, expires); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
