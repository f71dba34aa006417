package web

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reelistapp/reelist/internal/logging"
	"github.com/reelistapp/reelist/internal/model"
)

// inviteTTL is how long an invite code stays redeemable.
const inviteTTL = 7 * 24 * time.Hour

type createListRequest struct {
	Name string `json:"name"`
}

type createInviteRequest struct {
	Role model.Role `json:"role"`
}

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	lists, err := s.store.ListsForUser(r.Context(), user.ID)
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	if lists == nil {
		lists = []model.List{}
	}
	respondJSON(w, http.StatusOK, lists)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	var req createListRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondBadRequest(w, "list name is required")
		return
	}

	list, err := s.store.CreateList(r.Context(), model.List{
		ID:      uuid.NewString(),
		Name:    req.Name,
		OwnerID: user.ID,
	})
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	logging.FromContext(r.Context()).Info("list created", "list_id", list.ID, "user_id", user.ID)
	respondJSON(w, http.StatusCreated, list)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if _, ok := s.requireMember(w, r, listID); !ok {
		return
	}

	list, err := s.store.ListByID(r.Context(), listID)
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	role, ok := s.requireMember(w, r, listID)
	if !ok {
		return
	}
	if role != model.RoleOwner {
		respondJSON(w, http.StatusForbidden, map[string]string{
			"error": "only the list owner can create invites",
		})
		return
	}

	var req createInviteRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleEditor
	}
	if req.Role == model.RoleOwner || !model.ValidRole(req.Role) {
		respondBadRequest(w, "invite role must be editor or viewer")
		return
	}

	user, _ := userFrom(r.Context())
	code, err := newInviteCode()
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	inv, err := s.store.CreateInvite(r.Context(), model.Invite{
		Code:      code,
		ListID:    listID,
		Role:      req.Role,
		CreatedBy: user.ID,
		ExpiresAt: time.Now().Add(inviteTTL),
	})
	if err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleRedeemInvite(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	code := chi.URLParam(r, "code")
	inv, err := s.store.RedeemInvite(r.Context(), code, user.ID)
	if err != nil {
		respondError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logging.FromContext(r.Context()).Info("invite redeemed",
		"list_id", inv.ListID,
		"user_id", user.ID,
		"role", inv.Role,
	)
	respondJSON(w, http.StatusOK, map[string]string{
		"listId": inv.ListID,
		"role":   string(inv.Role),
	})
}

func newInviteCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
