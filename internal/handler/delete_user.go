package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hadirot/functions/internal/middleware"
	"github.com/hadirot/functions/internal/supabase"
)

// DeleteUserRequest is the body of the delete-user function
type DeleteUserRequest struct {
	UserID string `json:"userId"`
}

// DeleteUserResponse confirms a deleted account
type DeleteUserResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// DeleteUser lets an admin permanently remove another user's account.
// The caller is verified with their own token; only the final delete uses
// the service-role client.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r) {
		return
	}
	ctx := r.Context()
	log := h.requestLog(r)

	token := middleware.BearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Missing authorization header")
		return
	}

	caller, err := h.sessions.GetUser(ctx, token)
	if err != nil {
		if !errors.Is(err, supabase.ErrInvalidToken) {
			log.Error().Err(err).Msg("failed to verify caller session")
		}
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	log = log.WithUserID(caller.ID)

	isAdmin, err := h.profiles.IsAdmin(ctx, token, caller.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load caller profile")
	}
	if err != nil || !isAdmin {
		log.Warn().Msg("non-admin attempted user deletion")
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}

	var req DeleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.UserID == caller.ID {
		writeError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.admin.DeleteUser(ctx, req.UserID); err != nil {
		log.Error().Err(err).Str("target_user_id", req.UserID).Msg("failed to delete user")
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	log.AuditLog(caller.ID, "user.delete", "user", req.UserID, nil)

	writeJSON(w, http.StatusOK, DeleteUserResponse{
		Message: "User deleted successfully",
		UserID:  req.UserID,
	})
}
