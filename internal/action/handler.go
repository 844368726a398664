package action

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/templatehub/template-manager/internal/auth"
	"github.com/templatehub/template-manager/internal/httputil"
	"github.com/templatehub/template-manager/internal/logging"
	"github.com/templatehub/template-manager/internal/template"
)

// Store is the persistence surface the handler needs.
type Store interface {
	Insert(ctx context.Context, a *UserAction) (*UserAction, error)
	Find(ctx context.Context, userID, targetID string, actionType Type) (*UserAction, error)
	Delete(ctx context.Context, userID, targetID string, actionType Type) error
	ListByUser(ctx context.Context, userID string, actionType Type) ([]UserAction, error)
	CountByTarget(ctx context.Context, targetID string, actionType Type) (int64, error)
}

// TemplateCounters is the slice of the template store used to keep the
// denormalized star/bookmark counters in step with actions.
type TemplateCounters interface {
	AdjustStars(ctx context.Context, id string, delta int64) error
	AdjustBookmarks(ctx context.Context, id string, delta int64) error
}

// Handler contains HTTP handlers for user-action endpoints.
type Handler struct {
	store    Store
	counters TemplateCounters
}

func NewHandler(store Store, counters TemplateCounters) *Handler {
	return &Handler{store: store, counters: counters}
}

// CreateRequest is the action creation body.
type CreateRequest struct {
	TargetID   string `json:"targetId"`
	ActionType Type   `json:"actionType"`
}

// Create handles action creation (star, bookmark, follow)
// @Summary      Create a user action
// @Tags         user-actions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateRequest true "Action fields"
// @Success      201 {object} UserAction
// @Failure      400 {object} httputil.ErrorResponse "Invalid or duplicate action"
// @Router       /api/user-actions [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.TargetID == "" || !req.ActionType.Valid() {
		httputil.RespondErrorWithCode(w, "targetId and a valid actionType are required", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.store.Insert(r.Context(), &UserAction{
		UserID:     identity.ID,
		TargetID:   req.TargetID,
		ActionType: req.ActionType,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			httputil.RespondErrorWithCode(w, "action already exists", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
			return
		}
		logger.Error("failed to create action", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create action", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.adjustCounter(r.Context(), created.TargetID, created.ActionType, 1)

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Get handles single action lookup
// @Summary      Get a user action
// @Tags         user-actions
// @Produce      json
// @Param        userId path string true "User ID"
// @Param        targetId path string true "Target ID"
// @Param        actionType path string true "Action type"
// @Success      200 {object} UserAction
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/user-actions/user/{userId}/target/{targetId}/type/{actionType} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.Find(r.Context(),
		chi.URLParam(r, "userId"),
		chi.URLParam(r, "targetId"),
		Type(chi.URLParam(r, "actionType")),
	)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "action not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logging.GetLoggerFromContext(r.Context()).Error("failed to get action", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get action", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondJSON(w, a, http.StatusOK)
}

// Delete handles action removal (unstar, unbookmark, unfollow)
// @Summary      Delete a user action
// @Tags         user-actions
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "User ID"
// @Param        targetId path string true "Target ID"
// @Param        actionType path string true "Action type"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/user-actions/user/{userId}/target/{targetId}/type/{actionType} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	targetID := chi.URLParam(r, "targetId")
	actionType := Type(chi.URLParam(r, "actionType"))

	if err := h.store.Delete(r.Context(), userID, targetID, actionType); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "action not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logging.GetLoggerFromContext(r.Context()).Error("failed to delete action", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete action", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.adjustCounter(r.Context(), targetID, actionType, -1)

	httputil.RespondJSON(w, map[string]string{"message": "Action deleted successfully"}, http.StatusOK)
}

// ListByUser handles listing of a user's actions
// @Summary      List a user's actions
// @Tags         user-actions
// @Produce      json
// @Param        userId path string true "User ID"
// @Param        actionType query string false "Action type filter"
// @Success      200 {array} UserAction
// @Router       /api/user-actions/user/{userId} [get]
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	actions, err := h.store.ListByUser(r.Context(),
		chi.URLParam(r, "userId"),
		Type(r.URL.Query().Get("actionType")),
	)
	if err != nil {
		logger.Error("failed to list actions", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list actions", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondJSON(w, actions, http.StatusOK)
}

// Count handles per-target action counting
// @Summary      Count actions on a target
// @Tags         user-actions
// @Produce      json
// @Param        targetId path string true "Target ID"
// @Param        actionType path string true "Action type"
// @Success      200 {object} map[string]int64
// @Router       /api/user-actions/target/{targetId}/type/{actionType}/count [get]
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	count, err := h.store.CountByTarget(r.Context(),
		chi.URLParam(r, "targetId"),
		Type(chi.URLParam(r, "actionType")),
	)
	if err != nil {
		logger.Error("failed to count actions", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to count actions", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondJSON(w, map[string]int64{"count": count}, http.StatusOK)
}

// adjustCounter mirrors star/bookmark actions onto the template document.
// Counter drift is logged, not surfaced; the action itself already
// succeeded.
func (h *Handler) adjustCounter(ctx context.Context, targetID string, actionType Type, delta int64) {
	var err error
	switch actionType {
	case TypeStar:
		err = h.counters.AdjustStars(ctx, targetID, delta)
	case TypeBookmark:
		err = h.counters.AdjustBookmarks(ctx, targetID, delta)
	default:
		return
	}
	if err != nil && !errors.Is(err, template.ErrNotFound) {
		logging.GetLoggerFromContext(ctx).Warn("failed to adjust template counter", "target_id", targetID, "error", err.Error())
	}
}
