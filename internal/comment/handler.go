package comment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/templatehub/template-manager/internal/auth"
	"github.com/templatehub/template-manager/internal/httputil"
	"github.com/templatehub/template-manager/internal/logging"
)

// Store is the persistence surface the handler needs.
type Store interface {
	Insert(ctx context.Context, c *Comment) (*Comment, error)
	ListByTemplate(ctx context.Context, templateID string) ([]Comment, error)
	UpdateContent(ctx context.Context, id, content string) (*Comment, error)
	Delete(ctx context.Context, id string) error
}

// Handler contains HTTP handlers for comment endpoints.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// CreateRequest is the comment creation body.
type CreateRequest struct {
	TemplateID string `json:"templateId"`
	Content    string `json:"content"`
	ParentID   string `json:"parentId"`
}

// UpdateRequest is the comment edit body.
type UpdateRequest struct {
	Content string `json:"content"`
}

// Create handles comment creation
// @Summary      Create a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateRequest true "Comment fields"
// @Success      201 {object} Comment
// @Router       /api/comments [post]
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
	if req.TemplateID == "" || req.Content == "" {
		httputil.RespondErrorWithCode(w, "templateId and content are required", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.store.Insert(r.Context(), &Comment{
		TemplateID: req.TemplateID,
		AuthorID:   identity.ID,
		AuthorName: identity.Name,
		Content:    req.Content,
		ParentID:   req.ParentID,
	})
	if err != nil {
		logger.Error("failed to create comment", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create comment", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// ListByTemplate handles listing of a template's comments
// @Summary      List comments for a template
// @Tags         comments
// @Produce      json
// @Param        templateId path string true "Template ID"
// @Success      200 {array} Comment
// @Router       /api/comments/template/{templateId} [get]
func (h *Handler) ListByTemplate(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	comments, err := h.store.ListByTemplate(r.Context(), chi.URLParam(r, "templateId"))
	if err != nil {
		logger.Error("failed to list comments", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list comments", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondJSON(w, comments, http.StatusOK)
}

// Update handles comment edits
// @Summary      Update a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Param        request body UpdateRequest true "New content"
// @Success      200 {object} Comment
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/comments/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		httputil.RespondErrorWithCode(w, "content is required", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.store.UpdateContent(r.Context(), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "comment not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update comment", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update comment", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, updated, http.StatusOK)
}

// Delete handles comment deletion
// @Summary      Delete a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/comments/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "comment not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete comment", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete comment", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Comment deleted successfully"}, http.StatusOK)
}
