package template

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

// Store is the persistence surface the handler needs; *Repository satisfies
// it and tests plug in fakes.
type Store interface {
	Insert(ctx context.Context, t *Template) (*Template, error)
	List(ctx context.Context, f Filter) ([]Template, error)
	FindByID(ctx context.Context, id string) (*Template, error)
	Update(ctx context.Context, id, editorID string, upd Update) (*Template, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	ListVersions(ctx context.Context, templateID string) ([]Version, error)
}

// Handler contains HTTP handlers for template endpoints.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// CreateRequest is the template creation body.
type CreateRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Content      string   `json:"content"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	IsPublic     bool     `json:"isPublic"`
	ThumbnailURL string   `json:"thumbnailUrl"`
}

// List handles template listing with optional filters
// @Summary      List templates
// @Tags         templates
// @Produce      json
// @Param        category query string false "Category filter"
// @Param        search query string false "Full-text search"
// @Param        authorId query string false "Author filter"
// @Param        isPublic query bool false "Visibility filter"
// @Success      200 {array} Template
// @Router       /api/templates [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	f := Filter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		AuthorID: r.URL.Query().Get("authorId"),
	}
	if v := r.URL.Query().Get("isPublic"); v != "" {
		isPublic := v == "true"
		f.IsPublic = &isPublic
	}

	templates, err := h.store.List(r.Context(), f)
	if err != nil {
		logger.Error("failed to list templates", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list templates", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, templates, http.StatusOK)
}

// Create handles template creation
// @Summary      Create a template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateRequest true "Template fields"
// @Success      201 {object} Template
// @Router       /api/templates [post]
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
	if req.Title == "" {
		httputil.RespondErrorWithCode(w, "title is required", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.store.Insert(r.Context(), &Template{
		Title:        req.Title,
		Description:  req.Description,
		Content:      req.Content,
		Category:     req.Category,
		Tags:         req.Tags,
		AuthorID:     identity.ID,
		AuthorName:   identity.Name,
		IsPublic:     req.IsPublic,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		logger.Error("failed to create template", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create template", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("template created", "template_id", created.ID.Hex(), "author_id", identity.ID)
	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Get handles single template retrieval
// @Summary      Get a template
// @Tags         templates
// @Produce      json
// @Param        id path string true "Template ID"
// @Success      200 {object} Template
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/templates/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, r, err, "failed to get template")
		return
	}
	httputil.RespondJSON(w, t, http.StatusOK)
}

// Update handles template updates
// @Summary      Update a template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Template ID"
// @Param        request body Update true "Fields to change"
// @Success      200 {object} Template
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/templates/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var upd Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	t, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), identity.ID, upd)
	if err != nil {
		h.respondStoreError(w, r, err, "failed to update template")
		return
	}
	httputil.RespondJSON(w, t, http.StatusOK)
}

// Delete handles template deletion
// @Summary      Delete a template
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Template ID"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/templates/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondStoreError(w, r, err, "failed to delete template")
		return
	}
	httputil.RespondJSON(w, map[string]string{"message": "Template deleted successfully"}, http.StatusOK)
}

// RecordView handles view-count increments
// @Summary      Record a template view
// @Tags         templates
// @Produce      json
// @Param        id path string true "Template ID"
// @Success      200 {object} map[string]string
// @Router       /api/templates/{id}/view [post]
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	if err := h.store.IncrementViews(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondStoreError(w, r, err, "failed to record view")
		return
	}
	httputil.RespondJSON(w, map[string]string{"message": "View count updated"}, http.StatusOK)
}

// ListVersions handles version history retrieval
// @Summary      List template versions
// @Tags         templates
// @Produce      json
// @Param        id path string true "Template ID"
// @Success      200 {array} Version
// @Router       /api/templates/{id}/versions [get]
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	versions, err := h.store.ListVersions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("failed to list template versions", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list versions", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondJSON(w, versions, http.StatusOK)
}

func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, ErrNotFound) {
		httputil.RespondErrorWithCode(w, "template not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}
	logging.GetLoggerFromContext(r.Context()).Error(msg, "error", err.Error())
	httputil.RespondErrorWithCode(w, msg, httputil.CodeInternalError, http.StatusInternalServerError)
}
