package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/templatehub/template-manager/internal/httputil"
	"github.com/templatehub/template-manager/internal/logging"
)

// Store is the persistence surface the handler needs; *Repository satisfies
// it and tests plug in fakes.
type Store interface {
	FindByID(ctx context.Context, id string) (*User, error)
	UpdateByID(ctx context.Context, id string, fields bson.M) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// Handler contains HTTP handlers for user endpoints.
type Handler struct {
	repo Store
}

func NewHandler(repo Store) *Handler {
	return &Handler{repo: repo}
}

// UpdateRequest carries the mutable profile fields. Role and isActive are
// admin-only and ignored for other callers.
type UpdateRequest struct {
	Name        *string      `json:"name"`
	AvatarURL   *string      `json:"avatarUrl"`
	Preferences *Preferences `json:"preferences"`
	Role        *Role        `json:"role"`
	IsActive    *bool        `json:"isActive"`
}

// List handles listing of all users (admin only)
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} User
// @Failure      403 {object} httputil.ErrorResponse
// @Router       /api/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.repo.List(r.Context())
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list users", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondJSON(w, users, http.StatusOK)
}

// Get handles single user retrieval
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {object} User
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logging.GetLoggerFromContext(r.Context()).Error("failed to get user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondJSON(w, u, http.StatusOK)
}

// Update handles profile updates. isAdmin gates the role/isActive fields.
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body UpdateRequest true "Fields to change"
// @Success      200 {object} User
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *Handler) Update(isAdmin func(r *http.Request) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		var req UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
			return
		}

		fields := bson.M{}
		if req.Name != nil {
			fields["name"] = *req.Name
		}
		if req.AvatarURL != nil {
			fields["avatarUrl"] = *req.AvatarURL
		}
		if req.Preferences != nil {
			fields["preferences"] = *req.Preferences
		}
		if isAdmin(r) {
			if req.Role != nil {
				if !req.Role.Valid() {
					httputil.RespondErrorWithCode(w, "invalid role", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
					return
				}
				fields["role"] = *req.Role
			}
			if req.IsActive != nil {
				fields["isActive"] = *req.IsActive
			}
		}

		if len(fields) == 0 {
			httputil.RespondErrorWithCode(w, "no updatable fields provided", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
			return
		}

		u, err := h.repo.UpdateByID(r.Context(), chi.URLParam(r, "id"), fields)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
				return
			}
			logger.Error("failed to update user", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update user", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}

		httputil.RespondJSON(w, u, http.StatusOK)
	}
}
