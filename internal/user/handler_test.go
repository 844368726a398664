package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/templatehub/template-manager/internal/user"
)

// fakeStore is an in-memory user.Store.
type fakeStore struct {
	users map[string]*user.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*user.User)}
}

func (s *fakeStore) add(u user.User) *user.User {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID.Hex()] = &u
	return &u
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeStore) UpdateByID(_ context.Context, id string, fields bson.M) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "name":
			u.Name = value.(string)
		case "avatarUrl":
			u.AvatarURL = value.(string)
		case "preferences":
			u.Preferences = value.(user.Preferences)
		case "role":
			u.Role = value.(user.Role)
		case "isActive":
			u.IsActive = value.(bool)
		}
	}
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (s *fakeStore) List(_ context.Context) ([]user.User, error) {
	out := []user.User{}
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func newRouter(store *fakeStore, admin bool) *chi.Mux {
	handler := user.NewHandler(store)
	isAdmin := func(r *http.Request) bool { return admin }

	r := chi.NewRouter()
	r.Get("/api/users", handler.List)
	r.Get("/api/users/{id}", handler.Get)
	r.Put("/api/users/{id}", handler.Update(isAdmin))
	return r
}

func seedUser(store *fakeStore) *user.User {
	return store.add(user.User{
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		Role:        user.RoleReadWrite,
		IsActive:    true,
		Preferences: user.DefaultPreferences(),
	})
}

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUserGet(t *testing.T) {
	store := newFakeStore()
	seeded := seedUser(store)
	router := newRouter(store, false)

	t.Run("returns the user without the password hash", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/users/"+seeded.ID.Hex(), "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Ada Lovelace", body["name"])
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "passwordHash")
	})

	t.Run("unknown id yields 404", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/users/"+primitive.NewObjectID().Hex(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserList(t *testing.T) {
	store := newFakeStore()
	seedUser(store)
	store.add(user.User{Name: "Grace Hopper", Email: "grace@example.com", Role: user.RoleAdmin, IsActive: true})
	router := newRouter(store, true)

	rec := doJSON(router, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestUserUpdate(t *testing.T) {
	t.Run("profile fields", func(t *testing.T) {
		store := newFakeStore()
		seeded := seedUser(store)
		router := newRouter(store, false)

		rec := doJSON(router, http.MethodPut, "/api/users/"+seeded.ID.Hex(),
			`{"name":"Ada King","preferences":{"theme":"dark","emailNotifications":false,"marketingEmails":false}}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Ada King", updated.Name)
		assert.Equal(t, "dark", updated.Preferences.Theme)
	})

	t.Run("non-admins cannot touch role or isActive", func(t *testing.T) {
		store := newFakeStore()
		seeded := seedUser(store)
		router := newRouter(store, false)

		rec := doJSON(router, http.MethodPut, "/api/users/"+seeded.ID.Hex(),
			`{"name":"Still Ada","role":"admin","isActive":false}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, user.RoleReadWrite, updated.Role)
		assert.True(t, updated.IsActive)
	})

	t.Run("admins can change role and isActive", func(t *testing.T) {
		store := newFakeStore()
		seeded := seedUser(store)
		router := newRouter(store, true)

		rec := doJSON(router, http.MethodPut, "/api/users/"+seeded.ID.Hex(),
			`{"role":"admin","isActive":false}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, user.RoleAdmin, updated.Role)
		assert.False(t, updated.IsActive)
	})

	t.Run("admin with invalid role", func(t *testing.T) {
		store := newFakeStore()
		seeded := seedUser(store)
		router := newRouter(store, true)

		rec := doJSON(router, http.MethodPut, "/api/users/"+seeded.ID.Hex(), `{"role":"superuser"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("role-only update by non-admin leaves nothing to change", func(t *testing.T) {
		store := newFakeStore()
		seeded := seedUser(store)
		router := newRouter(store, false)

		rec := doJSON(router, http.MethodPut, "/api/users/"+seeded.ID.Hex(), `{"role":"admin"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id yields 404", func(t *testing.T) {
		store := newFakeStore()
		router := newRouter(store, false)

		rec := doJSON(router, http.MethodPut, "/api/users/"+primitive.NewObjectID().Hex(), `{"name":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
