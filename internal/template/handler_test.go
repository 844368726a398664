package template_test

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
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/templatehub/template-manager/internal/auth"
	"github.com/templatehub/template-manager/internal/template"
	"github.com/templatehub/template-manager/internal/user"
)

// fakeStore is an in-memory template.Store.
type fakeStore struct {
	templates map[string]*template.Template
	versions  map[string][]template.Version
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		templates: make(map[string]*template.Template),
		versions:  make(map[string][]template.Version),
	}
}

func (s *fakeStore) Insert(_ context.Context, t *template.Template) (*template.Template, error) {
	stored := *t
	stored.ID = primitive.NewObjectID()
	stored.Version = 1
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.templates[stored.ID.Hex()] = &stored
	s.versions[stored.ID.Hex()] = []template.Version{{
		TemplateID: stored.ID.Hex(),
		Version:    1,
		Title:      stored.Title,
		Content:    stored.Content,
		Changes:    "Initial version",
		CreatedBy:  stored.AuthorID,
		CreatedAt:  now,
	}}
	copied := stored
	return &copied, nil
}

func (s *fakeStore) List(_ context.Context, f template.Filter) ([]template.Template, error) {
	out := []template.Template{}
	for _, t := range s.templates {
		if f.Category != "" && f.Category != "all" && t.Category != f.Category {
			continue
		}
		if f.AuthorID != "" && t.AuthorID != f.AuthorID {
			continue
		}
		if f.IsPublic != nil && t.IsPublic != *f.IsPublic {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*template.Template, error) {
	t, ok := s.templates[id]
	if !ok {
		return nil, template.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *fakeStore) Update(_ context.Context, id, editorID string, upd template.Update) (*template.Template, error) {
	t, ok := s.templates[id]
	if !ok {
		return nil, template.ErrNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Content != nil {
		t.Content = *upd.Content
	}
	t.Version++
	t.UpdatedAt = time.Now()

	changes := upd.Changes
	if changes == "" {
		changes = "Updated"
	}
	s.versions[id] = append(s.versions[id], template.Version{
		TemplateID: id,
		Version:    t.Version,
		Title:      t.Title,
		Content:    t.Content,
		Changes:    changes,
		CreatedBy:  editorID,
		CreatedAt:  t.UpdatedAt,
	})

	copied := *t
	return &copied, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := s.templates[id]; !ok {
		return template.ErrNotFound
	}
	delete(s.templates, id)
	delete(s.versions, id)
	return nil
}

func (s *fakeStore) IncrementViews(_ context.Context, id string) error {
	t, ok := s.templates[id]
	if !ok {
		return template.ErrNotFound
	}
	t.ViewCount++
	return nil
}

func (s *fakeStore) ListVersions(_ context.Context, templateID string) ([]template.Version, error) {
	return s.versions[templateID], nil
}

type handlerFixture struct {
	store  *fakeStore
	router *chi.Mux
	token  string
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	codec, err := auth.NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)
	token, err := codec.Issue(auth.Identity{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  user.RoleReadWrite,
	})
	require.NoError(t, err)

	store := newFakeStore()
	handler := template.NewHandler(store)
	mw := auth.NewMiddleware(codec)

	r := chi.NewRouter()
	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Get("/{id}", handler.Get)
		r.Get("/{id}/versions", handler.ListVersions)
		r.Post("/{id}/view", handler.RecordView)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)
			r.Post("/", handler.Create)
			r.Put("/{id}", handler.Update)
			r.Delete("/{id}", handler.Delete)
		})
	})

	return &handlerFixture{store: store, router: r, token: token}
}

func (f *handlerFixture) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) create(t *testing.T, body string) template.Template {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/templates/", body, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created template.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created
}

func TestTemplateCreate(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("creates with version 1 and the caller as author", func(t *testing.T) {
		created := f.create(t, `{"title":"Landing Page","content":"<h1>hi</h1>","category":"web","isPublic":true}`)

		assert.Equal(t, "Landing Page", created.Title)
		assert.Equal(t, 1, created.Version)
		assert.Equal(t, "Ada", created.AuthorName)
		assert.NotEmpty(t, created.AuthorID)
	})

	t.Run("requires a title", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/templates/", `{"content":"x"}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unauthenticated callers", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/templates/", `{"title":"x"}`, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/templates/", `{"title":`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTemplateGet(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.create(t, `{"title":"Card","content":"c"}`)

	t.Run("returns the template", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/templates/"+created.ID.Hex(), "", false)
		require.Equal(t, http.StatusOK, rec.Code)

		var got template.Template
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("unknown id yields 404", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/templates/"+primitive.NewObjectID().Hex(), "", false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTemplateList(t *testing.T) {
	f := newHandlerFixture(t)
	f.create(t, `{"title":"Web Landing","category":"web","isPublic":true}`)
	f.create(t, `{"title":"Email Digest","category":"email","isPublic":false}`)

	t.Run("lists everything by default", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/templates/", "", false)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []template.Template
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("filters by category", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/templates/?category=web", "", false)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []template.Template
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Web Landing", got[0].Title)
	})

	t.Run("filters by visibility", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/templates/?isPublic=true", "", false)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []template.Template
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.True(t, got[0].IsPublic)
	})
}

func TestTemplateUpdate(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.create(t, `{"title":"Draft","content":"v1"}`)

	t.Run("bumps the version and records a snapshot", func(t *testing.T) {
		rec := f.do(http.MethodPut, "/api/templates/"+created.ID.Hex(),
			`{"title":"Final","content":"v2","changes":"Polished copy"}`, true)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated template.Template
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Final", updated.Title)
		assert.Equal(t, 2, updated.Version)

		rec = f.do(http.MethodGet, "/api/templates/"+created.ID.Hex()+"/versions", "", false)
		require.Equal(t, http.StatusOK, rec.Code)

		var versions []template.Version
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &versions))
		require.Len(t, versions, 2)
		assert.Equal(t, "Polished copy", versions[1].Changes)
	})

	t.Run("unknown id yields 404", func(t *testing.T) {
		rec := f.do(http.MethodPut, "/api/templates/"+primitive.NewObjectID().Hex(), `{"title":"x"}`, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects unauthenticated callers", func(t *testing.T) {
		rec := f.do(http.MethodPut, "/api/templates/"+created.ID.Hex(), `{"title":"x"}`, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTemplateDelete(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.create(t, `{"title":"Ephemeral"}`)

	rec := f.do(http.MethodDelete, "/api/templates/"+created.ID.Hex(), "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/templates/"+created.ID.Hex(), "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTemplateRecordView(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.create(t, `{"title":"Popular"}`)

	for i := 0; i < 3; i++ {
		rec := f.do(http.MethodPost, "/api/templates/"+created.ID.Hex()+"/view", "", false)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := f.do(http.MethodGet, "/api/templates/"+created.ID.Hex(), "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var got template.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(3), got.ViewCount)
}
