package comment_test

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
	"github.com/templatehub/template-manager/internal/comment"
	"github.com/templatehub/template-manager/internal/user"
)

// fakeStore is an in-memory comment.Store.
type fakeStore struct {
	comments map[string]*comment.Comment
	order    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{comments: make(map[string]*comment.Comment)}
}

func (s *fakeStore) Insert(_ context.Context, c *comment.Comment) (*comment.Comment, error) {
	stored := *c
	stored.ID = primitive.NewObjectID()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.comments[stored.ID.Hex()] = &stored
	s.order = append(s.order, stored.ID.Hex())
	copied := stored
	return &copied, nil
}

func (s *fakeStore) ListByTemplate(_ context.Context, templateID string) ([]comment.Comment, error) {
	out := []comment.Comment{}
	for _, id := range s.order {
		if c, ok := s.comments[id]; ok && c.TemplateID == templateID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateContent(_ context.Context, id, content string) (*comment.Comment, error) {
	c, ok := s.comments[id]
	if !ok {
		return nil, comment.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = time.Now()
	copied := *c
	return &copied, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return comment.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

type fixture struct {
	router *chi.Mux
	token  string
}

func newFixture(t *testing.T) *fixture {
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

	handler := comment.NewHandler(newFakeStore())
	mw := auth.NewMiddleware(codec)

	r := chi.NewRouter()
	r.Route("/api/comments", func(r chi.Router) {
		r.Get("/template/{templateId}", handler.ListByTemplate)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)
			r.Post("/", handler.Create)
			r.Put("/{id}", handler.Update)
			r.Delete("/{id}", handler.Delete)
		})
	})

	return &fixture{router: r, token: token}
}

func (f *fixture) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
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

func (f *fixture) create(t *testing.T, body string) comment.Comment {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/comments/", body, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created comment.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created
}

func TestCommentCreate(t *testing.T) {
	f := newFixture(t)

	t.Run("attaches the caller as author", func(t *testing.T) {
		created := f.create(t, `{"templateId":"tpl-1","content":"Nice work"}`)
		assert.Equal(t, "Ada", created.AuthorName)
		assert.Equal(t, "tpl-1", created.TemplateID)
		assert.Empty(t, created.ParentID)
	})

	t.Run("threads replies via parentId", func(t *testing.T) {
		parent := f.create(t, `{"templateId":"tpl-1","content":"Question?"}`)
		reply := f.create(t, `{"templateId":"tpl-1","content":"Answer.","parentId":"`+parent.ID.Hex()+`"}`)
		assert.Equal(t, parent.ID.Hex(), reply.ParentID)
	})

	t.Run("requires templateId and content", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/comments/", `{"templateId":"tpl-1"}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = f.do(http.MethodPost, "/api/comments/", `{"content":"orphan"}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/comments/", `{"templateId":"tpl-1","content":"x"}`, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCommentListByTemplate(t *testing.T) {
	f := newFixture(t)
	f.create(t, `{"templateId":"tpl-1","content":"first"}`)
	f.create(t, `{"templateId":"tpl-1","content":"second"}`)
	f.create(t, `{"templateId":"tpl-2","content":"elsewhere"}`)

	rec := f.do(http.MethodGet, "/api/comments/template/tpl-1", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []comment.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
}

func TestCommentUpdate(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, `{"templateId":"tpl-1","content":"draft"}`)

	t.Run("replaces the content", func(t *testing.T) {
		rec := f.do(http.MethodPut, "/api/comments/"+created.ID.Hex(), `{"content":"final"}`, true)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated comment.Comment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "final", updated.Content)
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		rec := f.do(http.MethodPut, "/api/comments/"+created.ID.Hex(), `{"content":""}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id yields 404", func(t *testing.T) {
		rec := f.do(http.MethodPut, "/api/comments/"+primitive.NewObjectID().Hex(), `{"content":"x"}`, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCommentDelete(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, `{"templateId":"tpl-1","content":"temporary"}`)

	rec := f.do(http.MethodDelete, "/api/comments/"+created.ID.Hex(), "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodDelete, "/api/comments/"+created.ID.Hex(), "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
