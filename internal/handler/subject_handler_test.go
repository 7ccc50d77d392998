package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unitime-app/unitime-api/internal/middleware"
	"github.com/unitime-app/unitime-api/internal/models"
	"github.com/unitime-app/unitime-api/internal/service"
)

type stubSubjectStore struct {
	items map[string]*models.Subject
	order []string
}

func (s *stubSubjectStore) ListByUser(ctx context.Context, userID string) ([]models.Subject, error) {
	out := make([]models.Subject, 0, len(s.order))
	for _, id := range s.order {
		if sub, ok := s.items[id]; ok && sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (s *stubSubjectStore) FindByID(ctx context.Context, userID, id string) (*models.Subject, error) {
	if sub, ok := s.items[id]; ok && sub.UserID == userID {
		cp := *sub
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubSubjectStore) Create(ctx context.Context, subject *models.Subject) error {
	if s.items == nil {
		s.items = make(map[string]*models.Subject)
	}
	if subject.ID == "" {
		subject.ID = "generated"
	}
	cp := *subject
	s.items[subject.ID] = &cp
	s.order = append(s.order, subject.ID)
	return nil
}

func (s *stubSubjectStore) Update(ctx context.Context, subject *models.Subject) error {
	cp := *subject
	s.items[subject.ID] = &cp
	return nil
}

func (s *stubSubjectStore) Delete(ctx context.Context, userID, id string) error {
	delete(s.items, id)
	return nil
}

func authedJSONContext(t *testing.T, rec *httptest.ResponseRecorder, method, target, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})
	return c
}

func newSubjectHandler(store *stubSubjectStore) *SubjectHandler {
	return NewSubjectHandler(service.NewSubjectService(store, validator.New(), zap.NewNop()))
}

func TestSubjectHandlerCreate(t *testing.T) {
	store := &stubSubjectStore{}
	h := newSubjectHandler(store)

	rec := httptest.NewRecorder()
	c := authedJSONContext(t, rec, http.MethodPost, "/subjects", `{"name":"Giải tích 1"}`)

	h.Create(c)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	var subject models.Subject
	require.NoError(t, json.Unmarshal(body.Data, &subject))
	assert.Equal(t, "M01", subject.Code)
}

func TestSubjectHandlerCreateMissingName(t *testing.T) {
	h := newSubjectHandler(&stubSubjectStore{})

	rec := httptest.NewRecorder()
	c := authedJSONContext(t, rec, http.MethodPost, "/subjects", `{"color":"#ff0000"}`)

	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubjectHandlerGetMissing(t *testing.T) {
	h := newSubjectHandler(&stubSubjectStore{})

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodGet, "/subjects/nope")
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubjectHandlerNextCode(t *testing.T) {
	store := &stubSubjectStore{}
	require.NoError(t, store.Create(context.Background(), &models.Subject{ID: "s1", UserID: "u1", Name: "First", Code: "M01"}))
	h := newSubjectHandler(store)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodGet, "/subjects/next-code")

	h.NextCode(c)
	require.Equal(t, http.StatusOK, rec.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	var payload map[string]string
	require.NoError(t, json.Unmarshal(body.Data, &payload))
	assert.Equal(t, "M02", payload["code"])
}

func TestSubjectHandlerUpdate(t *testing.T) {
	store := &stubSubjectStore{}
	require.NoError(t, store.Create(context.Background(), &models.Subject{ID: "s1", UserID: "u1", Name: "Old", Code: "M01", Color: "#3b82f6"}))
	h := newSubjectHandler(store)

	rec := httptest.NewRecorder()
	c := authedJSONContext(t, rec, http.MethodPatch, "/subjects/s1", `{"name":"New"}`)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.Update(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New", store.items["s1"].Name)
}

func TestSubjectHandlerDelete(t *testing.T) {
	store := &stubSubjectStore{}
	require.NoError(t, store.Create(context.Background(), &models.Subject{ID: "s1", UserID: "u1", Name: "Doomed", Code: "M01"}))
	h := newSubjectHandler(store)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodDelete, "/subjects/s1")
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, store.items, "s1")
}
