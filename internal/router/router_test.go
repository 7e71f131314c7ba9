package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-space-recommender/internal/catalog"
	"github.com/iliyamo/event-space-recommender/internal/handler"
	"github.com/iliyamo/event-space-recommender/internal/utils"
)

const secret = "router-secret"

func newEcho(t *testing.T) (*echo.Echo, *catalog.Store) {
	t.Helper()
	cat, err := catalog.Build([]byte(`[{"room_id":"R1","name":"Rock Room","theater":50}]`))
	require.NoError(t, err)
	store := catalog.NewStore(cat)

	e := echo.New()
	rh := &handler.RecommendHandler{Store: store}
	RegisterRoutes(e, store)
	RegisterCatalog(e, &handler.CatalogHandler{Store: store}, nil)
	RegisterRecommend(e, rh, &handler.DocumentHandler{Recommender: rh}, nil, nil)
	RegisterAdmin(e, &handler.AdminHandler{Store: store}, secret)
	return e, store
}

func serve(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	e, _ := newEcho(t)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/rooms", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/rooms/R1", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/styles/theater/rooms", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/v1/recommendations", `{"attendee_count":10,"style":"theater"}`, "").Code)
}

func TestAdminRoutesNeedAdminToken(t *testing.T) {
	e, store := newEcho(t)
	before := store.Load()
	chart := `[{"room_id":"R9","name":"Summit","classroom":60}]`

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/v1/admin/catalog/reload", chart, "").Code)

	viewer, err := utils.NewAccessToken(secret, "someone", "VIEWER", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodPost, "/v1/admin/catalog/reload", chart, viewer.Token).Code)
	assert.Same(t, before, store.Load())

	admin, err := utils.NewAccessToken(secret, "ops", utils.RoleAdmin, time.Minute)
	require.NoError(t, err)
	rec := serve(e, http.MethodPost, "/v1/admin/catalog/reload", chart, admin.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotSame(t, before, store.Load())
	_, err = store.Load().Get("R9")
	assert.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/admin/catalog", "", admin.Token).Code)
}

func TestChainSkipsNil(t *testing.T) {
	mw := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	assert.Len(t, chain(nil, mw, nil), 1)
	assert.Empty(t, chain())
}
