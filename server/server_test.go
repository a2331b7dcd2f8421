package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/menuboard/config"
	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/imagehost"
	"github.com/ray-remotestate/menuboard/middlewares"
	"github.com/ray-remotestate/menuboard/models"
)

type nopUploader struct{}

func (nopUploader) Upload(context.Context, []byte, string, string) (*imagehost.UploadResult, error) {
	return &imagehost.UploadResult{URL: "https://cdn.example/x.png"}, nil
}

func newTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	prevSecret := config.SecretKey
	config.SecretKey = []byte("server-test-secret")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	prevDB := database.Restro
	database.Restro = sqlx.NewDb(db, "postgres")

	t.Cleanup(func() {
		config.SecretKey = prevSecret
		database.Restro = prevDB
		db.Close()
	})

	srv := SetupRoutes(Options{Uploader: nopUploader{}, LoginRatePerMinute: 2})
	return srv.Handler(), mock
}

func bearer(t *testing.T, role models.Role) string {
	t.Helper()
	claims := &middlewares.Claims{
		UserID: uuid.New(),
		RoleID: uuid.New(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.SecretKey)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(h http.Handler, method, target, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader("{}"))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"data":{"alive":true}}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t)

	do(h, http.MethodGet, "/health", "")
	rr := do(h, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `route="/health"`)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	h, _ := newTestServer(t)

	for _, target := range []string{"/admin/menu-items", "/admin/categories", "/admin/me", "/admin/users"} {
		rr := do(h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, target)
	}
}

func TestAdminOnlyRoutesRejectSubAdmin(t *testing.T) {
	h, mock := newTestServer(t)
	sub := bearer(t, models.RoleSubAdmin)

	assert.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "/admin/users", sub).Code)
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "/admin/roles", sub).Code)

	mock.ExpectQuery("FROM categories").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "display_name", "created_at"}))
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/admin/categories", sub).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCanListRoles(t *testing.T) {
	h, mock := newTestServer(t)
	mock.ExpectQuery("FROM roles").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "display_name"}).AddRow(uuid.NewString(), "admin", "Admin"))

	rr := do(h, http.MethodGet, "/admin/roles", bearer(t, models.RoleAdmin))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnknownRoleIsForbidden(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(h, http.MethodGet, "/admin/menu-items", bearer(t, models.Role("waiter")))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	h, _ := newTestServer(t)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(h, http.MethodPost, "/login", "").Code)
	}

	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}

func TestShutdownBeforeRun(t *testing.T) {
	srv := SetupRoutes(Options{Uploader: nopUploader{}, LoginRatePerMinute: 1})
	assert.NoError(t, srv.Shutdown(time.Second))
}
