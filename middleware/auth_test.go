package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const testSecret = "middleware-test-secret"

func setupAuthTest(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	prevDB, prevApp := config.DB, config.App
	config.DB = gormDB
	config.App = &config.Configuration{JWT: config.JWTOptions{Secret: testSecret}}
	t.Cleanup(func() {
		config.DB, config.App = prevDB, prevApp
		_ = db.Close()
	})
	return mock
}

func signedToken(t *testing.T, userID, role string, expires time.Time) string {
	t.Helper()
	token, err := services.SignToken(services.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}, testSecret)
	require.NoError(t, err)
	return token
}

func protectedRouter(roles ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware()}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString("userID"), "role": c.GetString("role")})
	})
	r.GET("/private", handlers...)
	return r
}

func expectUser(mock sqlmock.Sqlmock, id, role string, active bool) {
	mock.ExpectQuery("SELECT id, email, role, is_active FROM `users` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "is_active"}).
			AddRow(id, id+"@sipodi.id", role, active))
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	mock := setupAuthTest(t)
	expectUser(mock, "u-1", models.RoleSuperAdmin, true)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "u-1", models.RoleSuperAdmin, time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	protectedRouter(models.RoleSuperAdmin).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u-1","role":"super_admin"}`, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthMiddlewareAcceptsCookie(t *testing.T) {
	mock := setupAuthTest(t)
	expectUser(mock, "u-2", models.RoleGtk, true)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: signedToken(t, "u-2", models.RoleGtk, time.Now().Add(time.Hour))})
	w := httptest.NewRecorder()
	protectedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Token abc"},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer abc.def.ghi"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setupAuthTest(t)
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			protectedRouter().ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	setupAuthTest(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "u-1", models.RoleSuperAdmin, time.Now().Add(-time.Minute)))
	w := httptest.NewRecorder()
	protectedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token tidak valid")
}

func TestAuthMiddlewareRejectsInactiveUser(t *testing.T) {
	mock := setupAuthTest(t)
	expectUser(mock, "u-3", models.RoleGtk, false)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "u-3", models.RoleGtk, time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	protectedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Akun tidak aktif")
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	mock := setupAuthTest(t)
	expectUser(mock, "u-4", models.RoleAdminSekolah, true)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "u-4", models.RoleAdminSekolah, time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	protectedRouter(models.RoleSuperAdmin).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Anda tidak memiliki akses")
}

func TestRequireRoleWithoutAuthContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRole(models.RoleSuperAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Role tidak ditemukan")
}
