package services

import (
	"context"
	"testing"
	"time"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var testJWT = config.JWTOptions{
	Secret:        "access-secret",
	RefreshSecret: "refresh-secret",
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    24 * time.Hour,
}

func newMockAuthService(t *testing.T) (*AuthService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)
	return NewAuthService(gormDB, testJWT), mock
}

var userColumns = []string{"id", "email", "password", "role", "is_active"}

func TestAuthServiceLogin(t *testing.T) {
	svc, mock := newMockAuthService(t)
	hash, err := utils.HashPassword("rahasia123", bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-1", "admin@sipodi.id", hash, models.RoleSuperAdmin, true))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `refresh_tokens`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, pair, err := svc.Login(context.Background(), " Admin@Sipodi.id ", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)

	claims, err := ParseToken(pair.AccessToken, testJWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)

	_, err = ParseToken(pair.RefreshToken, testJWT.Secret)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh tokens use their own secret")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc, mock := newMockAuthService(t)
	hash, err := utils.HashPassword("rahasia123", bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-1", "a@sipodi.id", hash, models.RoleGtk, true))
	_, _, err = svc.Login(context.Background(), "a@sipodi.id", "salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-2", "b@sipodi.id", hash, models.RoleGtk, false))
	_, _, err = svc.Login(context.Background(), "b@sipodi.id", "rahasia123")
	assert.ErrorIs(t, err, ErrUserInactive)

	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnError(gorm.ErrRecordNotFound)
	_, _, err = svc.Login(context.Background(), "c@sipodi.id", "rahasia123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthServiceRefreshRejectsExpiredRecord(t *testing.T) {
	svc, mock := newMockAuthService(t)
	now := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	token, err := SignToken(Claims{UserID: "u-1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}, testJWT.RefreshSecret)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT \\* FROM `refresh_tokens` WHERE token = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at"}).
			AddRow("rt-1", "u-1", token, now.Add(-time.Minute)))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `refresh_tokens`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, _, err = svc.Refresh(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthServiceRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newMockAuthService(t)
	token, err := SignToken(Claims{UserID: "u-1"}, testJWT.Secret)
	require.NoError(t, err)

	_, _, err = svc.Refresh(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestParseTokenRejectsUnsignedTokens(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(unsigned, testJWT.Secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthServiceLogoutIgnoresBlankToken(t *testing.T) {
	svc, mock := newMockAuthService(t)
	require.NoError(t, svc.Logout(context.Background(), "  "))
	require.NoError(t, mock.ExpectationsWereMet())
}
