package controllers

import (
	"errors"
	"net/http"
	"time"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/middleware"
	"sim-talenta-gtk-api/services"

	"github.com/gin-gonic/gin"
)

const refreshTokenCookie = "refresh_token"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

var newAuthService = func() *services.AuthService {
	return services.NewAuthService(nil, config.App.JWT)
}

// Login handles user authentication
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email dan password wajib diisi"})
		return
	}

	user, tokens, err := newAuthService().Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email atau password salah"})
		case errors.Is(err, services.ErrUserInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "Akun tidak aktif"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		}
		return
	}

	setAuthCookies(c, tokens)
	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"tokens":  tokens,
		"message": "Login berhasil",
	})
}

// Refresh rotates the refresh token from the cookie or the request body.
func Refresh(c *gin.Context) {
	token := refreshTokenFromRequest(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token tidak ditemukan"})
		return
	}

	user, tokens, err := newAuthService().Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) || errors.Is(err, services.ErrUserInactive) {
			clearAuthCookies(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Sesi telah berakhir, silakan login kembali"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		return
	}

	setAuthCookies(c, tokens)
	c.JSON(http.StatusOK, gin.H{"user": user, "tokens": tokens})
}

func Logout(c *gin.Context) {
	if err := newAuthService().Logout(c.Request.Context(), refreshTokenFromRequest(c)); err != nil {
		config.Logger().WithError(err).Warn("failed to delete refresh token")
	}
	clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout berhasil"})
}

// Me returns the current user with GTK profile and school.
func Me(c *gin.Context) {
	user, err := newAuthService().CurrentUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User tidak ditemukan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func refreshTokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(refreshTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func setAuthCookies(c *gin.Context, tokens *services.TokenPair) {
	secure := config.App != nil && config.App.IsProduction()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, tokens.AccessToken, cookieMaxAge(tokens.AccessExpiresAt), "/", "", secure, true)
	c.SetCookie(refreshTokenCookie, tokens.RefreshToken, cookieMaxAge(tokens.RefreshExpiresAt), "/", "", secure, true)
}

func clearAuthCookies(c *gin.Context) {
	secure := config.App != nil && config.App.IsProduction()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", secure, true)
}

func cookieMaxAge(expiresAt time.Time) int {
	seconds := int(time.Until(expiresAt).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}
