package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserInactive        = errors.New("user is inactive")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// Claims is the access token payload.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type AuthService struct {
	db   *gorm.DB
	opts config.JWTOptions
	now  func() time.Time
}

func NewAuthService(db *gorm.DB, opts config.JWTOptions) *AuthService {
	if db == nil {
		db = config.DB
	}
	return &AuthService{db: db, opts: opts, now: time.Now}
}

// Login verifies the password and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}

	pair, err := s.issue(ctx, &user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Refresh rotates a refresh token: the old one is deleted and a new pair issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {
	if _, err := ParseToken(refreshToken, s.opts.RefreshSecret); err != nil {
		return nil, nil, ErrInvalidRefreshToken
	}

	var stored models.RefreshToken
	err := s.db.WithContext(ctx).Where("token = ?", refreshToken).First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidRefreshToken
		}
		return nil, nil, err
	}
	if s.now().After(stored.ExpiresAt) {
		_ = s.db.WithContext(ctx).Delete(&stored).Error
		return nil, nil, ErrInvalidRefreshToken
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", stored.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidRefreshToken
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}

	if err := s.db.WithContext(ctx).Delete(&stored).Error; err != nil {
		return nil, nil, err
	}
	pair, err := s.issue(ctx, &user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Logout deletes the refresh token; unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Where("token = ?", refreshToken).Delete(&models.RefreshToken{}).Error
}

// CurrentUser loads the user with its GTK profile and school.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Gtk").
		Preload("Gtk.Sekolah").
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := s.now()
	accessExp := now.Add(s.opts.AccessTTL)
	refreshExp := now.Add(s.opts.RefreshTTL)

	access, err := SignToken(Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(accessExp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}, s.opts.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := SignToken(Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}, s.opts.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	record := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: refreshExp,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// SignToken signs claims with HS256.
func SignToken(claims Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SeedSuperAdmin creates a super admin or resets the password of an existing account.
func SeedSuperAdmin(ctx context.Context, db *gorm.DB, email, password string, cost int) (*models.User, bool, error) {
	if db == nil {
		db = config.DB
	}
	email, err := utils.NormalizeEmail(email)
	if err != nil {
		return nil, false, err
	}
	if err := utils.CheckPassword(password); err != nil {
		return nil, false, err
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, false, err
	}

	var user models.User
	err = db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		user.Password = hash
		user.Role = models.RoleSuperAdmin
		user.IsActive = true
		if err := db.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, false, err
		}
		return &user, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ID:       uuid.NewString(),
			Email:    email,
			Password: hash,
			Role:     models.RoleSuperAdmin,
			IsActive: true,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, false, err
		}
		return &user, true, nil
	default:
		return nil, false, err
	}
}
