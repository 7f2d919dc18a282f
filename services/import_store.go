package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSekolahNotFound      = errors.New("sekolah not found")
	ErrImportAlreadyRunning = errors.New("import already running")
	ErrDuplicateRecord      = errors.New("duplicate record")
)

// ImportLocker serialises import runs that touch the same data.
type ImportLocker interface {
	// AcquireImportLock returns ErrImportAlreadyRunning when the lock is held.
	AcquireImportLock(ctx context.Context, name string) (func() error, error)
}

// GtkImportStore is what the GTK import needs from persistence.
type GtkImportStore interface {
	ImportLocker

	// FindSekolahByName returns ErrSekolahNotFound when no school name
	// contains query (case-insensitive).
	FindSekolahByName(ctx context.Context, query string) (*models.Sekolah, error)
	// GtkNameExists matches nama_lengkap exactly and case-sensitively.
	GtkNameExists(ctx context.Context, nama string) (bool, error)
	// CreateGtkWithUser writes the credential and the profile atomically.
	CreateGtkWithUser(ctx context.Context, user *models.User, gtk *models.Gtk) error
}

// SekolahImportStore is what the school import needs from persistence.
type SekolahImportStore interface {
	ImportLocker
	SekolahNpsnExists(ctx context.Context, npsn string) (bool, error)
	// CreateSekolah returns ErrDuplicateRecord when the NPSN is taken.
	CreateSekolah(ctx context.Context, sekolah *models.Sekolah) error
}

// GormImportStore implements both import stores on MySQL.
type GormImportStore struct {
	db *gorm.DB
}

func NewGormImportStore(db *gorm.DB) *GormImportStore {
	if db == nil {
		db = config.DB
	}
	return &GormImportStore{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FindSekolahByName prefers an exact case-insensitive match over the
// remaining substring matches, which are taken in creation order.
func (s *GormImportStore) FindSekolahByName(ctx context.Context, query string) (*models.Sekolah, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrSekolahNotFound
	}

	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	var candidates []models.Sekolah
	err := s.db.WithContext(ctx).
		Where("LOWER(nama) LIKE ?", pattern).
		Order("created_at ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrSekolahNotFound
	}

	for i := range candidates {
		if strings.EqualFold(strings.TrimSpace(candidates[i].Nama), query) {
			return &candidates[i], nil
		}
	}
	return &candidates[0], nil
}

func (s *GormImportStore) GtkNameExists(ctx context.Context, nama string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Gtk{}).
		Where("nama_lengkap = ?", nama).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormImportStore) CreateGtkWithUser(ctx context.Context, user *models.User, gtk *models.Gtk) error {
	if user == nil || gtk == nil {
		return errors.New("user and gtk are required")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		gtk.UserID = user.ID
		if err := tx.Omit(clause.Associations).Create(gtk).Error; err != nil {
			return fmt.Errorf("create gtk: %w", err)
		}
		return nil
	})
}

func (s *GormImportStore) SekolahNpsnExists(ctx context.Context, npsn string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Sekolah{}).
		Where("npsn = ?", npsn).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormImportStore) CreateSekolah(ctx context.Context, sekolah *models.Sekolah) error {
	if sekolah == nil {
		return errors.New("sekolah is nil")
	}
	if err := s.db.WithContext(ctx).Create(sekolah).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateRecord
		}
		return err
	}
	return nil
}

// AcquireImportLock takes a MySQL advisory lock on a dedicated connection.
// GET_LOCK is session scoped, so the same connection must release it.
func (s *GormImportStore) AcquireImportLock(ctx context.Context, name string) (func() error, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	lockCtx := persistentContext(ctx)
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	conn, err := sqlDB.Conn(lockCtx)
	if err != nil {
		return nil, err
	}

	var ok int
	if err := conn.QueryRowContext(lockCtx, "SELECT GET_LOCK(?, 0)", name).Scan(&ok); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if ok != 1 {
		_ = conn.Close()
		return nil, ErrImportAlreadyRunning
	}

	return func() error {
		defer conn.Close()
		var released int
		if err := conn.QueryRowContext(lockCtx, "SELECT RELEASE_LOCK(?)", name).Scan(&released); err != nil {
			return err
		}
		if released != 1 {
			return fmt.Errorf("release lock %q returned %d", name, released)
		}
		return nil
	}, nil
}

func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
