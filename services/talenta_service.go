package services

import (
	"context"
	"errors"
	"time"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTalentaNotFound = errors.New("talenta not found")

type TalentaFilter struct {
	GtkID     string
	SekolahID string
	Jenis     string
	// Verified is "true", "false" or "" for both.
	Verified string
	Page     int
	Limit    int
	All      bool
}

type TalentaService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTalentaService(db *gorm.DB) *TalentaService {
	if db == nil {
		db = config.DB
	}
	return &TalentaService{db: db, now: time.Now}
}

func (s *TalentaService) List(ctx context.Context, filter TalentaFilter) ([]models.Talenta, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Talenta{})
	if filter.GtkID != "" {
		query = query.Where("gtk_id = ?", filter.GtkID)
	}
	if filter.SekolahID != "" {
		staff := s.db.Model(&models.Gtk{}).Select("id").Where("sekolah_id = ?", filter.SekolahID)
		query = query.Where("gtk_id IN (?)", staff)
	}
	if filter.Jenis != "" && filter.Jenis != "all" {
		query = query.Where("jenis = ?", filter.Jenis)
	}
	switch filter.Verified {
	case "true":
		query = query.Where("is_verified = ?", true)
	case "false":
		query = query.Where("is_verified = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Talenta
	query = query.Preload("Gtk.Sekolah").Order("created_at DESC")
	if !filter.All {
		page, limit := normalizePage(filter.Page, filter.Limit)
		query = query.Offset((page - 1) * limit).Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *TalentaService) Get(ctx context.Context, id string) (*models.Talenta, error) {
	var talenta models.Talenta
	err := s.db.WithContext(ctx).
		Preload("Gtk.Sekolah").
		Preload("Verifier").
		Where("id = ?", id).
		First(&talenta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTalentaNotFound
		}
		return nil, err
	}
	return &talenta, nil
}

// Create stores an unverified record for an existing GTK.
func (s *TalentaService) Create(ctx context.Context, talenta *models.Talenta) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Gtk{}).Where("id = ?", talenta.GtkID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrGtkNotFound
	}
	if talenta.ID == "" {
		talenta.ID = uuid.NewString()
	}
	talenta.IsVerified = false
	talenta.VerifiedBy = nil
	talenta.VerifiedAt = nil
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(talenta).Error
}

// Update applies a partial change set keyed by column name. The owner and
// the verification state are not editable here.
func (s *TalentaService) Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Talenta, error) {
	for _, locked := range []string{"id", "gtk_id", "is_verified", "verified_by", "verified_at"} {
		delete(updates, locked)
	}
	if len(updates) == 0 {
		return nil, ErrNothingToSave
	}
	talenta, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Talenta{ID: talenta.ID}).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *TalentaService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Talenta{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTalentaNotFound
	}
	return nil
}

// SetVerified marks the record verified by verifierID, or clears the
// verification when verified is false.
func (s *TalentaService) SetVerified(ctx context.Context, id, verifierID string, verified bool) (*models.Talenta, error) {
	talenta, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"is_verified": false,
		"verified_by": nil,
		"verified_at": nil,
	}
	if verified {
		updates["is_verified"] = true
		updates["verified_by"] = verifierID
		updates["verified_at"] = s.now()
	}
	if err := s.db.WithContext(ctx).Model(&models.Talenta{ID: talenta.ID}).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
