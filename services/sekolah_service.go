package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNpsnTaken     = errors.New("npsn already registered")
	ErrSekolahInUse  = errors.New("sekolah still has gtk")
	ErrNothingToSave = errors.New("no fields to update")
)

// npsnPattern matches the 8-digit national school number (NPSN).
var npsnPattern = regexp.MustCompile(`^\d{8}$`)

func checkNpsn(npsn string) error {
	if !npsnPattern.MatchString(npsn) {
		return utils.Invalid("npsn", "NPSN harus 8 digit angka")
	}
	return nil
}

type SekolahFilter struct {
	Search  string
	Kota    string
	Jenjang string
	Status  string
	Page    int
	Limit   int
	All     bool
}

type SekolahService struct {
	db *gorm.DB
}

func NewSekolahService(db *gorm.DB) *SekolahService {
	if db == nil {
		db = config.DB
	}
	return &SekolahService{db: db}
}

func (s *SekolahService) List(ctx context.Context, filter SekolahFilter) ([]models.Sekolah, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Sekolah{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(nama) LIKE ?", "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	}
	if filter.Kota != "" && filter.Kota != "all" {
		query = query.Where("kota = ?", filter.Kota)
	}
	if filter.Jenjang != "" && filter.Jenjang != "all" {
		query = query.Where("jenjang = ?", filter.Jenjang)
	}
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Sekolah
	query = query.Order("created_at DESC")
	if !filter.All {
		page, limit := normalizePage(filter.Page, filter.Limit)
		query = query.Offset((page - 1) * limit).Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *SekolahService) Get(ctx context.Context, id string) (*models.Sekolah, error) {
	var sekolah models.Sekolah
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sekolah).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSekolahNotFound
		}
		return nil, err
	}
	return &sekolah, nil
}

func (s *SekolahService) Create(ctx context.Context, sekolah *models.Sekolah) error {
	if err := checkNpsn(sekolah.Npsn); err != nil {
		return err
	}
	if sekolah.ID == "" {
		sekolah.ID = uuid.NewString()
	}
	if sekolah.Jenjang == "" {
		sekolah.Jenjang = DetectJenjang(sekolah.Nama)
	}
	if strings.TrimSpace(sekolah.Alamat) == "" {
		sekolah.Alamat = DefaultAlamat
	}
	if err := s.db.WithContext(ctx).Create(sekolah).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrNpsnTaken
		}
		return err
	}
	return nil
}

// Update applies a partial change set keyed by column name.
func (s *SekolahService) Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Sekolah, error) {
	if len(updates) == 0 {
		return nil, ErrNothingToSave
	}
	if npsn, ok := updates["npsn"].(string); ok {
		if err := checkNpsn(npsn); err != nil {
			return nil, err
		}
	}
	sekolah, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(sekolah).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNpsnTaken
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete refuses while GTK rows still point at the school.
func (s *SekolahService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sekolah models.Sekolah
		if err := tx.Select("id").Where("id = ?", id).First(&sekolah).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSekolahNotFound
			}
			return err
		}
		var staff int64
		if err := tx.Model(&models.Gtk{}).Where("sekolah_id = ?", id).Count(&staff).Error; err != nil {
			return err
		}
		if staff > 0 {
			return ErrSekolahInUse
		}
		return tx.Where("id = ?", id).Delete(&models.Sekolah{}).Error
	})
}

// normalizePage clamps page to >= 1 and limit to 1..100 (default 10).
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
