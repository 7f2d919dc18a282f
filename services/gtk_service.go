package services

import (
	"context"
	"errors"
	"strings"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrGtkNotFound = errors.New("gtk not found")
	ErrNuptkTaken  = errors.New("nuptk already registered")
	ErrNipTaken    = errors.New("nip already registered")
)

type GtkFilter struct {
	Search    string
	Jenis     string
	SekolahID string
	Page      int
	Limit     int
	All       bool
}

// NewGtk is a hand-entered staff profile together with its login.
type NewGtk struct {
	Email    string
	Password string
	Profile  models.Gtk
}

type GtkService struct {
	db   *gorm.DB
	hash hashFunc
	cost int
}

func NewGtkService(db *gorm.DB) *GtkService {
	if db == nil {
		db = config.DB
	}
	return &GtkService{db: db, hash: utils.HashPassword, cost: passwordCost()}
}

// ScopeSekolahID returns the school an admin_sekolah is bound to through
// their own GTK profile. Other roles get "".
func (s *GtkService) ScopeSekolahID(ctx context.Context, userID, role string) (string, error) {
	if role != models.RoleAdminSekolah {
		return "", nil
	}
	var gtk models.Gtk
	err := s.db.WithContext(ctx).Select("id, sekolah_id").Where("user_id = ?", userID).First(&gtk).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if gtk.SekolahID == nil {
		return "", nil
	}
	return *gtk.SekolahID, nil
}

// FindByUserID returns the profile owned by a login.
func (s *GtkService) FindByUserID(ctx context.Context, userID string) (*models.Gtk, error) {
	var gtk models.Gtk
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&gtk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGtkNotFound
		}
		return nil, err
	}
	return &gtk, nil
}

func (s *GtkService) List(ctx context.Context, filter GtkFilter) ([]models.Gtk, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Gtk{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(nama_lengkap) LIKE ?", "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	}
	if filter.Jenis != "" && filter.Jenis != "all" {
		query = query.Where("jenis = ?", filter.Jenis)
	}
	if filter.SekolahID != "" {
		query = query.Where("sekolah_id = ?", filter.SekolahID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Gtk
	query = query.Preload("User").Preload("Sekolah").Order("created_at DESC")
	if !filter.All {
		page, limit := normalizePage(filter.Page, filter.Limit)
		query = query.Offset((page - 1) * limit).Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *GtkService) Get(ctx context.Context, id string) (*models.Gtk, error) {
	var gtk models.Gtk
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Sekolah").
		Preload("TalentaList", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Where("id = ?", id).
		First(&gtk).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGtkNotFound
		}
		return nil, err
	}
	return &gtk, nil
}

// Create inserts the login (role gtk) and the profile in one transaction.
func (s *GtkService) Create(ctx context.Context, input NewGtk) (*models.Gtk, error) {
	email, err := utils.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := utils.CheckPassword(input.Password); err != nil {
		return nil, err
	}
	gtk := input.Profile
	gtk.NamaLengkap = utils.SanitizeInput(gtk.NamaLengkap)
	if gtk.NamaLengkap == "" {
		return nil, utils.Invalid("namaLengkap", "Nama lengkap wajib diisi")
	}
	if err := checkTanggalLahir(gtk.TanggalLahir); err != nil {
		return nil, err
	}
	gtk.Nuptk = utils.SanitizeOptional(gtk.Nuptk)
	gtk.Nip = utils.SanitizeOptional(gtk.Nip)
	gtk.Jabatan = utils.SanitizeOptional(gtk.Jabatan)

	hash, err := s.hash(input.Password, s.cost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:       uuid.NewString(),
		Email:    email,
		Password: hash,
		Role:     models.RoleGtk,
		IsActive: true,
	}
	gtk.ID = uuid.NewString()
	gtk.UserID = user.ID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, email, ""); err != nil {
			return err
		}
		if err := ensureIdentifiersFree(tx, gtk.Nuptk, gtk.Nip, ""); err != nil {
			return err
		}
		if gtk.SekolahID != nil {
			if err := ensureSekolahExists(tx, *gtk.SekolahID); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return mapDuplicate(err, ErrEmailTaken)
		}
		return tx.Omit(clause.Associations).Create(&gtk).Error
	})
	if err != nil {
		return nil, err
	}
	gtk.User = user
	return &gtk, nil
}

// Update applies a partial change set keyed by column name.
func (s *GtkService) Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Gtk, error) {
	if len(updates) == 0 {
		return nil, ErrNothingToSave
	}
	if nama, ok := updates["nama_lengkap"].(string); ok && strings.TrimSpace(nama) == "" {
		return nil, utils.Invalid("namaLengkap", "Nama lengkap wajib diisi")
	}
	if tanggal, ok := updates["tanggal_lahir"].(models.Date); ok {
		if err := checkTanggalLahir(tanggal); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gtk models.Gtk
		if err := tx.Select("id").Where("id = ?", id).First(&gtk).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGtkNotFound
			}
			return err
		}
		nuptk, _ := updates["nuptk"].(*string)
		nip, _ := updates["nip"].(*string)
		if err := ensureIdentifiersFree(tx, nuptk, nip, id); err != nil {
			return err
		}
		if sekolahID, ok := updates["sekolah_id"].(*string); ok && sekolahID != nil {
			if err := ensureSekolahExists(tx, *sekolahID); err != nil {
				return err
			}
		}
		return tx.Model(&gtk).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the profile with its talenta and then its login.
func (s *GtkService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gtk models.Gtk
		if err := tx.Select("id, user_id").Where("id = ?", id).First(&gtk).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGtkNotFound
			}
			return err
		}
		if err := tx.Where("gtk_id = ?", gtk.ID).Delete(&models.Talenta{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", gtk.ID).Delete(&models.Gtk{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", gtk.UserID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", gtk.UserID).Delete(&models.User{}).Error
	})
}

func checkTanggalLahir(d models.Date) error {
	if _, err := d.Time(); err != nil {
		return utils.Invalid("tanggalLahir", "Tanggal lahir harus berformat YYYY-MM-DD")
	}
	return nil
}

// ensureIdentifiersFree rejects a NUPTK or NIP already used by another
// profile than exceptID.
func ensureIdentifiersFree(tx *gorm.DB, nuptk, nip *string, exceptID string) error {
	check := func(column string, value *string, taken error) error {
		if value == nil || *value == "" {
			return nil
		}
		query := tx.Model(&models.Gtk{}).Where(column+" = ?", *value)
		if exceptID != "" {
			query = query.Where("id <> ?", exceptID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return taken
		}
		return nil
	}
	if err := check("nuptk", nuptk, ErrNuptkTaken); err != nil {
		return err
	}
	return check("nip", nip, ErrNipTaken)
}

func ensureSekolahExists(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&models.Sekolah{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrSekolahNotFound
	}
	return nil
}
