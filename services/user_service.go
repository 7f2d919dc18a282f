package services

import (
	"context"
	"errors"
	"strings"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrDeleteSelf   = errors.New("cannot delete own account")
)

var validRoles = map[string]bool{
	models.RoleSuperAdmin:   true,
	models.RoleAdminSekolah: true,
	models.RoleGtk:          true,
}

var invalidRoleField = utils.Invalid("role", "Role tidak valid")

type UserFilter struct {
	Search string
	Role   string
	Page   int
	Limit  int
}

// UserChanges is a partial update; nil fields are left alone.
type UserChanges struct {
	Email    *string
	Password *string
	Role     *string
	IsActive *bool
}

type UserService struct {
	db   *gorm.DB
	hash hashFunc
	cost int
}

func NewUserService(db *gorm.DB) *UserService {
	if db == nil {
		db = config.DB
	}
	return &UserService{db: db, hash: utils.HashPassword, cost: passwordCost()}
}

func (s *UserService) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	}
	if filter.Role != "" && filter.Role != "all" {
		query = query.Where("role = ?", filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	var rows []models.User
	err := query.Preload("Gtk.Sekolah").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Gtk.Sekolah").Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Create(ctx context.Context, email, password, role string) (*models.User, error) {
	email, err := utils.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := utils.CheckPassword(password); err != nil {
		return nil, err
	}
	if !validRoles[role] {
		return nil, invalidRoleField
	}
	hash, err := s.hash(password, s.cost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Email:    email,
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, email, ""); err != nil {
			return err
		}
		return mapDuplicate(tx.Omit(clause.Associations).Create(user).Error, ErrEmailTaken)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, changes UserChanges) (*models.User, error) {
	updates := map[string]interface{}{}
	if changes.Email != nil {
		email, err := utils.NormalizeEmail(*changes.Email)
		if err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if changes.Password != nil {
		if err := utils.CheckPassword(*changes.Password); err != nil {
			return nil, err
		}
		hash, err := s.hash(*changes.Password, s.cost)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}
	if changes.Role != nil {
		if !validRoles[*changes.Role] {
			return nil, invalidRoleField
		}
		updates["role"] = *changes.Role
	}
	if changes.IsActive != nil {
		updates["is_active"] = *changes.IsActive
	}
	if len(updates) == 0 {
		return nil, ErrNothingToSave
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if email, ok := updates["email"].(string); ok {
			if err := ensureEmailFree(tx, email, id); err != nil {
				return err
			}
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return mapDuplicate(err, ErrEmailTaken)
		}
		// A new password or deactivation ends existing sessions.
		if changes.Password != nil || (changes.IsActive != nil && !*changes.IsActive) {
			return tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a login with its sessions, its GTK profile and the
// profile's talenta. actorID may not delete itself.
func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return ErrDeleteSelf
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		profiles := tx.Model(&models.Gtk{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("gtk_id IN (?)", profiles).Delete(&models.Talenta{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Gtk{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.User{}).Error
	})
}

func ensureEmailFree(tx *gorm.DB, email, exceptID string) error {
	query := tx.Model(&models.User{}).Where("email = ?", email)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return nil
}

func mapDuplicate(err, taken error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return taken
	}
	return err
}

// passwordCost is the bcrypt cost for passwords set through the API.
func passwordCost() int {
	if config.App != nil && config.App.Import.BcryptCost >= bcrypt.MinCost {
		return config.App.Import.BcryptCost
	}
	return bcrypt.DefaultCost
}
