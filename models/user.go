package models

import (
	"time"
)

const (
	RoleSuperAdmin   = "super_admin"
	RoleAdminSekolah = "admin_sekolah"
	RoleGtk          = "gtk"
)

type User struct {
	ID        string    `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"column:password;not null" json:"-"`
	Role      string    `gorm:"column:role;type:enum('super_admin','admin_sekolah','gtk');not null;default:'gtk'" json:"role"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	Gtk *Gtk `gorm:"foreignKey:UserID" json:"gtk,omitempty"`
}

type RefreshToken struct {
	ID        string    `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	UserID    string    `gorm:"column:user_id;type:char(36);index;not null" json:"user_id"`
	Token     string    `gorm:"column:token;type:varchar(512);uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsAdmin reports whether the role may manage school data.
func IsAdmin(role string) bool {
	return role == RoleSuperAdmin || role == RoleAdminSekolah
}
