package models

import "time"

const (
	JenisGuru          = "guru"
	JenisTendik        = "tendik"
	JenisKepalaSekolah = "kepala_sekolah"

	KelaminLaki      = "L"
	KelaminPerempuan = "P"
)

// Gtk is a staff profile (teacher, education staff or principal) linked to a login.
type Gtk struct {
	ID           string    `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	UserID       string    `gorm:"column:user_id;type:char(36);not null;index" json:"user_id"`
	NamaLengkap  string    `gorm:"column:nama_lengkap;type:varchar(255) COLLATE utf8mb4_bin;not null;index" json:"nama_lengkap"`
	Nuptk        *string   `gorm:"column:nuptk;type:varchar(30)" json:"nuptk"`
	Nip          *string   `gorm:"column:nip;type:varchar(30)" json:"nip"`
	Kelamin      string    `gorm:"column:kelamin;type:enum('L','P');not null" json:"kelamin"`
	TanggalLahir Date      `gorm:"column:tanggal_lahir;type:date;not null" json:"tanggal_lahir"`
	Jenis        string    `gorm:"column:jenis;type:enum('guru','tendik','kepala_sekolah');not null" json:"jenis"`
	Jabatan      *string   `gorm:"column:jabatan;type:varchar(255)" json:"jabatan"`
	SekolahID    *string   `gorm:"column:sekolah_id;type:char(36);index" json:"sekolah_id"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Sekolah     *Sekolah  `gorm:"foreignKey:SekolahID" json:"sekolah,omitempty"`
	TalentaList []Talenta `gorm:"foreignKey:GtkID" json:"talenta_list,omitempty"`
}

func (Gtk) TableName() string {
	return "gtk"
}

// JenisLabel returns the display label for a GTK category.
func JenisLabel(jenis string) string {
	switch jenis {
	case JenisTendik:
		return "Tendik"
	case JenisKepalaSekolah:
		return "Kepala Sekolah"
	default:
		return "Guru"
	}
}

// KelaminLabel returns the display label for a sex code.
func KelaminLabel(kelamin string) string {
	if kelamin == KelaminLaki {
		return "Laki-laki"
	}
	return "Perempuan"
}
