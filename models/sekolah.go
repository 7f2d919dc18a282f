package models

import "time"

const (
	JenjangSMA = "SMA"
	JenjangSMK = "SMK"
	JenjangSLB = "SLB"

	StatusSekolahNegeri = "negeri"
	StatusSekolahSwasta = "swasta"

	KotaMalang = "kota_malang"
	KotaBatu   = "kota_batu"
)

// Kota lists the regions a school may belong to.
var Kota = map[string]string{
	KotaMalang: "Kota Malang",
	KotaBatu:   "Kota Batu",
}

type Sekolah struct {
	ID            string    `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	Nama          string    `gorm:"column:nama;type:varchar(255);not null;index" json:"nama"`
	Npsn          string    `gorm:"column:npsn;type:varchar(20);uniqueIndex;not null" json:"npsn"`
	Jenjang       string    `gorm:"column:jenjang;type:enum('SMA','SMK','SLB');not null" json:"jenjang"`
	Status        string    `gorm:"column:status;type:enum('negeri','swasta');not null" json:"status"`
	Kota          string    `gorm:"column:kota;type:enum('kota_malang','kota_batu');not null" json:"kota"`
	Alamat        string    `gorm:"column:alamat;type:text;not null" json:"alamat"`
	KepalaSekolah *string   `gorm:"column:kepala_sekolah;type:varchar(255)" json:"kepala_sekolah,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Sekolah) TableName() string {
	return "sekolah"
}

// KotaLabel returns the display name of a kota code.
func KotaLabel(code string) string {
	if label, ok := Kota[code]; ok {
		return label
	}
	return code
}
