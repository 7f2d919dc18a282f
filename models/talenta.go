package models

import "time"

const (
	TalentaPesertaPelatihan = "peserta_pelatihan"
	TalentaPembimbingLomba  = "pembimbing_lomba"
	TalentaPesertaLomba     = "peserta_lomba"
	TalentaMinatBakat       = "minat_bakat"
)

var talentaJenisLabels = map[string]string{
	TalentaPesertaPelatihan: "Peserta Pelatihan",
	TalentaPembimbingLomba:  "Pembimbing Lomba",
	TalentaPesertaLomba:     "Peserta Lomba",
	TalentaMinatBakat:       "Minat/Bakat",
}

var lombaJenjangLabels = map[string]string{
	"kota":          "Kota",
	"provinsi":      "Provinsi",
	"nasional":      "Nasional",
	"internasional": "Internasional",
}

var lombaBidangLabels = map[string]string{
	"akademik":     "Akademik",
	"inovasi":      "Inovasi",
	"teknologi":    "Teknologi",
	"sosial":       "Sosial",
	"seni":         "Seni",
	"kepemimpinan": "Kepemimpinan",
}

// Talenta is one achievement or activity record of a GTK. Which optional
// fields are meaningful depends on Jenis.
type Talenta struct {
	ID    string `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	GtkID string `gorm:"column:gtk_id;type:char(36);not null;index" json:"gtk_id"`
	Jenis string `gorm:"column:jenis;type:enum('peserta_pelatihan','pembimbing_lomba','peserta_lomba','minat_bakat');not null" json:"jenis"`

	// Peserta pelatihan
	NamaKegiatan          *string `gorm:"column:nama_kegiatan;type:varchar(255)" json:"nama_kegiatan"`
	PenyelenggaraKegiatan *string `gorm:"column:penyelenggara_kegiatan;type:varchar(255)" json:"penyelenggara_kegiatan"`
	TanggalMulai          *Date   `gorm:"column:tanggal_mulai;type:date" json:"tanggal_mulai"`
	JangkaWaktu           *int    `gorm:"column:jangka_waktu" json:"jangka_waktu"` // days

	// Lomba
	NamaLomba *string `gorm:"column:nama_lomba;type:varchar(255)" json:"nama_lomba"`
	Jenjang   *string `gorm:"column:jenjang;type:enum('kota','provinsi','nasional','internasional')" json:"jenjang"`
	Bidang    *string `gorm:"column:bidang;type:enum('akademik','inovasi','teknologi','sosial','seni','kepemimpinan')" json:"bidang"`
	Prestasi  *string `gorm:"column:prestasi;type:varchar(255)" json:"prestasi"`
	BuktiURL  *string `gorm:"column:bukti_url;type:text" json:"bukti_url"`

	// Minat/bakat
	Deskripsi *string `gorm:"column:deskripsi;type:text" json:"deskripsi"`

	IsVerified bool       `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	VerifiedBy *string    `gorm:"column:verified_by;type:char(36)" json:"verified_by"`
	VerifiedAt *time.Time `gorm:"column:verified_at" json:"verified_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	Gtk      *Gtk  `gorm:"foreignKey:GtkID" json:"gtk,omitempty"`
	Verifier *User `gorm:"foreignKey:VerifiedBy" json:"verifier,omitempty"`
}

func (Talenta) TableName() string {
	return "talenta"
}

// Detail is the headline of the record: the activity for training, the
// competition for lomba entries and the description otherwise.
func (t *Talenta) Detail() string {
	var v *string
	switch t.Jenis {
	case TalentaPesertaPelatihan:
		v = t.NamaKegiatan
	case TalentaPembimbingLomba, TalentaPesertaLomba:
		v = t.NamaLomba
	default:
		v = t.Deskripsi
	}
	if v == nil {
		return ""
	}
	return *v
}

func TalentaJenisLabel(jenis string) string {
	if label, ok := talentaJenisLabels[jenis]; ok {
		return label
	}
	return jenis
}

func LombaJenjangLabel(jenjang *string) string {
	if jenjang == nil {
		return ""
	}
	return lombaJenjangLabels[*jenjang]
}

func LombaBidangLabel(bidang *string) string {
	if bidang == nil {
		return ""
	}
	return lombaBidangLabels[*bidang]
}
