package services

import (
	"errors"
	"strings"

	"sim-talenta-gtk-api/models"
)

// ErrEmptyNamaOrNpsn marks a school row without a name or NPSN.
var ErrEmptyNamaOrNpsn = errors.New("empty nama or npsn")

const DefaultAlamat = "-"

var (
	smkTokens = []string{"SMK", "SMKN"}
	slbTokens = []string{"SLB", "SDLB", "SMPLB", "SMALB"}
)

type SekolahColumns struct {
	Nama          []string
	Npsn          []string
	Status        []string
	Alamat        []string
	KepalaSekolah []string
}

func DefaultSekolahColumns() SekolahColumns {
	return SekolahColumns{
		Nama:          []string{"Nama Satuan Pendidikan", "Nama Sekolah", "nama"},
		Npsn:          []string{"NPSN", "npsn"},
		Status:        []string{"Status Sekolah", "Status", "status"},
		Alamat:        []string{"Alamat", "alamat"},
		KepalaSekolah: []string{"Nama Kepala Sekolah", "Kepala Sekolah", "kepala_sekolah"},
	}
}

type NormalizedSekolah struct {
	Nama          string
	Npsn          string
	Jenjang       string
	Status        string
	Alamat        string
	KepalaSekolah *string
}

// NormalizeSekolahRow maps one school row; kota comes from the upload form.
func NormalizeSekolahRow(columns SekolahColumns, cells map[string]interface{}) (NormalizedSekolah, error) {
	nama := strings.TrimSpace(cellText(firstCell(cells, columns.Nama)))
	npsn := strings.TrimSpace(cellText(firstCell(cells, columns.Npsn)))
	if nama == "" || npsn == "" {
		return NormalizedSekolah{}, ErrEmptyNamaOrNpsn
	}

	alamat := strings.TrimSpace(cellText(firstCell(cells, columns.Alamat)))
	if alamat == "" {
		alamat = DefaultAlamat
	}

	return NormalizedSekolah{
		Nama:          nama,
		Npsn:          npsn,
		Jenjang:       DetectJenjang(nama),
		Status:        RawToStatusSekolah(cellText(firstCell(cells, columns.Status))),
		Alamat:        alamat,
		KepalaSekolah: optionalCell(cells, columns.KepalaSekolah),
	}, nil
}

// DetectJenjang derives the school level from its name; SMA is the fallback.
func DetectJenjang(nama string) string {
	upper := strings.ToUpper(nama)
	if containsAny(upper, smkTokens) {
		return models.JenjangSMK
	}
	if containsAny(upper, slbTokens) {
		return models.JenjangSLB
	}
	return models.JenjangSMA
}

func RawToStatusSekolah(raw string) string {
	if strings.Contains(strings.ToLower(raw), "negeri") {
		return models.StatusSekolahNegeri
	}
	return models.StatusSekolahSwasta
}
