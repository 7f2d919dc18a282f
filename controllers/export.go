package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/services"

	"github.com/gin-gonic/gin"
)

var gtkExportHeader = []string{"Nama Lengkap", "NUPTK", "NIP", "Jenis Kelamin", "Tanggal Lahir", "Jenis", "Jabatan", "Sekolah", "Email"}

var talentaExportHeader = []string{"Nama GTK", "Sekolah", "Jenis Talenta", "Detail", "Jenjang", "Bidang", "Prestasi", "Status Verifikasi"}

var sekolahExportHeader = []string{"Nama", "NPSN", "Jenjang", "Status", "Kota", "Alamat", "Kepala Sekolah"}

// ExportGtk writes staff as CSV; admin_sekolah is limited to their school.
func ExportGtk(c *gin.Context) {
	svc := services.NewGtkService(nil)
	filter := services.GtkFilter{All: true}

	scope, err := svc.ScopeSekolahID(c.Request.Context(), c.GetString("userID"), c.GetString("role"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		return
	}
	if scope != "" {
		filter.SekolahID = scope
	} else if c.GetString("role") == models.RoleSuperAdmin {
		filter.SekolahID = c.Query("sekolahId")
	}

	rows, _, err := svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		return
	}

	records := make([][]string, 0, len(rows))
	for _, g := range rows {
		sekolah, email := "", ""
		if g.Sekolah != nil {
			sekolah = g.Sekolah.Nama
		}
		if g.User != nil {
			email = g.User.Email
		}
		records = append(records, []string{
			g.NamaLengkap,
			derefString(g.Nuptk),
			derefString(g.Nip),
			models.KelaminLabel(g.Kelamin),
			g.TanggalLahir.String(),
			models.JenisLabel(g.Jenis),
			derefString(g.Jabatan),
			sekolah,
			email,
		})
	}
	writeCSV(c, "data-gtk", gtkExportHeader, records)
}

func ExportSekolah(c *gin.Context) {
	filter := services.SekolahFilter{All: true, Kota: c.Query("kota")}
	rows, _, err := services.NewSekolahService(nil).List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		return
	}

	records := make([][]string, 0, len(rows))
	for _, s := range rows {
		status := "Swasta"
		if s.Status == models.StatusSekolahNegeri {
			status = "Negeri"
		}
		records = append(records, []string{
			s.Nama,
			s.Npsn,
			s.Jenjang,
			status,
			models.KotaLabel(s.Kota),
			s.Alamat,
			derefString(s.KepalaSekolah),
		})
	}
	writeCSV(c, "data-sekolah", sekolahExportHeader, records)
}

// ExportTalenta writes talenta as CSV, or JSON with format=json;
// admin_sekolah is limited to their school.
func ExportTalenta(c *gin.Context) {
	filter := services.TalentaFilter{All: true, Jenis: c.Query("jenis"), Verified: c.Query("verified")}
	if !talentaScope(c, &filter) {
		return
	}
	rows, _, err := services.NewTalentaService(nil).List(c.Request.Context(), filter)
	if err != nil {
		serverError(c)
		return
	}
	if c.DefaultQuery("format", "csv") != "csv" {
		c.JSON(http.StatusOK, gin.H{"data": rows})
		return
	}

	records := make([][]string, 0, len(rows))
	for i := range rows {
		t := &rows[i]
		nama, sekolah := "", ""
		if t.Gtk != nil {
			nama = t.Gtk.NamaLengkap
			if t.Gtk.Sekolah != nil {
				sekolah = t.Gtk.Sekolah.Nama
			}
		}
		status := "Belum Verifikasi"
		if t.IsVerified {
			status = "Terverifikasi"
		}
		records = append(records, []string{
			nama,
			sekolah,
			models.TalentaJenisLabel(t.Jenis),
			t.Detail(),
			models.LombaJenjangLabel(t.Jenjang),
			models.LombaBidangLabel(t.Bidang),
			derefString(t.Prestasi),
			status,
		})
	}
	writeCSV(c, "data-talenta", talentaExportHeader, records)
}

func writeCSV(c *gin.Context, name string, header []string, records [][]string) {
	filename := fmt.Sprintf("%s-%s.csv", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("X-Total-Count", strconv.Itoa(len(records)))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(header)
	_ = w.WriteAll(records)
	if err := w.Error(); err != nil {
		_ = c.Error(err)
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
