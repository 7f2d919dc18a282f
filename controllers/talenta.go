package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/services"
	"sim-talenta-gtk-api/utils"

	"github.com/gin-gonic/gin"
)

// talentaDetails holds the jenis-dependent fields shared by create and update.
type talentaDetails struct {
	NamaKegiatan          *string `json:"namaKegiatan"`
	PenyelenggaraKegiatan *string `json:"penyelenggaraKegiatan"`
	TanggalMulai          *string `json:"tanggalMulai"`
	JangkaWaktu           *int    `json:"jangkaWaktu" binding:"omitempty,min=0"`
	NamaLomba             *string `json:"namaLomba"`
	Jenjang               *string `json:"jenjang" binding:"omitempty,oneof=kota provinsi nasional internasional"`
	Bidang                *string `json:"bidang" binding:"omitempty,oneof=akademik inovasi teknologi sosial seni kepemimpinan"`
	Prestasi              *string `json:"prestasi"`
	BuktiURL              *string `json:"buktiUrl"`
	Deskripsi             *string `json:"deskripsi"`
}

type CreateTalentaRequest struct {
	GtkID string `json:"gtkId" binding:"required"`
	Jenis string `json:"jenis" binding:"required,oneof=peserta_pelatihan pembimbing_lomba peserta_lomba minat_bakat"`
	talentaDetails
}

type UpdateTalentaRequest struct {
	Jenis *string `json:"jenis" binding:"omitempty,oneof=peserta_pelatihan pembimbing_lomba peserta_lomba minat_bakat"`
	talentaDetails
}

func (d *talentaDetails) updates() (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	text := map[string]*string{
		"nama_kegiatan":          d.NamaKegiatan,
		"penyelenggara_kegiatan": d.PenyelenggaraKegiatan,
		"nama_lomba":             d.NamaLomba,
		"jenjang":                d.Jenjang,
		"bidang":                 d.Bidang,
		"prestasi":               d.Prestasi,
		"bukti_url":              d.BuktiURL,
		"deskripsi":              d.Deskripsi,
	}
	for column, value := range text {
		if value != nil {
			updates[column] = utils.SanitizeOptional(value)
		}
	}
	if d.TanggalMulai != nil {
		tanggal, err := parseOptionalDate("tanggalMulai", "Tanggal mulai", d.TanggalMulai)
		if err != nil {
			return nil, err
		}
		updates["tanggal_mulai"] = tanggal
	}
	if d.JangkaWaktu != nil {
		updates["jangka_waktu"] = *d.JangkaWaktu
	}
	return updates, nil
}

func (d *talentaDetails) apply(t *models.Talenta) error {
	tanggal, err := parseOptionalDate("tanggalMulai", "Tanggal mulai", d.TanggalMulai)
	if err != nil {
		return err
	}
	t.NamaKegiatan = utils.SanitizeOptional(d.NamaKegiatan)
	t.PenyelenggaraKegiatan = utils.SanitizeOptional(d.PenyelenggaraKegiatan)
	t.TanggalMulai = tanggal
	t.JangkaWaktu = d.JangkaWaktu
	t.NamaLomba = utils.SanitizeOptional(d.NamaLomba)
	t.Jenjang = d.Jenjang
	t.Bidang = d.Bidang
	t.Prestasi = utils.SanitizeOptional(d.Prestasi)
	t.BuktiURL = utils.SanitizeOptional(d.BuktiURL)
	t.Deskripsi = utils.SanitizeOptional(d.Deskripsi)
	return nil
}

// talentaScope narrows listings to the caller: gtk users see their own
// records, admin_sekolah the records of their school.
func talentaScope(c *gin.Context, filter *services.TalentaFilter) bool {
	switch c.GetString("role") {
	case models.RoleGtk:
		gtk, err := services.NewGtkService(nil).FindByUserID(c.Request.Context(), c.GetString("userID"))
		if err != nil {
			if errors.Is(err, services.ErrGtkNotFound) {
				forbidden(c)
				return false
			}
			serverError(c)
			return false
		}
		filter.GtkID = gtk.ID
	case models.RoleAdminSekolah:
		scope, err := services.NewGtkService(nil).ScopeSekolahID(c.Request.Context(), c.GetString("userID"), models.RoleAdminSekolah)
		if err != nil {
			serverError(c)
			return false
		}
		filter.SekolahID = scope
	}
	return true
}

// canAccessTalenta answers 403 or 500 itself when access is refused.
func canAccessTalenta(c *gin.Context, t *models.Talenta) bool {
	filter := services.TalentaFilter{}
	if !talentaScope(c, &filter) {
		return false
	}
	if filter.GtkID != "" && t.GtkID != filter.GtkID {
		forbidden(c)
		return false
	}
	if filter.SekolahID != "" && (t.Gtk == nil || t.Gtk.SekolahID == nil || *t.Gtk.SekolahID != filter.SekolahID) {
		forbidden(c)
		return false
	}
	return true
}

func loadTalenta(c *gin.Context, svc *services.TalentaService) (*models.Talenta, bool) {
	talenta, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTalentaNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Talenta tidak ditemukan"})
			return nil, false
		}
		serverError(c)
		return nil, false
	}
	if !canAccessTalenta(c, talenta) {
		return nil, false
	}
	return talenta, true
}

// GetTalentaList supports gtkId, jenis, verified, page, limit and all=true.
func GetTalentaList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	filter := services.TalentaFilter{
		GtkID:    c.Query("gtkId"),
		Jenis:    c.Query("jenis"),
		Verified: c.Query("verified"),
		Page:     page,
		Limit:    limit,
		All:      c.Query("all") == "true",
	}
	if !talentaScope(c, &filter) {
		return
	}

	rows, total, err := services.NewTalentaService(nil).List(c.Request.Context(), filter)
	if err != nil {
		serverError(c)
		return
	}
	if filter.All {
		c.JSON(http.StatusOK, gin.H{"data": rows})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "pagination": paginationBody(page, limit, total)})
}

func GetTalenta(c *gin.Context) {
	talenta, ok := loadTalenta(c, services.NewTalentaService(nil))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": talenta})
}

// CreateTalenta lets gtk users add records for their own profile only.
func CreateTalenta(c *gin.Context) {
	var req CreateTalentaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data talenta tidak valid"})
		return
	}

	if c.GetString("role") == models.RoleGtk {
		filter := services.TalentaFilter{}
		if !talentaScope(c, &filter) {
			return
		}
		if filter.GtkID != req.GtkID {
			forbidden(c)
			return
		}
	}

	talenta := &models.Talenta{GtkID: req.GtkID, Jenis: req.Jenis}
	if err := req.apply(talenta); err != nil {
		writeInputError(c, err)
		return
	}
	if err := services.NewTalentaService(nil).Create(c.Request.Context(), talenta); err != nil {
		if errors.Is(err, services.ErrGtkNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "GTK tidak ditemukan"})
			return
		}
		serverError(c)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": talenta, "message": "Talenta berhasil ditambahkan"})
}

func UpdateTalenta(c *gin.Context) {
	var req UpdateTalentaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data talenta tidak valid"})
		return
	}
	updates, err := req.updates()
	if err != nil {
		writeInputError(c, err)
		return
	}
	if req.Jenis != nil {
		updates["jenis"] = *req.Jenis
	}

	svc := services.NewTalentaService(nil)
	if _, ok := loadTalenta(c, svc); !ok {
		return
	}
	talenta, err := svc.Update(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		if writeInputError(c, err) {
			return
		}
		if errors.Is(err, services.ErrTalentaNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Talenta tidak ditemukan"})
			return
		}
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": talenta, "message": "Talenta berhasil diperbarui"})
}

func DeleteTalenta(c *gin.Context) {
	svc := services.NewTalentaService(nil)
	if _, ok := loadTalenta(c, svc); !ok {
		return
	}
	if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrTalentaNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Talenta tidak ditemukan"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal menghapus talenta"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Talenta berhasil dihapus"})
}

// VerifyTalenta (POST) marks a record verified; DELETE on the same path
// clears the verification.
func VerifyTalenta(c *gin.Context) {
	setTalentaVerified(c, true)
}

func UnverifyTalenta(c *gin.Context) {
	setTalentaVerified(c, false)
}

func setTalentaVerified(c *gin.Context, verified bool) {
	svc := services.NewTalentaService(nil)
	if _, ok := loadTalenta(c, svc); !ok {
		return
	}
	talenta, err := svc.SetVerified(c.Request.Context(), c.Param("id"), c.GetString("userID"), verified)
	if err != nil {
		if errors.Is(err, services.ErrTalentaNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Talenta tidak ditemukan"})
			return
		}
		serverError(c)
		return
	}
	message := "Verifikasi talenta dibatalkan"
	if verified {
		message = "Talenta berhasil diverifikasi"
	}
	c.JSON(http.StatusOK, gin.H{"data": talenta, "message": message})
}
