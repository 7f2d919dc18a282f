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

type CreateGtkRequest struct {
	Email        string  `json:"email" binding:"required"`
	Password     string  `json:"password" binding:"required"`
	NamaLengkap  string  `json:"namaLengkap" binding:"required"`
	Nuptk        *string `json:"nuptk"`
	Nip          *string `json:"nip"`
	Kelamin      string  `json:"kelamin" binding:"required,oneof=L P"`
	TanggalLahir string  `json:"tanggalLahir" binding:"required"`
	Jenis        string  `json:"jenis" binding:"required,oneof=guru tendik kepala_sekolah"`
	Jabatan      *string `json:"jabatan"`
	SekolahID    *string `json:"sekolahId"`
}

type UpdateGtkRequest struct {
	NamaLengkap  *string `json:"namaLengkap"`
	Nuptk        *string `json:"nuptk"`
	Nip          *string `json:"nip"`
	Kelamin      *string `json:"kelamin" binding:"omitempty,oneof=L P"`
	TanggalLahir *string `json:"tanggalLahir"`
	Jenis        *string `json:"jenis" binding:"omitempty,oneof=guru tendik kepala_sekolah"`
	Jabatan      *string `json:"jabatan"`
	SekolahID    *string `json:"sekolahId"`
}

func (r *UpdateGtkRequest) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if r.NamaLengkap != nil {
		updates["nama_lengkap"] = utils.SanitizeInput(*r.NamaLengkap)
	}
	if r.Nuptk != nil {
		updates["nuptk"] = utils.SanitizeOptional(r.Nuptk)
	}
	if r.Nip != nil {
		updates["nip"] = utils.SanitizeOptional(r.Nip)
	}
	if r.Kelamin != nil {
		updates["kelamin"] = *r.Kelamin
	}
	if r.TanggalLahir != nil {
		updates["tanggal_lahir"] = models.Date(utils.SanitizeInput(*r.TanggalLahir))
	}
	if r.Jenis != nil {
		updates["jenis"] = *r.Jenis
	}
	if r.Jabatan != nil {
		updates["jabatan"] = utils.SanitizeOptional(r.Jabatan)
	}
	if r.SekolahID != nil {
		updates["sekolah_id"] = utils.SanitizeOptional(r.SekolahID)
	}
	return updates
}

func writeGtkError(c *gin.Context, err error) {
	if writeInputError(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrGtkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "GTK tidak ditemukan"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email sudah terdaftar"})
	case errors.Is(err, services.ErrNuptkTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "NUPTK sudah terdaftar"})
	case errors.Is(err, services.ErrNipTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "NIP sudah terdaftar"})
	case errors.Is(err, services.ErrSekolahNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sekolah tidak ditemukan"})
	default:
		serverError(c)
	}
}

// GetGtkList lists staff; admin_sekolah only sees their own school.
func GetGtkList(c *gin.Context) {
	svc := services.NewGtkService(nil)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	filter := services.GtkFilter{
		Search:    c.Query("search"),
		Jenis:     c.Query("jenis"),
		SekolahID: c.Query("sekolahId"),
		Page:      page,
		Limit:     limit,
		All:       c.Query("all") == "true",
	}

	scope, err := svc.ScopeSekolahID(c.Request.Context(), c.GetString("userID"), c.GetString("role"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		return
	}
	if scope != "" {
		filter.SekolahID = scope
	}

	rows, total, err := svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		return
	}
	if filter.All {
		c.JSON(http.StatusOK, gin.H{"data": rows})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "pagination": paginationBody(page, limit, total)})
}

func GetGtk(c *gin.Context) {
	svc := services.NewGtkService(nil)
	gtk, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrGtkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "GTK tidak ditemukan"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		return
	}

	if !canAccessGtk(c, svc, gtk) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gtk})
}

// canAccessGtk limits gtk users to their own profile and admin_sekolah to
// their school; it answers 403 or 500 itself when access is refused.
func canAccessGtk(c *gin.Context, svc *services.GtkService, gtk *models.Gtk) bool {
	role := c.GetString("role")
	switch role {
	case models.RoleGtk:
		if gtk.UserID != c.GetString("userID") {
			forbidden(c)
			return false
		}
	case models.RoleAdminSekolah:
		scope, err := svc.ScopeSekolahID(c.Request.Context(), c.GetString("userID"), role)
		if err != nil {
			serverError(c)
			return false
		}
		if scope != "" && (gtk.SekolahID == nil || *gtk.SekolahID != scope) {
			forbidden(c)
			return false
		}
	}
	return true
}

// CreateGtk adds a staff profile with its login. admin_sekolah can only add
// staff to their own school.
func CreateGtk(c *gin.Context) {
	var req CreateGtkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data GTK tidak valid"})
		return
	}

	svc := services.NewGtkService(nil)
	sekolahID := utils.SanitizeOptional(req.SekolahID)
	if role := c.GetString("role"); role == models.RoleAdminSekolah {
		scope, err := svc.ScopeSekolahID(c.Request.Context(), c.GetString("userID"), role)
		if err != nil {
			serverError(c)
			return
		}
		if scope != "" {
			sekolahID = &scope
		}
	}

	gtk, err := svc.Create(c.Request.Context(), services.NewGtk{
		Email:    req.Email,
		Password: req.Password,
		Profile: models.Gtk{
			NamaLengkap:  req.NamaLengkap,
			Nuptk:        req.Nuptk,
			Nip:          req.Nip,
			Kelamin:      req.Kelamin,
			TanggalLahir: models.Date(utils.SanitizeInput(req.TanggalLahir)),
			Jenis:        req.Jenis,
			Jabatan:      req.Jabatan,
			SekolahID:    sekolahID,
		},
	})
	if err != nil {
		writeGtkError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": gtk, "message": "GTK berhasil ditambahkan"})
}

func UpdateGtk(c *gin.Context) {
	var req UpdateGtkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data GTK tidak valid"})
		return
	}

	svc := services.NewGtkService(nil)
	current, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeGtkError(c, err)
		return
	}
	if !canAccessGtk(c, svc, current) {
		return
	}
	updates := req.updates()
	if c.GetString("role") == models.RoleAdminSekolah {
		// Moving staff between schools is reserved for super admins.
		delete(updates, "sekolah_id")
	}

	gtk, err := svc.Update(c.Request.Context(), current.ID, updates)
	if err != nil {
		writeGtkError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gtk, "message": "GTK berhasil diperbarui"})
}

func DeleteGtk(c *gin.Context) {
	if err := services.NewGtkService(nil).Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrGtkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "GTK tidak ditemukan"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal menghapus GTK"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "GTK berhasil dihapus"})
}
