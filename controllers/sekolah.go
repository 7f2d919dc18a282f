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

type CreateSekolahRequest struct {
	Nama          string  `json:"nama" binding:"required"`
	Npsn          string  `json:"npsn" binding:"required,max=20"`
	Jenjang       string  `json:"jenjang" binding:"omitempty,oneof=SMA SMK SLB"`
	Status        string  `json:"status" binding:"required,oneof=negeri swasta"`
	Kota          string  `json:"kota" binding:"required,oneof=kota_malang kota_batu"`
	Alamat        string  `json:"alamat"`
	KepalaSekolah *string `json:"kepalaSekolah"`
}

type UpdateSekolahRequest struct {
	Nama          *string `json:"nama"`
	Npsn          *string `json:"npsn" binding:"omitempty,max=20"`
	Jenjang       *string `json:"jenjang" binding:"omitempty,oneof=SMA SMK SLB"`
	Status        *string `json:"status" binding:"omitempty,oneof=negeri swasta"`
	Kota          *string `json:"kota" binding:"omitempty,oneof=kota_malang kota_batu"`
	Alamat        *string `json:"alamat"`
	KepalaSekolah *string `json:"kepalaSekolah"`
}

func (r *UpdateSekolahRequest) updates() (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if r.Nama != nil {
		nama := utils.SanitizeInput(*r.Nama)
		if nama == "" {
			return nil, utils.Invalid("nama", "Nama sekolah wajib diisi")
		}
		updates["nama"] = nama
	}
	if r.Npsn != nil {
		updates["npsn"] = utils.SanitizeInput(*r.Npsn)
	}
	if r.Jenjang != nil {
		updates["jenjang"] = *r.Jenjang
	}
	if r.Status != nil {
		updates["status"] = *r.Status
	}
	if r.Kota != nil {
		updates["kota"] = *r.Kota
	}
	if r.Alamat != nil {
		alamat := utils.SanitizeInput(*r.Alamat)
		if alamat == "" {
			alamat = services.DefaultAlamat
		}
		updates["alamat"] = alamat
	}
	if r.KepalaSekolah != nil {
		updates["kepala_sekolah"] = utils.SanitizeOptional(r.KepalaSekolah)
	}
	return updates, nil
}

// GetSekolahList supports search, kota, jenjang, status, page, limit and all=true.
func GetSekolahList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	filter := services.SekolahFilter{
		Search:  c.Query("search"),
		Kota:    c.Query("kota"),
		Jenjang: c.Query("jenjang"),
		Status:  c.Query("status"),
		Page:    page,
		Limit:   limit,
		All:     c.Query("all") == "true",
	}

	rows, total, err := services.NewSekolahService(nil).List(c.Request.Context(), filter)
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

func GetSekolah(c *gin.Context) {
	sekolah, err := services.NewSekolahService(nil).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrSekolahNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sekolah tidak ditemukan"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sekolah})
}

func CreateSekolah(c *gin.Context) {
	var req CreateSekolahRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data sekolah tidak valid"})
		return
	}

	sekolah := &models.Sekolah{
		Nama:          utils.SanitizeInput(req.Nama),
		Npsn:          utils.SanitizeInput(req.Npsn),
		Jenjang:       req.Jenjang,
		Status:        req.Status,
		Kota:          req.Kota,
		Alamat:        utils.SanitizeInput(req.Alamat),
		KepalaSekolah: utils.SanitizeOptional(req.KepalaSekolah),
	}
	if err := services.NewSekolahService(nil).Create(c.Request.Context(), sekolah); err != nil {
		if writeInputError(c, err) {
			return
		}
		if errors.Is(err, services.ErrNpsnTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "NPSN sudah terdaftar"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": sekolah, "message": "Sekolah berhasil ditambahkan"})
}

func UpdateSekolah(c *gin.Context) {
	var req UpdateSekolahRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data sekolah tidak valid"})
		return
	}
	updates, err := req.updates()
	if err != nil {
		writeInputError(c, err)
		return
	}

	sekolah, err := services.NewSekolahService(nil).Update(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		if writeInputError(c, err) {
			return
		}
		switch {
		case errors.Is(err, services.ErrSekolahNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sekolah tidak ditemukan"})
		case errors.Is(err, services.ErrNpsnTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "NPSN sudah terdaftar"})
		default:
			serverError(c)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sekolah, "message": "Sekolah berhasil diperbarui"})
}

func DeleteSekolah(c *gin.Context) {
	if err := services.NewSekolahService(nil).Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, services.ErrSekolahNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sekolah tidak ditemukan"})
		case errors.Is(err, services.ErrSekolahInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "Sekolah masih memiliki data GTK"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal menghapus sekolah"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sekolah berhasil dihapus"})
}

func paginationBody(page, limit int, total int64) gin.H {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return gin.H{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages,
	}
}
