package controllers

import (
	"errors"
	"net/http"

	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/services"
	"sim-talenta-gtk-api/utils"

	"github.com/gin-gonic/gin"
)

// writeInputError answers 400 for rejected fields and empty change sets and
// reports whether it did.
func writeInputError(c *gin.Context, err error) bool {
	if fe, ok := utils.AsFieldError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fe.Message, "field": fe.Field})
		return true
	}
	if errors.Is(err, services.ErrNothingToSave) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tidak ada data yang diubah"})
		return true
	}
	return false
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "Anda tidak memiliki akses"})
}

func serverError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
}

// parseOptionalDate turns a blank value into nil and rejects anything that
// is not YYYY-MM-DD.
func parseOptionalDate(field, label string, raw *string) (*models.Date, error) {
	if raw == nil || utils.SanitizeInput(*raw) == "" {
		return nil, nil
	}
	d := models.Date(utils.SanitizeInput(*raw))
	if _, err := d.Time(); err != nil {
		return nil, utils.Invalid(field, label+" harus berformat YYYY-MM-DD")
	}
	return &d, nil
}
