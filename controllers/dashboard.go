package controllers

import (
	"net/http"

	"sim-talenta-gtk-api/services"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns totals; GTK figures are scoped for admin_sekolah.
func GetDashboard(c *gin.Context) {
	scope, err := services.NewGtkService(nil).ScopeSekolahID(c.Request.Context(), c.GetString("userID"), c.GetString("role"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		return
	}

	stats, err := services.NewDashboardService(nil).Stats(c.Request.Context(), scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Terjadi kesalahan server"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
