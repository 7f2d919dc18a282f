package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"sim-talenta-gtk-api/services"

	"github.com/gin-gonic/gin"
)

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func writeUserError(c *gin.Context, err error) {
	if writeInputError(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User tidak ditemukan"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email sudah terdaftar"})
	case errors.Is(err, services.ErrDeleteSelf):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tidak dapat menghapus akun sendiri"})
	default:
		serverError(c)
	}
}

// GetUsers supports search (email), role, page and limit.
func GetUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, total, err := services.NewUserService(nil).List(c.Request.Context(), services.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "pagination": paginationBody(page, limit, total)})
}

func GetUser(c *gin.Context) {
	user, err := services.NewUserService(nil).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data user tidak valid"})
		return
	}
	user, err := services.NewUserService(nil).Create(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user, "message": "User berhasil ditambahkan"})
}

func UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data user tidak valid"})
		return
	}
	user, err := services.NewUserService(nil).Update(c.Request.Context(), c.Param("id"), services.UserChanges{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user, "message": "User berhasil diperbarui"})
}

func DeleteUser(c *gin.Context) {
	if err := services.NewUserService(nil).Delete(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User berhasil dihapus"})
}
