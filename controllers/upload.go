package controllers

import (
	"net/http"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadEvidence stores an image or PDF and records it in file_uploads.
func UploadEvidence(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File tidak ditemukan"})
		return
	}

	ct, ok := canonicalMime(header.Header.Get("Content-Type"), header.Filename, allowedEvidenceMimeTypes, evidenceExtensionToMime)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipe file tidak didukung. Gunakan JPG, PNG, GIF, atau PDF"})
		return
	}
	if header.Size > maxEvidenceBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ukuran file maksimal " + formatMB(maxEvidenceBytes)})
		return
	}

	data, err := readUpload(header, maxEvidenceBytes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File tidak dapat dibaca"})
		return
	}
	record := &models.FileUpload{
		ID:           uuid.NewString(),
		OriginalName: header.Filename,
		FileSize:     int64(len(data)),
		MimeType:     mimetype.Detect(data).String(),
		UploadedBy:   c.GetString("userID"),
	}
	if !record.IsValidEvidenceType() || !sniffMatches(data, ct) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Isi file tidak sesuai dengan tipenya"})
		return
	}

	key, url, err := archiveUpload(c.Request.Context(), "evidence", header.Filename, ct, data)
	if err != nil {
		config.Logger().WithError(err).WithField("file", header.Filename).Error("failed to store upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengunggah file"})
		return
	}
	record.ObjectKey = key
	record.URL = url

	if err := config.DB.Create(record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal menyimpan data file"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": record, "url": url})
}
