package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/services"

	"github.com/gin-gonic/gin"
)

// importRunner is implemented by services.GtkImportJob and services.SekolahImportJob.
type importRunner interface {
	Run(ctx context.Context, input services.ImportInput, sink services.ImportLogSink) (*services.ImportRunResult, error)
}

var newGtkImportJob = func() importRunner {
	job := services.NewGtkImportJob(services.NewGormImportStore(nil), services.NewImportRunService(nil), services.GtkImportOptionsFromConfig(config.App))
	return job.WithReporter(services.ReporterFromConfig(config.App))
}

var newSekolahImportJob = func() importRunner {
	job := services.NewSekolahImportJob(services.NewGormImportStore(nil), services.NewImportRunService(nil), services.SekolahImportOptionsFromConfig(config.App))
	return job.WithReporter(services.ReporterFromConfig(config.App))
}

var listImportRuns = func(kind string, limit, offset int) ([]models.ImportRun, int64, error) {
	return services.NewImportRunService(nil).List(kind, limit, offset)
}

// AdminImportGtk imports staff from an Excel file named after the school.
// The log is streamed as NDJSON unless mode=buffered is given.
func AdminImportGtk(c *gin.Context) {
	input, ok := prepareImportUpload(c, models.ImportKindGtk)
	if !ok {
		return
	}
	runImport(c, newGtkImportJob(), input)
}

// AdminImportSekolah imports schools for the selected kota.
func AdminImportSekolah(c *gin.Context) {
	kota := strings.TrimSpace(c.PostForm("kota"))
	if !services.ValidKota(kota) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pilih kota yang valid"})
		return
	}
	input, ok := prepareImportUpload(c, models.ImportKindSekolah)
	if !ok {
		return
	}
	input.Kota = kota
	runImport(c, newSekolahImportJob(), input)
}

// AdminListImportRuns lists recorded import runs, newest first.
func AdminListImportRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	kind := strings.TrimSpace(c.Query("kind"))
	if kind != "" && kind != models.ImportKindGtk && kind != models.ImportKindSekolah {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Jenis import tidak valid"})
		return
	}

	runs, total, err := listImportRuns(kind, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengambil riwayat import"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   runs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// prepareImportUpload validates and archives the uploaded spreadsheet.
// It writes the error response itself and reports false on failure.
func prepareImportUpload(c *gin.Context, kind string) (services.ImportInput, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File tidak ditemukan"})
		return services.ImportInput{}, false
	}

	ct, ok := canonicalMime(header.Header.Get("Content-Type"), header.Filename, allowedImportMimeTypes, importExtensionToMime)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format file tidak didukung, gunakan file .xlsx"})
		return services.ImportInput{}, false
	}
	limit := maxImportBytes()
	if header.Size > limit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ukuran file melebihi " + formatMB(limit)})
		return services.ImportInput{}, false
	}

	data, err := readUpload(header, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File tidak dapat dibaca"})
		return services.ImportInput{}, false
	}
	if !sniffMatches(data, ct) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Isi file bukan file Excel yang valid"})
		return services.ImportInput{}, false
	}

	input := services.ImportInput{
		FileName:      header.Filename,
		Content:       bytes.NewReader(data),
		TriggerSource: "admin_api",
		ActorEmail:    c.GetString("email"),
	}
	if userID := c.GetString("userID"); userID != "" {
		input.ActorUserID = &userID
	}

	if key, _, err := archiveUpload(c.Request.Context(), "import_runs/"+kind, header.Filename, ct, data); err != nil {
		config.Logger().WithError(err).WithField("file", header.Filename).Warn("failed to archive import upload")
	} else {
		input.StoredObject = &key
	}
	return input, true
}

func runImport(c *gin.Context, job importRunner, input services.ImportInput) {
	if c.Query("mode") == "buffered" {
		sink := services.NewBufferedLogSink()
		result, err := job.Run(c.Request.Context(), input, sink)
		body := gin.H{
			"logs":   sink.Entries(),
			"result": result,
		}
		if err != nil {
			body["error"] = importErrorMessage(err)
		}
		c.JSON(importStatus(result), body)
		return
	}

	c.Header("Content-Type", "application/x-ndjson; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	_, _ = job.Run(c.Request.Context(), input, services.NewNDJSONLogSink(c.Writer))
}

func importStatus(result *services.ImportRunResult) int {
	if result == nil {
		return http.StatusInternalServerError
	}
	switch result.Outcome {
	case services.OutcomeCompleted:
		return http.StatusOK
	case services.OutcomeInputError:
		return http.StatusBadRequest
	case services.OutcomeResolutionError:
		return http.StatusNotFound
	case services.OutcomeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func importErrorMessage(err error) string {
	var importErr *services.ImportError
	if errors.As(err, &importErr) {
		return importErr.Message
	}
	return "Terjadi kesalahan server"
}
