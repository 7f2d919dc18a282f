package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/storage"

	"github.com/gabriel-vasile/mimetype"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var allowedImportMimeTypes = map[string]string{
	xlsxMime: ".xlsx",
}

var importExtensionToMime = map[string]string{
	".xlsx": xlsxMime,
}

var allowedEvidenceMimeTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

var evidenceExtensionToMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

const maxEvidenceBytes = 5 * 1024 * 1024

var objectStore storage.ObjectStore

// SetObjectStore wires the storage used for archived imports and evidence uploads.
func SetObjectStore(store storage.ObjectStore) {
	objectStore = store
}

// canonicalMime resolves the declared content type, falling back to the
// file extension when the browser sent a generic one.
func canonicalMime(declared, filename string, allowed, byExtension map[string]string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(declared))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if _, ok := allowed[ct]; ok {
		return ct, true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if mapped, ok := byExtension[ext]; ok {
		if ct == "" || ct == "application/octet-stream" || ct == "application/zip" || ct == "binary/octet-stream" {
			return mapped, true
		}
	}
	return "", false
}

// sniffMatches checks the content against the expected type. An xlsx file
// may be detected as a plain zip archive.
func sniffMatches(data []byte, expected string) bool {
	detected := mimetype.Detect(data)
	if detected.Is(expected) {
		return true
	}
	if expected == xlsxMime {
		return detected.Is("application/zip")
	}
	return false
}

// readUpload reads at most limit bytes of the uploaded file.
func readUpload(header *multipart.FileHeader, limit int64) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}

// archiveUpload stores data under prefix and returns the object key.
func archiveUpload(ctx context.Context, prefix, filename, contentType string, data []byte) (string, string, error) {
	if objectStore == nil {
		return "", "", fmt.Errorf("object store not configured")
	}
	key := storage.ObjectKey(prefix, filename, time.Now())
	url, err := objectStore.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

func maxImportBytes() int64 {
	if config.App != nil && config.App.Import.MaxUploadBytes > 0 {
		return config.App.Import.MaxUploadBytes
	}
	return 20 * 1024 * 1024
}

func formatMB(bytes int64) string {
	return fmt.Sprintf("%dMB", bytes/(1024*1024))
}
