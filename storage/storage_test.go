package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"sim-talenta-gtk-api/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "SMAN_1_Malang.xlsx", SanitizeFilename("SMAN 1 Malang.xlsx"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "data.xlsx", SanitizeFilename(`C:\Users\tu\data.xlsx`))
	assert.Equal(t, "file", SanitizeFilename("..."))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("/imports/gtk/", "SMAN 1 Malang.xlsx", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^imports/gtk/2026/07/[0-9a-f-]{36}-SMAN_1_Malang\.xlsx$`), key)
}

func TestLocalStorePutAvoidsOverwrite(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/uploads/")

	url, err := store.Put(context.Background(), "imports/2026/07/a.xlsx", strings.NewReader("one"), 3, "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/imports/2026/07/a.xlsx", url)

	url, err = store.Put(context.Background(), "imports/2026/07/a.xlsx", strings.NewReader("two"), 3, "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/imports/2026/07/a_1.xlsx", url)

	data, err := os.ReadFile(filepath.Join(root, "imports", "2026", "07", "a_1.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestLocalStorePutStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/uploads")

	url, err := store.Put(context.Background(), "../../evil.txt", strings.NewReader("x"), 1, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/evil.txt", url)
	_, err = os.Stat(filepath.Join(root, "evil.txt"))
	assert.NoError(t, err)
}

func TestLocalStorePutHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocalStore(t.TempDir(), "/uploads").Put(ctx, "a.txt", strings.NewReader("x"), 1, "text/plain")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFallsBackToLocalDisk(t *testing.T) {
	cfg := &config.Configuration{UploadPath: t.TempDir()}
	store, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)
}

func TestNewMinioStoreJoinsPort(t *testing.T) {
	store, err := NewMinioStore(config.MinioOptions{Endpoint: "minio.local", Port: 9000, AccessKey: "k", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "minio.local:9000", store.endpoint)
}

func TestMinioObjectURL(t *testing.T) {
	store, err := NewMinioStore(config.MinioOptions{Endpoint: "files.sipodi.id:443", UseSSL: true, AccessKey: "k", SecretKey: "s", Bucket: "gtk"})
	require.NoError(t, err)
	assert.Equal(t, "https://files.sipodi.id:443/gtk/imports/a.xlsx", store.objectURL("imports/a.xlsx"))
}
