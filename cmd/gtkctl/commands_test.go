package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"sim-talenta-gtk-api/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCLILoggingKeepsStdoutClean(t *testing.T) {
	prevWriter, prevOut := config.LogWriter, config.Logger().Out
	stdout := os.Stdout
	t.Cleanup(func() {
		config.LogWriter = prevWriter
		config.Logger().SetOutput(prevOut)
		os.Stdout = stdout
	})

	captured, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)
	os.Stdout = captured

	dir := t.TempDir()
	cfg := &config.Configuration{Environment: "development", LogLevel: "info", LogPath: filepath.Join(dir, "gtkctl.log")}
	var console bytes.Buffer
	closeLogs := initCLILogging(cfg, &console)

	config.Logger().Info("import started")
	// config.InitDB builds the SQL logger on LogWriter the same way.
	log.New(config.LogWriter, "\r\n", 0).Print("SELECT * FROM `sekolah`")
	closeLogs()

	os.Stdout = stdout
	_, err = captured.Seek(0, io.SeekStart)
	require.NoError(t, err)
	leaked, err := io.ReadAll(captured)
	require.NoError(t, err)
	assert.Empty(t, leaked)

	assert.Contains(t, console.String(), "import started")
	assert.Contains(t, console.String(), "SELECT * FROM `sekolah`")

	file, err := os.ReadFile(cfg.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(file), "SELECT * FROM `sekolah`")
}
