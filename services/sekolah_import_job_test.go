package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"sim-talenta-gtk-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sekolahHeader = []interface{}{"Nama Sekolah", "NPSN", "Status", "Alamat"}

func newTestSekolahJob(store *fakeImportStore) *SekolahImportJob {
	job := NewSekolahImportJob(store, nil, SekolahImportOptions{LockEnabled: true, Columns: DefaultSekolahColumns()})
	ids := 0
	job.newID = func() string {
		ids++
		return fmt.Sprintf("sek-%d", ids)
	}
	job.hooks.now = fixedClock(time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC))
	return job
}

func TestSekolahImportRejectsUnknownKota(t *testing.T) {
	store := newFakeImportStore()
	sink := NewBufferedLogSink()

	result, err := newTestSekolahJob(store).Run(context.Background(), ImportInput{
		FileName: "sekolah.xlsx",
		Content:  buildWorkbook(t, sekolahHeader, []interface{}{"SMAN 1", "20533817"}),
		Kota:     "kab_malang",
	}, sink)

	require.Error(t, err)
	assert.True(t, IsImportErrorKind(err, ImportErrorInput))
	assert.Equal(t, OutcomeInputError, result.Outcome)
	assert.Empty(t, store.lockCalls)

	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Pilih kota yang valid", entries[0].Message)
}

func TestSekolahImportRows(t *testing.T) {
	store := newFakeImportStore()
	store.npsns["20533000"] = true
	store.createErr["20533999"] = ErrDuplicateRecord
	store.createErr["20533888"] = errors.New("data too long")
	sink := NewBufferedLogSink()

	buf := buildWorkbook(t, sekolahHeader,
		[]interface{}{"SMKN 4 Malang", "20533817", "Negeri", "Jl. Tanimbar 22"},
		[]interface{}{"SMA Lama", "20533000", "Swasta"},
		[]interface{}{"", "20533111"},
		[]interface{}{"SMA Balapan", "20533999"},
		[]interface{}{"SLB Pembina", "20533888"},
		[]interface{}{"SMA Katolik", 20533222, "Swasta"},
	)
	result, err := newTestSekolahJob(store).Run(context.Background(), ImportInput{
		FileName: "sekolah.xlsx",
		Content:  buf,
		Kota:     models.KotaMalang,
	}, sink)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, 1, result.Errored)
	assert.Equal(t, 6, result.Total)
	assert.Nil(t, result.Organization)

	rows := rowEntries(sink.Entries())
	require.Len(t, rows, 6)
	assert.Equal(t, `"SMKN 4 Malang" berhasil diimport`, rows[0].Message)
	assert.Equal(t, "Jenjang: SMK, Status: Negeri", rows[0].Data)
	assert.Equal(t, `"SMA Lama" sudah ada (NPSN: 20533000)`, rows[1].Message)
	assert.Equal(t, "Nama atau NPSN kosong, dilewati", rows[2].Message)
	assert.Equal(t, LogSkipped, rows[3].Status, "unique violation on insert is a duplicate")
	assert.Equal(t, LogError, rows[4].Status)
	assert.Equal(t, LogSuccess, rows[5].Status)

	require.Len(t, store.created, 2)
	first := store.created[0]
	assert.Equal(t, models.KotaMalang, first.Kota)
	assert.Equal(t, "Jl. Tanimbar 22", first.Alamat)
	assert.Equal(t, models.StatusSekolahNegeri, first.Status)
	assert.Equal(t, "20533222", store.created[1].Npsn)
	assert.Equal(t, DefaultAlamat, store.created[1].Alamat)

	assert.Equal(t, []string{"sekolah_import:kota_malang"}, store.lockCalls)
	assert.Equal(t, 1, store.released)
}

func TestSekolahImportEmptyAndInvalidFiles(t *testing.T) {
	store := newFakeImportStore()
	job := newTestSekolahJob(store)

	result, err := job.Run(context.Background(), ImportInput{FileName: "a.xlsx", Content: buildWorkbook(t, sekolahHeader), Kota: models.KotaBatu}, nil)
	require.Error(t, err)
	assert.Equal(t, OutcomeInputError, result.Outcome)

	result, err = job.Run(context.Background(), ImportInput{FileName: "a.xlsx", Kota: models.KotaBatu}, nil)
	require.Error(t, err)
	assert.Equal(t, OutcomeInputError, result.Outcome)

	var parseErr *ParseError
	_, err = job.Run(context.Background(), ImportInput{FileName: "a.xlsx", Content: strings.NewReader("garbage"), Kota: models.KotaBatu}, nil)
	assert.ErrorAs(t, err, &parseErr)
}

func TestSekolahImportLockConflict(t *testing.T) {
	store := newFakeImportStore()
	store.lockErr = ErrImportAlreadyRunning

	result, err := newTestSekolahJob(store).Run(context.Background(), ImportInput{
		FileName: "a.xlsx",
		Content:  buildWorkbook(t, sekolahHeader, []interface{}{"SMAN 1", "1"}),
		Kota:     models.KotaBatu,
	}, nil)
	require.Error(t, err)
	assert.True(t, IsImportErrorKind(err, ImportErrorConflict))
	assert.Equal(t, OutcomeConflict, result.Outcome)
	assert.Empty(t, store.created)
}
