package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"

	"github.com/google/uuid"
)

type SekolahImportOptions struct {
	LockEnabled bool
	Columns     SekolahColumns
}

func SekolahImportOptionsFromConfig(cfg *config.Configuration) SekolahImportOptions {
	return SekolahImportOptions{
		LockEnabled: cfg.Import.LockEnabled,
		Columns:     DefaultSekolahColumns(),
	}
}

// SekolahImportJob imports schools of one kota. NPSN is the duplicate key.
type SekolahImportJob struct {
	store SekolahImportStore
	opts  SekolahImportOptions
	hooks importRunHooks
	newID func() string
}

func NewSekolahImportJob(store SekolahImportStore, runs ImportRunRecorder, opts SekolahImportOptions) *SekolahImportJob {
	return &SekolahImportJob{
		store: store,
		opts:  opts,
		hooks: importRunHooks{
			runs:   runs,
			logger: componentLogger("sekolah_import"),
			now:    time.Now,
		},
		newID: uuid.NewString,
	}
}

func (j *SekolahImportJob) WithReporter(reporter ImportReporter) *SekolahImportJob {
	j.hooks.reporter = reporter
	return j
}

// ValidKota reports whether kota is one of the supported regions.
func ValidKota(kota string) bool {
	_, ok := models.Kota[kota]
	return ok
}

// Run behaves like GtkImportJob.Run; the result carries no organization.
func (j *SekolahImportJob) Run(ctx context.Context, input ImportInput, sink ImportLogSink) (*ImportRunResult, error) {
	ctx = persistentContext(ctx)
	emitter := newImportEmitter(sink, models.ImportKindSekolah, j.hooks.logger.WithField("file", input.FileName))

	result, err := j.hooks.track(ctx, models.ImportKindSekolah, input, func() (*ImportRunResult, error) {
		return j.execute(ctx, input, emitter)
	})
	emitter.finalize(result)
	return result, err
}

func (j *SekolahImportJob) execute(ctx context.Context, input ImportInput, e *importEmitter) (*ImportRunResult, error) {
	if !ValidKota(input.Kota) {
		importErr := newImportError(ImportErrorInput, "Pilih kota yang valid", nil)
		e.emit("Memulai import", LogError, importErr.Message)
		return failedResult(importErr, nil), importErr
	}
	e.emit("Memulai import", LogProcessing, fmt.Sprintf("File: %s, Kota: %s", input.FileName, models.KotaLabel(input.Kota)))

	if input.Content == nil {
		importErr := newImportError(ImportErrorInput, "File tidak ditemukan", nil)
		e.emit("Memulai import", LogError, importErr.Message)
		return failedResult(importErr, nil), importErr
	}

	release, err := lockOrNoop(ctx, j.store, j.opts.LockEnabled, "sekolah_import:"+input.Kota)
	if err != nil {
		var importErr *ImportError
		if errors.Is(err, ErrImportAlreadyRunning) {
			importErr = newImportError(ImportErrorConflict, fmt.Sprintf("Import sekolah untuk %s sedang berjalan", models.KotaLabel(input.Kota)), err)
		} else {
			importErr = newImportError(ImportErrorInternal, "Gagal mengunci import", err)
		}
		e.emit("Memulai import", LogError, importErr.Message)
		return failedResult(importErr, nil), importErr
	}
	defer func() {
		if relErr := release(); relErr != nil {
			j.hooks.logger.WithError(relErr).Warn("failed to release sekolah import lock")
		}
	}()

	e.emit("Membaca file Excel", LogProcessing, "Memproses file Excel...")
	rows, _, err := ReadSpreadsheet(input.Content)
	if err != nil {
		importErr := newImportError(ImportErrorInput, fmt.Sprintf("File \"%s\" bukan file Excel yang valid", input.FileName), err)
		e.emit("Membaca file Excel", LogError, importErr.Message)
		return failedResult(importErr, nil), importErr
	}
	if len(rows) == 0 {
		importErr := newImportError(ImportErrorInput, "File Excel kosong", nil)
		e.emit("Membaca file Excel", LogError, importErr.Message)
		return failedResult(importErr, nil), importErr
	}
	e.emit("Membaca file Excel", LogSuccess, fmt.Sprintf("Ditemukan %d baris data", len(rows)))

	tally := importTally{total: len(rows)}
	for _, row := range rows {
		j.importRow(ctx, row, input.Kota, &tally, e)
	}

	e.emit("Selesai", LogSuccess, tally.summary())
	return tally.result(nil), nil
}

func (j *SekolahImportJob) importRow(ctx context.Context, row SpreadsheetRow, kota string, tally *importTally, e *importEmitter) {
	record, err := NormalizeSekolahRow(j.opts.Columns, row.Cells)
	if err != nil {
		tally.skipped++
		e.row(row.Number, LogSkipped, "Nama atau NPSN kosong, dilewati")
		return
	}

	duplicate := fmt.Sprintf("\"%s\" sudah ada (NPSN: %s)", record.Nama, record.Npsn)
	exists, err := j.store.SekolahNpsnExists(ctx, record.Npsn)
	if err != nil {
		tally.errored++
		e.row(row.Number, LogError, fmt.Sprintf("Gagal import \"%s\": %v", record.Nama, err))
		return
	}
	if exists {
		tally.skipped++
		e.row(row.Number, LogSkipped, duplicate)
		return
	}

	sekolah := &models.Sekolah{
		ID:            j.newID(),
		Nama:          record.Nama,
		Npsn:          record.Npsn,
		Jenjang:       record.Jenjang,
		Status:        record.Status,
		Kota:          kota,
		Alamat:        record.Alamat,
		KepalaSekolah: record.KepalaSekolah,
	}
	if err := j.store.CreateSekolah(ctx, sekolah); err != nil {
		if errors.Is(err, ErrDuplicateRecord) {
			tally.skipped++
			e.row(row.Number, LogSkipped, duplicate)
			return
		}
		tally.errored++
		e.row(row.Number, LogError, fmt.Sprintf("Gagal import \"%s\": %v", record.Nama, err))
		return
	}

	tally.imported++
	status := "Swasta"
	if record.Status == models.StatusSekolahNegeri {
		status = "Negeri"
	}
	e.row(row.Number, LogSuccess,
		fmt.Sprintf("\"%s\" berhasil diimport", record.Nama),
		fmt.Sprintf("Jenjang: %s, Status: %s", record.Jenjang, status))
}
