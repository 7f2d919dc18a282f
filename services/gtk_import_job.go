package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/utils"

	"github.com/google/uuid"
)

const maxEmailSlugLength = 20

// GtkImportOptions configures account provisioning for imported GTK rows.
type GtkImportOptions struct {
	DefaultPassword string
	EmailDomain     string
	BcryptCost      int
	LockEnabled     bool
	Columns         GtkColumns
}

func GtkImportOptionsFromConfig(cfg *config.Configuration) GtkImportOptions {
	return GtkImportOptions{
		DefaultPassword: cfg.Import.DefaultPassword,
		EmailDomain:     cfg.Import.EmailDomain,
		BcryptCost:      cfg.Import.BcryptCost,
		LockEnabled:     cfg.Import.LockEnabled,
		Columns:         DefaultGtkColumns(),
	}
}

// GtkImportJob imports staff rows into the school named by the file.
//
// The uploaded file name without extension is the school query. Rows are
// processed one at a time in sheet order so that a name inserted by an
// earlier row is seen as a duplicate by a later one.
type GtkImportJob struct {
	store GtkImportStore
	opts  GtkImportOptions
	hooks importRunHooks

	hashPassword hashFunc
	newID        func() string
}

func NewGtkImportJob(store GtkImportStore, runs ImportRunRecorder, opts GtkImportOptions) *GtkImportJob {
	return &GtkImportJob{
		store: store,
		opts:  opts,
		hooks: importRunHooks{
			runs:   runs,
			logger: componentLogger("gtk_import"),
			now:    time.Now,
		},
		hashPassword: utils.HashPassword,
		newID:        uuid.NewString,
	}
}

// WithReporter sends a report after every run.
func (j *GtkImportJob) WithReporter(reporter ImportReporter) *GtkImportJob {
	j.hooks.reporter = reporter
	return j
}

// Run always finalizes sink and returns a result. The error is an
// *ImportError when the run stopped before row processing.
func (j *GtkImportJob) Run(ctx context.Context, input ImportInput, sink ImportLogSink) (*ImportRunResult, error) {
	ctx = persistentContext(ctx)
	emitter := newImportEmitter(sink, models.ImportKindGtk, j.hooks.logger.WithField("file", input.FileName))

	result, err := j.hooks.track(ctx, models.ImportKindGtk, input, func() (*ImportRunResult, error) {
		return j.execute(ctx, input, emitter)
	})
	emitter.finalize(result)
	return result, err
}

func (j *GtkImportJob) execute(ctx context.Context, input ImportInput, e *importEmitter) (*ImportRunResult, error) {
	stem := FileStem(input.FileName)
	e.emit("Membaca nama file", LogProcessing, fmt.Sprintf("Nama file: %s", input.FileName), stem)

	if input.Content == nil || stem == "" {
		importErr := newImportError(ImportErrorInput, "File tidak ditemukan", nil)
		e.emit("Membaca nama file", LogError, importErr.Message)
		return failedResult(importErr, nil), importErr
	}

	workbook, err := OpenWorkbook(input.Content)
	if err != nil {
		importErr := newImportError(ImportErrorInput, fmt.Sprintf("File \"%s\" bukan file Excel yang valid", input.FileName), err)
		e.emit("Membaca nama file", LogError, importErr.Message)
		return failedResult(importErr, nil), importErr
	}
	defer workbook.Close()

	e.emit("Mencari sekolah", LogProcessing, fmt.Sprintf("Mencari sekolah dengan nama: %s", stem))
	sekolah, err := j.store.FindSekolahByName(ctx, stem)
	if err != nil {
		var importErr *ImportError
		if errors.Is(err, ErrSekolahNotFound) {
			importErr = newImportError(ImportErrorResolution, fmt.Sprintf("Sekolah \"%s\" tidak ditemukan di database", stem), err)
		} else {
			importErr = newImportError(ImportErrorInternal, fmt.Sprintf("Gagal mencari sekolah \"%s\"", stem), err)
		}
		e.emit("Mencari sekolah", LogError, importErr.Message, input.FileName)
		return failedResult(importErr, nil), importErr
	}
	organization := sekolah.Nama
	e.emit("Mencari sekolah", LogSuccess, fmt.Sprintf("Sekolah ditemukan: %s", sekolah.Nama))

	release, err := lockOrNoop(ctx, j.store, j.opts.LockEnabled, "gtk_import:"+sekolah.ID)
	if err != nil {
		var importErr *ImportError
		if errors.Is(err, ErrImportAlreadyRunning) {
			importErr = newImportError(ImportErrorConflict, fmt.Sprintf("Import GTK untuk %s sedang berjalan", sekolah.Nama), err)
		} else {
			importErr = newImportError(ImportErrorInternal, "Gagal mengunci import", err)
		}
		e.emit("Mencari sekolah", LogError, importErr.Message)
		return failedResult(importErr, &organization), importErr
	}
	defer func() {
		if relErr := release(); relErr != nil {
			j.hooks.logger.WithError(relErr).Warn("failed to release gtk import lock")
		}
	}()

	e.emit("Membaca file Excel", LogProcessing, "Memproses file Excel...")
	rows, err := workbook.FirstSheetRows()
	if err != nil {
		importErr := newImportError(ImportErrorInput, "File Excel tidak dapat dibaca", err)
		e.emit("Membaca file Excel", LogError, importErr.Message)
		return failedResult(importErr, &organization), importErr
	}
	if len(rows) == 0 {
		importErr := newImportError(ImportErrorInput, "File Excel kosong", nil)
		e.emit("Membaca file Excel", LogError, importErr.Message)
		return failedResult(importErr, &organization), importErr
	}
	e.emit("Membaca file Excel", LogSuccess, fmt.Sprintf("Ditemukan %d baris data", len(rows)))

	passwordHash, err := j.hashPassword(j.opts.DefaultPassword, j.opts.BcryptCost)
	if err != nil {
		importErr := newImportError(ImportErrorInternal, "Gagal menyiapkan password default", err)
		e.emit("Menyiapkan akun", LogError, importErr.Message)
		return failedResult(importErr, &organization), importErr
	}

	normalizer := NewGtkNormalizer(j.opts.Columns, workbook.Date1904())
	emails := newEmailGenerator(j.opts.EmailDomain, j.hooks.now)
	tally := importTally{total: len(rows)}

	for _, row := range rows {
		j.importRow(ctx, row, normalizer, sekolah, passwordHash, emails, &tally, e)
	}

	e.emit("Selesai", LogSuccess, tally.summary())
	return tally.result(&organization), nil
}

func (j *GtkImportJob) importRow(ctx context.Context, row SpreadsheetRow, normalizer *GtkNormalizer, sekolah *models.Sekolah, passwordHash string, emails *emailGenerator, tally *importTally, e *importEmitter) {
	record, err := normalizer.Normalize(row.Cells)
	if err != nil {
		tally.skipped++
		e.row(row.Number, LogSkipped, "Nama kosong, dilewati")
		return
	}

	exists, err := j.store.GtkNameExists(ctx, record.NamaLengkap)
	if err != nil {
		tally.errored++
		e.row(row.Number, LogError, fmt.Sprintf("Gagal import \"%s\": %v", record.NamaLengkap, err))
		return
	}
	if exists {
		tally.skipped++
		e.row(row.Number, LogSkipped, fmt.Sprintf("GTK \"%s\" sudah ada di database", record.NamaLengkap))
		return
	}

	user := &models.User{
		ID:       j.newID(),
		Email:    emails.next(record.NamaLengkap),
		Password: passwordHash,
		Role:     models.RoleGtk,
		IsActive: true,
	}
	sekolahID := sekolah.ID
	gtk := &models.Gtk{
		ID:           j.newID(),
		UserID:       user.ID,
		NamaLengkap:  record.NamaLengkap,
		Nuptk:        record.Nuptk,
		Nip:          record.Nip,
		Kelamin:      record.Kelamin,
		TanggalLahir: models.Date(record.TanggalLahir),
		Jenis:        record.Jenis,
		Jabatan:      record.Jabatan,
		SekolahID:    &sekolahID,
	}
	if err := j.store.CreateGtkWithUser(ctx, user, gtk); err != nil {
		tally.errored++
		e.row(row.Number, LogError, fmt.Sprintf("Gagal import \"%s\": %v", record.NamaLengkap, err))
		return
	}

	tally.imported++
	jabatan := "-"
	if record.Jabatan != nil {
		jabatan = *record.Jabatan
	}
	e.row(row.Number, LogSuccess,
		fmt.Sprintf("GTK \"%s\" berhasil diimport", record.NamaLengkap),
		fmt.Sprintf("Jenis: %s, Jabatan: %s", record.Jenis, jabatan))
}

// emailGenerator builds "<slug>.<unix nanos>@<domain>" addresses whose
// timestamps strictly increase within one run.
type emailGenerator struct {
	domain string
	now    func() time.Time
	last   int64
}

func newEmailGenerator(domain string, now func() time.Time) *emailGenerator {
	if now == nil {
		now = time.Now
	}
	return &emailGenerator{domain: domain, now: now}
}

func (g *emailGenerator) next(nama string) string {
	stamp := g.now().UnixNano()
	if stamp <= g.last {
		stamp = g.last + 1
	}
	g.last = stamp
	return fmt.Sprintf("%s.%d@%s", EmailSlug(nama), stamp, g.domain)
}

// EmailSlug keeps the lowercase ASCII letters and digits of nama, at most
// 20 of them. An empty slug becomes "gtk".
func EmailSlug(nama string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(nama) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == maxEmailSlugLength {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "gtk"
	}
	return b.String()
}
