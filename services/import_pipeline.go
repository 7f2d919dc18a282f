package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"sim-talenta-gtk-api/config"

	"github.com/sirupsen/logrus"
)

// ImportInput is one uploaded spreadsheet plus who sent it.
type ImportInput struct {
	FileName      string
	Content       io.Reader
	TriggerSource string
	ActorUserID   *string
	ActorEmail    string
	StoredObject  *string
	// Kota is required by the school import only.
	Kota string
}

// FileStem strips the directory and the spreadsheet extension from name.
func FileStem(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	ext := filepath.Ext(base)
	switch strings.ToLower(ext) {
	case ".xlsx", ".xls", ".xlsm":
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimSpace(base)
}

// importEmitter forwards entries to the sink and keeps the run going when
// the sink fails, e.g. after the client disconnected.
type importEmitter struct {
	sink       ImportLogSink
	kind       string
	logger     *logrus.Entry
	sinkFailed bool
}

func newImportEmitter(sink ImportLogSink, kind string, logger *logrus.Entry) *importEmitter {
	if sink == nil {
		sink = NewBufferedLogSink()
	}
	return &importEmitter{sink: sink, kind: kind, logger: logger}
}

func (e *importEmitter) emit(step string, status ImportLogStatus, message string, data ...string) {
	entry := ImportLogEntry{Step: step, Status: status, Message: message}
	if len(data) > 0 {
		entry.Data = data[0]
	}
	if status == LogError {
		e.logger.WithField("step", step).Warn(message)
	} else {
		e.logger.WithField("step", step).Debug(message)
	}
	if err := e.sink.Append(entry); err != nil {
		e.sinkError(err)
	}
}

// row emits a per-row entry and counts it.
func (e *importEmitter) row(number int, status ImportLogStatus, message string, data ...string) {
	observeImportRow(e.kind, status)
	e.emit(fmt.Sprintf("Baris %d", number), status, message, data...)
}

func (e *importEmitter) finalize(result *ImportRunResult) {
	if err := e.sink.Finalize(result); err != nil {
		e.sinkError(err)
	}
}

func (e *importEmitter) sinkError(err error) {
	if e.sinkFailed {
		return
	}
	e.sinkFailed = true
	e.logger.WithError(err).Warn("import log sink failed, continuing without client output")
}

// importTally accumulates row outcomes for one run.
type importTally struct {
	imported int
	skipped  int
	errored  int
	total    int
}

func (t importTally) result(organization *string) *ImportRunResult {
	return &ImportRunResult{
		Imported:     t.imported,
		Skipped:      t.skipped,
		Errored:      t.errored,
		Total:        t.total,
		Organization: organization,
		Outcome:      OutcomeCompleted,
	}
}

func (t importTally) summary() string {
	return fmt.Sprintf("Import selesai. Berhasil: %d, Dilewati: %d, Gagal: %d", t.imported, t.skipped, t.errored)
}

// failedResult is the result of a run aborted before row processing.
func failedResult(err *ImportError, organization *string) *ImportRunResult {
	return &ImportRunResult{Organization: organization, Outcome: err.Outcome()}
}

// importRunHooks records the run, publishes metrics and sends the report.
type importRunHooks struct {
	runs     ImportRunRecorder
	reporter ImportReporter
	logger   *logrus.Entry
	now      func() time.Time
}

func (h importRunHooks) track(ctx context.Context, kind string, input ImportInput, run func() (*ImportRunResult, error)) (*ImportRunResult, error) {
	started := h.now()
	var runID uint
	if h.runs != nil {
		record, err := h.runs.Start(ctx, ImportRunStart{
			Kind:          kind,
			TriggerSource: input.TriggerSource,
			FileName:      input.FileName,
			StoredObject:  input.StoredObject,
			ActorUserID:   input.ActorUserID,
		})
		if err != nil {
			h.logger.WithError(err).Warn("failed to record import run start")
		} else {
			runID = record.ID
		}
	}

	result, runErr := run()
	elapsed := h.now().Sub(started)
	observeImportRun(kind, result, elapsed)

	fields := logrus.Fields{
		"file":     input.FileName,
		"outcome":  result.Outcome,
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"errored":  result.Errored,
		"total":    result.Total,
		"duration": elapsed.String(),
	}
	if runErr != nil {
		h.logger.WithFields(fields).WithError(runErr).Warn("import run aborted")
	} else {
		h.logger.WithFields(fields).Info("import run finished")
	}

	if runID != 0 {
		if err := h.runs.Finish(ctx, runID, result, runErr, elapsed); err != nil {
			h.logger.WithError(err).WithField("run_id", runID).Warn("failed to record import run result")
		}
	}
	if h.reporter != nil {
		if err := h.reporter.Report(ctx, kind, input, result); err != nil {
			h.logger.WithError(err).Warn("failed to send import report")
		}
	}
	return result, runErr
}

// hashFunc matches utils.HashPassword.
type hashFunc func(password string, cost int) (string, error)

// lockOrNoop acquires name on locker unless locking is disabled.
func lockOrNoop(ctx context.Context, locker ImportLocker, enabled bool, name string) (func() error, error) {
	if !enabled || locker == nil {
		return func() error { return nil }, nil
	}
	release, err := locker.AcquireImportLock(ctx, name)
	if err != nil {
		return nil, err
	}
	if release == nil {
		release = func() error { return nil }
	}
	return release, nil
}

func componentLogger(component string) *logrus.Entry {
	return config.Logger().WithField("component", component)
}
