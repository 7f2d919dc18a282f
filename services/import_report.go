package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/utils"
)

// ImportReporter is told about every finished run.
type ImportReporter interface {
	Report(ctx context.Context, kind string, input ImportInput, result *ImportRunResult) error
}

// MailImportReporter mails the counters to the admin who uploaded the file.
type MailImportReporter struct {
	opts config.MailOptions
	send func(opts config.MailOptions, to []string, subject, html string) error
	now  func() time.Time
}

func NewMailImportReporter(opts config.MailOptions) *MailImportReporter {
	return &MailImportReporter{opts: opts, send: config.SendMail, now: time.Now}
}

// ReporterFromConfig returns nil unless report mail is enabled and SMTP is set up.
func ReporterFromConfig(cfg *config.Configuration) ImportReporter {
	if cfg == nil || !cfg.Import.ReportMail || !config.MailConfigured(cfg.Mail) {
		return nil
	}
	return NewMailImportReporter(cfg.Mail)
}

var importReportTemplate = template.Must(template.New("import_report").Parse(`<p>Import {{.Kind}} dari file <strong>{{.FileName}}</strong> selesai pada {{.FinishedAt}}.</p>
<table>
<tr><td>Status</td><td>{{.Status}}</td></tr>
{{if .Organization}}<tr><td>Sekolah</td><td>{{.Organization}}</td></tr>{{end}}
<tr><td>Total baris</td><td>{{.Total}}</td></tr>
<tr><td>Berhasil</td><td>{{.Imported}}</td></tr>
<tr><td>Dilewati</td><td>{{.Skipped}}</td></tr>
<tr><td>Gagal</td><td>{{.Errored}}</td></tr>
</table>`))

type importReportView struct {
	Kind         string
	FileName     string
	FinishedAt   string
	Status       string
	Organization string
	Total        string
	Imported     string
	Skipped      string
	Errored      string
}

func (r *MailImportReporter) Report(ctx context.Context, kind string, input ImportInput, result *ImportRunResult) error {
	to := strings.TrimSpace(input.ActorEmail)
	if to == "" || result == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body, err := r.render(kind, input.FileName, result)
	if err != nil {
		return err
	}
	return r.send(r.opts, []string{to}, subject, body)
}

func (r *MailImportReporter) render(kind, fileName string, result *ImportRunResult) (string, string, error) {
	label := "GTK"
	if kind == models.ImportKindSekolah {
		label = "Sekolah"
	}
	status := "Berhasil"
	if !result.Completed() {
		status = "Gagal (" + result.Outcome + ")"
	}
	view := importReportView{
		Kind:       label,
		FileName:   fileName,
		FinishedAt: utils.FormatIndonesianDateTime(r.now()),
		Status:     status,
		Total:      utils.FormatThousands(result.Total),
		Imported:   utils.FormatThousands(result.Imported),
		Skipped:    utils.FormatThousands(result.Skipped),
		Errored:    utils.FormatThousands(result.Errored),
	}
	if result.Organization != nil {
		view.Organization = *result.Organization
	}

	var buf bytes.Buffer
	if err := importReportTemplate.Execute(&buf, view); err != nil {
		return "", "", fmt.Errorf("render import report: %w", err)
	}
	subject := fmt.Sprintf("[SIM Talenta] Import %s: %s", label, status)
	return subject, buf.String(), nil
}
