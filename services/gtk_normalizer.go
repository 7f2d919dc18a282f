package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sim-talenta-gtk-api/models"

	"github.com/xuri/excelize/v2"
)

// Defaults applied when a GTK cell is missing or unrecognised. They are
// business policy: an unrecognised sex is recorded as female, an unparsable
// birth date as 1990-01-01 and an unknown category as teacher.
const (
	DefaultKelamin      = models.KelaminPerempuan
	DefaultTanggalLahir = "1990-01-01"
	DefaultJenis        = models.JenisGuru

	// TwoDigitYearCentury prefixes two-digit years in DD/MM/YY dates.
	TwoDigitYearCentury = "19"
)

// ErrEmptyName marks a row whose name cell is missing or blank.
var ErrEmptyName = errors.New("empty name")

var (
	maleTokens          = []string{"L", "LAKI-LAKI"}
	tendikTokens        = []string{"tendik", "tenaga kependidikan"}
	kepalaSekolahTokens = []string{"kepala"}

	dateDigits = regexp.MustCompile(`^\d+$`)
)

// GtkColumns lists the accepted header labels per field, in precedence order.
type GtkColumns struct {
	NamaLengkap  []string
	Nuptk        []string
	Nip          []string
	Kelamin      []string
	TanggalLahir []string
	Jenis        []string
	Jabatan      []string
}

// DefaultGtkColumns matches the Dapodik export and the import template.
func DefaultGtkColumns() GtkColumns {
	return GtkColumns{
		NamaLengkap:  []string{"Nama Lengkap", "nama_lengkap", "Nama"},
		Nuptk:        []string{"NUPTK", "nuptk"},
		Nip:          []string{"NIP", "nip"},
		Kelamin:      []string{"L/P", "Kelamin", "kelamin", "JK"},
		TanggalLahir: []string{"Tanggal Lahir", "tanggal_lahir", "TGL_LAHIR"},
		Jenis:        []string{"Jenis PTK", "jenis_ptk", "Jenis"},
		Jabatan:      []string{"Jabatan PTK", "Jabatan", "jabatan"},
	}
}

// NormalizedGtk is the canonical form of one GTK spreadsheet row.
type NormalizedGtk struct {
	NamaLengkap  string
	Nuptk        *string
	Nip          *string
	Kelamin      string
	TanggalLahir string
	Jenis        string
	Jabatan      *string
}

// GtkNormalizer maps loosely labelled spreadsheet rows to NormalizedGtk.
// It performs no I/O.
type GtkNormalizer struct {
	Columns  GtkColumns
	Date1904 bool
}

func NewGtkNormalizer(columns GtkColumns, date1904 bool) *GtkNormalizer {
	return &GtkNormalizer{Columns: columns, Date1904: date1904}
}

// Normalize returns ErrEmptyName when the row has no usable name.
func (n *GtkNormalizer) Normalize(cells map[string]interface{}) (NormalizedGtk, error) {
	name := strings.TrimSpace(cellText(firstCell(cells, n.Columns.NamaLengkap)))
	if name == "" {
		return NormalizedGtk{}, ErrEmptyName
	}

	return NormalizedGtk{
		NamaLengkap:  name,
		Nuptk:        optionalCell(cells, n.Columns.Nuptk),
		Nip:          optionalCell(cells, n.Columns.Nip),
		Kelamin:      RawToKelamin(cellText(firstCell(cells, n.Columns.Kelamin))),
		TanggalLahir: RawToTanggalLahir(firstCell(cells, n.Columns.TanggalLahir), n.Date1904),
		Jenis:        RawToJenis(cellText(firstCell(cells, n.Columns.Jenis))),
		Jabatan:      optionalCell(cells, n.Columns.Jabatan),
	}, nil
}

// RawToKelamin maps "L" or "LAKI-LAKI" (any case) to male and everything else to DefaultKelamin.
func RawToKelamin(raw string) string {
	value := strings.ToUpper(strings.TrimSpace(raw))
	for _, token := range maleTokens {
		if value == token {
			return models.KelaminLaki
		}
	}
	return DefaultKelamin
}

// RawToJenis infers the GTK category from free text. The first matching rule wins.
func RawToJenis(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if containsAny(value, tendikTokens) {
		return models.JenisTendik
	}
	if containsAny(value, kepalaSekolahTokens) {
		return models.JenisKepalaSekolah
	}
	return DefaultJenis
}

// RawToTanggalLahir renders a birth date cell as YYYY-MM-DD.
//
// Accepted shapes, in order: a numeric date serial; an ISO-like string with
// dashes (returned unchanged); DD/MM/YYYY or DD/MM/YY where YY is placed in
// TwoDigitYearCentury. Anything else yields DefaultTanggalLahir.
func RawToTanggalLahir(raw interface{}, date1904 bool) string {
	switch v := raw.(type) {
	case float64:
		return serialToDate(v, date1904)
	case int:
		return serialToDate(float64(v), date1904)
	case string:
		return stringToDate(v)
	default:
		return DefaultTanggalLahir
	}
}

func serialToDate(serial float64, date1904 bool) string {
	if serial <= 0 {
		return DefaultTanggalLahir
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return DefaultTanggalLahir
	}
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

func stringToDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultTanggalLahir
	}
	if strings.Contains(value, "-") {
		if allDigits(strings.Split(value, "-")) {
			return value
		}
		return DefaultTanggalLahir
	}
	if strings.Contains(value, "/") {
		parts := strings.Split(value, "/")
		if !allDigits(parts) {
			return DefaultTanggalLahir
		}
		day, month, year := parts[0], parts[1], parts[2]
		if len(year) != 4 {
			year = TwoDigitYearCentury + year
		}
		return fmt.Sprintf("%s-%s-%s", year, padTwo(month), padTwo(day))
	}
	return DefaultTanggalLahir
}

func allDigits(parts []string) bool {
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if !dateDigits.MatchString(p) {
			return false
		}
	}
	return true
}

func padTwo(v string) string {
	if len(v) < 2 {
		return strings.Repeat("0", 2-len(v)) + v
	}
	return v
}

// firstCell returns the first non-empty cell among labels.
func firstCell(cells map[string]interface{}, labels []string) interface{} {
	for _, label := range labels {
		value, ok := cells[label]
		if !ok || value == nil {
			continue
		}
		if s, isString := value.(string); isString && s == "" {
			continue
		}
		return value
	}
	return nil
}

func cellText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func optionalCell(cells map[string]interface{}, labels []string) *string {
	trimmed := strings.TrimSpace(cellText(firstCell(cells, labels)))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func containsAny(value string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(value, token) {
			return true
		}
	}
	return false
}
