package utils

import (
	"strconv"
	"strings"
	"time"
)

var indonesianMonths = []string{
	"Januari",
	"Februari",
	"Maret",
	"April",
	"Mei",
	"Juni",
	"Juli",
	"Agustus",
	"September",
	"Oktober",
	"November",
	"Desember",
}

// FormatIndonesianDate returns the date as "17 Agustus 1945".
func FormatIndonesianDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	localTime := t.In(time.Local)
	monthIndex := int(localTime.Month()) - 1
	if monthIndex < 0 || monthIndex >= len(indonesianMonths) {
		return localTime.Format("02/01/2006")
	}

	return strconv.Itoa(localTime.Day()) + " " + indonesianMonths[monthIndex] + " " + strconv.Itoa(localTime.Year())
}

// FormatIndonesianDateTime appends the wall clock time, e.g. "17 Agustus 1945 10:00".
func FormatIndonesianDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return FormatIndonesianDate(t) + " " + t.In(time.Local).Format("15:04")
}

// FormatISODate renders a YYYY-MM-DD string in the long Indonesian form.
// Unparsable input is returned unchanged.
func FormatISODate(value string) string {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(value), time.Local)
	if err != nil {
		return value
	}
	return FormatIndonesianDate(t)
}

// FormatThousands groups digits with dots, e.g. 12500 -> "12.500".
func FormatThousands(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return sign + str
	}

	var b strings.Builder
	lead := len(str) % 3
	if lead > 0 {
		b.WriteString(str[:lead])
	}
	for i := lead; i < len(str); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(str[i : i+3])
	}
	return sign + b.String()
}
