package export

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Artifact formats and their content types.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	MIMECSV  = "text/csv; charset=utf-8"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DefaultBase is the file name offered when the user leaves it blank.
const DefaultBase = "dados"

// Filename sanitises base and appends the extension for format.
func Filename(base, format string) string {
	base = strings.TrimSpace(filepath.Base(strings.ReplaceAll(base, "\\", "/")))
	base = strings.TrimSuffix(base, "."+format)
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		case unicode.IsSpace(r):
			return '_'
		default:
			return -1
		}
	}, base)
	clean = strings.Trim(clean, "._")
	if clean == "" {
		clean = DefaultBase
	}
	return clean + "." + format
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return MIMEXLSX
	}
	return MIMECSV
}

// Valid reports whether format is a supported artifact format.
func Valid(format string) bool {
	return format == FormatCSV || format == FormatXLSX
}
