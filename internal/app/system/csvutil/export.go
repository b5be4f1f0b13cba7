// internal/app/system/csvutil/export.go
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// bom makes spreadsheet tools detect UTF-8.
const bom = "\ufeff"

// Write emits header and rows as semicolon-separated CSV preceded by a
// UTF-8 byte order mark, the layout French spreadsheet locales open directly.
// Rows shorter than the header are padded.
func Write(w io.Writer, header []string, rows [][]string) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range rows {
		if len(row) > len(header) {
			return fmt.Errorf("csvutil: row %d has %d fields, header has %d", i+1, len(row), len(header))
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		if err := cw.Write(sanitizeRow(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Attachment sets the headers for a CSV download named fileName.
func Attachment(w http.ResponseWriter, fileName string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(fileName, `"`, "")))
}

// sanitizeRow neutralizes cells that spreadsheets would evaluate as formulas.
func sanitizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		if cell != "" && strings.ContainsRune("=+-@", rune(cell[0])) {
			cell = "'" + cell
		}
		out[i] = cell
	}
	return out
}
