// Package csvexport пишет выгрузки админки в CSV.
//
// Значения экранируются по RFC 4180: поля с запятыми, кавычками и переводами
// строк заключаются в кавычки.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Write пишет заголовок и строки в w.
func Write(w io.Writer, header []string, rows [][]string) error {
	const op = "csvexport.Write"
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return fmt.Errorf("%s: row %d has %d fields, want %d", op, i, len(row), len(header))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Filename возвращает имя файла выгрузки, например "users_2024-01-31.csv".
func Filename(table string, date string) string {
	return table + "_" + date + ".csv"
}
