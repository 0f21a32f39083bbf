package dataset

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(name string) bool {
	return hasSuffix(name, ".xlsx", ".xls")
}

// Parse reads the selected sheet. Cells carrying a date/time number format are
// converted to timestamps so the column is stored as datetime.
func (xlsxParser) Parse(r io.Reader, opt Options) ([]rawColumn, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := opt.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found; available sheets: %s", sheet, strings.Join(f.GetSheetList(), ", "))
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no columns to parse from file")
	}

	width := 0
	for _, rec := range rows {
		width = max(width, len(rec))
	}
	header := make([]string, width)
	copy(header, rows[0])

	filled := make([]int, width)
	dated := make([]int, width)
	styles := map[int]bool{}
	body := make([][]string, 0, len(rows)-1)
	for i, rec := range rows[1:] {
		empty := true
		for j, v := range rec {
			if v == "" {
				continue
			}
			empty = false
			filled[j]++
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil || !dateStyled(f, sheet, cell, styles) {
				continue
			}
			serial, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				continue
			}
			rec[j] = formatTime(t.Round(time.Millisecond))
			dated[j]++
		}
		// blank rows are skipped, as the CSV reader does
		if !empty {
			body = append(body, rec)
		}
	}

	cols, err := columnsFromRows(header, body)
	if err != nil {
		return nil, err
	}
	for j := range cols {
		cols[j].dates = filled[j] > 0 && dated[j] == filled[j]
	}
	return cols, nil
}

func dateStyled(f *excelize.File, sheet, cell string, cache map[int]bool) bool {
	id, err := f.GetCellStyle(sheet, cell)
	if err != nil || id == 0 {
		return false
	}
	if v, ok := cache[id]; ok {
		return v
	}
	st, err := f.GetStyle(id)
	is := err == nil && st != nil && isDateFormat(st.NumFmt, st.CustomNumFmt)
	cache[id] = is
	return is
}

// isDateFormat recognizes the built-in date/time number formats and custom
// format codes containing date or time tokens.
func isDateFormat(id int, custom *string) bool {
	if custom != nil && *custom != "" {
		return customDateCode(*custom)
	}
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

func customDateCode(code string) bool {
	var b strings.Builder
	quoted, depth := false, 0
	for _, r := range code {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			depth++
		case r == ']':
			if depth > 0 {
				depth--
			}
		case depth > 0:
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	s := b.String()
	return strings.ContainsAny(s, "ydh") || (strings.Contains(s, "m") && strings.Contains(s, "s"))
}
