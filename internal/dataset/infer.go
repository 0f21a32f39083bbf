package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// naTokens are the cell spellings read as missing, in addition to the empty string.
var naTokens = map[string]bool{
	"NA": true, "N/A": true, "n/a": true, "NaN": true, "nan": true, "-NaN": true,
	"null": true, "NULL": true, "#N/A": true, "None": true, "<NA>": true,
}

func isMissing(s string) bool {
	return s == "" || naTokens[s]
}

// timeLayouts are the only layouts a text cell may use to be stored as datetime.
// Locale-dependent forms such as 01/02/2006 stay text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseFloat accepts decimal and exponent notation only. Go literal forms
// that ParseFloat also takes (digit separators, hex mantissas) stay text.
func parseFloat(s string) (float64, bool) {
	if strings.ContainsRune(s, '_') {
		return 0, false
	}
	u := strings.TrimLeft(s, "+-")
	if len(u) > 1 && u[0] == '0' && (u[1] == 'x' || u[1] == 'X') {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func parseBool(s string) (bool, bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	}
	return false, false
}

// rawColumn is a parser's untyped output for one column.
type rawColumn struct {
	name  string
	cells []string
	// dates marks columns the source format stores as date/time.
	dates bool
}

// inferKind picks the narrowest kind every non-missing cell satisfies.
func inferKind(cells []string, parseDates bool) Kind {
	isInt, isFloat, isBool, isTime := true, true, true, parseDates
	seen := 0
	for _, c := range cells {
		if isMissing(c) {
			continue
		}
		seen++
		v := strings.TrimSpace(c)
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, ok := parseFloat(v); !ok {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(v); !ok {
				isBool = false
			}
		}
		if isTime {
			if _, ok := parseTime(v); !ok {
				isTime = false
			}
		}
		if !isInt && !isFloat && !isBool && !isTime {
			return KindText
		}
	}
	switch {
	case seen == 0:
		// an all-missing column reads as float, like an all-NaN frame column
		return KindFloat
	case isInt:
		return KindInt
	case isFloat:
		return KindFloat
	case isBool:
		return KindBool
	case isTime:
		return KindDatetime
	default:
		return KindText
	}
}

// typeColumn converts raw cells into a typed Column.
func typeColumn(rc rawColumn, parseDates bool) (*Column, error) {
	kind := inferKind(rc.cells, parseDates || rc.dates)
	col := &Column{Name: rc.name, Kind: kind, Values: make([]Value, len(rc.cells))}
	for i, c := range rc.cells {
		v := Value{Kind: kind}
		if isMissing(c) {
			v.Null = true
			col.Values[i] = v
			continue
		}
		t := strings.TrimSpace(c)
		ok := true
		switch kind {
		case KindInt:
			n, err := strconv.ParseInt(t, 10, 64)
			v.Int, ok = n, err == nil
		case KindFloat:
			v.Float, ok = parseFloat(t)
		case KindBool:
			v.Bool, ok = parseBool(t)
		case KindDatetime:
			v.Time, ok = parseTime(t)
		default:
			v.Text = c
		}
		if !ok {
			return nil, fmt.Errorf("column %q row %d: cannot read %q as %s", rc.name, i+1, c, kind)
		}
		col.Values[i] = v
	}
	return col, nil
}

// normalizeHeader fills blank names and de-duplicates repeats with .1, .2 suffixes.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	dups := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			dups[h]++
			name = fmt.Sprintf("%s.%d", h, dups[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}
