package csvload

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// datetimeLayouts lists the accepted datetime shapes. Fractional seconds
// after the seconds field parse under any of them.
var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// fields reads typed values out of one CSV record by column name. The first
// bad field sticks as the row's error; later getters still return zero
// values so row functions can run straight through and check Err once.
type fields struct {
	rec  []string
	cols map[string]int
	err  error
}

func (f *fields) setErr(col, msg string) {
	if f.err == nil {
		f.err = fmt.Errorf("column %s: %s", col, msg)
	}
}

// Err returns the first field error of this row, if any.
func (f *fields) Err() error {
	return f.err
}

func (f *fields) raw(col string) string {
	i, ok := f.cols[col]
	if !ok || i >= len(f.rec) {
		f.setErr(col, "missing value")
		return ""
	}
	return strings.TrimSpace(f.rec[i])
}

func (f *fields) String(col string) string {
	return f.raw(col)
}

func (f *fields) Int(col string) int {
	raw := f.raw(col)
	n, err := strconv.Atoi(raw)
	if err != nil {
		f.setErr(col, fmt.Sprintf("not an integer: %q", raw))
	}
	return n
}

func (f *fields) Int64(col string) int64 {
	raw := f.raw(col)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f.setErr(col, fmt.Sprintf("not an integer: %q", raw))
	}
	return n
}

func (f *fields) Float(col string) float64 {
	raw := f.raw(col)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.setErr(col, fmt.Sprintf("not a number: %q", raw))
	}
	return v
}

// Bool01 reads the 0|1 flag columns.
func (f *fields) Bool01(col string) bool {
	return f.Int(col) != 0
}

func (f *fields) Time(col string) time.Time {
	raw := f.raw(col)
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	f.setErr(col, fmt.Sprintf("not a datetime: %q", raw))
	return time.Time{}
}

// OptionalID reads a nullable id column. "N/A" and the empty string read as
// zero; a float form like "12.0" truncates, matching the source exports.
func (f *fields) OptionalID(col string) int64 {
	raw := f.raw(col)
	if raw == "" || strings.EqualFold(raw, "n/a") {
		return 0
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(v)
	}
	f.setErr(col, fmt.Sprintf("not an id: %q", raw))
	return 0
}

func indexColumns(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func missingColumns(idx map[string]int, required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}
