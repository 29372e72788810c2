// Package export serializes entity row sets into downloadable documents:
// a flat spreadsheet or a paginated tabular PDF. Zero rows produce a valid
// header-only document, not an error.
package export

import (
	"fmt"
	"time"
)

// Document is the flat tabular form every export shares: a title line,
// one header row and the body rows in column order.
type Document struct {
	Title   string
	Sheet   string // sheet name in the spreadsheet form
	Headers []string
	Rows    [][]string
}

// Filename builds the deterministic download name {entity}_{ISO-date}.{ext}.
func Filename(entity, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", entity, now.Format("2006-01-02"), ext)
}
