// Package export serializes the current row set for download. Tabular
// formats (xlsx, csv, text) honor a captured template layout; json and sql
// always use the canonical field order.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
	"github.com/swipswaps/marketplace-bulk-editor/internal/sheet"
	"github.com/swipswaps/marketplace-bulk-editor/internal/template"
)

// Format selects the output serialization.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatText Format = "text" // tab-delimited
	FormatSQL  Format = "sql"
)

// ErrUnknownFormat is returned for a Format outside the enumeration.
var ErrUnknownFormat = fmt.Errorf("unknown export format")

// Options configures one export run.
type Options struct {
	Format Format

	// SortKey names a row field, accepted as either the external column
	// ("OFFER SHIPPING") or the snake_case field (offer_shipping). Empty
	// means keep the current table order.
	SortKey string
	// SortDir is "asc" (default) or "desc".
	SortDir string
	// Reverse flips the sequence after sorting. It composes with SortDir
	// rather than replacing it.
	Reverse bool

	// Template, when loaded, drives the tabular layout: its header rows
	// are emitted verbatim, then its column headers, then one data row per
	// listing with unknown columns left blank.
	Template *template.Template
}

// Result carries the artifact plus the skip count the caller is expected
// to confirm with the user before offering the download.
type Result struct {
	Data        []byte
	ContentType string
	Filename    string
	Exported    int
	// Skipped counts rows excluded for missing title, price, or condition.
	Skipped int
}

// Export filters, orders, and serializes rows per opts.
func Export(rows []listing.Listing, opts Options) (*Result, error) {
	keep := make([]listing.Listing, 0, len(rows))
	for _, r := range rows {
		if exportable(r) {
			keep = append(keep, r)
		}
	}
	skipped := len(rows) - len(keep)

	keep = order(keep, opts)

	var (
		data        []byte
		contentType string
		err         error
	)
	switch opts.Format {
	case FormatXLSX:
		name := "Listings"
		if opts.Template.Loaded() && opts.Template.SheetName != "" {
			name = opts.Template.SheetName
		}
		data, err = sheet.EncodeXLSX(name, grid(keep, opts.Template))
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		data, err = encodeCSV(grid(keep, opts.Template))
		contentType = "text/csv"
	case FormatText:
		data = encodeText(grid(keep, opts.Template))
		contentType = "text/plain"
	case FormatJSON:
		data, err = json.MarshalIndent(keep, "", "  ")
		contentType = "application/json"
	case FormatSQL:
		data = encodeSQL(keep)
		contentType = "text/plain"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", opts.Format, err)
	}

	return &Result{
		Data:        data,
		ContentType: contentType,
		Filename:    fmt.Sprintf("marketplace-listings-%d.%s", time.Now().UnixMilli(), extension(opts.Format)),
		Exported:    len(keep),
		Skipped:     skipped,
	}, nil
}

// exportable requires title, price, and condition; the marketplace
// rejects rows without them, so they are filtered before serialization.
func exportable(l listing.Listing) bool {
	return strings.TrimSpace(l.Title) != "" &&
		strings.TrimSpace(l.Price) != "" &&
		l.Condition != ""
}

// order applies the optional sort and reverse. The sort is stable so ties
// keep their original table order; reverse runs after sorting.
func order(rows []listing.Listing, opts Options) []listing.Listing {
	out := make([]listing.Listing, len(rows))
	copy(out, rows)

	if col := canonicalColumn(opts.SortKey); col != "" {
		desc := strings.EqualFold(opts.SortDir, "desc")
		numeric := col == listing.ColPrice
		sort.SliceStable(out, func(i, j int) bool {
			var less bool
			if numeric {
				less = out[i].PriceValue() < out[j].PriceValue()
			} else {
				less = strings.ToLower(out[i].Column(col)) < strings.ToLower(out[j].Column(col))
			}
			if desc {
				return !less && !equalKey(out[i], out[j], col, numeric)
			}
			return less
		})
	}

	if opts.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func equalKey(a, b listing.Listing, col string, numeric bool) bool {
	if numeric {
		return a.PriceValue() == b.PriceValue()
	}
	return strings.EqualFold(a.Column(col), b.Column(col))
}

// canonicalColumn resolves a sort key to an external column name, or ""
// when the key is empty or unknown.
func canonicalColumn(key string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "_", " ")
	for _, col := range listing.Columns {
		if key == col {
			return col
		}
	}
	return ""
}

// grid lays out rows as a table, applying the template layout when one is
// loaded and the canonical column order otherwise.
func grid(rows []listing.Listing, t *template.Template) [][]string {
	headers := listing.Columns
	var out [][]string
	if t.Loaded() {
		for _, hr := range t.HeaderRows {
			row := make([]string, len(hr))
			copy(row, hr)
			out = append(out, row)
		}
		headers = t.ColumnHeaders
	}

	headerRow := make([]string, len(headers))
	copy(headerRow, headers)
	out = append(out, headerRow)

	for _, l := range rows {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = l.Column(h)
		}
		out = append(out, row)
	}
	return out
}

func encodeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeText(rows [][]string) []byte {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(row, "\t"))
	}
	return []byte(b.String())
}

// encodeSQL emits one INSERT per row with single quotes doubled. The
// output is a downloadable artifact that this system never executes, so
// textual generation is acceptable here; anything feeding a live database
// goes through parameterized queries in the store package instead.
func encodeSQL(rows []listing.Listing) []byte {
	var b strings.Builder
	b.WriteString("-- Marketplace Listings Export\n")
	b.WriteString("-- Generated: " + time.Now().UTC().Format(time.RFC3339) + "\n\n")
	for _, l := range rows {
		b.WriteString("INSERT INTO marketplace_listings (title, price, condition, description, category, offer_shipping) VALUES (")
		b.WriteString("'" + escapeSQL(l.Title) + "', ")
		b.WriteString(strconv.FormatFloat(l.PriceValue(), 'f', -1, 64) + ", ")
		b.WriteString("'" + escapeSQL(string(l.Condition)) + "', ")
		b.WriteString("'" + escapeSQL(l.Description) + "', ")
		b.WriteString("'" + escapeSQL(l.Category) + "', ")
		b.WriteString("'" + escapeSQL(string(l.OfferShipping)) + "');\n")
	}
	return []byte(b.String())
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func extension(f Format) string {
	switch f {
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}
