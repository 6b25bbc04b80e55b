// Package importer turns a raw spreadsheet grid into listings. It locates
// the header row, builds one listing per data row with marketplace defaults
// for blank fields, and classifies rows for the import-confirmation UI.
package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
	"github.com/swipswaps/marketplace-bulk-editor/internal/sheet"
)

// HeaderSearchRows bounds the header scan. Template files put a title and
// instruction rows above the headers, but never this many.
const HeaderSearchRows = 10

// anchorTokens must all appear in a row's concatenated text for it to be
// the header row.
var anchorTokens = []string{listing.ColTitle, listing.ColPrice, listing.ColDescription}

// FindHeaderRow scans the first HeaderSearchRows rows for one whose
// concatenated uppercased cells contain TITLE, PRICE, and DESCRIPTION.
// When no row matches it returns 0: a malformed file still imports with
// the first row treated as headers rather than failing closed.
func FindHeaderRow(g sheet.Grid) int {
	limit := len(g)
	if limit > HeaderSearchRows {
		limit = HeaderSearchRows
	}
	for i := 0; i < limit; i++ {
		text := strings.ToUpper(strings.Join(g[i], "|"))
		ok := true
		for _, tok := range anchorTokens {
			if !strings.Contains(text, tok) {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return 0
}

// Options controls defaulting behavior. The two historical import paths
// disagreed on the CATEGORY default, so it is an explicit choice here
// instead of an accident of which caller ran.
type Options struct {
	// DefaultCategory is substituted when CATEGORY is blank. Empty means
	// leave the category empty (and still annotate in validated mode).
	DefaultCategory string

	// Annotate records an AutoFilledField for every defaulted value.
	// The validated import path sets this; the plain path does not.
	Annotate bool
}

// Result partitions imported rows for the confirmation UI. The three sets
// are disjoint; Rejected rows (empty title) cannot be imported at all.
type Result struct {
	Valid      []listing.Listing `json:"valid"`
	AutoFilled []listing.Listing `json:"auto_filled"`
	Rejected   []listing.Listing `json:"rejected"`
	HeaderRow  int               `json:"header_row"`
	TotalRows  int               `json:"total_rows"`
}

// ValidCount returns len(Valid); the counts drive UI copy.
func (r Result) ValidCount() int { return len(r.Valid) }

// AutoFilledCount returns len(AutoFilled).
func (r Result) AutoFilledCount() int { return len(r.AutoFilled) }

// RejectedCount returns len(Rejected).
func (r Result) RejectedCount() int { return len(r.Rejected) }

// Import parses the grid and classifies every data row. Fully empty rows
// are skipped and do not count toward TotalRows.
func Import(g sheet.Grid, opts Options) Result {
	headerRow := FindHeaderRow(g)
	res := Result{HeaderRow: headerRow}
	if headerRow >= len(g) {
		return res
	}

	cols := columnIndex(g[headerRow])
	for _, row := range g[headerRow+1:] {
		if sheet.IsEmptyRow(row) {
			continue
		}
		res.TotalRows++
		l := buildRow(row, cols, opts)
		switch {
		case l.Title == "":
			res.Rejected = append(res.Rejected, l)
		case len(l.AutoFilled) > 0:
			res.AutoFilled = append(res.AutoFilled, l)
		default:
			res.Valid = append(res.Valid, l)
		}
	}
	return res
}

// Rows is the plain import path: every non-empty data row becomes a
// listing with silent defaults, annotations off, no rejection. Rows with
// empty titles are kept and flagged later by the policy validator.
func Rows(g sheet.Grid, opts Options) []listing.Listing {
	opts.Annotate = false
	headerRow := FindHeaderRow(g)
	if headerRow >= len(g) {
		return nil
	}

	cols := columnIndex(g[headerRow])
	var out []listing.Listing
	for _, row := range g[headerRow+1:] {
		if sheet.IsEmptyRow(row) {
			continue
		}
		out = append(out, buildRow(row, cols, opts))
	}
	return out
}

// columnIndex maps uppercased header names to their cell position.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToUpper(sheet.CleanCell(h))
		if key == "" {
			continue
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func cellAt(row []string, cols map[string]int, name string) (string, bool) {
	pos, ok := cols[name]
	if !ok || pos >= len(row) {
		return "", false
	}
	return sheet.CleanCell(row[pos]), true
}

// buildRow constructs one listing, defaulting every missing or blank field
// and annotating the defaults when opts.Annotate is set.
func buildRow(row []string, cols map[string]int, opts Options) listing.Listing {
	l := listing.New()
	note := func(field, original, def, reason string) {
		if opts.Annotate {
			l.AutoFilled = append(l.AutoFilled, listing.AutoFilledField{
				Field:         field,
				OriginalValue: original,
				DefaultValue:  def,
				Reason:        reason,
			})
		}
	}

	if v, ok := cellAt(row, cols, listing.ColTitle); ok && v != "" {
		l.SetColumn(listing.ColTitle, v)
	} else {
		note(listing.ColTitle, "", "", "TITLE was blank in the source file")
	}

	if v, ok := cellAt(row, cols, listing.ColPrice); !ok || v == "" {
		l.Price = "0"
		note(listing.ColPrice, "", "0", "PRICE was blank in the source file")
	} else if !numeric(v) {
		l.Price = "0"
		note(listing.ColPrice, v, "0", fmt.Sprintf("PRICE %q is not a number", v))
	} else {
		l.SetColumn(listing.ColPrice, v)
	}

	if v, ok := cellAt(row, cols, listing.ColCondition); ok && v != "" {
		l.SetColumn(listing.ColCondition, v)
	} else {
		l.Condition = listing.CondNew
		note(listing.ColCondition, "", string(listing.CondNew), "CONDITION was blank, defaulted to New")
	}

	if v, ok := cellAt(row, cols, listing.ColDescription); ok && v != "" {
		l.SetColumn(listing.ColDescription, v)
	} else {
		note(listing.ColDescription, "", "", "DESCRIPTION was blank in the source file")
	}

	if v, ok := cellAt(row, cols, listing.ColCategory); ok && v != "" {
		l.SetColumn(listing.ColCategory, v)
	} else {
		l.Category = opts.DefaultCategory
		note(listing.ColCategory, "", opts.DefaultCategory, "CATEGORY was blank in the source file")
	}

	if v, ok := cellAt(row, cols, listing.ColOfferShipping); ok && v != "" {
		l.SetColumn(listing.ColOfferShipping, v)
	} else {
		l.OfferShipping = listing.ShippingNo
		note(listing.ColOfferShipping, "", string(listing.ShippingNo), "OFFER SHIPPING was blank, defaulted to No")
	}

	return l
}

// numeric accepts the price formats spreadsheets hand us: plain numbers,
// an optional leading currency symbol, and thousands separators.
func numeric(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return false
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v >= 0
}
