// Package template captures the reusable column layout of an uploaded
// marketplace file: the rows above the headers (title, instructions), the
// header row itself, and optionally the sample rows the file shipped with.
// Exports re-apply the captured layout so a round-tripped file matches what
// Facebook's bulk uploader expects.
package template

import (
	"strings"

	"github.com/swipswaps/marketplace-bulk-editor/internal/importer"
	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
	"github.com/swipswaps/marketplace-bulk-editor/internal/sheet"
)

// MaxTemplateDataRows is the sparseness bound: a real data import has more
// rows than a template shipped with a handful of examples.
const MaxTemplateDataRows = 5

// nameHints are matched (case-insensitive) against the filename and the
// pre-header rows when deciding whether a file is a template.
var nameHints = []string{"template", "facebook", "marketplace", "bulk upload", "bulk_upload"}

// Template is the captured export layout.
//
// Invariant: HeaderRowIndex == len(HeaderRows), and ColumnHeaders is
// non-empty once a template is considered loaded.
type Template struct {
	SheetName      string            `json:"sheet_name"`
	HeaderRowIndex int               `json:"header_row_index"`
	HeaderRows     [][]string        `json:"header_rows"`
	ColumnHeaders  []string          `json:"column_headers"`
	SampleRows     []listing.Listing `json:"sample_rows,omitempty"`
}

// Loaded reports whether the template carries usable column headers.
func (t *Template) Loaded() bool {
	return t != nil && len(t.ColumnHeaders) > 0
}

// Extract captures the layout of a grid. The header row is located with
// the same anchor-token scan the importer uses, so a file imports and
// templates identically. Sample rows come from the data below the header.
func Extract(g sheet.Grid, sheetName string) *Template {
	headerRow := importer.FindHeaderRow(g)

	t := &Template{
		SheetName:      sheetName,
		HeaderRowIndex: headerRow,
		HeaderRows:     make([][]string, 0, headerRow),
	}
	for i := 0; i < headerRow && i < len(g); i++ {
		row := make([]string, len(g[i]))
		copy(row, g[i])
		t.HeaderRows = append(t.HeaderRows, row)
	}
	if headerRow < len(g) {
		t.ColumnHeaders = make([]string, len(g[headerRow]))
		copy(t.ColumnHeaders, g[headerRow])
	}
	t.SampleRows = importer.Rows(g, importer.Options{})
	return t
}

// Detection is the advisory template-vs-data classification. The caller is
// expected to ask the user when Sparse is set but the hints disagree, not
// to guess silently.
type Detection struct {
	// Sparse is set when the file has at most MaxTemplateDataRows data rows.
	Sparse bool `json:"sparse"`
	// NameMatch is set when the filename contains a template hint word.
	NameMatch bool `json:"name_match"`
	// HeaderMatch is set when a pre-header row contains a hint word.
	HeaderMatch bool `json:"header_match"`
	// DataRows is the number of data rows found below the header.
	DataRows int `json:"data_rows"`
}

// IsTemplate is the heuristic verdict: sparse and at least one hint.
func (d Detection) IsTemplate() bool {
	return d.Sparse && (d.NameMatch || d.HeaderMatch)
}

// Ambiguous reports a sparse file with no hints either way; callers should
// prompt rather than pick a side.
func (d Detection) Ambiguous() bool {
	return d.Sparse && !d.NameMatch && !d.HeaderMatch
}

// Detect classifies an uploaded file as template or normal data import.
func Detect(filename string, t *Template) Detection {
	d := Detection{DataRows: len(t.SampleRows)}
	d.Sparse = d.DataRows <= MaxTemplateDataRows

	lower := strings.ToLower(filename)
	for _, hint := range nameHints {
		if strings.Contains(lower, hint) {
			d.NameMatch = true
			break
		}
	}

	for _, row := range t.HeaderRows {
		text := strings.ToLower(strings.Join(row, " "))
		for _, hint := range nameHints {
			if strings.Contains(text, hint) {
				d.HeaderMatch = true
				break
			}
		}
		if d.HeaderMatch {
			break
		}
	}

	return d
}
