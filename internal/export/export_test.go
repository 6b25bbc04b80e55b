package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
	"github.com/swipswaps/marketplace-bulk-editor/internal/sheet"
	"github.com/swipswaps/marketplace-bulk-editor/internal/template"
)

func sampleRows() []listing.Listing {
	return []listing.Listing{
		{ID: "1", Title: "Lamp", Price: "25", Condition: listing.CondNew, Description: "Nice lamp", Category: "Home", OfferShipping: listing.ShippingYes},
		{ID: "2", Title: "Desk", Price: "45", Condition: listing.CondUsedGood, Description: "Oak", Category: "Furniture", OfferShipping: listing.ShippingNo},
		{ID: "3", Title: "Chair", Price: "10", Condition: listing.CondUsedFair, Description: "Worn", Category: "Furniture", OfferShipping: listing.ShippingNo},
	}
}

// ============================================================================
// Filtering Tests
// ============================================================================

func TestExport_SkipsIncompleteRows(t *testing.T) {
	rows := append(sampleRows(),
		listing.Listing{ID: "4", Title: "", Price: "5", Condition: listing.CondNew},
		listing.Listing{ID: "5", Title: "No price", Price: "", Condition: listing.CondNew},
	)

	res, err := Export(rows, Options{Format: FormatJSON})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Exported != 3 {
		t.Errorf("Exported = %d, want 3", res.Exported)
	}
	if res.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", res.Skipped)
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := Export(sampleRows(), Options{Format: "yaml"})
	if err == nil {
		t.Fatal("Export() expected error for unknown format")
	}
}

// ============================================================================
// Ordering Tests
// ============================================================================

func TestExport_SortByPriceNumeric(t *testing.T) {
	res, err := Export(sampleRows(), Options{Format: FormatJSON, SortKey: "price"})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var out []listing.Listing
	if err := json.Unmarshal(res.Data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out[0].Title != "Chair" || out[2].Title != "Desk" {
		t.Errorf("ascending price order = %s, %s, %s", out[0].Title, out[1].Title, out[2].Title)
	}
}

func TestExport_SortDescending(t *testing.T) {
	res, err := Export(sampleRows(), Options{Format: FormatJSON, SortKey: "PRICE", SortDir: "desc"})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var out []listing.Listing
	json.Unmarshal(res.Data, &out)
	if out[0].Title != "Desk" {
		t.Errorf("descending price should start with Desk, got %s", out[0].Title)
	}
}

func TestExport_ReverseComposesWithSort(t *testing.T) {
	// Ascending sort then reverse equals descending
	res, err := Export(sampleRows(), Options{Format: FormatJSON, SortKey: "price", Reverse: true})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var out []listing.Listing
	json.Unmarshal(res.Data, &out)
	if out[0].Title != "Desk" || out[2].Title != "Chair" {
		t.Errorf("reversed ascending order = %s, %s, %s", out[0].Title, out[1].Title, out[2].Title)
	}
}

func TestExport_ReverseAloneFlipsTableOrder(t *testing.T) {
	res, err := Export(sampleRows(), Options{Format: FormatJSON, Reverse: true})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var out []listing.Listing
	json.Unmarshal(res.Data, &out)
	if out[0].Title != "Chair" {
		t.Errorf("reverse without sort should flip table order, got %s first", out[0].Title)
	}
}

// ============================================================================
// Format Tests
// ============================================================================

func TestExport_CSVLayout(t *testing.T) {
	res, err := Export(sampleRows(), Options{Format: FormatCSV})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(res.Data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "TITLE,PRICE,CONDITION,DESCRIPTION,CATEGORY,OFFER SHIPPING" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Lamp,25,New,") {
		t.Errorf("first data row = %q", lines[1])
	}
	if !strings.HasSuffix(res.Filename, ".csv") {
		t.Errorf("Filename = %q, want .csv suffix", res.Filename)
	}
}

func TestExport_CSVQuotesCommas(t *testing.T) {
	rows := []listing.Listing{
		{Title: "Lamp, vintage", Price: "25", Condition: listing.CondNew},
	}
	res, err := Export(rows, Options{Format: FormatCSV})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(string(res.Data), `"Lamp, vintage"`) {
		t.Errorf("comma-bearing field should be quoted: %s", res.Data)
	}
}

func TestExport_TextIsTabDelimited(t *testing.T) {
	res, err := Export(sampleRows(), Options{Format: FormatText})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(string(res.Data), "\n")
	if !strings.Contains(lines[1], "Lamp\t25\tNew") {
		t.Errorf("text row = %q", lines[1])
	}
	if !strings.HasSuffix(res.Filename, ".txt") {
		t.Errorf("Filename = %q, want .txt suffix", res.Filename)
	}
}

func TestExport_SQLEscapesQuotes(t *testing.T) {
	rows := []listing.Listing{
		{Title: "Farmer's table", Price: "85.50", Condition: listing.CondUsedGood, Description: "It's sturdy", Category: "Furniture", OfferShipping: listing.ShippingNo},
	}

	res, err := Export(rows, Options{Format: FormatSQL})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := string(res.Data)

	if !strings.Contains(out, "'Farmer''s table'") {
		t.Errorf("title quotes should be doubled: %s", out)
	}
	if !strings.Contains(out, "'It''s sturdy'") {
		t.Errorf("description quotes should be doubled: %s", out)
	}
	if !strings.Contains(out, "VALUES ('Farmer''s table', 85.5, ") {
		t.Errorf("price should be unquoted numeric: %s", out)
	}
	if !strings.HasPrefix(out, "-- Marketplace Listings Export\n") {
		t.Errorf("missing header comment: %s", out)
	}
}

func TestExport_XLSXRoundTrip(t *testing.T) {
	res, err := Export(sampleRows(), Options{Format: FormatXLSX})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	g, name, err := sheet.DecodeXLSX(res.Data)
	if err != nil {
		t.Fatalf("DecodeXLSX() error = %v", err)
	}
	if name != "Listings" {
		t.Errorf("sheet name = %q, want Listings", name)
	}
	if len(g) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(g))
	}
	if g[0][0] != "TITLE" || g[1][0] != "Lamp" {
		t.Errorf("unexpected layout: header %v, row %v", g[0], g[1])
	}
}

// ============================================================================
// Template Layout Tests
// ============================================================================

func TestExport_TemplateLayout(t *testing.T) {
	tmpl := &template.Template{
		SheetName:      "Bulk Upload",
		HeaderRowIndex: 2,
		HeaderRows: [][]string{
			{"Marketplace Bulk Upload"},
			{"Fill one row per item"},
		},
		ColumnHeaders: []string{"TITLE", "PRICE", "CONDITION", "NOTES"},
	}

	res, err := Export(sampleRows()[:1], Options{Format: FormatCSV, Template: tmpl})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(res.Data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 2 preamble + header + 1 data, got %d lines", len(lines))
	}
	if lines[0] != "Marketplace Bulk Upload" {
		t.Errorf("preamble row = %q", lines[0])
	}
	if lines[2] != "TITLE,PRICE,CONDITION,NOTES" {
		t.Errorf("template header = %q", lines[2])
	}
	// NOTES is unknown to the model, so the cell is blank
	if lines[3] != "Lamp,25,New," {
		t.Errorf("data row = %q, want blank trailing NOTES cell", lines[3])
	}
}

func TestExport_TemplateSheetNameUsedForXLSX(t *testing.T) {
	tmpl := &template.Template{
		SheetName:     "Bulk Upload",
		ColumnHeaders: []string{"TITLE", "PRICE"},
	}

	res, err := Export(sampleRows()[:1], Options{Format: FormatXLSX, Template: tmpl})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	_, name, err := sheet.DecodeXLSX(res.Data)
	if err != nil {
		t.Fatalf("DecodeXLSX() error = %v", err)
	}
	if name != "Bulk Upload" {
		t.Errorf("sheet name = %q, want Bulk Upload", name)
	}
}

func TestExport_JSONIgnoresTemplate(t *testing.T) {
	tmpl := &template.Template{ColumnHeaders: []string{"TITLE"}}
	res, err := Export(sampleRows(), Options{Format: FormatJSON, Template: tmpl})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var out []listing.Listing
	if err := json.Unmarshal(res.Data, &out); err != nil {
		t.Fatalf("json export should stay canonical: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("expected 3 rows, got %d", len(out))
	}
}
