package importer

import (
	"testing"

	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
	"github.com/swipswaps/marketplace-bulk-editor/internal/sheet"
)

// ============================================================================
// Header Detection Tests
// ============================================================================

func TestFindHeaderRow_FirstRow(t *testing.T) {
	g := sheet.Grid{
		{"TITLE", "PRICE", "DESCRIPTION"},
		{"Lamp", "25", "Nice lamp"},
	}
	if got := FindHeaderRow(g); got != 0 {
		t.Errorf("FindHeaderRow() = %d, want 0", got)
	}
}

func TestFindHeaderRow_BelowPreamble(t *testing.T) {
	g := sheet.Grid{
		{"Marketplace Bulk Upload Template"},
		{"Fill in one row per item"},
		{"TITLE", "PRICE", "CONDITION", "DESCRIPTION"},
		{"Lamp", "25", "New", "Nice lamp"},
	}
	if got := FindHeaderRow(g); got != 2 {
		t.Errorf("FindHeaderRow() = %d, want 2", got)
	}
}

func TestFindHeaderRow_CaseInsensitive(t *testing.T) {
	g := sheet.Grid{
		{"title", "price", "description"},
	}
	if got := FindHeaderRow(g); got != 0 {
		t.Errorf("FindHeaderRow() = %d, want 0", got)
	}
}

func TestFindHeaderRow_FallbackZero(t *testing.T) {
	g := sheet.Grid{
		{"colA", "colB"},
		{"1", "2"},
	}
	if got := FindHeaderRow(g); got != 0 {
		t.Errorf("FindHeaderRow() with no anchor match = %d, want 0", got)
	}
}

func TestFindHeaderRow_BeyondSearchLimit(t *testing.T) {
	var g sheet.Grid
	for i := 0; i < HeaderSearchRows; i++ {
		g = append(g, []string{"preamble"})
	}
	g = append(g, []string{"TITLE", "PRICE", "DESCRIPTION"})

	if got := FindHeaderRow(g); got != 0 {
		t.Errorf("header beyond search limit should fall back to 0, got %d", got)
	}
}

// ============================================================================
// Validated Import Tests
// ============================================================================

func TestImport_ClassifiesRows(t *testing.T) {
	g := sheet.Grid{
		{"TITLE", "PRICE", "CONDITION", "DESCRIPTION", "CATEGORY", "OFFER SHIPPING"},
		{"Lamp", "25", "New", "Nice lamp", "Home", "Yes"},
		{"Desk", "", "Used - Good", "Oak desk", "Furniture", "No"},
		{"", "10", "New", "No title here", "Misc", "No"},
	}

	res := Import(g, Options{DefaultCategory: "Electronics", Annotate: true})

	if res.ValidCount() != 1 {
		t.Errorf("ValidCount() = %d, want 1", res.ValidCount())
	}
	if res.AutoFilledCount() != 1 {
		t.Errorf("AutoFilledCount() = %d, want 1", res.AutoFilledCount())
	}
	if res.RejectedCount() != 1 {
		t.Errorf("RejectedCount() = %d, want 1", res.RejectedCount())
	}
	if res.TotalRows != 3 {
		t.Errorf("TotalRows = %d, want 3", res.TotalRows)
	}
}

func TestImport_BlankPriceDefaultsToZero(t *testing.T) {
	g := sheet.Grid{
		{"TITLE", "PRICE", "DESCRIPTION"},
		{"Desk", "", "Oak desk"},
	}

	res := Import(g, Options{Annotate: true})
	if res.AutoFilledCount() != 1 {
		t.Fatalf("AutoFilledCount() = %d, want 1", res.AutoFilledCount())
	}

	row := res.AutoFilled[0]
	if row.Price != "0" {
		t.Errorf("Price = %q, want %q", row.Price, "0")
	}

	found := false
	for _, af := range row.AutoFilled {
		if af.Field == listing.ColPrice && af.DefaultValue == "0" {
			found = true
		}
	}
	if !found {
		t.Error("expected an auto-fill annotation for PRICE")
	}
}

func TestImport_NonNumericPriceRewritten(t *testing.T) {
	g := sheet.Grid{
		{"TITLE", "PRICE", "DESCRIPTION"},
		{"Desk", "free", "Oak desk"},
	}

	res := Import(g, Options{Annotate: true})
	row := res.AutoFilled[0]
	if row.Price != "0" {
		t.Errorf("Price = %q, want %q", row.Price, "0")
	}
	if row.AutoFilled[0].OriginalValue != "free" {
		t.Errorf("OriginalValue = %q, want %q", row.AutoFilled[0].OriginalValue, "free")
	}
}

func TestImport_NegativePriceRewritten(t *testing.T) {
	g := sheet.Grid{
		{"TITLE", "PRICE", "DESCRIPTION"},
		{"Desk", "-5", "Oak desk"},
	}

	res := Import(g, Options{Annotate: true})
	if res.AutoFilledCount() != 1 {
		t.Fatalf("AutoFilledCount() = %d, want 1", res.AutoFilledCount())
	}
	if res.AutoFilled[0].Price != "0" {
		t.Errorf("Price = %q, want %q", res.AutoFilled[0].Price, "0")
	}
}

func TestImport_MissingShippingColumnDefaultsNo(t *testing.T) {
	// Header two rows down, no OFFER SHIPPING column at all
	g := sheet.Grid{
		{"Bulk Upload"},
		{},
		{"TITLE", "PRICE", "CONDITION", "DESCRIPTION", "CATEGORY"},
		{"Lamp", "25", "New", "Nice lamp", "Home"},
	}

	res := Import(g, Options{Annotate: true})
	if res.HeaderRow != 2 {
		t.Fatalf("HeaderRow = %d, want 2", res.HeaderRow)
	}
	if res.AutoFilledCount() != 1 {
		t.Fatalf("AutoFilledCount() = %d, want 1", res.AutoFilledCount())
	}

	row := res.AutoFilled[0]
	if row.OfferShipping != listing.ShippingNo {
		t.Errorf("OfferShipping = %q, want %q", row.OfferShipping, listing.ShippingNo)
	}
	found := false
	for _, af := range row.AutoFilled {
		if af.Field == listing.ColOfferShipping {
			found = true
		}
	}
	if !found {
		t.Error("expected an auto-fill annotation for OFFER SHIPPING")
	}
}

func TestImport_SkipsEmptyRows(t *testing.T) {
	g := sheet.Grid{
		{"TITLE", "PRICE", "DESCRIPTION"},
		{"Lamp", "25", "Nice"},
		{"", "", ""},
		{"Desk", "45", "Oak"},
	}

	res := Import(g, Options{})
	if res.TotalRows != 2 {
		t.Errorf("TotalRows = %d, want 2 (empty row skipped)", res.TotalRows)
	}
}

func TestImport_DefaultCategoryApplied(t *testing.T) {
	g := sheet.Grid{
		{"TITLE", "PRICE", "CONDITION", "DESCRIPTION", "CATEGORY"},
		{"Lamp", "25", "New", "Nice", ""},
	}

	res := Import(g, Options{DefaultCategory: "Electronics", Annotate: true})
	if res.AutoFilled[0].Category != "Electronics" {
		t.Errorf("Category = %q, want %q", res.AutoFilled[0].Category, "Electronics")
	}

	// Empty default leaves the category blank but still annotates
	res = Import(g, Options{DefaultCategory: "", Annotate: true})
	if res.AutoFilled[0].Category != "" {
		t.Errorf("Category = %q, want empty", res.AutoFilled[0].Category)
	}
}

func TestImport_DuplicateHeaderFirstWins(t *testing.T) {
	g := sheet.Grid{
		{"TITLE", "PRICE", "TITLE", "DESCRIPTION"},
		{"First", "10", "Second", "desc"},
	}

	res := Import(g, Options{})
	all := append(res.Valid, res.AutoFilled...)
	if len(all) != 1 {
		t.Fatalf("expected 1 row, got %d", len(all))
	}
	if all[0].Title != "First" {
		t.Errorf("Title = %q, want %q (first occurrence wins)", all[0].Title, "First")
	}
}

// ============================================================================
// Plain Import Tests
// ============================================================================

func TestRows_NoRejection(t *testing.T) {
	g := sheet.Grid{
		{"TITLE", "PRICE", "DESCRIPTION"},
		{"", "10", "Untitled item"},
		{"Lamp", "25", "Nice"},
	}

	rows := Rows(g, Options{DefaultCategory: "Electronics"})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Title != "" {
		t.Error("plain import should keep rows with empty titles")
	}
}

func TestRows_NeverAnnotates(t *testing.T) {
	g := sheet.Grid{
		{"TITLE", "PRICE", "DESCRIPTION"},
		{"Lamp", "", ""},
	}

	// Annotate true is forced off on the plain path
	rows := Rows(g, Options{Annotate: true})
	if len(rows[0].AutoFilled) != 0 {
		t.Errorf("plain import should not annotate, got %d annotations", len(rows[0].AutoFilled))
	}
	if rows[0].Price != "0" {
		t.Errorf("Price = %q, want %q (defaults still apply)", rows[0].Price, "0")
	}
}

func TestImport_EmptyGrid(t *testing.T) {
	res := Import(sheet.Grid{}, Options{})
	if res.TotalRows != 0 || res.ValidCount() != 0 {
		t.Errorf("empty grid should produce empty result, got %+v", res)
	}
}
