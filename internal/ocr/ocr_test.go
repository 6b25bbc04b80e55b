package ocr

import (
	"testing"

	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
)

// ============================================================================
// ParseCatalog Tests
// ============================================================================

func TestParseCatalog_NameAndPrice(t *testing.T) {
	got := ParseCatalog("Bosch Cordless Drill $79.99")

	if len(got) != 1 {
		t.Fatalf("ParseCatalog() returned %d rows, want 1", len(got))
	}
	if got[0].Title != "Bosch Cordless Drill" {
		t.Errorf("Title = %q, want Bosch Cordless Drill", got[0].Title)
	}
	if got[0].Price != "79.99" {
		t.Errorf("Price = %q, want 79.99", got[0].Price)
	}
}

func TestParseCatalog_PriceFormats(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"dollar sign", "Lamp $12.99", "12.99"},
		{"bare decimal", "Lamp 12.99", "12.99"},
		{"comma cents", "Lamp 12,99", "12.99"},
		{"thousands separator", "Dining set 1,299.00", "1299.00"},
		{"no price", "Table lamp with shade", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCatalog(tt.line)
			if len(got) != 1 {
				t.Fatalf("got %d rows, want 1", len(got))
			}
			if got[0].Price != tt.want {
				t.Errorf("Price = %q, want %q", got[0].Price, tt.want)
			}
		})
	}
}

func TestParseCatalog_MultipleLines(t *testing.T) {
	raw := "Widget A $5.00\nWidget B $6.50\n\nWidget C 7.25"
	got := ParseCatalog(raw)

	if len(got) != 3 {
		t.Fatalf("ParseCatalog() returned %d rows, want 3", len(got))
	}
	for i, want := range []string{"Widget A", "Widget B", "Widget C"} {
		if got[i].Title != want {
			t.Errorf("row %d Title = %q, want %q", i, got[i].Title, want)
		}
	}
}

func TestParseCatalog_SkipsNoise(t *testing.T) {
	raw := "ab\n--\n$9.99\nReal product $9.99"
	got := ParseCatalog(raw)

	if len(got) != 1 {
		t.Fatalf("noise lines should be dropped, got %d rows", len(got))
	}
	if got[0].Title != "Real product" {
		t.Errorf("Title = %q, want Real product", got[0].Title)
	}
}

func TestParseCatalog_TrimsSeparators(t *testing.T) {
	got := ParseCatalog("Oak bookshelf - $45.00")

	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].Title != "Oak bookshelf" {
		t.Errorf("Title = %q, want Oak bookshelf", got[0].Title)
	}
}

func TestParseCatalog_KeepsLineAsDescription(t *testing.T) {
	line := "Oak bookshelf - $45.00"
	got := ParseCatalog(line)

	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].Description != line {
		t.Errorf("Description = %q, want the original line", got[0].Description)
	}
}

func TestParseCatalog_RowDefaults(t *testing.T) {
	got := ParseCatalog("Desk chair $30.00")

	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].ID == "" {
		t.Error("parsed row should carry an ID")
	}
	if got[0].Condition != listing.CondNew {
		t.Errorf("Condition = %q, want the listing default", got[0].Condition)
	}
}

func TestParseCatalog_Empty(t *testing.T) {
	if got := ParseCatalog(""); len(got) != 0 {
		t.Errorf("ParseCatalog(\"\") = %d rows, want 0", len(got))
	}
}
