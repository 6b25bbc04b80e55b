package listing

import (
	"strings"
	"testing"
)

// ============================================================================
// Condition and Shipping Parsing Tests
// ============================================================================

func TestParseCondition(t *testing.T) {
	tests := []struct {
		input string
		want  Condition
	}{
		{"New", CondNew},
		{"new", CondNew},
		{" NEW ", CondNew},
		{"Used - Like New", CondUsedLikeNew},
		{"used-like new", CondUsedLikeNew},
		{"like new", CondUsedLikeNew},
		{"Used - Good", CondUsedGood},
		{"used-good", CondUsedGood},
		{"good", CondUsedGood},
		{"Used - Fair", CondUsedFair},
		{"fair", CondUsedFair},
		{"", CondNew},
		{"mint", CondNew},
		{"refurbished", CondNew},
	}

	for _, tt := range tests {
		if got := ParseCondition(tt.input); got != tt.want {
			t.Errorf("ParseCondition(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseShipping(t *testing.T) {
	tests := []struct {
		input string
		want  Shipping
	}{
		{"Yes", ShippingYes},
		{"yes", ShippingYes},
		{"Y", ShippingYes},
		{"true", ShippingYes},
		{"1", ShippingYes},
		{"No", ShippingNo},
		{"no", ShippingNo},
		{"", ShippingNo},
		{"maybe", ShippingNo},
	}

	for _, tt := range tests {
		if got := ParseShipping(tt.input); got != tt.want {
			t.Errorf("ParseShipping(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ============================================================================
// Listing Tests
// ============================================================================

func TestNew_Defaults(t *testing.T) {
	l := New()

	if l.ID == "" {
		t.Error("New() should assign an ID")
	}
	if l.Condition != CondNew {
		t.Errorf("Condition = %q, want %q", l.Condition, CondNew)
	}
	if l.OfferShipping != ShippingNo {
		t.Errorf("OfferShipping = %q, want %q", l.OfferShipping, ShippingNo)
	}

	other := New()
	if l.ID == other.ID {
		t.Error("New() should assign unique IDs")
	}
}

func TestPriceValue(t *testing.T) {
	tests := []struct {
		price string
		want  float64
	}{
		{"25", 25},
		{"25.50", 25.5},
		{"$25.50", 25.5},
		{"1,299.99", 1299.99},
		{"$1,299.99", 1299.99},
		{"", 0},
		{"free", 0},
		{"  10  ", 10},
	}

	for _, tt := range tests {
		l := Listing{Price: tt.price}
		if got := l.PriceValue(); got != tt.want {
			t.Errorf("PriceValue() with Price=%q = %v, want %v", tt.price, got, tt.want)
		}
	}
}

func TestClone_DeepCopiesAnnotations(t *testing.T) {
	orig := Listing{
		Title: "Lamp",
		AutoFilled: []AutoFilledField{
			{Field: ColPrice, DefaultValue: "0"},
		},
	}

	c := orig.Clone()
	c.AutoFilled[0].DefaultValue = "99"

	if orig.AutoFilled[0].DefaultValue != "0" {
		t.Error("Clone() should not share the AutoFilled slice")
	}
}

func TestCloneAll_Independent(t *testing.T) {
	rows := []Listing{{Title: "A"}, {Title: "B"}}
	copied := CloneAll(rows)
	copied[0].Title = "changed"

	if rows[0].Title != "A" {
		t.Error("CloneAll() should not alias the source rows")
	}
}

// ============================================================================
// Column Accessor Tests
// ============================================================================

func TestColumn_RoundTrip(t *testing.T) {
	l := Listing{
		Title:         "Desk",
		Price:         "45",
		Condition:     CondUsedGood,
		Description:   "Solid oak",
		Category:      "Furniture",
		OfferShipping: ShippingYes,
	}

	tests := []struct {
		col  string
		want string
	}{
		{ColTitle, "Desk"},
		{ColPrice, "45"},
		{ColCondition, "Used - Good"},
		{ColDescription, "Solid oak"},
		{ColCategory, "Furniture"},
		{ColOfferShipping, "Yes"},
		{"UNKNOWN COLUMN", ""},
	}

	for _, tt := range tests {
		if got := l.Column(tt.col); got != tt.want {
			t.Errorf("Column(%q) = %q, want %q", tt.col, got, tt.want)
		}
	}
}

func TestSetColumn_NormalizesEnums(t *testing.T) {
	var l Listing
	l.SetColumn("condition", "used-good")
	if l.Condition != CondUsedGood {
		t.Errorf("Condition = %q, want %q", l.Condition, CondUsedGood)
	}

	l.SetColumn(ColOfferShipping, "true")
	if l.OfferShipping != ShippingYes {
		t.Errorf("OfferShipping = %q, want %q", l.OfferShipping, ShippingYes)
	}
}

func TestSetColumn_ClampsTitle(t *testing.T) {
	var l Listing
	l.SetColumn(ColTitle, strings.Repeat("x", MaxTitleLen+50))

	if len(l.Title) != MaxTitleLen {
		t.Errorf("Title length = %d, want %d", len(l.Title), MaxTitleLen)
	}
}

func TestSetColumn_ClampKeepsRuneBoundary(t *testing.T) {
	var l Listing
	l.SetColumn(ColTitle, strings.Repeat("é", MaxTitleLen))

	if len(l.Title) > MaxTitleLen {
		t.Errorf("Title byte length = %d, want <= %d", len(l.Title), MaxTitleLen)
	}
	for _, r := range l.Title {
		if r == '�' {
			t.Fatal("clamp split a multibyte rune")
		}
	}
}

func TestSetColumn_UnknownColumnIgnored(t *testing.T) {
	l := Listing{Title: "Desk"}
	l.SetColumn("SOME TEMPLATE COLUMN", "value")

	if l.Title != "Desk" {
		t.Error("unknown column should not modify the listing")
	}
}
