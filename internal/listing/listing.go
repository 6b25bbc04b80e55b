// Package listing defines the marketplace listing record shared by the
// importer, validator, editor, and exporter. Fields are typed and named in
// Go style; the space-containing spreadsheet column names ("OFFER SHIPPING")
// exist only at the serialization boundary via Column accessors.
package listing

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Field length caps enforced at the model boundary. Facebook rejects
// longer values server-side, so anything beyond these is wasted upload.
const (
	MaxTitleLen       = 150
	MaxDescriptionLen = 5000
)

// Condition is the fixed condition vocabulary accepted by the marketplace.
type Condition string

const (
	CondNew         Condition = "New"
	CondUsedLikeNew Condition = "Used - Like New"
	CondUsedGood    Condition = "Used - Good"
	CondUsedFair    Condition = "Used - Fair"
)

// Conditions lists all valid conditions in display order.
var Conditions = []Condition{CondNew, CondUsedLikeNew, CondUsedGood, CondUsedFair}

// ParseCondition normalizes free-form condition text to the enumeration.
// Matching ignores case, surrounding whitespace, and spacing around the
// hyphen ("used-good" and "Used - Good" are the same value). Anything
// unrecognized, including empty input, maps to CondNew.
func ParseCondition(s string) Condition {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	switch key {
	case "new":
		return CondNew
	case "used-likenew", "usedlikenew", "likenew":
		return CondUsedLikeNew
	case "used-good", "usedgood", "good":
		return CondUsedGood
	case "used-fair", "usedfair", "fair":
		return CondUsedFair
	default:
		return CondNew
	}
}

// Shipping is the boolean-like OFFER SHIPPING column vocabulary.
type Shipping string

const (
	ShippingYes Shipping = "Yes"
	ShippingNo  Shipping = "No"
)

// ParseShipping normalizes free-form shipping text. Accepts the usual
// boolean spellings; anything else, including empty input, maps to No.
func ParseShipping(s string) Shipping {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "t", "1":
		return ShippingYes
	default:
		return ShippingNo
	}
}

// AutoFilledField records one field that was defaulted during import
// because the source file left it blank. Rows carrying these need manual
// review before export.
type AutoFilledField struct {
	Field         string `json:"field"`
	OriginalValue string `json:"original_value"`
	DefaultValue  string `json:"default_value"`
	Reason        string `json:"reason"`
}

// Listing is one marketplace item record.
//
// Price is kept as text because both spreadsheets and the edit UI hand us
// either a number or a string; PriceValue interprets it when a numeric
// comparison is needed.
type Listing struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Price         string            `json:"price"`
	Condition     Condition         `json:"condition"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	OfferShipping Shipping          `json:"offer_shipping"`
	AutoFilled    []AutoFilledField `json:"auto_filled,omitempty"`
}

// New returns a blank listing with a fresh ID and valid enum defaults.
func New() Listing {
	return Listing{
		ID:            uuid.NewString(),
		Condition:     CondNew,
		OfferShipping: ShippingNo,
	}
}

// PriceValue parses the price text, tolerating a leading currency symbol
// and thousands separators. Unparseable or empty prices are 0.
func (l Listing) PriceValue() float64 {
	s := strings.TrimSpace(l.Price)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Clone returns a deep copy, including the auto-fill annotations.
// History snapshots depend on clones never aliasing the original.
func (l Listing) Clone() Listing {
	c := l
	if len(l.AutoFilled) > 0 {
		c.AutoFilled = make([]AutoFilledField, len(l.AutoFilled))
		copy(c.AutoFilled, l.AutoFilled)
	}
	return c
}

// CloneAll deep-copies a row list. Used for history snapshots.
func CloneAll(rows []Listing) []Listing {
	out := make([]Listing, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// External column names, in canonical export order. These match the
// Facebook bulk upload template headers exactly, spaces included.
const (
	ColTitle         = "TITLE"
	ColPrice         = "PRICE"
	ColCondition     = "CONDITION"
	ColDescription   = "DESCRIPTION"
	ColCategory      = "CATEGORY"
	ColOfferShipping = "OFFER SHIPPING"
)

// Columns is the canonical column order used when no template is loaded.
var Columns = []string{ColTitle, ColPrice, ColCondition, ColDescription, ColCategory, ColOfferShipping}

// Column returns the listing's value for an external column name.
// Unknown columns return the empty string so template-driven export can
// emit blanks for columns this model does not carry.
func (l Listing) Column(name string) string {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case ColTitle:
		return l.Title
	case ColPrice:
		return l.Price
	case ColCondition:
		return string(l.Condition)
	case ColDescription:
		return l.Description
	case ColCategory:
		return l.Category
	case ColOfferShipping:
		return string(l.OfferShipping)
	default:
		return ""
	}
}

// SetColumn assigns an external column value, normalizing enums and
// clamping length-capped fields. Unknown columns are ignored: template
// files may carry columns this model does not track.
func (l *Listing) SetColumn(name, value string) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case ColTitle:
		l.Title = clamp(value, MaxTitleLen)
	case ColPrice:
		l.Price = strings.TrimSpace(value)
	case ColCondition:
		l.Condition = ParseCondition(value)
	case ColDescription:
		l.Description = clamp(value, MaxDescriptionLen)
	case ColCategory:
		l.Category = strings.TrimSpace(value)
	case ColOfferShipping:
		l.OfferShipping = ParseShipping(value)
	}
}

func clamp(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	// Cut on a rune boundary so a multibyte char is never split.
	runes := []rune(s)
	for len(string(runes)) > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
