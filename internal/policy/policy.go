// Package policy scans listings for marketplace policy problems: empty
// required fields, zero prices, and prohibited-item keywords.
//
// Keyword matching is case-insensitive substring matching, deliberately
// coarse: it trades precision for recall, so a "service manual" listing
// matches the services category. The system only warns, it never blocks,
// so the false positives are an accepted cost.
package policy

import (
	"fmt"
	"strings"

	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
)

// Severity distinguishes hard marketplace requirements from advisories.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// prohibitedCategories fixes the iteration order so warning output is
// deterministic.
var prohibitedCategories = []string{
	"alcohol", "tobacco", "drugs", "weapons", "adult",
	"animals", "healthcare", "counterfeit", "recalled", "services",
}

// prohibitedKeywords is the keyword taxonomy derived from Facebook's
// Commerce Policies. Hand-curated; extend a list rather than tokenizing.
var prohibitedKeywords = map[string][]string{
	"alcohol":     {"alcohol", "beer", "wine", "liquor", "vodka", "whiskey", "rum", "tequila", "champagne", "sake"},
	"tobacco":     {"tobacco", "cigarette", "cigar", "vape", "vaping", "e-cig", "juul", "smoking"},
	"drugs":       {"marijuana", "cannabis", "weed", "cbd oil", "thc", "drug", "prescription"},
	"weapons":     {"gun", "firearm", "rifle", "pistol", "weapon", "ammunition", "ammo", "explosive", "grenade", "knife", "sword", "taser"},
	"adult":       {"adult", "xxx", "porn", "sex toy", "vibrator", "escort", "massage"},
	"animals":     {"puppy", "kitten", "dog for sale", "cat for sale", "pet for sale", "animal for sale"},
	"healthcare":  {"prescription", "rx", "medical device", "contact lens", "insulin"},
	"counterfeit": {"replica", "fake", "counterfeit", "knockoff", "imitation", "copy"},
	"recalled":    {"recalled", "defective"},
	"services":    {"service", "consulting", "repair service", "cleaning service"},
}

// Match identifies which keyword in which category triggered a hit.
type Match struct {
	Category string `json:"category"`
	Keyword  string `json:"keyword"`
}

// Warning is one categorized validation finding for display.
type Warning struct {
	Type        Severity `json:"type"`
	Category    string   `json:"category"`
	Message     string   `json:"message"`
	ItemIndices []int    `json:"item_indices"`
}

// Result summarizes a validation pass over a row list.
type Result struct {
	IsValid           bool      `json:"is_valid"`
	Warnings          []Warning `json:"warnings"`
	EmptyTitles       int       `json:"empty_titles"`
	EmptyDescriptions int       `json:"empty_descriptions"`
	ZeroPrices        int       `json:"zero_prices"`
	ProhibitedItems   int       `json:"prohibited_items"`
}

// RowIssues is the per-row view used to render warning indicators on
// individual table cells.
type RowIssues struct {
	EmptyTitle       bool   `json:"empty_title"`
	EmptyDescription bool   `json:"empty_description"`
	ZeroPrice        bool   `json:"zero_price"`
	Prohibited       *Match `json:"prohibited,omitempty"`
}

// Clean reports whether the row has no findings at all.
func (r RowIssues) Clean() bool {
	return !r.EmptyTitle && !r.EmptyDescription && !r.ZeroPrice && r.Prohibited == nil
}

// CheckProhibited returns the first taxonomy hit in text, or nil.
// Categories are checked in fixed order, keywords in list order.
func CheckProhibited(text string) *Match {
	lower := strings.ToLower(text)
	for _, cat := range prohibitedCategories {
		for _, kw := range prohibitedKeywords[cat] {
			if strings.Contains(lower, kw) {
				return &Match{Category: cat, Keyword: kw}
			}
		}
	}
	return nil
}

// ValidateListing checks one row. Title hits take precedence over
// description hits for the prohibited match, matching the UI which shows
// one badge per row.
func ValidateListing(l listing.Listing) RowIssues {
	issues := RowIssues{
		EmptyTitle:       strings.TrimSpace(l.Title) == "",
		EmptyDescription: strings.TrimSpace(l.Description) == "",
		ZeroPrice:        l.PriceValue() == 0,
	}
	if m := CheckProhibited(l.Title); m != nil {
		issues.Prohibited = m
	} else if m := CheckProhibited(l.Description); m != nil {
		issues.Prohibited = m
	}
	return issues
}

// Validate runs the full policy pass. It is a pure function of rows: the
// input is never mutated and equal inputs produce equal output.
func Validate(rows []listing.Listing) Result {
	var (
		emptyTitleIdx []int
		emptyDescIdx  []int
		zeroPriceIdx  []int
		prohibitedIdx []int
	)
	byCategory := make(map[string]*categoryHits)

	for i, row := range rows {
		issues := ValidateListing(row)
		if issues.EmptyTitle {
			emptyTitleIdx = append(emptyTitleIdx, i)
		}
		if issues.EmptyDescription {
			emptyDescIdx = append(emptyDescIdx, i)
		}
		if issues.ZeroPrice {
			zeroPriceIdx = append(zeroPriceIdx, i)
		}
		if issues.Prohibited != nil {
			prohibitedIdx = append(prohibitedIdx, i)
			hits := byCategory[issues.Prohibited.Category]
			if hits == nil {
				hits = &categoryHits{seen: make(map[string]bool)}
				byCategory[issues.Prohibited.Category] = hits
			}
			hits.indices = append(hits.indices, i)
			if !hits.seen[issues.Prohibited.Keyword] {
				hits.seen[issues.Prohibited.Keyword] = true
				hits.keywords = append(hits.keywords, issues.Prohibited.Keyword)
			}
		}
	}

	var warnings []Warning
	if len(emptyTitleIdx) > 0 {
		warnings = append(warnings, Warning{
			Type:        SeverityError,
			Category:    "Required Field",
			Message:     fmt.Sprintf("%d listing(s) missing TITLE (required by Facebook)", len(emptyTitleIdx)),
			ItemIndices: emptyTitleIdx,
		})
	}
	if len(emptyDescIdx) > 0 {
		warnings = append(warnings, Warning{
			Type:        SeverityError,
			Category:    "Required Field",
			Message:     fmt.Sprintf("%d listing(s) missing DESCRIPTION (required by Facebook)", len(emptyDescIdx)),
			ItemIndices: emptyDescIdx,
		})
	}
	if len(zeroPriceIdx) > 0 {
		warnings = append(warnings, Warning{
			Type:        SeverityWarning,
			Category:    "Pricing",
			Message:     fmt.Sprintf("%d listing(s) have PRICE = $0 (may be rejected)", len(zeroPriceIdx)),
			ItemIndices: zeroPriceIdx,
		})
	}
	for _, cat := range prohibitedCategories {
		hits := byCategory[cat]
		if hits == nil {
			continue
		}
		warnings = append(warnings, Warning{
			Type:     SeverityError,
			Category: "Prohibited Item",
			Message: fmt.Sprintf("%d listing(s) may contain prohibited %s items (keywords: %s)",
				len(hits.indices), title(cat), strings.Join(hits.keywords, ", ")),
			ItemIndices: hits.indices,
		})
	}

	errors := 0
	for _, w := range warnings {
		if w.Type == SeverityError {
			errors++
		}
	}

	return Result{
		IsValid:           errors == 0,
		Warnings:          warnings,
		EmptyTitles:       len(emptyTitleIdx),
		EmptyDescriptions: len(emptyDescIdx),
		ZeroPrices:        len(zeroPriceIdx),
		ProhibitedItems:   len(prohibitedIdx),
	}
}

type categoryHits struct {
	indices  []int
	keywords []string
	seen     map[string]bool
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
