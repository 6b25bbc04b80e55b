// Package ocr extracts draft listings from raw OCR text. The OCR engine
// itself is an external collaborator; this package only parses the text it
// produced, one candidate product per line.
package ocr

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
)

// pricePattern matches catalog prices like "$12.99", "12.99", or "1,299.00"
// with the cents separator being either "." or ",".
var pricePattern = regexp.MustCompile(`\$?\d+(?:[.,]\d{3})*[.,]\d{2}`)

// minNameLen drops OCR noise: a product name shorter than this is almost
// always a scan artifact.
const minNameLen = 3

// ParseCatalog scans OCR text line by line and returns one draft listing
// per line that carries a usable product name. The full line is kept as
// the description so the user can see what the price was pulled from.
func ParseCatalog(raw string) []listing.Listing {
	var out []listing.Listing
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < minNameLen {
			continue
		}

		price := ""
		if m := pricePattern.FindString(line); m != "" {
			cleaned := strings.ReplaceAll(strings.TrimPrefix(m, "$"), ",", ".")
			// "1,299.00" style leaves two dots after the comma swap; treat
			// everything but the last dot as a thousands separator.
			if strings.Count(cleaned, ".") > 1 {
				last := strings.LastIndex(cleaned, ".")
				cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
			}
			if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
				price = strconv.FormatFloat(v, 'f', 2, 64)
			}
		}

		name := strings.TrimSpace(pricePattern.ReplaceAllString(line, ""))
		name = strings.Trim(name, "-–:|. ")
		if len(name) < minNameLen {
			continue
		}

		l := listing.New()
		l.SetColumn(listing.ColTitle, name)
		l.Price = price
		l.Description = line
		out = append(out, l)
	}
	return out
}
