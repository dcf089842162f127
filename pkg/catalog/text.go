// Package catalog holds helpers shared by every path that writes catalog items.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"ai-recommendation-be/internal/entity"
)

// EmbeddingText renders the document text that gets embedded for an item.
// Every part is always present so vectors stay comparable across items.
func EmbeddingText(item *entity.CatalogItem) string {
	parts := []string{
		"Product: " + item.Name,
		"Description: " + item.Description,
		"Short Description: " + item.ShortDescription,
		"Categories: " + strings.Join(item.Categories, ", "),
		"Tags: " + strings.Join(item.Tags, ", "),
		"Price: " + item.Price,
		"Stock: " + item.StockStatus,
		fmt.Sprintf("Rating: %s/5 (%d reviews)", formatRating(item.Rating), item.ReviewCount),
	}
	return strings.Join(parts, " | ")
}

// formatRating keeps at least one decimal: 4 -> "4.0", 4.25 -> "4.25".
func formatRating(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
