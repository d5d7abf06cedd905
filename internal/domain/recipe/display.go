package recipe

import (
	"html"
	"math"
	"sort"
	"strconv"
	"strings"
)

// IngredientLine is one formatted ingredient row of a detail page
type IngredientLine struct {
	Name   string
	Amount string
}

// Display formats the nonzero counts of an entry. Counts are truncated to
// integers; keys missing from the catalog use the raw key and an empty unit.
// Rows follow catalog order, unknown keys come last in key order.
func (c *Catalog) Display(counts Counts) []IngredientLine {
	keys := make([]string, 0, len(counts))
	for key, value := range counts {
		if math.Trunc(value) != 0 {
			keys = append(keys, key)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		pi, pj := c.position(keys[i]), c.position(keys[j])
		switch {
		case pi >= 0 && pj >= 0:
			return pi < pj
		case pi >= 0:
			return true
		case pj >= 0:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	lines := make([]IngredientLine, 0, len(keys))
	for _, key := range keys {
		name, unit := key, ""
		if spec, ok := c.Lookup(key); ok {
			name, unit = spec.Name, spec.Unit
		}
		lines = append(lines, IngredientLine{
			Name:   name,
			Amount: formatCount(counts[key]) + " " + unit,
		})
	}
	return lines
}

// formatCount renders the integer part of v without exponent or size limit
func formatCount(v float64) string {
	return strconv.FormatFloat(math.Trunc(v), 'f', 0, 64)
}

// DisplayMap is Display keyed by ingredient name
func (c *Catalog) DisplayMap(counts Counts) map[string]string {
	lines := c.Display(counts)
	out := make(map[string]string, len(lines))
	for _, line := range lines {
		out[line.Name] = line.Amount
	}
	return out
}

// ContentHTML escapes free-text content and turns newlines into <br>
func ContentHTML(content string) string {
	return strings.ReplaceAll(html.EscapeString(content), "\n", "<br>")
}

// GalleryColumns deals names round-robin into three columns
func GalleryColumns(names []string) [3][]string {
	var columns [3][]string
	for i, name := range names {
		columns[i%3] = append(columns[i%3], name)
	}
	return columns
}
