package console

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	titleCaser = cases.Title(language.English)
	printer    = message.NewPrinter(language.English)
)

// Label turns an id such as "cloud_architecture" into "Cloud Architecture".
func Label(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// Credits formats an amount with thousands separators and two decimals.
func Credits(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// Count formats an integer with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// bar draws a fixed-width gauge of cur out of total.
func bar(cur, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := cur * width / total
	filled = min(width, max(0, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
