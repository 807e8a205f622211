// Package price normalises the heterogeneous price strings that appear on
// retail listing pages into numeric values.
package price

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`[0-9][0-9.,]*`)

// Parse extracts a numeric amount from a display price such as "$1,299.99",
// "£45" or "1.299". Separators are disambiguated by position: a final group
// of one or two digits after a separator is read as decimal cents, anything
// else as a thousands separator. The second return value is false when the
// text holds no usable number; callers must treat that as "price unknown",
// never as zero.
func Parse(text string) (float64, bool) {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0, false
	}

	groups := strings.FieldsFunc(match, func(r rune) bool {
		return r == '.' || r == ','
	})
	if len(groups) == 0 {
		return 0, false
	}

	last := groups[len(groups)-1]
	var joined string
	if len(groups) > 1 && len(last) <= 2 {
		joined = strings.Join(groups[:len(groups)-1], "") + "." + last
	} else {
		joined = strings.Join(groups, "")
	}

	value, err := strconv.ParseFloat(joined, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// FormatDisplay renders a numeric amount the way listing pages display it,
// with a leading currency symbol and two decimal places.
func FormatDisplay(value float64, symbol string) string {
	return fmt.Sprintf("%s%.2f", symbol, value)
}
