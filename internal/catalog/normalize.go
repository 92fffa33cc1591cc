package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	moneyPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	ratingPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	countPattern  = regexp.MustCompile(`\d[\d,]*`)
)

// parseMoney extracts the first numeric substring from a raw price
// string like "$1,299.00". Currency symbols and thousands separators
// are stripped first; ok is false when no digits remain.
func parseMoney(raw string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", "€", "", "£", "", ",", "").Replace(raw)
	match := moneyPattern.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// parseRating extracts the leading number from a rating caption like
// "4.5 out of 5 stars". Captions without a number ("New") are absent.
func parseRating(raw string) (float64, bool) {
	match := ratingPattern.FindString(raw)
	if match == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// parseCount extracts a comma-grouped integer like "1,234" from text
// such as "1,234 ratings".
func parseCount(raw string) (int, bool) {
	match := countPattern.FindString(raw)
	if match == "" {
		return 0, false
	}
	val, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, false
	}
	return val, true
}
