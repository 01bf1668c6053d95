// Package entity extracts structured vehicle-shopping signals from free
// text (§4.3): budget, price range, model, make, year, body type, and
// features, grounded on original_source's entity-extraction regexes.
package entity

import (
	"regexp"
	"strconv"
	"strings"
)

// VehicleQuery is the structured result of parsing one inbound message.
type VehicleQuery struct {
	Budget          *float64
	PriceRangeLow   *float64
	PriceRangeHigh  *float64
	Model           string
	Make            string
	Year            *int
	BodyType        string
	Features        []string
	HasStrongSignals bool
}

// closed vocabularies (§4.3). Extend here, never via ad hoc string checks
// scattered through the parser.
var makes = []string{
	"toyota", "honda", "ford", "chevrolet", "chevy", "nissan", "hyundai",
	"kia", "mazda", "subaru", "volkswagen", "vw", "bmw", "mercedes",
	"audi", "lexus", "jeep", "ram", "gmc", "dodge", "chrysler", "acura",
	"infiniti", "volvo", "tesla", "buick", "cadillac", "mitsubishi",
}

var bodyTypes = []string{
	"sedan", "suv", "truck", "pickup", "coupe", "convertible", "hatchback",
	"minivan", "van", "wagon", "crossover",
}

var featureKeywords = []string{
	"sunroof", "moonroof", "leather", "heated seats", "awd", "4wd",
	"navigation", "backup camera", "bluetooth", "third row", "towing",
	"remote start", "apple carplay", "android auto",
}

var (
	dollarPattern     = regexp.MustCompile(`\$\s*([0-9][0-9,]*)(?:\.[0-9]+)?\s*(k\b)?`)
	kSuffixPattern    = regexp.MustCompile(`\b([0-9]+(?:\.[0-9]+)?)\s*k\b`)
	aroundPattern     = regexp.MustCompile(`around\s+\$?\s*([0-9][0-9,]*)\s*(k\b)?`)
	priceRangePattern = regexp.MustCompile(`price\s+range\s+of\s+\$?\s*([0-9][0-9,]*)\s*(k\b)?`)
	yearPattern       = regexp.MustCompile(`\b(19[5-9][0-9]|20[0-4][0-9])\b`)
)

// Parse extracts a VehicleQuery from free text. Never fails: unmatched
// fields are left zero-valued.
func Parse(text string) VehicleQuery {
	lower := strings.ToLower(text)
	q := VehicleQuery{}

	if b := parseBudget(lower); b != nil {
		q.Budget = b
	}
	if lo, hi, ok := parsePriceRange(lower); ok {
		q.PriceRangeLow = &lo
		q.PriceRangeHigh = &hi
	}
	if m := matchFirst(lower, makes); m != "" {
		q.Make = m
	}
	if bt := matchFirst(lower, bodyTypes); bt != "" {
		q.BodyType = bt
	}
	if y := parseYear(lower); y != nil {
		q.Year = y
	}
	q.Features = matchAll(lower, featureKeywords)
	q.Model = extractModel(lower, q.Make)

	q.HasStrongSignals = q.Model != "" || q.Year != nil || q.Budget != nil || q.BodyType != ""
	return q
}

// parseBudget recognizes $NN[,NNN][.NN], NNk, "around $NN", and "price
// range of $NN" patterns, multiplying k-suffixed numbers by 1000.
func parseBudget(lower string) *float64 {
	for _, p := range []*regexp.Regexp{priceRangePattern, aroundPattern, dollarPattern} {
		if m := p.FindStringSubmatch(lower); m != nil {
			if v, ok := parseMoney(m[1]); ok {
				if m[2] == "k" {
					v *= 1000
				}
				return &v
			}
		}
	}
	if m := kSuffixPattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			result := v * 1000
			return &result
		}
	}
	return nil
}

// parsePriceRange recognizes "between $X and $Y" / "$X to $Y" style ranges.
func parsePriceRange(lower string) (float64, float64, bool) {
	rangePattern := regexp.MustCompile(`\$?\s*([0-9][0-9,]*)\s*(?:-|to)\s*\$?\s*([0-9][0-9,]*)`)
	m := rangePattern.FindStringSubmatch(lower)
	if m == nil {
		return 0, 0, false
	}
	lo, ok1 := parseMoney(m[1])
	hi, ok2 := parseMoney(m[2])
	if !ok1 || !ok2 || lo >= hi {
		return 0, 0, false
	}
	return lo, hi, true
}

func parseMoney(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseYear(lower string) *int {
	m := yearPattern.FindString(lower)
	if m == "" {
		return nil
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &y
}

func matchFirst(lower string, vocabulary []string) string {
	for _, word := range vocabulary {
		if strings.Contains(lower, word) {
			if word == "chevy" {
				return "chevrolet"
			}
			if word == "vw" {
				return "volkswagen"
			}
			return word
		}
	}
	return ""
}

func matchAll(lower string, vocabulary []string) []string {
	var found []string
	for _, word := range vocabulary {
		if strings.Contains(lower, word) {
			found = append(found, word)
		}
	}
	return found
}

// extractModel takes a best-effort guess at a model name: the word
// immediately following a recognized make, if any.
func extractModel(lower, makeName string) string {
	if makeName == "" {
		return ""
	}
	idx := strings.Index(lower, makeName)
	if idx == -1 {
		return ""
	}
	rest := strings.TrimSpace(lower[idx+len(makeName):])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	candidate := strings.Trim(fields[0], ".,!?")
	if candidate == "" || isStopWord(candidate) {
		return ""
	}
	return candidate
}

var stopWords = map[string]bool{
	"for": true, "the": true, "a": true, "an": true, "with": true,
	"under": true, "around": true, "near": true, "in": true,
}

func isStopWord(w string) bool {
	return stopWords[w]
}
