package heuristics

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/amishk599/ghboard/internal/model"
)

// amount matches "80", "80000" or "80,000", followed by an optional k marker.
const amount = `(\d{1,3}(?:,\d{3})*|\d+)([kK])?`

// One pattern per symbol: both ends of a range must use the same symbol.
var salaryPatterns = []struct {
	symbol   string
	currency model.Currency
	re       *regexp.Regexp
}{
	{"$", model.USD, regexp.MustCompile(`\$` + amount + `\s*[-–]\s*\$` + amount)},
	{"£", model.GBP, regexp.MustCompile(`£` + amount + `\s*[-–]\s*£` + amount)},
	{"€", model.EUR, regexp.MustCompile(`€` + amount + `\s*[-–]\s*€` + amount)},
}

// Dollar amounts default to USD unless nearby text says otherwise.
// Checked in order; the first cue found wins.
var dollarCues = []struct {
	currency model.Currency
	re       *regexp.Regexp
}{
	{model.CAD, regexp.MustCompile(`(?i)\bCAD\b|canada`)},
	{model.AUD, regexp.MustCompile(`(?i)\bAUD\b|australia`)},
	{model.EUR, regexp.MustCompile(`(?i)\bEUR\b|europe|ireland`)},
	{model.GBP, regexp.MustCompile(`(?i)\bGBP\b|\bUK\b|united kingdom`)},
}

// contextRadius is how many characters either side of the match start the
// currency cues are looked for.
const contextRadius = 200

var errAmountOverflow = errors.New("salary amount out of range")

// ExtractSalary finds the first salary range like "$80k - $120k" or
// "£50,000–£70,000" in text. It returns nil when nothing matches.
func ExtractSalary(text string) *model.SalaryRange {
	best := -1
	var loc []int
	for i, p := range salaryPatterns {
		m := p.re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		if loc == nil || m[0] < loc[0] {
			best, loc = i, m
		}
	}
	if loc == nil {
		return nil
	}

	group := func(n int) string {
		if loc[2*n] < 0 {
			return ""
		}
		return text[loc[2*n]:loc[2*n+1]]
	}

	lo, err := parseAmount(group(1), group(2) != "")
	if err != nil {
		return nil
	}
	hi, err := parseAmount(group(3), group(4) != "")
	if err != nil {
		return nil
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	cur := salaryPatterns[best].currency
	if cur == model.USD {
		cur = dollarCurrency(text, loc[0])
	}

	return &model.SalaryRange{
		Min:      lo,
		Max:      hi,
		Currency: cur,
		Raw:      text[loc[0]:loc[1]],
	}
}

// parseAmount strips thousands separators and scales shorthand amounts:
// a k marker or a value under 1000 means thousands ("80" and "80k" are both 80,000).
func parseAmount(digits string, kMarker bool) (int64, error) {
	n, err := strconv.ParseInt(strings.ReplaceAll(digits, ",", ""), 10, 64)
	if err != nil {
		return 0, err
	}
	if kMarker || n < 1000 {
		if n > math.MaxInt64/1000 {
			return 0, errAmountOverflow
		}
		n *= 1000
	}
	return n, nil
}

func dollarCurrency(text string, at int) model.Currency {
	window := text[runeOffset(text, at, -contextRadius):runeOffset(text, at, contextRadius)]
	for _, cue := range dollarCues {
		if cue.re.MatchString(window) {
			return cue.currency
		}
	}
	return model.USD
}

// runeOffset returns the byte offset n runes away from at (backwards when n
// is negative), stopping at either end of text.
func runeOffset(text string, at, n int) int {
	for ; n < 0 && at > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:at])
		at -= size
	}
	for ; n > 0 && at < len(text); n-- {
		_, size := utf8.DecodeRuneInString(text[at:])
		at += size
	}
	return at
}
