package model

import (
	"strconv"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is the ISO code of a salary range.
type Currency string

const (
	USD Currency = "USD"
	GBP Currency = "GBP"
	EUR Currency = "EUR"
	CAD Currency = "CAD"
	AUD Currency = "AUD"
)

// Unit maps the code to its x/text currency unit for formatting.
func (c Currency) Unit() currency.Unit {
	switch c {
	case GBP:
		return currency.GBP
	case EUR:
		return currency.EUR
	case CAD:
		return currency.CAD
	case AUD:
		return currency.AUD
	default:
		return currency.USD
	}
}

// SalaryRange is a best-effort salary parsed from free text.
type SalaryRange struct {
	Min      int64    `json:"min"`
	Max      int64    `json:"max"`
	Currency Currency `json:"currency"`
	Raw      string   `json:"raw"`
}

// Display renders the range for humans, e.g. "CA$150,000 – CA$190,000".
func (s SalaryRange) Display() string {
	p := message.NewPrinter(language.English)
	sym := p.Sprint(currency.Symbol(s.Currency.Unit()))
	if s.Min == s.Max {
		return p.Sprintf("%s%d", sym, s.Min)
	}
	return p.Sprintf("%s%d – %s%d", sym, s.Min, sym, s.Max)
}

// Record is the flat, normalized representation of one job posting.
// It carries no clock or random values: equal inputs give equal records.
type Record struct {
	ID          int64             `json:"id"`
	Company     string            `json:"company"`
	Type        *string           `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Location    string            `json:"location"`
	Locations   []string          `json:"locations"`
	IsRemote    bool              `json:"isRemote"`
	IsHybrid    bool              `json:"isHybrid"`
	Salary      *SalaryRange      `json:"salary"`
	Department  string            `json:"department"`
	Departments []string          `json:"departments"`
	Metadata    map[string]string `json:"metadata"`
	PostingURL  string            `json:"postingUrl"`
	ApplyURL    string            `json:"applyUrl"`
	PublishedAt string            `json:"publishedAt"`
}

// Key identifies a record across sinks: ids are only unique per board.
func (r Record) Key() string {
	return r.Company + ":" + strconv.FormatInt(r.ID, 10)
}
