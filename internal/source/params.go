package source

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/salesdash/salesdash/internal/sales"
)

var lower = cases.Lower(language.BrazilianPortuguese)

// Params are the server-side filters understood by the products endpoint.
type Params struct {
	Region string
	Year   int
}

// RegionParam returns the regiao query value: lowercased, empty for the whole country.
func (p Params) RegionParam() string {
	region := strings.TrimSpace(p.Region)
	if region == "" || strings.EqualFold(region, sales.RegionAll) {
		return ""
	}
	return lower.String(region)
}

// YearParam returns the ano query value, empty when no year is selected.
func (p Params) YearParam() string {
	if p.Year == 0 {
		return ""
	}
	return strconv.Itoa(p.Year)
}

// Query encodes both parameters. They are always present, possibly empty.
func (p Params) Query() url.Values {
	values := url.Values{}
	values.Set("regiao", p.RegionParam())
	values.Set("ano", p.YearParam())
	return values
}

// Key identifies the parameter tuple inside the fetch cache.
func (p Params) Key() []string {
	region := p.RegionParam()
	if region == "" {
		region = "-"
	}
	year := p.YearParam()
	if year == "" {
		year = "-"
	}
	return []string{"sales", region, year}
}
