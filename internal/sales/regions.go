package sales

import "strings"

// RegionAll selects the whole country.
const RegionAll = "Brasil"

// Regions lists the selectable regions in display order.
var Regions = []string{RegionAll, "Norte", "Nordeste", "Centro-Oeste", "Sudeste", "Sul"}

var stateRegion = map[string]string{
	"AC": "Norte", "AM": "Norte", "AP": "Norte", "PA": "Norte", "RO": "Norte", "RR": "Norte", "TO": "Norte",
	"AL": "Nordeste", "BA": "Nordeste", "CE": "Nordeste", "MA": "Nordeste", "PB": "Nordeste",
	"PE": "Nordeste", "PI": "Nordeste", "RN": "Nordeste", "SE": "Nordeste",
	"DF": "Centro-Oeste", "GO": "Centro-Oeste", "MS": "Centro-Oeste", "MT": "Centro-Oeste",
	"ES": "Sudeste", "MG": "Sudeste", "RJ": "Sudeste", "SP": "Sudeste",
	"PR": "Sul", "RS": "Sul", "SC": "Sul",
}

// IsRegion reports whether name is one of Regions (case-insensitive).
func IsRegion(name string) bool {
	return CanonicalRegion(name) != ""
}

// CanonicalRegion returns the display spelling of a region name, or "" if unknown.
func CanonicalRegion(name string) string {
	name = strings.TrimSpace(name)
	for _, region := range Regions {
		if strings.EqualFold(region, name) {
			return region
		}
	}
	return ""
}

// RegionOf returns the region a state code belongs to, or "" if unknown.
func RegionOf(state string) string {
	return stateRegion[strings.ToUpper(strings.TrimSpace(state))]
}

// InRegion reports whether state belongs to region. RegionAll and "" match every state.
func InRegion(state, region string) bool {
	if strings.TrimSpace(region) == "" {
		return true
	}
	canonical := CanonicalRegion(region)
	switch canonical {
	case RegionAll:
		return true
	case "":
		return false
	}
	return RegionOf(state) == canonical
}
