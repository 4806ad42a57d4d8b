package match

import "strings"

// cityRegions maps well-known target cities to the country/region they sit
// in, for the nearby tier. The table is deliberately small: it only needs to
// cover the cities subscribers actually target.
var cityRegions = map[string]string{
	"paris":      "france",
	"lyon":       "france",
	"london":     "united kingdom",
	"manchester": "united kingdom",
	"berlin":     "germany",
	"munich":     "germany",
	"hamburg":    "germany",
	"frankfurt":  "germany",
	"amsterdam":  "netherlands",
	"rotterdam":  "netherlands",
	"madrid":     "spain",
	"barcelona":  "spain",
	"milan":      "italy",
	"rome":       "italy",
	"zurich":     "switzerland",
	"geneva":     "switzerland",
	"vienna":     "austria",
	"brussels":   "belgium",
	"copenhagen": "denmark",
	"stockholm":  "sweden",
	"dublin":     "ireland",
	"lisbon":     "portugal",
	"new york":   "united states",
	"boston":     "united states",
	"chicago":    "united states",
	"singapore":  "singapore",
	"dubai":      "united arab emirates",
}

// countryAliases folds common country spellings onto the canonical names
// used in cityRegions.
var countryAliases = map[string]string{
	"uk":      "united kingdom",
	"england": "united kingdom",
	"usa":     "united states",
	"us":      "united states",
	"uae":     "united arab emirates",
	"holland": "netherlands",
}

// sameRegion reports whether a job's country is the region a target city
// belongs to.
func sameRegion(jobCountry, targetCity string) bool {
	region, ok := cityRegions[strings.ToLower(strings.TrimSpace(targetCity))]
	if !ok {
		return false
	}
	country := strings.ToLower(strings.TrimSpace(jobCountry))
	if alias, ok := countryAliases[country]; ok {
		country = alias
	}
	return country == region
}
