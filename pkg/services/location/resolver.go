package location

import (
	"sort"
	"strings"
	"unicode"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
)

// Resolver maps a free-text location name to an ISO3 country code.
type Resolver interface {
	ResolveISO3(name string) (string, bool)
}

// aliases covers names FTS and partners use that differ from the catalog.
var aliases = map[string]string{
	"drc":                                   "COD",
	"dr congo":                              "COD",
	"democratic republic of congo":          "COD",
	"congo kinshasa":                        "COD",
	"congo brazzaville":                     "COG",
	"ivory coast":                           "CIV",
	"cote d ivoire":                         "CIV",
	"syria":                                 "SYR",
	"iran":                                  "IRN",
	"russia":                                "RUS",
	"south korea":                           "KOR",
	"north korea":                           "PRK",
	"laos":                                  "LAO",
	"bolivia":                               "BOL",
	"venezuela":                             "VEN",
	"tanzania":                              "TZA",
	"vietnam":                               "VNM",
	"palestine":                             "PSE",
	"occupied palestinian territory":        "PSE",
	"state of palestine":                    "PSE",
	"turkey":                                "TUR",
	"turkiye":                               "TUR",
	"moldova":                               "MDA",
	"burma":                                 "MMR",
	"cape verde":                            "CPV",
	"swaziland":                             "SWZ",
	"eswatini":                              "SWZ",
	"macedonia":                             "MKD",
	"czech republic":                        "CZE",
	"united states":                         "USA",
	"usa":                                   "USA",
	"uk":                                    "GBR",
	"united kingdom":                        "GBR",
	"united republic of tanzania":           "TZA",
	"lao people s democratic republic":      "LAO",
	"syrian arab republic":                  "SYR",
	"democratic people s republic of korea": "PRK",
}

type entry struct {
	name string
	iso3 string
}

// CatalogResolver resolves names against the FTS location catalog. Lookups
// try, in order: an ISO3 code, an exact name, a known alias, a catalog name
// appearing as whole words in the query, then the closest name by edit
// distance.
type CatalogResolver struct {
	codes   map[string]struct{}
	byName  map[string]string
	entries []entry
}

func NewResolver(countries []domain.Country) *CatalogResolver {
	r := &CatalogResolver{
		codes:  make(map[string]struct{}),
		byName: make(map[string]string),
	}
	for alias, iso3 := range aliases {
		r.byName[alias] = iso3
	}
	for _, c := range countries {
		if c.ISO3 == "" {
			continue
		}
		iso3 := strings.ToUpper(c.ISO3)
		r.codes[iso3] = struct{}{}
		name := Normalize(c.Name)
		if name == "" {
			continue
		}
		r.byName[name] = iso3
		r.entries = append(r.entries, entry{name: name, iso3: iso3})
	}
	sort.Slice(r.entries, func(i, j int) bool {
		return r.entries[i].name < r.entries[j].name
	})
	return r
}

func (r *CatalogResolver) ResolveISO3(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}
	if _, ok := r.codes[strings.ToUpper(trimmed)]; ok {
		return strings.ToUpper(trimmed), true
	}

	query := Normalize(trimmed)
	if query == "" {
		return "", false
	}
	if iso3, ok := r.byName[query]; ok {
		return iso3, true
	}
	if iso3, ok := r.containedName(query); ok {
		return iso3, true
	}
	return r.closestName(query)
}

func (r *CatalogResolver) containedName(query string) (string, bool) {
	padded := " " + query + " "
	best := entry{}
	for _, e := range r.entries {
		if !strings.Contains(padded, " "+e.name+" ") {
			continue
		}
		if len(e.name) > len(best.name) {
			best = e
		}
	}
	return best.iso3, best.iso3 != ""
}

func (r *CatalogResolver) closestName(query string) (string, bool) {
	q := []rune(query)
	maxDistance := len(q) / 3
	if maxDistance == 0 {
		return "", false
	}

	best, bestDistance := "", maxDistance+1
	for _, e := range r.entries {
		d := levenshtein.DistanceForStrings(q, []rune(e.name), levenshtein.DefaultOptions)
		if d < bestDistance {
			best, bestDistance = e.iso3, d
		}
	}
	return best, best != ""
}

// Normalize folds diacritics and case and collapses punctuation to single spaces.
func Normalize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)
	folded = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)
	return strings.Join(strings.Fields(folded), " ")
}
