package reconcile

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/services/location"
)

// Multiple replaces a value when objects of one type disagree.
const Multiple = "Multiple"

// Collapse records a field whose distinct values were replaced by Multiple.
type Collapse struct {
	Field  string
	Values []string
}

// longest keys first, matching is single pass
var keyReplacer = strings.NewReplacer(
	"OrganizationOrganization", "Organization",
	"destination", "dest",
	"source", "src",
	"types", "Types",
	"Name", "",
	"code", "Code",
)

type typedValues struct {
	keys   []string
	values map[string][]string
}

// Flatten turns the linked objects of one side of a flow into flat columns.
func Flatten(objects []domain.LinkedObject, role domain.Role, resolver location.Resolver) (map[string]string, []Collapse) {
	var order []domain.ObjectType
	byType := make(map[domain.ObjectType]*typedValues)
	for _, obj := range objects {
		t := obj.ObjectType()
		tv, ok := byType[t]
		if !ok {
			tv = &typedValues{values: make(map[string][]string)}
			byType[t] = tv
			order = append(order, t)
		}
		for _, attr := range obj.Attributes() {
			if _, seen := tv.values[attr.Key]; !seen {
				tv.keys = append(tv.keys, attr.Key)
			}
			tv.values[attr.Key] = append(tv.values[attr.Key], attr.Values...)
		}
	}

	out := make(map[string]string)
	var collapses []Collapse
	for _, t := range order {
		tv := byType[t]
		for _, key := range tv.keys {
			values := tv.values[key]
			if len(values) == 0 {
				continue
			}
			name := keyReplacer.Replace(string(role) + string(t) + capitalize(key))

			switch {
			case strings.Contains(name, "UsageYear"):
				sorted := append([]string(nil), values...)
				sort.Strings(sorted)
				out[name+"Start"] = sorted[0]
				out[name+"End"] = sorted[len(sorted)-1]
			case strings.Contains(name, "Cluster"), strings.Contains(name, "Location"), strings.Contains(name, "OrganizationTypes"):
				if !strings.HasSuffix(name, "s") {
					name += "s"
				}
				if strings.Contains(name, "Location") {
					values = resolveAll(values, resolver)
				}
				out[name] = strings.Join(sortedUnique(values), ",")
			default:
				distinct := sortedUnique(values)
				if len(distinct) > 1 {
					out[name] = Multiple
					collapses = append(collapses, Collapse{Field: name, Values: distinct})
					continue
				}
				out[name] = values[0]
			}
		}
	}
	return out, collapses
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func resolveAll(names []string, resolver location.Resolver) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if resolver != nil {
			if iso3, ok := resolver.ResolveISO3(name); ok {
				out = append(out, iso3)
				continue
			}
		}
		out = append(out, name)
	}
	return out
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
