package tabular

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
)

var ErrTableUnavailable = errors.New("table not available")

// Record is one output row keyed by internal column name.
type Record map[string]string

// SortKey orders rows by one column. Rows holding Last in that column go
// after every other row whatever the direction.
type SortKey struct {
	Column     string
	Descending bool
	Last       string
}

// TableSpec declares how a table is finished.
type TableSpec struct {
	Name           string
	Description    string
	Columns        []string
	NumericColumns []string
	DateColumns    []string
	Sort           []SortKey
	FilterColumn   string
	FilterWord     string
	// Relabel maps column -> stored value -> emitted value, applied after sorting.
	Relabel map[string]map[string]string
	Tags    map[string]string
	Renames map[string]string
}

var wordPatterns sync.Map

var blankArtifacts = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
}

// Finish selects, normalizes, filters, sorts and tags records into a table.
func Finish(spec TableSpec, records []Record) (*domain.Table, error) {
	tags := make([]string, 0, len(spec.Columns))
	headers := make([]string, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		tag, ok := spec.Tags[col]
		if !ok {
			return nil, fmt.Errorf("no tag for column %s of %s", col, spec.Name)
		}
		tags = append(tags, tag)
		if renamed, ok := spec.Renames[col]; ok {
			headers = append(headers, renamed)
		} else {
			headers = append(headers, col)
		}
	}

	numeric := toSet(spec.NumericColumns)
	dates := toSet(spec.DateColumns)
	filterIdx := indexOf(spec.Columns, spec.FilterColumn)
	var filter *regexp.Regexp
	if filterIdx >= 0 && spec.FilterWord != "" {
		filter = wordPattern(spec.FilterWord)
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(spec.Columns))
		for i, col := range spec.Columns {
			v := NormalizeBlank(rec[col])
			if _, ok := numeric[col]; ok {
				v = NormalizeNumber(v)
			}
			if _, ok := dates[col]; ok {
				v = TrimDate(v)
			}
			row[i] = v
		}
		if filter != nil && filter.MatchString(row[filterIdx]) {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", spec.Name, ErrTableUnavailable)
	}

	sortRows(rows, spec.Columns, spec.Sort)

	for col, labels := range spec.Relabel {
		idx := indexOf(spec.Columns, col)
		if idx < 0 {
			continue
		}
		for _, row := range rows {
			if to, ok := labels[row[idx]]; ok {
				row[idx] = to
			}
		}
	}

	return &domain.Table{
		Name:        spec.Name,
		Description: spec.Description,
		Keys:        append([]string(nil), spec.Columns...),
		Columns:     headers,
		Tags:        tags,
		Rows:        rows,
	}, nil
}

// NormalizeBlank maps nan/none/null artifacts to an empty string.
func NormalizeBlank(v string) string {
	trimmed := strings.TrimSpace(v)
	if _, ok := blankArtifacts[strings.ToLower(trimmed)]; ok {
		return ""
	}
	return v
}

// NormalizeNumber drops the fractional part of numeric values, so 1234.0
// becomes 1234. Non-numeric values pass through untouched.
func NormalizeNumber(v string) string {
	v = NormalizeBlank(v)
	if v == "" {
		return ""
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return v
	}
	return d.Truncate(0).String()
}

// TrimDate cuts timestamps down to YYYY-MM-DD.
func TrimDate(v string) string {
	if len(v) > 10 {
		return v[:10]
	}
	return v
}

// ContainsWord reports whether s contains word as a whole word, ignoring case.
func ContainsWord(s, word string) bool {
	return wordPattern(word).MatchString(s)
}

// wordPattern returns the compiled whole-word matcher for word, compiling it
// once per word.
func wordPattern(word string) *regexp.Regexp {
	if re, ok := wordPatterns.Load(word); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	actual, _ := wordPatterns.LoadOrStore(word, re)
	return actual.(*regexp.Regexp)
}

func sortRows(rows [][]string, columns []string, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	idx := make([]int, len(keys))
	for i, k := range keys {
		idx[i] = indexOf(columns, k.Column)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		for i, k := range keys {
			if idx[i] < 0 {
				continue
			}
			va, vb := rows[a][idx[i]], rows[b][idx[i]]
			if va == vb {
				continue
			}
			if k.Last != "" {
				if va == k.Last {
					return false
				}
				if vb == k.Last {
					return true
				}
			}
			if k.Descending {
				return va > vb
			}
			return va < vb
		}
		return false
	})
}

func indexOf(columns []string, col string) int {
	if col == "" {
		return -1
	}
	for i, c := range columns {
		if c == col {
			return i
		}
	}
	return -1
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
