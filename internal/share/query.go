///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package share

// query.go contains the tag filter grammar and the sort and page parameters
// of metadata listings

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gitlab.com/elixxir/sharestore/internal/fault"
)

// FilterSeparator separates the predicates of a filter string
const FilterSeparator = ","

// Operator compares a tag value against a filter value
type Operator string

const (
	EQUALS       Operator = "=="
	LESS_THAN    Operator = "<"
	GREATER_THAN Operator = ">"
)

// operators are tried in this order so that "==" is not read as a key
// ending in "="
var operators = []Operator{EQUALS, LESS_THAN, GREATER_THAN}

// TagFilter is one predicate of a listing filter
type TagFilter struct {
	Key      string
	Operator Operator
	Value    string
}

func (f TagFilter) String() string {
	return f.Key + string(f.Operator) + f.Value
}

// ParseTagFilter parses a single "key<op>value" predicate
func ParseTagFilter(s string) (TagFilter, error) {
	s = strings.TrimSpace(s)
	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx <= 0 {
			continue
		}
		f := TagFilter{
			Key:      strings.TrimSpace(s[:idx]),
			Operator: op,
			Value:    strings.TrimSpace(s[idx+len(op):]),
		}
		if f.Operator != EQUALS {
			if _, err := strconv.ParseInt(f.Value, 10, 64); err != nil {
				return TagFilter{}, fault.InvalidArgumentf("filter %q compares "+
					"against non numeric value %q", s, f.Value)
			}
		}
		return f, nil
	}
	return TagFilter{}, fault.InvalidArgumentf("malformed tag filter %q", s)
}

// ParseTagFilters parses a filter string. An empty string yields no
// predicates.
func ParseTagFilters(filter string) ([]TagFilter, error) {
	if strings.TrimSpace(filter) == "" {
		return nil, nil
	}
	parts := strings.Split(filter, FilterSeparator)
	filters := make([]TagFilter, 0, len(parts))
	for _, p := range parts {
		f, err := ParseTagFilter(p)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// Matches reports whether some tag satisfies the predicate. Ordering
// comparisons only match tags whose value is an integer.
func (f TagFilter) Matches(tags []Tag) bool {
	t, ok := FindTag(tags, f.Key)
	if !ok {
		return false
	}
	if f.Operator == EQUALS {
		return t.Value == f.Value
	}
	have, err := strconv.ParseInt(t.Value, 10, 64)
	if err != nil {
		return false
	}
	want, err := strconv.ParseInt(f.Value, 10, 64)
	if err != nil {
		return false
	}
	if f.Operator == LESS_THAN {
		return have < want
	}
	return have > want
}

// MatchesAll reports whether every predicate matches
func MatchesAll(filters []TagFilter, tags []Tag) bool {
	for _, f := range filters {
		if !f.Matches(tags) {
			return false
		}
	}
	return true
}

// Direction is a sort order
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// SortByID sorts by secret identifier rather than by a tag
const SortByID = "id"

// Sort orders a listing by a tag value. The zero value is unsorted.
type Sort struct {
	Property  string
	Direction Direction
}

// NewSort builds a Sort. An unknown direction falls back to ascending and an
// empty property means unsorted.
func NewSort(property, direction string) Sort {
	if property == "" {
		return Sort{}
	}
	d := ASC
	if strings.EqualFold(direction, string(DESC)) {
		d = DESC
	}
	return Sort{Property: property, Direction: d}
}

// IsSorted reports whether an order was requested
func (s Sort) IsSorted() bool {
	return s.Property != ""
}

// Apply sorts metadata in place. Secrets without the sort tag come last in
// either direction; ties are broken by identifier so results are stable.
// Without a requested order metadata is sorted by identifier.
func (s Sort) Apply(md []Metadata) {
	less := func(i, j int) bool {
		return md[i].ID.String() < md[j].ID.String()
	}
	if s.IsSorted() && s.Property != SortByID {
		byID := less
		less = func(i, j int) bool {
			a, aok := FindTag(md[i].Tags, s.Property)
			b, bok := FindTag(md[j].Tags, s.Property)
			switch {
			case aok && !bok:
				return true
			case !aok && bok:
				return false
			case !aok && !bok:
				return byID(i, j)
			}
			c := compareTagValues(a, b)
			if c == 0 {
				return byID(i, j)
			}
			if s.Direction == DESC {
				return c > 0
			}
			return c < 0
		}
	} else if s.Property == SortByID && s.Direction == DESC {
		less = func(i, j int) bool {
			return md[i].ID.String() > md[j].ID.String()
		}
	}
	sort.SliceStable(md, less)
}

func compareTagValues(a, b Tag) int {
	if a.ValueType == LONG && b.ValueType == LONG {
		x, xerr := strconv.ParseInt(a.Value, 10, 64)
		y, yerr := strconv.ParseInt(b.Value, 10, 64)
		if xerr == nil && yerr == nil {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(a.Value, b.Value)
}

// PageRequest selects one page of a listing. The zero value is unpaged.
type PageRequest struct {
	Number int
	Size   int
	Paged  bool
}

// NewPageRequest builds a page request from client supplied values. Both
// zero means unpaged; otherwise the values are clamped to number >= 0 and
// size >= 1.
func NewPageRequest(number, size int) PageRequest {
	if number <= 0 && size <= 0 {
		return PageRequest{}
	}
	if number < 0 {
		number = 0
	}
	if size < 1 {
		size = 1
	}
	return PageRequest{Number: number, Size: size, Paged: true}
}

// Offset is the index of the first element of the page. It saturates at
// math.MaxInt, which is past the end of any listing.
func (p PageRequest) Offset() int {
	if p.Size > 0 && p.Number > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Number * p.Size
}

// NewPage assembles a page for content selected by p out of total elements
func NewPage(content []Metadata, p PageRequest, total int64) Page {
	if content == nil {
		content = []Metadata{}
	}
	if !p.Paged {
		return Page{
			Content:       content,
			Number:        0,
			Size:          len(content),
			TotalElements: total,
			TotalPages:    1,
		}
	}
	size := int64(p.Size)
	pages := int(total / size)
	if total%size != 0 {
		pages++
	}
	return Page{
		Content:       content,
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// Paginate cuts the page selected by p out of an already filtered and
// sorted listing
func Paginate(md []Metadata, p PageRequest) Page {
	total := int64(len(md))
	if !p.Paged {
		return NewPage(md, p, total)
	}
	start := p.Offset()
	if start > len(md) {
		start = len(md)
	}
	end := len(md)
	if p.Size < end-start {
		end = start + p.Size
	}
	return NewPage(md[start:end], p, total)
}
