// Package odata renders OData v3 query options and decodes SharePoint
// REST payloads (verbose JSON, minimal JSON and Atom) into plain JSON.
package odata

import (
	"net/url"
	"strconv"
	"strings"
)

// Option names as they appear on the wire.
const (
	OptionSelect  = "$select"
	OptionExpand  = "$expand"
	OptionFilter  = "$filter"
	OptionTop     = "$top"
	OptionSkip    = "$skip"
	OptionOrderBy = "$orderby"
)

// QueryOption is one OData system query option.
type QueryOption interface {
	Name() string
	Value() string
}

// Select limits the returned properties.
type Select struct {
	Fields []string
}

func (s Select) Name() string  { return OptionSelect }
func (s Select) Value() string { return strings.Join(s.Fields, ",") }

// Expand inlines navigation properties.
type Expand struct {
	Fields []string
}

func (e Expand) Name() string  { return OptionExpand }
func (e Expand) Value() string { return strings.Join(e.Fields, ",") }

// Filter wraps a restriction.
type Filter struct {
	Restriction Restriction
}

func (f Filter) Name() string { return OptionFilter }
func (f Filter) Value() string {
	if f.Restriction == nil {
		return ""
	}
	return f.Restriction.String()
}

// Top caps the number of returned entries.
type Top struct {
	N int
}

func (t Top) Name() string  { return OptionTop }
func (t Top) Value() string { return strconv.Itoa(t.N) }

// Skip offsets into the collection.
type Skip struct {
	N int
}

func (s Skip) Name() string  { return OptionSkip }
func (s Skip) Value() string { return strconv.Itoa(s.N) }

// Order is one $orderby term.
type Order struct {
	Property   string
	Descending bool
}

// OrderBy sorts the collection.
type OrderBy struct {
	Orders []Order
}

func (o OrderBy) Name() string { return OptionOrderBy }
func (o OrderBy) Value() string {
	parts := make([]string, 0, len(o.Orders))
	for _, ord := range o.Orders {
		if ord.Descending {
			parts = append(parts, ord.Property+" desc")
		} else {
			parts = append(parts, ord.Property+" asc")
		}
	}
	return strings.Join(parts, ",")
}

// Ascending is a shorthand for a single ascending OrderBy.
func Ascending(property string) OrderBy {
	return OrderBy{Orders: []Order{{Property: property}}}
}

// Descending is a shorthand for a single descending OrderBy.
func Descending(property string) OrderBy {
	return OrderBy{Orders: []Order{{Property: property, Descending: true}}}
}

// wireOrder fixes the position of each option in the rendered query.
var wireOrder = []string{OptionSelect, OptionExpand, OptionFilter, OptionOrderBy, OptionSkip, OptionTop}

// Encode renders options as a query string including the leading '?'.
// Repeated $select/$expand lists are merged without duplicates, repeated
// filters are joined with "and", and for the remaining options the last
// one wins.
func Encode(opts ...QueryOption) string {
	lists := map[string][]string{}
	filters := []Restriction{}
	single := map[string]string{}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt.Name() {
		case OptionSelect, OptionExpand:
			for _, f := range strings.Split(opt.Value(), ",") {
				f = strings.TrimSpace(f)
				if f == "" || contains(lists[opt.Name()], f) {
					continue
				}
				lists[opt.Name()] = append(lists[opt.Name()], f)
			}
		case OptionFilter:
			if f, ok := opt.(Filter); ok && f.Restriction != nil {
				filters = append(filters, f.Restriction)
			} else if v := opt.Value(); v != "" {
				filters = append(filters, rawRestriction(v))
			}
		default:
			if v := opt.Value(); v != "" {
				single[opt.Name()] = v
			}
		}
	}

	var parts []string
	for _, name := range wireOrder {
		var v string
		switch name {
		case OptionSelect, OptionExpand:
			v = strings.Join(lists[name], ",")
		case OptionFilter:
			v = And(filters...).String()
		default:
			v = single[name]
		}
		if v == "" {
			continue
		}
		parts = append(parts, name+"="+Escape(v))
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

// Escape percent-encodes a query value using %20 for spaces.
func Escape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

type rawRestriction string

func (r rawRestriction) String() string { return string(r) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
