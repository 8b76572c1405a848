// Package spquery holds the $select/$expand/$filter presets used to load
// each SharePoint entity type.
package spquery

import (
	"spshare/odata"
)

// Mode controls how much of an entity is loaded.
type Mode int

const (
	// Overview loads just enough to enumerate and detect changes.
	Overview Mode = iota
	// Detail loads everything needed to restore the entity.
	Detail
)

func (m Mode) String() string {
	if m == Detail {
		return "detail"
	}
	return "overview"
}

// ParseMode maps "detail" to Detail and anything else to Overview.
func ParseMode(s string) Mode {
	if s == "detail" {
		return Detail
	}
	return Overview
}

// Pagination returns Skip(offset) followed by Top(size).
func Pagination(offset, size int) []odata.QueryOption {
	return append([]odata.QueryOption{odata.Skip{N: offset}}, TopOption(size)...)
}

// TopOption returns Top(size) on its own.
func TopOption(size int) []odata.QueryOption {
	return []odata.QueryOption{odata.Top{N: size}}
}

// filterOf folds restrictions into at most one Filter option.
func filterOf(restrictions []odata.Restriction) []odata.QueryOption {
	switch len(restrictions) {
	case 0:
		return nil
	case 1:
		return []odata.QueryOption{odata.Filter{Restriction: restrictions[0]}}
	default:
		return []odata.QueryOption{odata.Filter{Restriction: odata.And(restrictions...)}}
	}
}

func sel(fields ...string) odata.Select {
	return odata.Select{Fields: fields}
}

func expand(fields ...string) odata.Expand {
	return odata.Expand{Fields: fields}
}
