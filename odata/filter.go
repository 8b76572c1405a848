package odata

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Restriction is a single $filter expression.
type Restriction interface {
	String() string
}

type comparison struct {
	op       string
	property string
	value    any
}

func (c comparison) String() string {
	return c.property + " " + c.op + " " + Literal(c.value)
}

// IsEqualTo renders "property eq value".
func IsEqualTo(property string, value any) Restriction {
	return comparison{op: "eq", property: property, value: value}
}

// IsNotEqualTo renders "property ne value".
func IsNotEqualTo(property string, value any) Restriction {
	return comparison{op: "ne", property: property, value: value}
}

// IsGreaterThan renders "property gt value".
func IsGreaterThan(property string, value any) Restriction {
	return comparison{op: "gt", property: property, value: value}
}

// IsGreaterThanOrEqualTo renders "property ge value".
func IsGreaterThanOrEqualTo(property string, value any) Restriction {
	return comparison{op: "ge", property: property, value: value}
}

// IsLessThan renders "property lt value".
func IsLessThan(property string, value any) Restriction {
	return comparison{op: "lt", property: property, value: value}
}

// IsLessThanOrEqualTo renders "property le value".
func IsLessThanOrEqualTo(property string, value any) Restriction {
	return comparison{op: "le", property: property, value: value}
}

// StartsWith renders startswith(property,'value'). With Negate set the
// expression is compared against false.
type StartsWith struct {
	Property string
	Value    string
	Negate   bool
}

func (s StartsWith) String() string {
	expr := fmt.Sprintf("startswith(%s,%s)", s.Property, Literal(s.Value))
	if s.Negate {
		return expr + " eq false"
	}
	return expr
}

// SubstringOf renders substringof('value',property).
type SubstringOf struct {
	Property string
	Value    string
}

func (s SubstringOf) String() string {
	return fmt.Sprintf("substringof(%s,%s)", Literal(s.Value), s.Property)
}

type logical struct {
	op       string
	children []Restriction
}

func (l logical) String() string {
	parts := make([]string, 0, len(l.children))
	for _, c := range l.children {
		if c == nil {
			continue
		}
		if s := c.String(); s != "" {
			parts = append(parts, s)
		}
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, " "+l.op+" ") + ")"
}

// And joins restrictions with "and".
func And(children ...Restriction) Restriction {
	return logical{op: "and", children: children}
}

// Or joins restrictions with "or".
func Or(children ...Restriction) Restriction {
	return logical{op: "or", children: children}
}

// Literal renders a Go value as an OData URI literal.
func Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return "datetime'" + val.UTC().Format("2006-01-02T15:04:05Z") + "'"
	case uuid.UUID:
		return "guid'" + val.String() + "'"
	case fmt.Stringer:
		return Literal(val.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.String:
		return Literal(rv.String())
	}
	return Literal(fmt.Sprint(v))
}
