package internal

import (
	"net/url"
	"strconv"
	"strings"
)

// TypeKind enumerates the annotations a page parameter may carry.
type TypeKind int

const (
	KindUntyped TypeKind = iota
	KindString
	KindAny
	KindInt
	KindFloat
	KindBool
	KindOptional
	KindList
	KindNamed
)

// Type describes how a raw query value is converted before it reaches a page handler.
type Type struct {
	elem *Type
	name string
	kind TypeKind
}

var (
	Untyped = Type{kind: KindUntyped}
	String  = Type{kind: KindString}
	Any     = Type{kind: KindAny}
	Int     = Type{kind: KindInt}
	Float   = Type{kind: KindFloat}
	Bool    = Type{kind: KindBool}
)

// Optional marks a parameter that may be absent. Coercion targets the inner type.
func Optional(t Type) Type {
	return Type{kind: KindOptional, elem: &t}
}

// List collects every value of a repeated query key.
func List(t Type) Type {
	return Type{kind: KindList, elem: &t}
}

// Named describes a scalar type the coercer does not know, such as "uuid".
// Values for it pass through as raw strings.
func Named(name string) Type {
	return Type{kind: KindNamed, name: name}
}

// Kind returns the annotation kind.
func (t Type) Kind() TypeKind { return t.kind }

// Elem returns the wrapped type for Optional and List, or Untyped.
func (t Type) Elem() Type {
	if t.elem == nil {
		return Untyped
	}
	return *t.elem
}

// Unwrap strips any Optional wrappers.
func (t Type) Unwrap() Type {
	for t.kind == KindOptional {
		t = t.Elem()
	}
	return t
}

// IsList reports whether the parameter collects all values of its key.
func (t Type) IsList() bool {
	return t.Unwrap().kind == KindList
}

func (t Type) String() string {
	switch t.kind {
	case KindString:
		return "string"
	case KindAny:
		return "any"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindOptional:
		return "optional[" + t.Elem().String() + "]"
	case KindList:
		return "list[" + t.Elem().String() + "]"
	case KindNamed:
		return t.name
	default:
		return "untyped"
	}
}

var (
	truthy = map[string]bool{"1": true, "true": true, "t": true, "yes": true, "y": true, "on": true}
	falsy  = map[string]bool{"0": true, "false": true, "f": true, "no": true, "n": true, "off": true}
)

// ParseBool converts a query value to a boolean.
// Recognized spellings are case-insensitive; any other non-empty value is true.
func ParseBool(raw string) bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case truthy[v]:
		return true
	case falsy[v]:
		return false
	default:
		return raw != ""
	}
}

// IsTruthy reports whether raw is one of the recognized true spellings.
func IsTruthy(raw string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(raw))]
}

// CoerceScalar converts raw into the value described by t.
// On a failed conversion it returns raw unchanged and ok=false.
// Untyped, string, any, list and unknown named types keep raw as is.
func CoerceScalar(raw string, t Type) (any, bool) {
	t = t.Unwrap()
	switch t.kind {
	case KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return raw, false
		}
		return n, true
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return raw, false
		}
		return f, true
	case KindBool:
		return ParseBool(raw), true
	default:
		return raw, true
	}
}

// CoerceList converts every value with the element type.
// Elements that fail conversion keep their raw string.
func CoerceList(values []string, elem Type) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		c, _ := CoerceScalar(v, elem)
		out = append(out, c)
	}
	return out
}

// CoerceQuery reads the value for p from the query.
// present is false when the key does not occur; callers then leave the parameter unbound.
// For scalar parameters the last value of a repeated key wins.
func CoerceQuery(query url.Values, p Param) (value any, present bool) {
	values, ok := query[p.Name]
	if !ok {
		return nil, false
	}
	if p.Type.IsList() {
		return CoerceList(values, p.Type.Unwrap().Elem()), true
	}
	raw := ""
	if len(values) > 0 {
		raw = values[len(values)-1]
	}
	v, _ := CoerceScalar(raw, p.Type)
	return v, true
}
