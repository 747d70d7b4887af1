package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedValueKind is returned when a value has a kind the compiler
// cannot place at its position (for example an object inside a value list).
var ErrUnsupportedValueKind = errors.New("unsupported query value kind")

// ErrInvalidDirective is returned for malformed $sort or $include directives.
var ErrInvalidDirective = errors.New("invalid query directive")

// Reserved keys.
const (
	KeySort    = "$sort"
	KeyInclude = "$include"
	KeyAnd     = "$and"
	KeyOr      = "$or"
	KeyType    = "$type"
)

// operators maps comparison keys to the prefix placed before the value.
var operators = map[string]string{
	"$gt":  ">",
	"$lt":  "<",
	"$lte": "<=",
	"$gte": ">=",
}

// modifiers maps modifier keys to the suffix appended to the parameter name.
var modifiers = map[string]string{
	"$asc":     ":asc",
	"$desc":    ":desc",
	"$exact":   ":exact",
	"$missing": ":missing",
	"$null":    ":missing",
	"$text":    ":text",
}

// Param is one compiled search parameter. It renders to exactly one
// name[modifier]=[operator]value token.
type Param struct {
	Name     string
	Values   []Value
	Operator string
	Modifier string
}

// Value returns the parameter values joined with ",", before encoding.
func (p Param) Value() string {
	parts := make([]string, 0, len(p.Values))
	for _, v := range p.Values {
		parts = append(parts, render(v))
	}
	return strings.Join(parts, ",")
}

// String renders the parameter as a query string token. The operator symbol
// is not percent-encoded; only the value is.
func (p Param) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString(p.Modifier)
	b.WriteByte('=')
	b.WriteString(p.Operator)
	b.WriteString(EncodeURIComponent(p.Value()))
	return b.String()
}

// Compile turns q into an "&"-joined query string. An empty query compiles
// to the empty string.
func Compile(q Object) (string, error) {
	params, err := Linearize(q)
	if err != nil {
		return "", err
	}
	tokens := make([]string, len(params))
	for i, p := range params {
		tokens[i] = p.String()
	}
	return strings.Join(tokens, "&"), nil
}

// MustCompile is like Compile but panics on error. It is intended for
// queries written as literals in code.
func MustCompile(q Object) string {
	s, err := Compile(q)
	if err != nil {
		panic(err)
	}
	return s
}

// Linearize flattens q into compiled parameters in generation order.
func Linearize(q Object) ([]Param, error) {
	var out []Param
	for _, f := range q {
		params, err := linearizeOne(f.Key, f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, params...)
	}
	return out, nil
}

func linearizeOne(key string, v Value) ([]Param, error) {
	switch key {
	case KeySort:
		return handleSort(v)
	case KeyInclude:
		return handleInclude(v)
	}

	if v == nil {
		return nil, fmt.Errorf("%w: %q has no value", ErrUnsupportedValueKind, key)
	}

	switch val := v.(type) {
	case String, Number:
		return []Param{{Name: key, Values: []Value{val}}}, nil
	case List:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if err := checkRenderable(item); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			parts = append(parts, render(item))
		}
		return []Param{{Name: key, Values: []Value{String(strings.Join(parts, "|"))}}}, nil
	case Object:
		return expand(key, val)
	default:
		return nil, fmt.Errorf("%w: %T at %q", ErrUnsupportedValueKind, v, key)
	}
}

// expand linearizes a nested operator object under key.
func expand(key string, obj Object) ([]Param, error) {
	typeSuffix, err := chainType(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	var out []Param
	for _, f := range obj {
		switch {
		case f.Key == KeyAnd:
			items, ok := f.Value.(List)
			if !ok {
				return nil, fmt.Errorf("%w: %s under %q must be an array", ErrUnsupportedValueKind, KeyAnd, key)
			}
			for _, item := range items {
				params, err := linearizeOne(key, item)
				if err != nil {
					return nil, err
				}
				out = append(out, params...)
			}

		case f.Key == KeyType:
			// consumed by chainType

		case strings.HasPrefix(f.Key, "$"):
			p, err := operatorParam(key, f.Key, f.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, p)

		default:
			params, err := linearizeOne(key+typeSuffix+"."+f.Key, f.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, params...)
		}
	}
	return out, nil
}

// chainType returns the ":Type" suffix carried by a $type key anywhere in obj.
func chainType(obj Object) (string, error) {
	v, ok := obj.Get(KeyType)
	if !ok || v == nil {
		return "", nil
	}
	switch t := v.(type) {
	case String, Number:
		if s := render(t); s != "" {
			return ":" + s, nil
		}
		return "", nil
	default:
		return "", fmt.Errorf("%w: %s must be a scalar, got %s", ErrUnsupportedValueKind, KeyType, v.Kind())
	}
}

// operatorParam builds the parameter for a "$"-prefixed key nested under key.
// Keys that are neither operators nor modifiers produce a plain parameter.
func operatorParam(key, op string, v Value) (Param, error) {
	p := Param{Name: key}
	if op == KeyOr {
		values, err := valueList(v)
		if err != nil {
			return Param{}, fmt.Errorf("%s %s: %w", key, op, err)
		}
		p.Values = values
		return p, nil
	}

	if sym, ok := operators[op]; ok {
		p.Operator = sym
	}
	if mod, ok := modifiers[op]; ok {
		p.Modifier = mod
	}

	if inner, ok := v.(Object); ok {
		if or, ok := inner.Get(KeyOr); ok {
			values, err := valueList(or)
			if err != nil {
				return Param{}, fmt.Errorf("%s %s: %w", key, op, err)
			}
			p.Values = values
			return p, nil
		}
	}

	if err := checkRenderable(v); err != nil {
		return Param{}, fmt.Errorf("%s %s: %w", key, op, err)
	}
	p.Values = []Value{v}
	return p, nil
}

// valueList unpacks an $or operand into a value list.
func valueList(v Value) ([]Value, error) {
	if err := checkRenderable(v); err != nil {
		return nil, err
	}
	if l, ok := v.(List); ok {
		return append([]Value(nil), l...), nil
	}
	return []Value{v}, nil
}

func handleSort(v Value) ([]Param, error) {
	items, ok := v.(List)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an array", ErrInvalidDirective, KeySort)
	}
	out := make([]Param, 0, len(items))
	for i, item := range items {
		switch x := item.(type) {
		case String:
			out = append(out, Param{Name: "_sort", Values: []Value{x}})
		case List:
			if len(x) != 2 {
				return nil, fmt.Errorf("%w: %s[%d] must be a [field, direction] pair", ErrInvalidDirective, KeySort, i)
			}
			if err := checkScalar(x[0]); err != nil {
				return nil, fmt.Errorf("%w: %s[%d] field: %v", ErrInvalidDirective, KeySort, i, err)
			}
			if err := checkScalar(x[1]); err != nil {
				return nil, fmt.Errorf("%w: %s[%d] direction: %v", ErrInvalidDirective, KeySort, i, err)
			}
			out = append(out, Param{
				Name:     "_sort",
				Values:   []Value{x[0]},
				Modifier: ":" + render(x[1]),
			})
		default:
			return nil, fmt.Errorf("%w: %s[%d] must be a string or a pair", ErrInvalidDirective, KeySort, i)
		}
	}
	return out, nil
}

func handleInclude(v Value) ([]Param, error) {
	includes, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidDirective, KeyInclude)
	}
	var out []Param
	for _, f := range includes {
		switch targets := f.Value.(type) {
		case String:
			out = append(out, Param{Name: "_include", Values: []Value{String(f.Key + "." + string(targets))}})
		case List:
			for _, target := range targets {
				if err := checkScalar(target); err != nil {
					return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidDirective, KeyInclude, f.Key, err)
				}
				out = append(out, Param{Name: "_include", Values: []Value{String(f.Key + "." + render(target))}})
			}
		default:
			return nil, fmt.Errorf("%w: %s.%s must be a string or an array", ErrInvalidDirective, KeyInclude, f.Key)
		}
	}
	return out, nil
}

// render stringifies a renderable value; lists are joined with ",".
func render(v Value) string {
	switch x := v.(type) {
	case String:
		return string(x)
	case Number:
		return x.String()
	case List:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = render(item)
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// checkRenderable reports whether v can appear in a parameter value.
func checkRenderable(v Value) error {
	switch x := v.(type) {
	case String, Number:
		return nil
	case List:
		for _, item := range x {
			if err := checkRenderable(item); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return fmt.Errorf("%w: missing value", ErrUnsupportedValueKind)
	default:
		return fmt.Errorf("%w: %s is not a parameter value", ErrUnsupportedValueKind, v.Kind())
	}
}

func checkScalar(v Value) error {
	switch v.(type) {
	case String, Number:
		return nil
	case nil:
		return fmt.Errorf("%w: missing value", ErrUnsupportedValueKind)
	default:
		return fmt.Errorf("%w: expected a scalar, got %s", ErrUnsupportedValueKind, v.Kind())
	}
}
