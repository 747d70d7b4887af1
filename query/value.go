package query

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind int

// Value kinds.
const (
	KindString Kind = iota
	KindNumber
	KindList
	KindObject
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindList:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a query value. The set of implementations is closed:
// String, Number, List and Object.
type Value interface {
	Kind() Kind
	sealed()
}

// String is a scalar string value.
type String string

// Kind implements Value.
func (String) Kind() Kind { return KindString }
func (String) sealed()    {}

// Number is a scalar numeric value.
type Number float64

// Kind implements Value.
func (Number) Kind() Kind { return KindNumber }
func (Number) sealed()    {}

// String formats n the way a JavaScript engine stringifies a number,
// so 5 renders as "5" and 0.5 as "0.5".
func (n Number) String() string {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits ("1e-07"), JavaScript does not.
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// List is an ordered array of values. At the top level of a field it means
// OR: the elements are joined with "|" inside one parameter.
type List []Value

// Kind implements Value.
func (List) Kind() Kind { return KindList }
func (List) sealed()    {}

// Strings builds a List of String values.
func Strings(values ...string) List {
	l := make(List, len(values))
	for i, v := range values {
		l[i] = String(v)
	}
	return l
}

// Field is a single key/value pair of an Object.
type Field struct {
	Key   string
	Value Value
}

// Object is an ordered mapping from keys to values. Key order is
// significant: it determines the order of the compiled parameters.
type Object []Field

// Kind implements Value.
func (Object) Kind() Kind { return KindObject }
func (Object) sealed()    {}

// Get returns the value stored under key, searching the whole object.
func (o Object) Get(key string) (Value, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing key in place, or appends a new field.
func (o Object) Set(key string, v Value) Object {
	for i := range o {
		if o[i].Key == key {
			o[i].Value = v
			return o
		}
	}
	return append(o, Field{Key: key, Value: v})
}

// Keys returns the keys in insertion order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, f := range o {
		keys[i] = f.Key
	}
	return keys
}
