package query

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func obj(fields ...Field) Object { return Object(fields) }

func kv(key string, v Value) Field { return Field{Key: key, Value: v} }

func TestCompile(t *testing.T) {
	tests := []struct {
		name  string
		query Object
		want  string
	}{
		{
			name:  "empty",
			query: Object{},
			want:  "",
		},
		{
			name:  "flat string",
			query: obj(kv("name", String("maud"))),
			want:  "name=maud",
		},
		{
			name:  "flat number",
			query: obj(kv("_count", Number(10))),
			want:  "_count=10",
		},
		{
			name:  "value is percent encoded",
			query: obj(kv("name", String("van der Berg & co"))),
			want:  "name=van%20der%20Berg%20%26%20co",
		},
		{
			name:  "insertion order",
			query: obj(kv("b", String("2")), kv("a", String("1"))),
			want:  "b=2&a=1",
		},
		{
			name:  "array joins with pipe",
			query: obj(kv("status", Strings("final", "amended"))),
			want:  "status=final%7Camended",
		},
		{
			name:  "comparison operator is not encoded",
			query: obj(kv("age", obj(kv("$gt", Number(5))))),
			want:  "age=>5",
		},
		{
			name:  "lte and gte",
			query: obj(kv("date", obj(kv("$lte", String("2020")), kv("$gte", String("2010"))))),
			want:  "date=<=2020&date=>=2010",
		},
		{
			name:  "exact modifier",
			query: obj(kv("name", obj(kv("$exact", String("Smith"))))),
			want:  "name:exact=Smith",
		},
		{
			name:  "null is an alias of missing",
			query: obj(kv("gender", obj(kv("$null", String("true"))))),
			want:  "gender:missing=true",
		},
		{
			name:  "text modifier",
			query: obj(kv("code", obj(kv("$text", String("heart attack"))))),
			want:  "code:text=heart%20attack",
		},
		{
			name: "and repeats the parameter",
			query: obj(kv("name", obj(kv("$and", List{
				String("John"),
				obj(kv("$exact", String("Doe"))),
			})))),
			want: "name=John&name:exact=Doe",
		},
		{
			name:  "or at field level",
			query: obj(kv("name", obj(kv("$or", Strings("a", "b"))))),
			want:  "name=a%2Cb",
		},
		{
			name:  "or under an operator",
			query: obj(kv("name", obj(kv("$exact", obj(kv("$or", Strings("Smith", "Jones"))))))),
			want:  "name:exact=Smith%2CJones",
		},
		{
			name:  "chained parameter",
			query: obj(kv("subject", obj(kv("name", String("peter"))))),
			want:  "subject.name=peter",
		},
		{
			name:  "typed chain",
			query: obj(kv("subject", obj(kv("$type", String("Patient")), kv("name", String("maud"))))),
			want:  "subject:Patient.name=maud",
		},
		{
			name:  "type after chain key",
			query: obj(kv("subject", obj(kv("name", String("maud")), kv("$type", String("Patient"))))),
			want:  "subject:Patient.name=maud",
		},
		{
			name: "deep chain with operator",
			query: obj(kv("subject", obj(
				kv("$type", String("Patient")),
				kv("organization", obj(kv("name", obj(kv("$exact", String("Acme")))))),
			))),
			want: "subject:Patient.organization.name:exact=Acme",
		},
		{
			name:  "sort",
			query: obj(kv(KeySort, List{String("birthdate"), Strings("name", "desc")})),
			want:  "_sort=birthdate&_sort:desc=name",
		},
		{
			name:  "include",
			query: obj(kv(KeyInclude, obj(kv("Patient", Strings("organization", "careProvider"))))),
			want:  "_include=Patient.organization&_include=Patient.careProvider",
		},
		{
			name:  "include single target",
			query: obj(kv(KeyInclude, obj(kv("Observation", String("subject"))))),
			want:  "_include=Observation.subject",
		},
		{
			name:  "unknown dollar key yields a plain parameter",
			query: obj(kv("name", obj(kv("$contains", String("x"))))),
			want:  "name=x",
		},
		{
			name: "mixed",
			query: obj(
				kv("name", obj(kv("$exact", String("Smith")))),
				kv("birthdate", obj(kv("$gt", String("1970")))),
				kv(KeySort, List{String("birthdate")}),
				kv("_count", Number(50)),
			),
			want: "name:exact=Smith&birthdate=>1970&_sort=birthdate&_count=50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.query)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Compile() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query Object
		want  error
	}{
		{"nil value", obj(kv("name", nil)), ErrUnsupportedValueKind},
		{"object in array", obj(kv("name", List{obj()})), ErrUnsupportedValueKind},
		{"and is not an array", obj(kv("name", obj(kv("$and", String("x"))))), ErrUnsupportedValueKind},
		{"object under operator", obj(kv("age", obj(kv("$gt", obj(kv("x", String("1"))))))), ErrUnsupportedValueKind},
		{"type is not scalar", obj(kv("subject", obj(kv("$type", List{}), kv("name", String("x"))))), ErrUnsupportedValueKind},
		{"sort is not an array", obj(kv(KeySort, String("name"))), ErrInvalidDirective},
		{"sort element is an object", obj(kv(KeySort, List{obj()})), ErrInvalidDirective},
		{"sort pair too long", obj(kv(KeySort, List{Strings("a", "b", "c")})), ErrInvalidDirective},
		{"include is not an object", obj(kv(KeyInclude, Strings("Patient.organization"))), ErrInvalidDirective},
		{"include target is an object", obj(kv(KeyInclude, obj(kv("Patient", obj())))), ErrInvalidDirective},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.query)
			if !errors.Is(err, tt.want) {
				t.Errorf("Compile() error = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestCompile_Idempotent(t *testing.T) {
	q := obj(
		kv("subject", obj(kv("$type", String("Patient")), kv("name", obj(kv("$and", List{String("a"), String("b")}))))),
		kv(KeySort, List{Strings("date", "asc")}),
	)

	first, err := Compile(q)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	second, err := Compile(q)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if first != second {
		t.Errorf("Compile() not idempotent: %q vs %q", first, second)
	}
}

func TestCompile_AndProducesOneTokenPerConstraint(t *testing.T) {
	constraints := List{String("a b"), String("c&d"), obj(kv("$exact", String("e")))}
	params, err := Linearize(obj(kv("name", obj(kv(KeyAnd, constraints)))))
	if err != nil {
		t.Fatalf("Linearize() error = %v", err)
	}
	if len(params) != len(constraints) {
		t.Fatalf("len(params) = %d; want %d", len(params), len(constraints))
	}
	want := []string{"name=a%20b", "name=c%26d", "name:exact=e"}
	for i, p := range params {
		if p.String() != want[i] {
			t.Errorf("params[%d] = %q; want %q", i, p.String(), want[i])
		}
	}
}

func TestLinearize(t *testing.T) {
	q := obj(
		kv("age", obj(kv("$gte", Number(18)))),
		kv("name", obj(kv("$exact", obj(kv("$or", Strings("x", "y")))))),
		kv(KeySort, List{Strings("name", "desc")}),
	)

	got, err := Linearize(q)
	if err != nil {
		t.Fatalf("Linearize() error = %v", err)
	}
	want := []Param{
		{Name: "age", Values: []Value{Number(18)}, Operator: ">="},
		{Name: "name", Values: []Value{String("x"), String("y")}, Modifier: ":exact"},
		{Name: "_sort", Values: []Value{String("name")}, Modifier: ":desc"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Linearize() mismatch (-want +got):\n%s", diff)
	}
}

func TestParam_Value(t *testing.T) {
	p := Param{Name: "code", Values: []Value{String("a"), List{String("b"), Number(1.5)}}}
	if got := p.Value(); got != "a,b,1.5" {
		t.Errorf("Value() = %q; want %q", got, "a,b,1.5")
	}
}

func TestMustCompile_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile should panic on invalid query")
		}
	}()
	MustCompile(obj(kv(KeySort, String("x"))))
}

func TestNumber_String(t *testing.T) {
	tests := []struct {
		n    Number
		want string
	}{
		{0, "0"},
		{5, "5"},
		{-3, "-3"},
		{0.5, "0.5"},
		{1.25, "1.25"},
		{123456789, "123456789"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
	}
	for _, tt := range tests {
		if got := tt.n.String(); got != tt.want {
			t.Errorf("Number(%v).String() = %q; want %q", float64(tt.n), got, tt.want)
		}
	}
}

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abcXYZ019", "abcXYZ019"},
		{"-_.!~*'()", "-_.!~*'()"},
		{"a b", "a%20b"},
		{"a+b", "a%2Bb"},
		{"x/y?z=1&w", "x%2Fy%3Fz%3D1%26w"},
		{">5", "%3E5"},
		{"é", "%C3%A9"},
	}
	for _, tt := range tests {
		if got := EncodeURIComponent(tt.in); got != tt.want {
			t.Errorf("EncodeURIComponent(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestObject_SetAndGet(t *testing.T) {
	o := Object{}
	o = o.Set("a", String("1"))
	o = o.Set("b", String("2"))
	o = o.Set("a", String("3"))

	if diff := cmp.Diff([]string{"a", "b"}, o.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if v, ok := o.Get("a"); !ok || v != String("3") {
		t.Errorf("Get(a) = %v, %v; want 3, true", v, ok)
	}
	if _, ok := o.Get("c"); ok {
		t.Error("Get(c) should return false for missing key")
	}
}
