// Package query compiles declarative FHIR search expressions into URL query strings.
//
// A query is an ordered Object whose values are one of four closed kinds:
// String, Number, List and nested Object. Nested objects carry operators
// ($gt, $lt, $gte, $lte), modifiers ($exact, $missing, $null, $text, $asc,
// $desc), logical combinators ($and, $or), a chain type qualifier ($type) and
// chained parameters (any key that does not start with "$").
//
//	q := query.Object{
//	    {Key: "name", Value: query.Object{{Key: "$exact", Value: query.String("Smith")}}},
//	    {Key: "birthdate", Value: query.Object{{Key: "$gt", Value: query.String("1970")}}},
//	    {Key: "$sort", Value: query.List{query.String("birthdate")}},
//	}
//	s, err := query.Compile(q) // name:exact=Smith&birthdate=>1970&_sort=birthdate
//
// The top-level keys $sort and $include are directives rather than field
// constraints. Output order follows the insertion order of the Object, depth
// first. Compile is pure: it performs no I/O and holds no state.
//
// Objects can also be decoded from JSON (ParseJSON) or YAML (ParseYAML) with
// their key order intact, or built from a map (FromMap) with keys sorted.
package query
