package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a JSON object into an Object, preserving key order.
// Booleans and nulls are rejected with ErrUnsupportedValueKind.
func ParseJSON(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse query: trailing data after object")
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("%w: query must be an object, got %s", ErrUnsupportedValueKind, v.Kind())
	}
	return obj, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("failed to parse query: %w", err)
				}
				key, _ := keyTok.(string)
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj = obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("failed to parse query: %w", err)
			}
			return obj, nil
		case '[':
			list := List{}
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("failed to parse query: %w", err)
			}
			return list, nil
		}
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("failed to parse query number %q: %w", t, err)
		}
		return Number(f), nil
	case bool:
		return nil, fmt.Errorf("%w: boolean", ErrUnsupportedValueKind)
	case nil:
		return nil, fmt.Errorf("%w: null", ErrUnsupportedValueKind)
	}
	return nil, fmt.Errorf("%w: unexpected token %v", ErrUnsupportedValueKind, tok)
}

// ParseYAML decodes a YAML mapping into an Object, preserving key order.
func ParseYAML(data []byte) (Object, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}
	if doc.Kind == 0 {
		return Object{}, nil
	}
	v, err := fromYAMLNode(&doc)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("%w: query must be a mapping, got %s", ErrUnsupportedValueKind, v.Kind())
	}
	return obj, nil
}

func fromYAMLNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Object{}, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		obj := make(Object, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj = obj.Set(n.Content[i].Value, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		list := make(List, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		return list, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int", "!!float":
			f, err := strconv.ParseFloat(n.Value, 64)
			if err != nil {
				// YAML ints such as 0x1F or 1_000 fall back to their literal text
				return String(n.Value), nil
			}
			return Number(f), nil
		case "!!bool", "!!null":
			return nil, fmt.Errorf("%w: %s at line %d", ErrUnsupportedValueKind, n.ShortTag(), n.Line)
		default:
			return String(n.Value), nil
		}
	}
	return nil, fmt.Errorf("%w: yaml node kind %d", ErrUnsupportedValueKind, n.Kind)
}

// FromMap converts a generic map into an Object. Because Go maps are
// unordered, keys are sorted at every level.
func FromMap(m map[string]any) (Object, error) {
	v, err := FromAny(m)
	if err != nil {
		return nil, err
	}
	return v.(Object), nil
}

// FromAny converts a Go value into a query Value. It accepts strings,
// numeric types, json.Number, slices, maps with string keys and Values.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case int:
		return Number(x), nil
	case int32:
		return Number(x), nil
	case int64:
		return Number(x), nil
	case uint:
		return Number(x), nil
	case uint32:
		return Number(x), nil
	case uint64:
		return Number(x), nil
	case float32:
		return Number(x), nil
	case float64:
		return Number(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValueKind, err)
		}
		return Number(f), nil
	case []string:
		return Strings(x...), nil
	case []any:
		list := make(List, 0, len(x))
		for _, item := range x {
			val, err := FromAny(item)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		return list, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := make(Object, 0, len(keys))
		for _, k := range keys {
			val, err := FromAny(x[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			obj = append(obj, Field{Key: k, Value: val})
		}
		return obj, nil
	case nil:
		return nil, fmt.Errorf("%w: null", ErrUnsupportedValueKind)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValueKind, v)
	}
}
