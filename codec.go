package incremental

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	gyaml "github.com/goccy/go-yaml"
	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a JSON document into a tree. Objects become MapSlices
// with sorted keys, integers become int and other numbers float64.
func ParseJSON(data []byte) (interface{}, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return gyaml.MapSlice{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("incremental: invalid JSON: %w", err)
	}
	return jsonValueToOrdered(v), nil
}

func jsonValueToOrdered(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		return numberToScalar(t)
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, e := range t {
			out = append(out, jsonValueToOrdered(e))
		}
		return out
	case map[string]interface{}:
		// JSON objects carry no order; sort keys for a stable MapSlice.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ms := make(gyaml.MapSlice, 0, len(keys))
		for _, k := range keys {
			ms = append(ms, gyaml.MapItem{Key: k, Value: jsonValueToOrdered(t[k])})
		}
		return ms
	default:
		return t
	}
}

func numberToScalar(n json.Number) interface{} {
	if !strings.ContainsAny(string(n), ".eE") {
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	f, _ := n.Float64()
	return f
}

// ParseYAML decodes a YAML document into a tree, keeping mapping key order.
// Empty input yields an empty map.
func ParseYAML(data []byte) (interface{}, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return gyaml.MapSlice{}, nil
	}
	var v interface{}
	if err := gyaml.UnmarshalWithOptions(data, &v, gyaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("incremental: failed to parse YAML: %w", err)
	}
	return normalizeYAMLValue(v), nil
}

// normalizeYAMLValue maps the decoder's integer types onto int and any
// unordered maps onto MapSlice.
func normalizeYAMLValue(v interface{}) interface{} {
	switch t := v.(type) {
	case uint64:
		if t <= math.MaxInt64 {
			return int(t)
		}
		return t
	case int64:
		return int(t)
	case gyaml.MapSlice:
		out := make(gyaml.MapSlice, 0, len(t))
		for _, it := range t {
			out = append(out, gyaml.MapItem{Key: keyString(it.Key), Value: normalizeYAMLValue(it.Value)})
		}
		return out
	case map[string]interface{}:
		return normalizeYAMLValue(jsonValueToOrdered(t))
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeYAMLValue(e)
		}
		return out
	default:
		return t
	}
}

// MarshalYAML encodes a tree as block YAML with a two-space indent. MapSlice
// key order is kept; plain maps are written with sorted keys.
func MarshalYAML(tree interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(orderedToYAMLNode(tree)); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("incremental: cannot encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("incremental: cannot encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func orderedToYAMLNode(v interface{}) *yaml.Node {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(t)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(t, 10)}
	case uint64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(t, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(t, 'g', -1, 64)}
	case json.Number:
		return orderedToYAMLNode(numberToScalar(t))
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}
	case []interface{}:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if len(t) == 0 {
			seq.Style = yaml.FlowStyle
		}
		for _, e := range t {
			seq.Content = append(seq.Content, orderedToYAMLNode(e))
		}
		return seq
	case gyaml.MapSlice:
		mp := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if len(t) == 0 {
			mp.Style = yaml.FlowStyle
		}
		for _, it := range t {
			mp.Content = append(mp.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: keyString(it.Key)},
				orderedToYAMLNode(it.Value),
			)
		}
		return mp
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		mp := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if len(t) == 0 {
			mp.Style = yaml.FlowStyle
		}
		for _, k := range keys {
			mp.Content = append(mp.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				orderedToYAMLNode(t[k]),
			)
		}
		return mp
	default:
		// best-effort string
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(t)}
	}
}

// MarshalJSON encodes a tree as compact JSON, keeping MapSlice key order.
// Plain maps are written with sorted keys.
func MarshalJSON(tree interface{}) ([]byte, error) {
	b, err := gyaml.MarshalWithOptions(tree, gyaml.JSON())
	if err != nil {
		return nil, fmt.Errorf("incremental: cannot encode JSON: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return nil, fmt.Errorf("incremental: cannot encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}
