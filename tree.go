package incremental

import (
	"fmt"
	"reflect"

	gyaml "github.com/goccy/go-yaml"
)

// Shape is the structural class of a tree value.
type Shape int

const (
	// ScalarShape is any leaf value. The engine never looks inside scalars.
	ScalarShape Shape = iota
	// MapShape is a map[string]interface{} or an ordered gyaml.MapSlice.
	MapShape
	// SequenceShape is a []interface{}.
	SequenceShape
)

func (s Shape) String() string {
	switch s {
	case MapShape:
		return "map"
	case SequenceShape:
		return "sequence"
	default:
		return "scalar"
	}
}

// ShapeOf classifies v.
func ShapeOf(v interface{}) Shape {
	switch v.(type) {
	case map[string]interface{}, gyaml.MapSlice:
		return MapShape
	case []interface{}:
		return SequenceShape
	default:
		return ScalarShape
	}
}

// Clone returns a deep structural copy of v. Maps and sequences are copied
// recursively (MapSlice keeps its key order); scalars are shared as-is.
func Clone(v interface{}) interface{} {
	switch tv := v.(type) {
	case map[string]interface{}:
		return cloneMap(tv)
	case gyaml.MapSlice:
		return cloneMapSlice(tv)
	case []interface{}:
		return cloneSlice(tv)
	default:
		return tv
	}
}

func cloneMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = Clone(v)
	}
	return out
}

func cloneMapSlice(ms gyaml.MapSlice) gyaml.MapSlice {
	out := make(gyaml.MapSlice, 0, len(ms))
	for _, it := range ms {
		out = append(out, gyaml.MapItem{Key: it.Key, Value: Clone(it.Value)})
	}
	return out
}

func cloneSlice(in []interface{}) []interface{} {
	if in == nil {
		return nil
	}
	out := make([]interface{}, len(in))
	for i, e := range in {
		out[i] = Clone(e)
	}
	return out
}

// Equal reports whether a and b are structurally equal. Map key order is
// ignored, so a MapSlice equals a plain map holding the same entries.
func Equal(a, b interface{}) bool {
	sa, sb := ShapeOf(a), ShapeOf(b)
	if sa != sb {
		return false
	}
	switch sa {
	case MapShape:
		ka, kb := mapKeys(a), mapKeys(b)
		if len(ka) != len(kb) {
			return false
		}
		for _, k := range ka {
			bv, ok := mapGet(b, k)
			if !ok {
				return false
			}
			av, _ := mapGet(a, k)
			if !Equal(av, bv) {
				return false
			}
		}
		return true
	case SequenceShape:
		as, bs := a.([]interface{}), b.([]interface{})
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

// --------------------------------------------------------------------------------------
// map accessors (map[string]interface{} and gyaml.MapSlice)
// --------------------------------------------------------------------------------------

func keyEquals(k interface{}, want string) bool {
	switch vv := k.(type) {
	case string:
		return vv == want
	case fmt.Stringer:
		return vv.String() == want
	default:
		return fmt.Sprint(vv) == want
	}
}

func keyString(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

func mapGet(m interface{}, key string) (interface{}, bool) {
	switch tm := m.(type) {
	case map[string]interface{}:
		v, ok := tm[key]
		return v, ok
	case gyaml.MapSlice:
		for _, it := range tm {
			if keyEquals(it.Key, key) {
				return it.Value, true
			}
		}
	}
	return nil, false
}

// mapSet stores key=v and returns the (possibly reallocated) map.
func mapSet(m interface{}, key string, v interface{}) interface{} {
	switch tm := m.(type) {
	case map[string]interface{}:
		tm[key] = v
		return tm
	case gyaml.MapSlice:
		for i := range tm {
			if keyEquals(tm[i].Key, key) {
				tm[i].Value = v
				return tm
			}
		}
		return append(tm, gyaml.MapItem{Key: key, Value: v})
	}
	return m
}

// mapDelete removes key if present and returns the resulting map.
func mapDelete(m interface{}, key string) (interface{}, bool) {
	switch tm := m.(type) {
	case map[string]interface{}:
		if _, ok := tm[key]; !ok {
			return tm, false
		}
		delete(tm, key)
		return tm, true
	case gyaml.MapSlice:
		for i := range tm {
			if keyEquals(tm[i].Key, key) {
				return append(tm[:i:i], tm[i+1:]...), true
			}
		}
		return tm, false
	}
	return m, false
}

func mapKeys(m interface{}) []string {
	switch tm := m.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(tm))
		for k := range tm {
			keys = append(keys, k)
		}
		return keys
	case gyaml.MapSlice:
		keys := make([]string, 0, len(tm))
		for _, it := range tm {
			keys = append(keys, keyString(it.Key))
		}
		return keys
	}
	return nil
}

// --------------------------------------------------------------------------------------
// container write-back
// --------------------------------------------------------------------------------------

// childGet reads one plain step from a container without any coercion
// errors; it is used for write-back along an already-resolved path.
func childGet(container interface{}, step pathStep) (interface{}, bool) {
	if step.isIndex {
		s, ok := container.([]interface{})
		if !ok || step.index < 0 || step.index >= len(s) {
			return nil, false
		}
		return s[step.index], true
	}
	return mapGet(container, step.key)
}

// childSet writes v at one plain step and returns the container.
func childSet(container interface{}, step pathStep, v interface{}) interface{} {
	if step.isIndex {
		s := container.([]interface{})
		s[step.index] = v
		return s
	}
	return mapSet(container, step.key, v)
}

// setAt replaces the node reached by steps with v and returns the new root.
// Every step must exist; the walk only happens on trees owned by the engine.
func setAt(root interface{}, steps []pathStep, v interface{}) interface{} {
	if len(steps) == 0 {
		return v
	}
	child, _ := childGet(root, steps[0])
	return childSet(root, steps[0], setAt(child, steps[1:], v))
}
