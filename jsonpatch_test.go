package incremental

import (
	"encoding/json"
	"errors"
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchReproducesCurrent(t *testing.T) {
	l := newLog(t, obj{
		"list": arr{1, 2},
		"obj":  obj{"a": 1},
		"keep": "x",
	})
	require.NoError(t, l.Append("list", 3))
	require.NoError(t, l.Add("obj.b", obj{"deep": arr{true}}))
	require.NoError(t, l.Replace("obj.a", 10))
	require.NoError(t, l.Delete("keep"))
	require.NoError(t, l.Delete("missing"))
	require.NoError(t, l.AddOrReplace("list[0]", 0))
	require.NoError(t, l.AddOrReplace("list[9]", 9))
	require.NoError(t, l.Add("list", 4))
	require.NoError(t, l.Delete("list[1]"))
	require.NoError(t, l.AddOrReplace("obj.a", 11))

	patch, err := l.Patch()
	require.NoError(t, err)
	assert.Len(t, patch, 9, "the no-op delete is not rendered")

	doc, err := MarshalJSON(l.Initial())
	require.NoError(t, err)
	patched, err := patch.Apply(doc)
	require.NoError(t, err)

	cur, err := MarshalJSON(mustCurrent(t, l))
	require.NoError(t, err)
	assert.True(t, jsonpatch.Equal(cur, patched), "patched=%s current=%s", patched, cur)
}

func TestPatchJSONRendersConcretePointers(t *testing.T) {
	l := newLog(t, obj{"first": arr{obj{}}, "array": arr{1}})
	require.NoError(t, l.Add("first[0].second", 42))
	require.NoError(t, l.Append("array", 2))
	require.NoError(t, l.Delete("array[0]"))

	b, err := l.PatchJSON()
	require.NoError(t, err)

	var ops []map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &ops))
	require.Len(t, ops, 3)
	assert.Equal(t, map[string]interface{}{"op": "add", "path": "/first/0/second", "value": float64(42)}, ops[0])
	assert.Equal(t, map[string]interface{}{"op": "add", "path": "/array/-", "value": float64(2)}, ops[1])
	assert.Equal(t, map[string]interface{}{"op": "remove", "path": "/array/0"}, ops[2])
}

func TestPatchJSONEscapesKeys(t *testing.T) {
	l := newLog(t, obj{}, WithGrammar(SegmentGrammar{}))
	require.NoError(t, l.QueuePath(KindAdd, MustSegments("a/b~c"), 1))

	b, err := l.PatchJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"op":"add","path":"/a~1b~0c","value":1}]`, string(b))
}

func TestPatchFailsWithReplayError(t *testing.T) {
	l := newLog(t, nil)
	require.NoError(t, l.Replace("missing", 1))
	_, err := l.Patch()
	var re *ReplayError
	require.True(t, errors.As(err, &re))
}

func TestQueueJSONPatch(t *testing.T) {
	l := newLog(t, obj{
		"first": arr{obj{}},
		"list":  arr{},
		"name":  "old",
		"gone":  1,
		"a/b":   1,
	})
	err := l.QueueJSONPatch([]byte(`[
		{"op":"add","path":"/first/0/second","value":42},
		{"op":"add","path":"/list/-","value":{"k":"v"}},
		{"op":"replace","path":"/name","value":"new"},
		{"op":"remove","path":"/gone"},
		{"op":"replace","path":"/a~1b","value":2.5}
	]`))
	require.NoError(t, err)

	actions := l.Actions()
	require.Len(t, actions, 5)
	assert.Equal(t, KindAdd, actions[0].Kind)
	assert.Equal(t, Path{KeyToken("first"), KeyToken("0"), KeyToken("second")}, actions[0].Path)
	assert.Equal(t, KindAppend, actions[1].Kind)
	assert.Equal(t, Path{KeyToken("list")}, actions[1].Path)
	assert.Equal(t, KindReplace, actions[2].Kind)
	assert.Equal(t, KindDelete, actions[3].Kind)
	assert.Nil(t, actions[3].Value)

	cur := mustCurrent(t, l)
	want := obj{
		"first": arr{obj{"second": 42}},
		"list":  arr{obj{"k": "v"}},
		"name":  "new",
		"a/b":   2.5,
	}
	assert.True(t, Equal(want, cur), "got %#v", cur)
}

func TestQueueJSONPatchIsAllOrNothing(t *testing.T) {
	l := newLog(t, obj{"a": 1})

	err := l.QueueJSONPatch([]byte(`[{"op":"remove","path":"/a"},{"op":"move","from":"/a","path":"/b"}]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedKind))
	assert.Equal(t, 0, l.Len())

	err = l.QueueJSONPatch([]byte(`[{"op":"replace","path":"/a/-","value":1}]`))
	require.Error(t, err)

	err = l.QueueJSONPatch([]byte(`[{"op":"add","path":"","value":1}]`))
	require.Error(t, err)

	err = l.QueueJSONPatch([]byte(`[{"op":"add","path":"a","value":1}]`))
	require.Error(t, err)

	err = l.QueueJSONPatch([]byte(`[{"op":"add","path":"/b"}]`))
	require.Error(t, err)

	err = l.QueueJSONPatch([]byte(`[]`))
	require.Error(t, err)

	err = l.QueueJSONPatch([]byte(`[{"op":"add","path":"/b","value":1,"extra":true}]`))
	require.Error(t, err)

	assert.Equal(t, 0, l.Len())
}
