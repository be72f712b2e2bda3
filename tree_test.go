package incremental

import (
	"testing"

	gyaml "github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
)

func TestShapeOf(t *testing.T) {
	assert.Equal(t, MapShape, ShapeOf(obj{}))
	assert.Equal(t, MapShape, ShapeOf(gyaml.MapSlice{}))
	assert.Equal(t, SequenceShape, ShapeOf(arr{}))
	assert.Equal(t, ScalarShape, ShapeOf(nil))
	assert.Equal(t, ScalarShape, ShapeOf("x"))
	assert.Equal(t, ScalarShape, ShapeOf([]string{"typed slices are leaves"}))
	assert.Equal(t, "sequence", SequenceShape.String())
}

func TestCloneIsDeep(t *testing.T) {
	in := obj{
		"list":    arr{obj{"a": 1}, arr{2}},
		"ordered": gyaml.MapSlice{{Key: "k", Value: arr{3}}},
	}
	out := Clone(in).(obj)
	assert.Equal(t, in, out)

	out["list"].(arr)[0].(obj)["a"] = 100
	out["list"].(arr)[1].(arr)[0] = 200
	out["ordered"].(gyaml.MapSlice)[0].Value.(arr)[0] = 300

	assert.Equal(t, 1, in["list"].(arr)[0].(obj)["a"])
	assert.Equal(t, 2, in["list"].(arr)[1].(arr)[0])
	assert.Equal(t, 3, in["ordered"].(gyaml.MapSlice)[0].Value.(arr)[0])
}

func TestEqualIgnoresMapFlavourAndOrder(t *testing.T) {
	a := gyaml.MapSlice{{Key: "x", Value: 1}, {Key: "y", Value: arr{"z"}}}
	b := obj{"y": arr{"z"}, "x": 1}
	assert.True(t, Equal(a, b))
	assert.True(t, Equal(b, a))

	assert.False(t, Equal(a, obj{"x": 1}))
	assert.False(t, Equal(arr{1, 2}, arr{2, 1}))
	assert.False(t, Equal(obj{"x": 1}, obj{"x": int64(1)}))
	assert.False(t, Equal(obj{}, arr{}))
	assert.True(t, Equal(nil, nil))
}
