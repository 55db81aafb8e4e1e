package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/pkg/object"
	"github.com/wisplang/wisp/pkg/value"
)

func TestMapEntriesAllocatesItsListsOnTheHeap(t *testing.T) {
	h := object.NewHeap(object.DefaultGrowFactor)
	m := object.NewMap()
	h.Allocate(m)

	_, err := m.Call(h, "set", []value.Value{value.Number(1), value.Number(2)})
	require.NoError(t, err)

	before := h.BytesAllocated()
	result, err := m.Call(h, "entries", nil)
	require.NoError(t, err)
	assert.Greater(t, h.BytesAllocated(), before, "entries() must route its new Lists through Allocate")

	out, ok := result.AsObj().(*object.NativeInstance)
	require.True(t, ok)
	elems := out.Elements()
	require.Len(t, elems, 1)

	pair, ok := elems[0].AsObj().(*object.NativeInstance)
	require.True(t, ok)
	pairElems := pair.Elements()
	require.Len(t, pairElems, 2)
	assert.Equal(t, float64(1), pairElems[0].AsNumber())
	assert.Equal(t, float64(2), pairElems[1].AsNumber())

	// nothing roots m, out, or pair: a collection must be able to sweep all
	// three, which only happens if entries()'s Lists were actually tracked
	// by the heap instead of leaking outside Allocate's intrusive list.
	h.Collect(func(mark func(value.Value)) {})
	assert.Zero(t, h.BytesAllocated())
}

func TestMapEntriesOnEmptyMapReturnsEmptyList(t *testing.T) {
	h := object.NewHeap(object.DefaultGrowFactor)
	m := object.NewMap()
	h.Allocate(m)

	result, err := m.Call(h, "entries", nil)
	require.NoError(t, err)

	out, ok := result.AsObj().(*object.NativeInstance)
	require.True(t, ok)
	assert.Empty(t, out.Elements())
}
