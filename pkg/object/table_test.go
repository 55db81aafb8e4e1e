package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/pkg/object"
	"github.com/wisplang/wisp/pkg/value"
)

func TestTableSetGetDelete(t *testing.T) {
	h := object.NewHeap(object.DefaultGrowFactor)
	tbl := object.NewTable()
	key := h.InternString("x")

	isNew := tbl.Set(key, value.Number(42))
	assert.True(t, isNew)

	v, ok := tbl.Get(key)
	require.True(t, ok)
	assert.Equal(t, float64(42), v.AsNumber())

	isNew = tbl.Set(key, value.Number(43))
	assert.False(t, isNew, "overwriting an existing key is not a new entry")

	ok = tbl.Delete(key)
	assert.True(t, ok)
	_, ok = tbl.Get(key)
	assert.False(t, ok)
}

func TestTableGrowsPastLoadFactor(t *testing.T) {
	h := object.NewHeap(object.DefaultGrowFactor)
	tbl := object.NewTable()
	for i := 0; i < 200; i++ {
		key := h.InternString(string(rune('a' + i%26)) + string(rune('0'+i/26)))
		tbl.Set(key, value.Number(float64(i)))
	}
	for i := 0; i < 200; i++ {
		key := h.InternString(string(rune('a' + i%26)) + string(rune('0'+i/26)))
		v, ok := tbl.Get(key)
		require.True(t, ok)
		assert.Equal(t, float64(i), v.AsNumber())
	}
}
