package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wisplang/wisp/pkg/object"
	"github.com/wisplang/wisp/pkg/value"
)

func TestInternStringReturnsIdenticalObjectForEqualBytes(t *testing.T) {
	h := object.NewHeap(object.DefaultGrowFactor)
	a := h.InternString("same")
	b := h.InternString("same")
	assert.Same(t, a, b)
}

func TestInternStringDistinguishesDifferentBytes(t *testing.T) {
	h := object.NewHeap(object.DefaultGrowFactor)
	a := h.InternString("foo")
	b := h.InternString("bar")
	assert.NotSame(t, a, b)
}

func TestCollectSweepsUnreachableObjects(t *testing.T) {
	h := object.NewHeap(object.DefaultGrowFactor)
	root := h.InternString("kept")
	unrooted := h.InternString("also-unreachable-until-collected")

	h.Collect(func(mark func(value.Value)) {
		mark(value.FromObj(root))
	})

	// the root string must survive a collection even though it's only
	// reachable through markRoots, not the (weakly-swept) intern table.
	again := h.InternString("kept")
	assert.Same(t, root, again)

	// the unrooted string was swept from the intern table, so interning the
	// same bytes again allocates a fresh object.
	assert.NotSame(t, unrooted, h.InternString("also-unreachable-until-collected"))
}
