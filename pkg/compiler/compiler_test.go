package compiler_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/pkg/compiler"
	"github.com/wisplang/wisp/pkg/object"
)

func compile(t *testing.T, source string) (*object.Function, error) {
	t.Helper()
	return compiler.New(object.NewHeap(object.DefaultGrowFactor)).Compile(source)
}

func TestCompilesSimpleExpression(t *testing.T) {
	fn, err := compile(t, "print 1 + 2 * 3;")
	require.NoError(t, err)
	require.NotNil(t, fn)
}

func TestTooManyLocalsIsCompileError(t *testing.T) {
	var b strings.Builder
	b.WriteString("fn f() {\n")
	for i := 0; i < 257; i++ {
		b.WriteString("let a")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(" = 0;\n")
	}
	b.WriteString("}\n")
	_, err := compile(t, b.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too many local variables.")
}

func TestTooManyConstantsIsCompileError(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 257; i++ {
		b.WriteString("print ")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(";\n")
	}
	_, err := compile(t, b.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too many constants in one chunk.")
}

func TestSelfInheritanceIsCompileError(t *testing.T) {
	_, err := compile(t, "class C : C {}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A class can't inherit from itself.")
}

func TestThisOutsideClassIsCompileError(t *testing.T) {
	_, err := compile(t, "print this;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'this' outside of a class.")
}

func TestSuperOutsideClassIsCompileError(t *testing.T) {
	_, err := compile(t, "fn f() { super.foo(); }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'super'")
}

func TestReturnValueFromInitializerIsCompileError(t *testing.T) {
	_, err := compile(t, "class A { init() { return 1; } }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't return a value from an initializer.")
}

func TestInvalidAssignmentTargetIsCompileError(t *testing.T) {
	_, err := compile(t, "1 + 2 = 3;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid assignment target.")
}

func TestStringLiteralInternsOncePerCompile(t *testing.T) {
	heap := object.NewHeap(object.DefaultGrowFactor)
	fn, err := compiler.New(heap).Compile(`print "same"; print "same";`)
	require.NoError(t, err)
	require.NotNil(t, fn)
	require.Len(t, fn.Chunk.Constants, 2)
	assert.Same(t, fn.Chunk.Constants[0].AsObj(), fn.Chunk.Constants[1].AsObj())
}

