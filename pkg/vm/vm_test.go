package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/internal/config"
	"github.com/wisplang/wisp/pkg/vm"
)

// run interprets source against a fresh VM and returns what it wrote to
// stdout, asserting the interpret succeeded.
func run(t *testing.T, source string) string {
	t.Helper()
	var out bytes.Buffer
	machine := vm.New(config.Defaults())
	machine.Stdout = &out
	result, err := machine.Interpret(source)
	require.Equal(t, vm.InterpretOK, result, "interpret error: %v", err)
	return out.String()
}

// scenarios below are concrete end-to-end programs with known-good output.
func TestArithmeticPrecedence(t *testing.T) {
	assert.Equal(t, "7\n", run(t, "print 1 + 2 * 3;"))
}

func TestStringConcatenation(t *testing.T) {
	assert.Equal(t, "foobar\n", run(t, `let a = "foo"; let b = "bar"; print a + b;`))
}

func TestRecursiveFibonacci(t *testing.T) {
	src := `fn fib(n) { if (n < 2) return n; return fib(n-1) + fib(n-2); } print fib(10);`
	assert.Equal(t, "55\n", run(t, src))
}

func TestClosureCounterKeepsStateAcrossCalls(t *testing.T) {
	src := `
fn makeCounter() { let x = 0; fn inc() { x = x + 1; return x; } return inc; }
let c = makeCounter(); print c(); print c(); print c();
`
	assert.Equal(t, "1\n2\n3\n", run(t, src))
}

func TestInheritanceAndSuper(t *testing.T) {
	src := `
class A { greet() { print "A"; } }
class B : A { greet() { super.greet(); print "B"; } }
B().greet();
`
	assert.Equal(t, "A\nB\n", run(t, src))
}

func TestNativeList(t *testing.T) {
	src := `let xs = _List(); xs.push(10); xs.push(20); xs.set(0, 99); print xs.get(0); print xs.len();`
	assert.Equal(t, "99\n2\n", run(t, src))
}

// boundary behaviors

func TestStackOverflowAt64thFrame(t *testing.T) {
	src := `fn recurse() { return recurse(); } recurse();`
	var out bytes.Buffer
	machine := vm.New(config.Defaults())
	machine.Stdout = &out
	result, err := machine.Interpret(src)
	assert.Equal(t, vm.InterpretRuntimeError, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Stack overflow.")
}

func TestUndefinedPropertyIsRuntimeError(t *testing.T) {
	src := `class A {} A().missing();`
	var out bytes.Buffer
	machine := vm.New(config.Defaults())
	machine.Stdout = &out
	result, err := machine.Interpret(src)
	assert.Equal(t, vm.InterpretRuntimeError, result)
	assert.Contains(t, err.Error(), "Undefined property")
}

func TestWrongOperandTypeIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	machine := vm.New(config.Defaults())
	machine.Stdout = &out
	result, err := machine.Interpret(`print 1 + "x";`)
	assert.Equal(t, vm.InterpretRuntimeError, result)
	assert.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
}

func TestGlobalsPersistAcrossInterpretCalls(t *testing.T) {
	machine := vm.New(config.Defaults())
	var out bytes.Buffer
	machine.Stdout = &out

	result, err := machine.Interpret(`let x = 10;`)
	require.Equal(t, vm.InterpretOK, result, "%v", err)
	result, err = machine.Interpret(`print x + 1;`)
	require.Equal(t, vm.InterpretOK, result, "%v", err)
	assert.Equal(t, "11\n", out.String())
}

func TestCompoundAssignmentOnLocalAndProperty(t *testing.T) {
	src := `
class Box { init() { this.n = 1; } }
let b = Box();
b.n += 9;
let x = 2;
x **= 3;
print b.n;
print x;
`
	assert.Equal(t, "10\n8\n", run(t, src))
}

func TestLambdaExpression(t *testing.T) {
	src := `let add = fn(a, b) { return a + b; }; print add(3, 4);`
	assert.Equal(t, "7\n", run(t, src))
}

func TestNativeMap(t *testing.T) {
	src := `let m = _Map(); m.set("k", 1); print m.get("k"); print m.has("missing");`
	assert.Equal(t, "1\nfalse\n", run(t, src))
}

func TestIntDivideAndPow(t *testing.T) {
	assert.Equal(t, "2\n8\n", run(t, `print 7 // 3; print 2 ** 3;`))
}

func TestTypeNumberStringBoolNatives(t *testing.T) {
	var b strings.Builder
	b.WriteString(`print type(1); print type("s"); print type(true); `)
	b.WriteString(`print number("42") + 1; print string(1) + "x"; print bool(nil);`)
	assert.Equal(t, "number\nstring\nbool\n43\n1x\nfalse\n", run(t, b.String()))
}
