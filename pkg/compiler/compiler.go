// Package compiler implements a single-pass Pratt parser that lexes,
// parses, resolves scopes, and emits bytecode directly, with no
// intermediate AST. It is the hardest subsystem in the repository.
package compiler

import (
	"fmt"

	"github.com/wisplang/wisp/internal/diag"
	"github.com/wisplang/wisp/pkg/bytecode"
	"github.com/wisplang/wisp/pkg/lexer"
	"github.com/wisplang/wisp/pkg/object"
	"github.com/wisplang/wisp/pkg/value"
)

// funcKind tags what kind of callable a funcState is compiling.
type funcKind int

const (
	kindScript funcKind = iota
	kindFunction
	kindMethod
	kindInitializer
	kindLambda
)

// maxLocals / maxUpvalues bound how many locals/upvalues a single function
// may declare.
const (
	maxLocals   = 256
	maxUpvalues = 256
)

type local struct {
	name       string
	depth      int // -1 means declared but not yet initialized
	isCaptured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// funcState is one compile context: one per function currently being
// compiled, linked parent -> child via enclosing. It owns the Function
// object under construction, its locals, its upvalues, and its scope depth.
type funcState struct {
	enclosing *funcState
	function  *object.Function
	kind      funcKind

	locals     []local
	scopeDepth int
	upvalues   []upvalueRef
}

// classState is the optional class-compile-context stack entry for nested
// class declarations.
type classState struct {
	enclosing      *classState
	hasSuperclass  bool
}

// Compiler drives the Pratt parser. One Compiler compiles one top-level
// script; nested functions/methods/lambdas push and pop funcState frames
// on fs as they're entered and finished.
type Compiler struct {
	heap *object.Heap

	lex     *lexer.Lexer
	current lexer.Token
	prev    lexer.Token

	hadError  bool
	panicMode bool
	errs      []string

	fs  *funcState
	cls *classState
}

// New returns a Compiler that allocates heap objects (Strings, Functions)
// through heap.
func New(heap *object.Heap) *Compiler {
	return &Compiler{heap: heap}
}

// Compile compiles source into a top-level script Function with arity 0.
// On failure it returns a nil Function and a *diag.CompileError listing
// every accumulated diagnostic.
func (c *Compiler) Compile(source string) (*object.Function, error) {
	c.lex = lexer.New(source)
	c.hadError = false
	c.panicMode = false
	c.errs = nil

	c.fs = newFuncState(nil, kindScript, c.heap)
	c.cls = nil

	c.advance()
	for !c.match(lexer.TokenEOF) {
		c.declaration()
	}
	fn := c.endFunction()

	if c.hadError {
		return nil, &diag.CompileError{Messages: c.errs}
	}
	return fn, nil
}

func newFuncState(enclosing *funcState, kind funcKind, heap *object.Heap) *funcState {
	fs := &funcState{
		enclosing: enclosing,
		function:  object.NewFunction(),
		kind:      kind,
	}
	heap.Allocate(fs.function)
	// Slot 0 of every function is a reserved synthetic local: empty name
	// for plain functions, holds `this` for methods/initializers.
	name := ""
	if kind == kindMethod || kind == kindInitializer {
		name = "this"
	}
	fs.locals = append(fs.locals, local{name: name, depth: 0})
	return fs
}

// current chunk being emitted into.
func (c *Compiler) chunk() *bytecode.Chunk { return c.fs.function.Chunk }

// ---- token stream plumbing ----

func (c *Compiler) advance() {
	c.prev = c.current
	for {
		c.current = c.lex.ScanToken()
		if c.current.Type != lexer.TokenError {
			break
		}
		c.errorAtCurrent(c.current.Message)
	}
}

func (c *Compiler) check(t lexer.TokenType) bool { return c.current.Type == t }

func (c *Compiler) match(t lexer.TokenType) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t lexer.TokenType, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.prev, msg) }

func (c *Compiler) errorAt(tok lexer.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	var where string
	switch tok.Type {
	case lexer.TokenEOF:
		where = "end"
	case lexer.TokenError:
		where = ""
	default:
		where = "'" + tok.Lexeme + "'"
	}
	var line string
	if where == "" {
		line = fmt.Sprintf("[line %d] Error: %s", tok.Line, msg)
	} else {
		line = fmt.Sprintf("[line %d] Error at %s: %s", tok.Line, where, msg)
	}
	c.errs = append(c.errs, line)
	c.hadError = true
}

// synchronize skips tokens after a parse error until a plausible statement
// boundary.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != lexer.TokenEOF {
		if c.prev.Type == lexer.TokenSemicolon {
			return
		}
		switch c.current.Type {
		case lexer.TokenClass, lexer.TokenFn, lexer.TokenLet, lexer.TokenFor,
			lexer.TokenIf, lexer.TokenWhile, lexer.TokenPrint, lexer.TokenReturn:
			return
		}
		c.advance()
	}
}

// ---- emit helpers ----

func (c *Compiler) emitByte(b byte) { c.chunk().Write(b, c.prev.Line) }
func (c *Compiler) emitOp(op bytecode.Op) { c.emitByte(byte(op)) }

func (c *Compiler) emitOpByte(op bytecode.Op, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.OpLoop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitByte(byte((offset >> 8) & 0xff))
	c.emitByte(byte(offset & 0xff))
}

// emitJump writes a jump opcode with a placeholder 16-bit operand and
// returns the operand's offset for later PatchJump.
func (c *Compiler) emitJump(op bytecode.Op) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	c.chunk().Code[offset] = byte((jump >> 8) & 0xff)
	c.chunk().Code[offset+1] = byte(jump & 0xff)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(bytecode.OpConstant, c.makeConstant(v))
}

func (c *Compiler) makeConstant(v value.Value) byte {
	idx := c.chunk().AddConstant(v)
	if idx > 255 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(value.FromObj(c.heap.InternString(name)))
}

// emitReturn emits the implicit trailing return: initializers return
// `this` (slot 0); everything else returns nil.
func (c *Compiler) emitReturn() {
	if c.fs.kind == kindInitializer {
		c.emitOpByte(bytecode.OpGetLocal, 0)
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.emitOp(bytecode.OpReturn)
}

// endFunction finalizes the current funcState, emits its implicit return,
// and pops back to the enclosing context, returning the finished Function.
func (c *Compiler) endFunction() *object.Function {
	c.emitReturn()
	fn := c.fs.function
	fn.UpvalCount = len(c.fs.upvalues)
	c.fs = c.fs.enclosing
	return fn
}
