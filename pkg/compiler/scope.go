package compiler

import (
	"github.com/wisplang/wisp/pkg/bytecode"
	"github.com/wisplang/wisp/pkg/lexer"
)

func (c *Compiler) beginScope() { c.fs.scopeDepth++ }

// endScope pops every local declared at a depth greater than the new scope
// depth. A captured local gets exactly OP_CLOSE_UPVALUE (never also
// OP_POP); an uncaptured local gets exactly OP_POP.
func (c *Compiler) endScope() {
	c.fs.scopeDepth--
	fs := c.fs
	for len(fs.locals) > 0 && fs.locals[len(fs.locals)-1].depth > fs.scopeDepth {
		if fs.locals[len(fs.locals)-1].isCaptured {
			c.emitOp(bytecode.OpCloseUpvalue)
		} else {
			c.emitOp(bytecode.OpPop)
		}
		fs.locals = fs.locals[:len(fs.locals)-1]
	}
}

// declareVariable registers the identifier just consumed (c.prev) as a new
// local in the current scope, or does nothing at global scope (globals are
// resolved by name, not by slot).
func (c *Compiler) declareVariable() {
	if c.fs.scopeDepth == 0 {
		return
	}
	name := c.prev.Lexeme
	for i := len(c.fs.locals) - 1; i >= 0; i-- {
		l := c.fs.locals[i]
		if l.depth != -1 && l.depth < c.fs.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.fs.locals) >= maxLocals {
		c.error("Too many local variables.")
		return
	}
	c.fs.locals = append(c.fs.locals, local{name: name, depth: -1})
}

// parseVariable consumes an identifier and either declares it as a local
// (returning 0 — locals aren't referenced by constant index) or interns its
// name into the constant pool for a later DEFINE_GLOBAL.
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(lexer.TokenIdentifier, errMsg)
	c.declareVariable()
	if c.fs.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.prev.Lexeme)
}

// markInitialized marks the most recently declared local as usable,
// setting its depth to the current scope depth. At global scope (used
// when declaring a named function before compiling its body) there is no
// local to mark.
func (c *Compiler) markInitialized() {
	if c.fs.scopeDepth == 0 {
		return
	}
	c.fs.locals[len(c.fs.locals)-1].depth = c.fs.scopeDepth
}

// defineVariable emits OP_DEFINE_GLOBAL at global scope; at local scope it
// just marks the local initialized (no opcode — the value is already on
// the stack at the local's slot).
func (c *Compiler) defineVariable(global byte) {
	if c.fs.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(bytecode.OpDefineGlobal, global)
}

// resolveLocal scans fs's locals from the top down for name (the first of
// the three-tier local/upvalue/global resolution order).
func resolveLocal(fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			return i
		}
	}
	return -1
}

// resolveLocalChecked is resolveLocal plus the "read before initialized"
// error, used from expression context (not from declareVariable's shadow
// check, which must see uninitialized locals).
func (c *Compiler) resolveLocalChecked(fs *funcState, name string) int {
	idx := resolveLocal(fs, name)
	if idx != -1 && fs.locals[idx].depth == -1 {
		c.error("Can't read local variable in its own initializer.")
	}
	return idx
}

// resolveUpvalue implements tier 2: recursively resolve name in the
// enclosing context; if found as a local there, mark it captured and
// register an upvalue; if found as an upvalue there, register one here
// pointing at that upvalue. Deduplicates by (isLocal, index).
func (c *Compiler) resolveUpvalue(fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if idx := c.resolveLocalChecked(fs.enclosing, name); idx != -1 {
		fs.enclosing.locals[idx].isCaptured = true
		return c.addUpvalue(fs, byte(idx), true)
	}
	if idx := c.resolveUpvalue(fs.enclosing, name); idx != -1 {
		return c.addUpvalue(fs, byte(idx), false)
	}
	return -1
}

func (c *Compiler) addUpvalue(fs *funcState, index byte, isLocal bool) int {
	for i, uv := range fs.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}
