package compiler

import (
	"strconv"

	"github.com/wisplang/wisp/pkg/bytecode"
	"github.com/wisplang/wisp/pkg/lexer"
	"github.com/wisplang/wisp/pkg/value"
)

// precedence levels, low to high. POW sits above FACTOR and is parsed
// right-associatively.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * / //
	precPow                   // **
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type (
	prefixFn func(c *Compiler, canAssign bool)
	infixFn  func(c *Compiler, canAssign bool)
)

type parseRule struct {
	prefix     prefixFn
	infix      infixFn
	precedence precedence
}

var rules map[lexer.TokenType]parseRule

func init() {
	rules = map[lexer.TokenType]parseRule{
		lexer.TokenLeftParen:  {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
		lexer.TokenDot:        {infix: (*Compiler).dot, precedence: precCall},
		lexer.TokenMinus:      {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
		lexer.TokenPlus:       {infix: (*Compiler).binary, precedence: precTerm},
		lexer.TokenSlash:      {infix: (*Compiler).binary, precedence: precFactor},
		lexer.TokenSlashSlash: {infix: (*Compiler).binary, precedence: precFactor},
		lexer.TokenStar:       {infix: (*Compiler).binary, precedence: precFactor},
		lexer.TokenStarStar:   {infix: (*Compiler).binary, precedence: precPow},
		lexer.TokenBang:       {prefix: (*Compiler).unary},
		lexer.TokenBangEqual:    {infix: (*Compiler).binary, precedence: precEquality},
		lexer.TokenEqualEqual:   {infix: (*Compiler).binary, precedence: precEquality},
		lexer.TokenGreater:      {infix: (*Compiler).binary, precedence: precComparison},
		lexer.TokenGreaterEqual: {infix: (*Compiler).binary, precedence: precComparison},
		lexer.TokenLess:         {infix: (*Compiler).binary, precedence: precComparison},
		lexer.TokenLessEqual:    {infix: (*Compiler).binary, precedence: precComparison},
		lexer.TokenIdentifier: {prefix: (*Compiler).variable},
		lexer.TokenString:     {prefix: (*Compiler).string},
		lexer.TokenNumber:     {prefix: (*Compiler).number},
		lexer.TokenAnd:        {infix: (*Compiler).and, precedence: precAnd},
		lexer.TokenOr:         {infix: (*Compiler).or, precedence: precOr},
		lexer.TokenFalse:      {prefix: (*Compiler).literal},
		lexer.TokenTrue:       {prefix: (*Compiler).literal},
		lexer.TokenNil:        {prefix: (*Compiler).literal},
		lexer.TokenThis:       {prefix: (*Compiler).this},
		lexer.TokenSuper:      {prefix: (*Compiler).super},
		lexer.TokenFn:         {prefix: (*Compiler).lambda},
	}
}

func (c *Compiler) getRule(t lexer.TokenType) parseRule { return rules[t] }

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

// parsePrecedence is the Pratt algorithm's core loop.
func (c *Compiler) parsePrecedence(p precedence) {
	c.advance()
	prefixRule := c.getRule(c.prev.Type).prefix
	if prefixRule == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := p <= precAssignment
	prefixRule(c, canAssign)

	for p <= c.getRule(c.current.Type).precedence {
		c.advance()
		infixRule := c.getRule(c.prev.Type).infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(lexer.TokenEqual) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) number(canAssign bool) {
	n, _ := strconv.ParseFloat(c.prev.Lexeme, 64)
	c.emitConstant(value.Number(n))
}

func (c *Compiler) string(canAssign bool) {
	c.emitConstant(value.FromObj(c.heap.InternString(c.prev.Lexeme)))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.prev.Type {
	case lexer.TokenFalse:
		c.emitOp(bytecode.OpFalse)
	case lexer.TokenTrue:
		c.emitOp(bytecode.OpTrue)
	case lexer.TokenNil:
		c.emitOp(bytecode.OpNil)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(lexer.TokenRightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	op := c.prev.Type
	c.parsePrecedence(precUnary)
	switch op {
	case lexer.TokenBang:
		c.emitOp(bytecode.OpNot)
	case lexer.TokenMinus:
		c.emitOp(bytecode.OpNegate)
	}
}

// compoundAssignOps maps each compound-assignment token to the arithmetic
// opcode its GET/compute/SET lowering uses (documented in DESIGN.md), not a
// dedicated OP_*_SELF_* opcode family.
var compoundAssignOps = map[lexer.TokenType]bytecode.Op{
	lexer.TokenPlusEqual:       bytecode.OpAdd,
	lexer.TokenMinusEqual:      bytecode.OpSubtract,
	lexer.TokenStarEqual:       bytecode.OpMultiply,
	lexer.TokenSlashEqual:      bytecode.OpDivide,
	lexer.TokenStarStarEqual:   bytecode.OpPow,
	lexer.TokenSlashSlashEqual: bytecode.OpIntDivide,
}

// binary parses the right operand at one precedence level higher than the
// operator's own (left-associative), except POW, which recurs at its own
// precedence to achieve right-associativity.
func (c *Compiler) binary(canAssign bool) {
	op := c.prev.Type
	rule := c.getRule(op)
	if op == lexer.TokenStarStar {
		c.parsePrecedence(precPow)
	} else {
		c.parsePrecedence(rule.precedence + 1)
	}

	switch op {
	case lexer.TokenBangEqual:
		c.emitOp(bytecode.OpEqual)
		c.emitOp(bytecode.OpNot)
	case lexer.TokenEqualEqual:
		c.emitOp(bytecode.OpEqual)
	case lexer.TokenGreater:
		c.emitOp(bytecode.OpGreater)
	case lexer.TokenGreaterEqual:
		c.emitOp(bytecode.OpLess)
		c.emitOp(bytecode.OpNot)
	case lexer.TokenLess:
		c.emitOp(bytecode.OpLess)
	case lexer.TokenLessEqual:
		c.emitOp(bytecode.OpGreater)
		c.emitOp(bytecode.OpNot)
	case lexer.TokenPlus:
		c.emitOp(bytecode.OpAdd)
	case lexer.TokenMinus:
		c.emitOp(bytecode.OpSubtract)
	case lexer.TokenStar:
		c.emitOp(bytecode.OpMultiply)
	case lexer.TokenSlash:
		c.emitOp(bytecode.OpDivide)
	case lexer.TokenSlashSlash:
		c.emitOp(bytecode.OpIntDivide)
	case lexer.TokenStarStar:
		c.emitOp(bytecode.OpPow)
	}
}

func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	endJump := c.emitJump(bytecode.OpJump)
	c.patchJump(elseJump)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOpByte(bytecode.OpCall, argCount)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(lexer.TokenRightParen) {
		for {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.consume(lexer.TokenRightParen, "Expect ')' after arguments.")
	return byte(count)
}

// dot parses property access, and fuses a trailing call into OP_INVOKE.
func (c *Compiler) dot(canAssign bool) {
	c.consume(lexer.TokenIdentifier, "Expect property name after '.'.")
	name := c.identifierConstant(c.prev.Lexeme)

	switch {
	case canAssign && c.match(lexer.TokenEqual):
		c.expression()
		c.emitOpByte(bytecode.OpSetProperty, name)
	case canAssign && isCompoundAssign(c.current.Type):
		c.advance()
		op := compoundAssignOps[c.prev.Type]
		c.emitOp(bytecode.OpDup)
		c.emitOpByte(bytecode.OpGetProperty, name)
		c.expression()
		c.emitOp(op)
		c.emitOpByte(bytecode.OpSetProperty, name)
	case c.match(lexer.TokenLeftParen):
		argCount := c.argumentList()
		c.emitOpByte(bytecode.OpInvoke, name)
		c.emitByte(argCount)
	default:
		c.emitOpByte(bytecode.OpGetProperty, name)
	}
}

func isCompoundAssign(t lexer.TokenType) bool {
	_, ok := compoundAssignOps[t]
	return ok
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.prev, canAssign)
}

// namedVariable resolves tok's lexeme through the three-tier scope
// resolution (local, then upvalue, then global) and, when canAssign,
// handles `=` and the six compound-assignment operators.
func (c *Compiler) namedVariable(tok lexer.Token, canAssign bool) {
	var getOp, setOp bytecode.Op
	var arg byte

	if idx := c.resolveLocalChecked(c.fs, tok.Lexeme); idx != -1 {
		getOp, setOp, arg = bytecode.OpGetLocal, bytecode.OpSetLocal, byte(idx)
	} else if idx := c.resolveUpvalue(c.fs, tok.Lexeme); idx != -1 {
		getOp, setOp, arg = bytecode.OpGetUpvalue, bytecode.OpSetUpvalue, byte(idx)
	} else {
		arg = c.identifierConstant(tok.Lexeme)
		getOp, setOp = bytecode.OpGetGlobal, bytecode.OpSetGlobal
	}

	switch {
	case canAssign && c.match(lexer.TokenEqual):
		c.expression()
		c.emitOpByte(setOp, arg)
	case canAssign && isCompoundAssign(c.current.Type):
		c.advance()
		op := compoundAssignOps[c.prev.Type]
		c.emitOpByte(getOp, arg)
		c.expression()
		c.emitOp(op)
		c.emitOpByte(setOp, arg)
	default:
		c.emitOpByte(getOp, arg)
	}
}

func (c *Compiler) this(canAssign bool) {
	if c.cls == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super(canAssign bool) {
	if c.cls == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.cls.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}
	c.consume(lexer.TokenDot, "Expect '.' after 'super'.")
	c.consume(lexer.TokenIdentifier, "Expect superclass method name.")
	name := c.identifierConstant(c.prev.Lexeme)

	c.namedVariable(lexer.Token{Type: lexer.TokenIdentifier, Lexeme: "this"}, false)
	if c.match(lexer.TokenLeftParen) {
		argCount := c.argumentList()
		c.namedVariable(lexer.Token{Type: lexer.TokenIdentifier, Lexeme: "super"}, false)
		c.emitOpByte(bytecode.OpSuperInvoke, name)
		c.emitByte(argCount)
	} else {
		c.namedVariable(lexer.Token{Type: lexer.TokenIdentifier, Lexeme: "super"}, false)
		c.emitOpByte(bytecode.OpGetSuper, name)
	}
}

// lambda parses `fn (params) { body }` as an expression.
func (c *Compiler) lambda(canAssign bool) {
	c.functionBody(kindLambda, "")
}
