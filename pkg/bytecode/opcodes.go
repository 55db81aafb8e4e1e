// Package bytecode defines the Chunk container and the instruction set
// executed by pkg/vm.
package bytecode

// Op is a single VM instruction. Every opcode is one byte; operand widths
// are documented per case.
type Op byte

const (
	// Stack
	OpConstant Op = iota // CONSTANT[idx]
	OpNil                // NIL
	OpTrue               // TRUE
	OpFalse              // FALSE
	OpPop                // POP
	OpDup                // DUP: push a copy of the top of the stack

	// Variables
	OpGetLocal     // GET_LOCAL[slot]
	OpSetLocal     // SET_LOCAL[slot]
	OpGetGlobal    // GET_GLOBAL[name]
	OpDefineGlobal // DEFINE_GLOBAL[name]
	OpSetGlobal    // SET_GLOBAL[name]
	OpGetUpvalue   // GET_UPVALUE[slot]
	OpSetUpvalue   // SET_UPVALUE[slot]

	// Properties
	OpGetProperty // GET_PROPERTY[name]
	OpSetProperty // SET_PROPERTY[name]
	OpGetSuper    // GET_SUPER[name]

	// Arithmetic / logic
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpIntDivide
	OpPow
	OpNot
	OpNegate

	// Control
	OpPrint
	OpJump        // JUMP[16]
	OpJumpIfFalse // JUMP_IF_FALSE[16]
	OpLoop        // LOOP[16] (backward)

	// Calls / closures
	OpCall       // CALL[n]
	OpInvoke     // INVOKE[name, n]
	OpSuperInvoke // SUPER_INVOKE[name, n]
	OpClosure    // CLOSURE[fn_idx, then 2*upvalues bytes]
	OpCloseUpvalue
	OpReturn

	// Classes
	OpClass   // CLASS[name]
	OpInherit // INHERIT
	OpMethod  // METHOD[name]
)

var opNames = map[Op]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpDup:          "OP_DUP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpGetProperty:  "OP_GET_PROPERTY",
	OpSetProperty:  "OP_SET_PROPERTY",
	OpGetSuper:     "OP_GET_SUPER",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpIntDivide:    "OP_INT_DIVIDE",
	OpPow:          "OP_POW",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpInvoke:       "OP_INVOKE",
	OpSuperInvoke:  "OP_SUPER_INVOKE",
	OpClosure:      "OP_CLOSURE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn:       "OP_RETURN",
	OpClass:        "OP_CLASS",
	OpInherit:      "OP_INHERIT",
	OpMethod:       "OP_METHOD",
}

// String returns the opcode's mnemonic, used by the disassembler.
func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "OP_UNKNOWN"
}
