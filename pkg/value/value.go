// Package value defines the tagged runtime value representation shared by
// the compiler, the object heap, and the VM.
package value

// Kind discriminates the four Value variants.
type Kind byte

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// ObjKind discriminates heap object payloads. Every Obj implementation
// reports one of these from Kind().
type ObjKind byte

const (
	ObjString ObjKind = iota
	ObjFunction
	ObjClosure
	ObjUpvalue
	ObjNative
	ObjClass
	ObjInstance
	ObjBoundMethod
	ObjNativeInstance
)

func (k ObjKind) String() string {
	switch k {
	case ObjString:
		return "string"
	case ObjFunction:
		return "function"
	case ObjClosure:
		return "closure"
	case ObjUpvalue:
		return "upvalue"
	case ObjNative:
		return "native"
	case ObjClass:
		return "class"
	case ObjInstance:
		return "instance"
	case ObjBoundMethod:
		return "bound method"
	case ObjNativeInstance:
		return "native instance"
	default:
		return "unknown"
	}
}

// Obj is the minimal interface every heap object implements: enough for the
// GC to walk the intrusive list and flip mark bits without knowing the
// concrete kind. Concrete kinds live in package object; this interface is
// here (not in package object) so that Value, a leaf type, need not import
// the heap package.
type Obj interface {
	Kind() ObjKind
	Marked() bool
	SetMarked(bool)
	Next() Obj
	SetNext(Obj)
}

// Value is a tagged union over {nil, bool, number, heap-object-ref}.
//
// nil, the two booleans, and every distinct number compare by value; object
// references compare by identity (Go pointer identity), except strings,
// where pointer equality is semantic value equality thanks to interning.
type Value struct {
	kind Kind
	num  float64
	b    bool
	obj  Obj
}

// Nil is the unit value.
var Nil = Value{kind: KindNil}

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number constructs a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// FromObj constructs a Value wrapping a heap object reference.
func FromObj(o Obj) Value { return Value{kind: KindObj, obj: o} }

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObj() bool    { return v.kind == KindObj }

func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload; callers must check IsBool first.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the numeric payload; callers must check IsNumber first.
func (v Value) AsNumber() float64 { return v.num }

// AsObj returns the object payload; callers must check IsObj first.
func (v Value) AsObj() Obj { return v.obj }

// ObjIs reports whether v holds an object of the given kind.
func (v Value) ObjIs(k ObjKind) bool {
	return v.kind == KindObj && v.obj.Kind() == k
}

// Falsey implements spec's falsey(v) <=> v = nil or v = false.
func (v Value) Falsey() bool {
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return !v.b
	default:
		return false
	}
}

// Truthy is the complement of Falsey.
func (v Value) Truthy() bool { return !v.Falsey() }

// Equal implements same-variant value equality for primitives and pointer
// equality for objects (which, for interned strings, coincides with byte
// equality).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindObj:
		return a.obj == b.obj
	default:
		return false
	}
}
