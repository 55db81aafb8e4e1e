package object

import (
	"fmt"

	"github.com/wisplang/wisp/pkg/value"
)

// Class carries a name and a method table (String -> Closure, stored as
// plain Values wrapping *Closure).
type Class struct {
	Header
	Name    *String
	Methods *Table
}

func (*Class) Kind() value.ObjKind { return value.ObjClass }
func (c *Class) String() string    { return c.Name.Chars }

// NewClass allocates an empty class named name.
func NewClass(name *String) *Class {
	return &Class{Name: name, Methods: NewTable()}
}

// Instance is a class call's result: a class reference plus a mutable field
// table (String -> Value).
type Instance struct {
	Header
	Class  *Class
	Fields *Table
}

func (*Instance) Kind() value.ObjKind { return value.ObjInstance }
func (i *Instance) String() string    { return fmt.Sprintf("<%s instance>", i.Class.Name.Chars) }

// NewInstance allocates a field-less instance of class.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: NewTable()}
}

// BoundMethod pairs a receiver Value with a method Closure, produced on
// property read when the property name matches a method.
type BoundMethod struct {
	Header
	Receiver value.Value
	Method   *Closure
}

func (*BoundMethod) Kind() value.ObjKind { return value.ObjBoundMethod }
func (b *BoundMethod) String() string    { return b.Method.String() }
