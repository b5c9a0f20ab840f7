package codegen

import "github.com/llir/llvm/ir/value"

// SymbolKind says what a name bound during code generation refers to.
type SymbolKind string

const (
	SymConst SymbolKind = "const"
	SymVar   SymbolKind = "var"
	SymFunc  SymbolKind = "func"
)

// Symbol is what the scoped symbol table holds during lowering. For SymConst and
// SymVar, Value is the pointer returned by the alloca (or the global) backing the
// binding — reading it always goes through a load. For SymFunc, Value is the
// function itself, used directly as a call target.
type Symbol struct {
	Kind  SymbolKind
	Value value.Value
}
