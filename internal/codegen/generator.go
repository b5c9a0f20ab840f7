// Package codegen lowers a typed program to LLVM IR using github.com/llir/llvm's
// in-memory IR builder. It owns no external process or file handle; writing the
// resulting module to disk and invoking clang is the driver's job.
package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/dshills/corec/internal/symtab"
	"github.com/dshills/corec/internal/typedast"
)

// classInfo is the codegen-time registry entry for a declared class: its lowered
// struct type plus the field layout used to resolve constructors and field access
// by index rather than by name.
type classInfo struct {
	structType *types.StructType
	fields     []typedast.FieldDecl
}

// Generator lowers one typedast.Program into one ir.Module. Build a new Generator
// per compilation; it is not safe to reuse or share across programs.
type Generator struct {
	module  *ir.Module
	builder *ir.Block

	symbols *symtab.Table[Symbol]
	classes map[string]*classInfo

	funcStack []*ir.Func
}

// NewGenerator returns a Generator with a fresh, empty module.
func NewGenerator() *Generator {
	return &Generator{
		module:  ir.NewModule(),
		symbols: symtab.New[Symbol](),
		classes: make(map[string]*classInfo),
	}
}

// LowerProgram lowers every top-level item of prog into g's module, in four
// passes: classes (so parameter and return types can reference any class; a
// field type can only reference a class declared earlier), global constants,
// function and extern signatures (so forward and mutually recursive calls
// resolve), then function bodies.
func (g *Generator) LowerProgram(prog *typedast.Program) (*ir.Module, error) {
	for _, item := range prog.Items {
		if item.ClassDef != nil {
			if err := g.declareClass(item.ClassDef); err != nil {
				return nil, err
			}
		}
	}

	for _, item := range prog.Items {
		if item.ConstDef != nil {
			if err := g.declareGlobalConst(item.ConstDef); err != nil {
				return nil, err
			}
		}
	}

	for _, item := range prog.Items {
		switch {
		case item.FuncDef != nil:
			if err := g.declareFunction(item.FuncDef); err != nil {
				return nil, err
			}
		case item.ExternDef != nil:
			if err := g.declareExtern(item.ExternDef); err != nil {
				return nil, err
			}
		}
	}

	for _, item := range prog.Items {
		if item.FuncDef != nil {
			if err := g.generateFunction(item.FuncDef); err != nil {
				return nil, err
			}
		}
	}

	return g.module, nil
}

func (g *Generator) declareClass(def *typedast.ClassDef) error {
	if _, exists := g.classes[def.Name]; exists {
		return newErr(DuplicateSymbol, "class %q already declared", def.Name)
	}

	fieldTypes := make([]types.Type, len(def.Fields))
	for i, f := range def.Fields {
		t, err := g.lowerType(f.Type)
		if err != nil {
			return err
		}
		fieldTypes[i] = t
	}

	g.classes[def.Name] = &classInfo{
		structType: types.NewStruct(fieldTypes...),
		fields:     def.Fields,
	}
	return nil
}

func (g *Generator) declareGlobalConst(def *typedast.GlobalConstDef) error {
	ty, err := g.lowerType(def.Binding.Type)
	if err != nil {
		return err
	}

	init, err := g.lowerGlobalLiteral(def.Value, ty)
	if err != nil {
		return err
	}

	global := g.module.NewGlobalDef(def.Binding.Name, init)
	return g.symbols.Add(def.Binding.Name, Symbol{Kind: SymConst, Value: global})
}

func (g *Generator) lowerGlobalLiteral(lit typedast.Literal, ty types.Type) (constant.Constant, error) {
	switch lit.Kind {
	case typedast.LitBool:
		if lit.Bool {
			return constant.NewInt(types.I1, 1), nil
		}
		return constant.NewInt(types.I1, 0), nil
	case typedast.LitStr, typedast.LitCStr:
		return nil, newErr(UnsupportedType, "global %s constants are not yet supported", lit.Kind)
	default:
		intTy, ok := ty.(*types.IntType)
		if !ok {
			return nil, newErr(BadPtrGen, "global constant has non-integer type")
		}
		if lit.Ty.IsSigned() {
			return constant.NewInt(intTy, lit.Int), nil
		}
		return constant.NewInt(intTy, int64(lit.UInt)), nil
	}
}

func (g *Generator) declareFunction(def *typedast.FunctionDef) error {
	retTy, err := g.lowerType(def.ReturnType)
	if err != nil {
		return err
	}

	fn := g.module.NewFunc(def.Name, retTy)
	for _, p := range def.Params {
		pt, err := g.lowerType(p.Type)
		if err != nil {
			return err
		}
		fn.Params = append(fn.Params, ir.NewParam(p.Name, pt))
	}

	if err := g.symbols.Add(def.Name, Symbol{Kind: SymFunc, Value: fn}); err != nil {
		return wrapErr(DuplicateSymbol, err, "function "+def.Name)
	}
	return nil
}

func (g *Generator) declareExtern(def *typedast.ExternDef) error {
	retTy, err := g.lowerType(def.ReturnType)
	if err != nil {
		return err
	}

	fn := g.module.NewFunc(def.Name, retTy)
	for _, p := range def.Params {
		pt, err := g.lowerType(p.Type)
		if err != nil {
			return err
		}
		fn.Params = append(fn.Params, ir.NewParam(p.Name, pt))
	}

	if err := g.symbols.Add(def.Name, Symbol{Kind: SymFunc, Value: fn}); err != nil {
		return wrapErr(DuplicateSymbol, err, "extern "+def.Name)
	}
	return nil
}

func (g *Generator) generateFunction(def *typedast.FunctionDef) error {
	sym, ok := g.symbols.Get(def.Name)
	if !ok {
		return newErr(BadPtrGen, "function %q was not declared before generation", def.Name)
	}
	fn, ok := sym.Value.(*ir.Func)
	if !ok {
		return newErr(BadPtrGen, "symbol %q is not a function", def.Name)
	}

	entry := fn.NewBlock("entry")
	g.builder = entry
	g.funcStack = append(g.funcStack, fn)
	defer func() { g.funcStack = g.funcStack[:len(g.funcStack)-1] }()

	g.symbols.Push()
	defer g.symbols.Pop() //nolint:errcheck // the scope we just pushed is always poppable

	for i, p := range def.Params {
		alloca := g.builder.NewAlloca(fn.Params[i].Type())
		alloca.SetName(p.Name + ".addr")
		g.builder.NewStore(fn.Params[i], alloca)
		if err := g.symbols.Add(p.Name, Symbol{Kind: SymConst, Value: alloca}); err != nil {
			return wrapErr(DuplicateSymbol, err, "parameter "+p.Name)
		}
	}

	terminated, err := g.lowerBlockInline(def.Body)
	if err != nil {
		return err
	}

	if !terminated {
		if def.ReturnType.Kind != typedast.TyNoneType {
			return newErr(MissingReturn, "function %q does not return on every path", def.Name)
		}
		g.builder.NewRet(nil)
	}

	return nil
}

func (g *Generator) currentFunc() *ir.Func {
	return g.funcStack[len(g.funcStack)-1]
}

// lowerType maps a typedast.Type to its LLVM IR representation, following the
// same table as the source language's compile-time type-to-IR-type mapping:
// every fixed-width integer gets the matching i-width, Bool is i1, Ref is a
// pointer, Array is a literal array type, Class resolves to its declared struct,
// and NoneType is void.
func (g *Generator) lowerType(t typedast.Type) (types.Type, error) {
	switch t.Kind {
	case typedast.TyInt8, typedast.TyUInt8, typedast.TyChar:
		return types.I8, nil
	case typedast.TyInt16, typedast.TyUInt16:
		return types.I16, nil
	case typedast.TyInt32, typedast.TyUInt32, typedast.TyInt, typedast.TyUInt:
		return types.I32, nil
	case typedast.TyInt64, typedast.TyUInt64:
		return types.I64, nil
	case typedast.TyBool:
		return types.I1, nil
	case typedast.TyCStr, typedast.TyStr:
		return types.NewPointer(types.I8), nil
	case typedast.TyRef:
		elem, err := g.lowerType(*t.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewPointer(elem), nil
	case typedast.TyArray:
		elem, err := g.lowerType(*t.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewArray(uint64(t.Len), elem), nil
	case typedast.TyClass:
		info, ok := g.classes[t.ClassName]
		if !ok {
			return nil, newErr(UnknownClass, "unknown class %q", t.ClassName)
		}
		return info.structType, nil
	case typedast.TyNoneType:
		return types.Void, nil
	default:
		return nil, newErr(UnsupportedType, "unsupported type %s", t)
	}
}

// zeroValue returns a constant zero for t, used to default-initialize a class's
// fields before the constructor's own initializers are stored over them.
func (g *Generator) zeroValue(t types.Type) value.Value {
	switch tt := t.(type) {
	case *types.IntType:
		return constant.NewInt(tt, 0)
	case *types.PointerType:
		return constant.NewNull(tt)
	case *types.ArrayType:
		elem, _ := g.zeroValue(tt.ElemType).(constant.Constant)
		elems := make([]constant.Constant, tt.Len)
		for i := range elems {
			elems[i] = elem
		}
		return constant.NewArray(tt, elems...)
	case *types.StructType:
		fields := make([]constant.Constant, len(tt.Fields))
		for i, ft := range tt.Fields {
			fields[i], _ = g.zeroValue(ft).(constant.Constant)
		}
		return constant.NewStruct(tt, fields...)
	default:
		return constant.NewInt(types.I32, 0)
	}
}
