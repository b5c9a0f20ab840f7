// Package elaborate implements the elaboration pass: resolving names against lexical
// scope and assigning a concrete type to every expression. It turns a parse-level
// ast.Program into a typedast.Program ready for lowering.
package elaborate

import (
	"github.com/pkg/errors"

	"github.com/dshills/corec/internal/ast"
	"github.com/dshills/corec/internal/symtab"
	"github.com/dshills/corec/internal/typedast"
)

// Elaborator holds the state threaded through a single elaboration run: it is not
// safe to reuse across programs and carries no state across invocations beyond its
// own construction.
type Elaborator struct {
	names       *symtab.Table[typedast.Type]
	classes     map[string]*typedast.ClassDef
	returnStack []typedast.Type
}

// New returns an Elaborator with an empty global scope and no registered classes.
func New() *Elaborator {
	return &Elaborator{
		names:   symtab.New[typedast.Type](),
		classes: make(map[string]*typedast.ClassDef),
	}
}

// Elaborate resolves names and assigns types throughout prog, using the two-pass
// algorithm of ElaborateProgram. It is a convenience wrapper around a freshly
// constructed Elaborator.
func Elaborate(prog *ast.Program) (*typedast.Program, error) {
	return New().ElaborateProgram(prog)
}

// ElaborateProgram runs the two-pass algorithm: the first pass registers every
// top-level class, function, extern and const name in source order (elaborating
// const values as it goes), the second elaborates extern parameters and function
// bodies. Function bodies can therefore call functions defined later in the file;
// class field types and signature return types can only name classes declared
// earlier.
func (e *Elaborator) ElaborateProgram(prog *ast.Program) (*typedast.Program, error) {
	out := &typedast.Program{Items: make([]typedast.TopLevelStmt, len(prog.Items))}

	for i, item := range prog.Items {
		switch {
		case item.ClassDef != nil:
			def, err := e.declareClass(item.ClassDef)
			if err != nil {
				return nil, err
			}
			out.Items[i] = typedast.TopLevelStmt{ClassDef: def}
		case item.FuncDef != nil:
			retTy, err := e.declareFunctionSignature(item.FuncDef)
			if err != nil {
				return nil, err
			}
			out.Items[i] = typedast.TopLevelStmt{FuncDef: &typedast.FunctionDef{
				Name:       item.FuncDef.Name,
				ReturnType: retTy,
			}}
		case item.ExternDef != nil:
			retTy, err := e.declareExternSignature(item.ExternDef)
			if err != nil {
				return nil, err
			}
			out.Items[i] = typedast.TopLevelStmt{ExternDef: &typedast.ExternDef{
				Name:       item.ExternDef.Name,
				ReturnType: retTy,
			}}
		case item.ConstDef != nil:
			def, err := e.elaborateGlobalConst(item.ConstDef)
			if err != nil {
				return nil, err
			}
			out.Items[i] = typedast.TopLevelStmt{ConstDef: def}
		default:
			return nil, newErr(BadFieldAccess, "elaborate: empty top-level item")
		}
	}

	for i, item := range prog.Items {
		switch {
		case item.FuncDef != nil:
			def, err := e.elaborateFunctionBody(item.FuncDef, out.Items[i].FuncDef.ReturnType)
			if err != nil {
				return nil, err
			}
			out.Items[i].FuncDef = def
		case item.ExternDef != nil:
			def, err := e.elaborateExternParams(item.ExternDef, out.Items[i].ExternDef.ReturnType)
			if err != nil {
				return nil, err
			}
			out.Items[i].ExternDef = def
		}
	}

	return out, nil
}

func (e *Elaborator) declareClass(def *ast.ClassDef) (*typedast.ClassDef, error) {
	if _, exists := e.classes[def.Name]; exists {
		return nil, newErr(DuplicateSymbol, "class %q already declared", def.Name)
	}

	fields := make([]typedast.FieldDecl, len(def.Fields))
	for i, f := range def.Fields {
		ty, err := e.resolveType(f.Type)
		if err != nil {
			return nil, err
		}
		fields[i] = typedast.FieldDecl{Name: f.Name, Type: ty, Index: i}
	}

	typed := &typedast.ClassDef{Name: def.Name, Fields: fields}
	e.classes[def.Name] = typed
	return typed, nil
}

func (e *Elaborator) declareFunctionSignature(def *ast.FunctionDef) (typedast.Type, error) {
	retTy, err := e.resolveReturnType(def.ReturnType)
	if err != nil {
		return typedast.Type{}, err
	}
	if err := e.names.Add(def.Name, retTy); err != nil {
		return typedast.Type{}, wrapErr(DuplicateSymbol, err, "function "+def.Name)
	}
	return retTy, nil
}

func (e *Elaborator) declareExternSignature(def *ast.ExternDef) (typedast.Type, error) {
	retTy, err := e.resolveReturnType(def.ReturnType)
	if err != nil {
		return typedast.Type{}, err
	}
	if err := e.names.Add(def.Name, retTy); err != nil {
		return typedast.Type{}, wrapErr(DuplicateSymbol, err, "extern "+def.Name)
	}
	return retTy, nil
}

func (e *Elaborator) elaborateGlobalConst(def *ast.GlobalConstDef) (*typedast.GlobalConstDef, error) {
	bindingTy, err := e.resolveType(def.Binding.Type)
	if err != nil {
		return nil, err
	}
	lit, err := e.elaborateLiteral(def.Value)
	if err != nil {
		return nil, err
	}
	if err := e.names.Add(def.Binding.Name, bindingTy); err != nil {
		return nil, wrapErr(DuplicateSymbol, err, "const "+def.Binding.Name)
	}
	return &typedast.GlobalConstDef{
		Binding: typedast.TypeBinding{Name: def.Binding.Name, Type: bindingTy},
		Value:   lit,
	}, nil
}

func (e *Elaborator) elaborateFunctionBody(def *ast.FunctionDef, retTy typedast.Type) (*typedast.FunctionDef, error) {
	e.names.Push()
	defer e.names.Pop() //nolint:errcheck // the scope we just pushed is always poppable

	params := make([]typedast.TypeBinding, len(def.Params))
	for i, p := range def.Params {
		ty, err := e.resolveType(p.Type)
		if err != nil {
			return nil, err
		}
		if err := e.names.Add(p.Name, ty); err != nil {
			return nil, wrapErr(DuplicateSymbol, err, "parameter "+p.Name)
		}
		params[i] = typedast.TypeBinding{Name: p.Name, Type: ty}
	}

	e.returnStack = append(e.returnStack, retTy)
	defer func() { e.returnStack = e.returnStack[:len(e.returnStack)-1] }()

	body, err := e.elaborateBlockInline(def.Body)
	if err != nil {
		return nil, err
	}

	return &typedast.FunctionDef{
		Name:       def.Name,
		Params:     params,
		ReturnType: retTy,
		Body:       body,
	}, nil
}

func (e *Elaborator) elaborateExternParams(def *ast.ExternDef, retTy typedast.Type) (*typedast.ExternDef, error) {
	params := make([]typedast.TypeBinding, len(def.Params))
	for i, p := range def.Params {
		ty, err := e.resolveType(p.Type)
		if err != nil {
			return nil, err
		}
		params[i] = typedast.TypeBinding{Name: p.Name, Type: ty}
	}
	return &typedast.ExternDef{Name: def.Name, Params: params, ReturnType: retTy}, nil
}

// elaborateBlockInline elaborates a block's statements directly in the current
// scope, without pushing a new one — used for function bodies, where the parameter
// scope already pushed by the caller doubles as the body's top scope.
func (e *Elaborator) elaborateBlockInline(block ast.BlockStmt) (typedast.BlockStmt, error) {
	stmts := make([]typedast.Stmt, len(block.Stmts))
	for i, s := range block.Stmts {
		typed, err := e.elaborateStmt(s)
		if err != nil {
			return typedast.BlockStmt{}, err
		}
		stmts[i] = typed
	}
	return typedast.BlockStmt{Stmts: stmts}, nil
}

func (e *Elaborator) elaborateBlock(block ast.BlockStmt) (typedast.BlockStmt, error) {
	e.names.Push()
	defer e.names.Pop() //nolint:errcheck
	return e.elaborateBlockInline(block)
}

func (e *Elaborator) resolveReturnType(t *ast.Type) (typedast.Type, error) {
	if t == nil {
		return typedast.Type{Kind: typedast.TyNoneType}, nil
	}
	return e.resolveType(*t)
}

func (e *Elaborator) resolveType(t ast.Type) (typedast.Type, error) {
	switch t.Kind {
	case ast.TyRef:
		elem, err := e.resolveType(*t.Elem)
		if err != nil {
			return typedast.Type{}, err
		}
		return typedast.Type{Kind: typedast.TyRef, Elem: &elem}, nil
	case ast.TyArray:
		elem, err := e.resolveType(*t.Elem)
		if err != nil {
			return typedast.Type{}, err
		}
		return typedast.Type{Kind: typedast.TyArray, Elem: &elem, Len: t.Len}, nil
	case ast.TyClass:
		if _, ok := e.classes[t.ClassName]; !ok {
			return typedast.Type{}, newErr(UnknownClass, "unknown class %q", t.ClassName)
		}
		return typedast.Type{Kind: typedast.TyClass, ClassName: t.ClassName}, nil
	default:
		return typedast.Type{Kind: typedast.TypeKind(t.Kind)}, nil
	}
}
