package elaborate

import (
	"testing"

	"github.com/dshills/corec/internal/ast"
	"github.com/dshills/corec/internal/typedast"
)

func intTy(kind ast.TypeKind) ast.Type { return ast.Type{Kind: kind} }

func litInt(n int64) ast.Expr {
	return ast.Expr{Kind: ast.ExprLiteral, Literal: &ast.Literal{Kind: ast.LitInt32, Int: n}}
}

func ident(name string) ast.Expr {
	return ast.Expr{Kind: ast.ExprIdent, Ident: name}
}

func TestElaborateSimpleFunctionReturnsInt(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name:       "answer",
			ReturnType: &ast.Type{Kind: ast.TyInt32},
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtReturn, Expr: ptr(litInt(42))},
			}},
		}},
	}}

	out, err := Elaborate(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn := out.Items[0].FuncDef
	if fn.ReturnType.Kind != typedast.TyInt32 {
		t.Fatalf("expected return type int32, got %s", fn.ReturnType)
	}
	ret := fn.Body.Stmts[0]
	if ret.Expr.Ty.Kind != typedast.TyInt32 {
		t.Fatalf("expected returned expr type int32, got %s", ret.Expr.Ty)
	}
}

func TestElaborateUndeclaredIdentifierFails(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name:       "f",
			ReturnType: &ast.Type{Kind: ast.TyInt32},
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtReturn, Expr: ptr(ident("missing"))},
			}},
		}},
	}}

	_, err := Elaborate(prog)
	assertKind(t, err, Undeclared)
}

func TestElaborateParamsAreVisibleInBody(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name:       "identity",
			Params:     []ast.TypeBinding{{Name: "x", Type: intTy(ast.TyInt32)}},
			ReturnType: &ast.Type{Kind: ast.TyInt32},
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtReturn, Expr: ptr(ident("x"))},
			}},
		}},
	}}

	out, err := Elaborate(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ret := out.Items[0].FuncDef.Body.Stmts[0]
	if ret.Expr.Ty.Kind != typedast.TyInt32 {
		t.Fatalf("expected param-typed return, got %s", ret.Expr.Ty)
	}
}

func TestElaborateForwardFunctionReferenceResolves(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name:       "a",
			ReturnType: &ast.Type{Kind: ast.TyInt32},
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtReturn, Expr: ptr(ast.Expr{
					Kind: ast.ExprCall,
					Call: &ast.CallExpr{Callee: ident("b")},
				})},
			}},
		}},
		{FuncDef: &ast.FunctionDef{
			Name:       "b",
			ReturnType: &ast.Type{Kind: ast.TyInt32},
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtReturn, Expr: ptr(litInt(1))},
			}},
		}},
	}}

	if _, err := Elaborate(prog); err != nil {
		t.Fatalf("forward reference should resolve, got: %v", err)
	}
}

func TestElaborateComparisonIsBoolTyped(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name:       "cmp",
			ReturnType: &ast.Type{Kind: ast.TyBool},
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtReturn, Expr: ptr(ast.Expr{
					Kind:  ast.ExprBinary,
					Op:    ast.OpGt,
					Left:  ptr(litInt(3)),
					Right: ptr(litInt(1)),
				})},
			}},
		}},
	}}

	out, err := Elaborate(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ret := out.Items[0].FuncDef.Body.Stmts[0]
	if ret.Expr.Ty.Kind != typedast.TyBool {
		t.Fatalf("comparison should elaborate to bool, got %s", ret.Expr.Ty)
	}
}

func TestElaborateMixedOperandTypesFails(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name:       "f",
			ReturnType: &ast.Type{Kind: ast.TyInt32},
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtReturn, Expr: ptr(ast.Expr{
					Kind: ast.ExprBinary,
					Op:   ast.OpAdd,
					Left: ptr(litInt(1)),
					Right: ptr(ast.Expr{
						Kind:    ast.ExprLiteral,
						Literal: &ast.Literal{Kind: ast.LitBool, Bool: true},
					}),
				})},
			}},
		}},
	}}

	_, err := Elaborate(prog)
	assertKind(t, err, MixedOperandTypes)
}

func TestElaborateEmptyArrayFails(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name: "f",
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtExpr, Expr: ptr(ast.Expr{Kind: ast.ExprArray, Items: nil})},
			}},
		}},
	}}

	_, err := Elaborate(prog)
	assertKind(t, err, EmptyArray)
}

func TestElaborateArrayHomogeneityEnforced(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name: "f",
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtExpr, Expr: ptr(ast.Expr{
					Kind: ast.ExprArray,
					Items: []ast.Expr{
						litInt(1),
						{Kind: ast.ExprLiteral, Literal: &ast.Literal{Kind: ast.LitBool, Bool: true}},
					},
				})},
			}},
		}},
	}}

	_, err := Elaborate(prog)
	assertKind(t, err, MixedOperandTypes)
}

func TestElaborateIfConditionMustBeBool(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name: "f",
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtIf, If: &ast.IfStmt{
					Condition: litInt(1),
					Body:      ast.BlockStmt{},
				}},
			}},
		}},
	}}

	_, err := Elaborate(prog)
	assertKind(t, err, NonBooleanLogicalOperand)
}

func TestElaborateClassConstructorAndFieldAccess(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{ClassDef: &ast.ClassDef{Name: "Point", Fields: []ast.FieldDecl{
			{Name: "x", Type: intTy(ast.TyInt32)},
			{Name: "y", Type: intTy(ast.TyInt32)},
		}}},
		{FuncDef: &ast.FunctionDef{
			Name:       "getX",
			ReturnType: &ast.Type{Kind: ast.TyInt32},
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtConst, Bind: &ast.BindStmt{
					Binding: ast.TypeBinding{Name: "p", Type: ast.Type{Kind: ast.TyClass, ClassName: "Point"}},
					Value: ast.Expr{Kind: ast.ExprClass, Class: &ast.ClassExpr{
						Name: "Point",
						Fields: []ast.ClassFieldInit{
							{Name: "x", Value: litInt(1)},
							{Name: "y", Value: litInt(2)},
						},
					}},
				}},
				{Kind: ast.StmtReturn, Expr: ptr(ast.Expr{
					Kind:   ast.ExprField,
					Object: ptr(ident("p")),
					Field:  "x",
				})},
			}},
		}},
	}}

	out, err := Elaborate(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ret := out.Items[1].FuncDef.Body.Stmts[1]
	if ret.Expr.FieldIndex != 0 {
		t.Fatalf("expected field x to resolve to index 0, got %d", ret.Expr.FieldIndex)
	}
}

func TestElaborateUnknownFieldFails(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{ClassDef: &ast.ClassDef{Name: "Point", Fields: []ast.FieldDecl{
			{Name: "x", Type: intTy(ast.TyInt32)},
		}}},
		{FuncDef: &ast.FunctionDef{
			Name: "f",
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtExpr, Expr: ptr(ast.Expr{
					Kind:   ast.ExprField,
					Object: ptr(ast.Expr{Kind: ast.ExprClass, Class: &ast.ClassExpr{Name: "Point"}}),
					Field:  "z",
				})},
			}},
		}},
	}}

	_, err := Elaborate(prog)
	assertKind(t, err, UnknownField)
}

func TestElaborateAssignToIdentSucceeds(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name: "f",
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtVar, Bind: &ast.BindStmt{
					Binding: ast.TypeBinding{Name: "x", Type: intTy(ast.TyInt32)},
					Value:   litInt(1),
				}},
				{Kind: ast.StmtExpr, Expr: ptr(ast.Expr{
					Kind:  ast.ExprAssign,
					Left:  ptr(ident("x")),
					Right: ptr(litInt(2)),
				})},
			}},
		}},
	}}

	if _, err := Elaborate(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestElaborateAssignToLiteralFails(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name: "f",
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtExpr, Expr: ptr(ast.Expr{
					Kind:  ast.ExprAssign,
					Left:  ptr(litInt(1)),
					Right: ptr(litInt(2)),
				})},
			}},
		}},
	}}

	_, err := Elaborate(prog)
	assertKind(t, err, InvalidAssignTarget)
}

func TestElaborateBareReturnRequiresNoneType(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name:       "f",
			ReturnType: &ast.Type{Kind: ast.TyInt32},
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtReturn},
			}},
		}},
	}}

	_, err := Elaborate(prog)
	assertKind(t, err, ReturnMismatch)
}

func TestElaborateDerefNonRefFails(t *testing.T) {
	prog := &ast.Program{Items: []ast.TopLevelStmt{
		{FuncDef: &ast.FunctionDef{
			Name: "f",
			Body: ast.BlockStmt{Stmts: []ast.Stmt{
				{Kind: ast.StmtExpr, Expr: ptr(ast.Expr{
					Kind:    ast.ExprUnary,
					UnaryOp: ast.OpDeref,
					Operand: ptr(litInt(1)),
				})},
			}},
		}},
	}}

	_, err := Elaborate(prog)
	assertKind(t, err, DerefNonRef)
}

func ptr(e ast.Expr) *ast.Expr { return &e }

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %s, got nil", want)
	}
	var elabErr *Error
	for unwrapped := err; unwrapped != nil; {
		if e, ok := unwrapped.(*Error); ok {
			elabErr = e
			break
		}
		u, ok := unwrapped.(interface{ Unwrap() error })
		if !ok {
			break
		}
		unwrapped = u.Unwrap()
	}
	if elabErr == nil {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if elabErr.Kind != want {
		t.Fatalf("expected error kind %s, got %s (%v)", want, elabErr.Kind, err)
	}
}
