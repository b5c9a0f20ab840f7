package codegen

import (
	"strings"
	"testing"

	"github.com/dshills/corec/internal/typedast"
)

func i32() typedast.Type    { return typedast.Type{Kind: typedast.TyInt32} }
func boolTy() typedast.Type { return typedast.Type{Kind: typedast.TyBool} }

func litI32(n int64) typedast.Expr {
	return typedast.Expr{Kind: typedast.ExprLiteral, Ty: i32(), Literal: &typedast.Literal{Ty: i32(), Kind: typedast.LitInt32, Int: n}}
}

func retStmt(e typedast.Expr) typedast.Stmt {
	return typedast.Stmt{Kind: typedast.StmtReturn, Expr: &e}
}

func TestLowerProgramSimpleFunctionEmitsRet(t *testing.T) {
	prog := &typedast.Program{Items: []typedast.TopLevelStmt{
		{FuncDef: &typedast.FunctionDef{
			Name:       "answer",
			ReturnType: i32(),
			Body:       typedast.BlockStmt{Stmts: []typedast.Stmt{retStmt(litI32(42))}},
		}},
	}}

	mod, err := NewGenerator().LowerProgram(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := mod.String()
	if !strings.Contains(out, "define i32 @answer()") {
		t.Fatalf("expected a defined i32 answer() function, got:\n%s", out)
	}
	if !strings.Contains(out, "ret i32 42") {
		t.Fatalf("expected ret i32 42, got:\n%s", out)
	}
}

func TestLowerProgramMissingReturnFails(t *testing.T) {
	prog := &typedast.Program{Items: []typedast.TopLevelStmt{
		{FuncDef: &typedast.FunctionDef{
			Name:       "f",
			ReturnType: i32(),
			Body:       typedast.BlockStmt{},
		}},
	}}

	_, err := NewGenerator().LowerProgram(prog)
	assertCodegenKind(t, err, MissingReturn)
}

func TestLowerProgramVoidFunctionGetsImplicitRetVoid(t *testing.T) {
	prog := &typedast.Program{Items: []typedast.TopLevelStmt{
		{FuncDef: &typedast.FunctionDef{
			Name:       "f",
			ReturnType: typedast.Type{Kind: typedast.TyNoneType},
			Body:       typedast.BlockStmt{},
		}},
	}}

	mod, err := NewGenerator().LowerProgram(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := mod.String()
	if !strings.Contains(out, "define void @f()") {
		t.Fatalf("expected void @f(), got:\n%s", out)
	}
	if !strings.Contains(out, "ret void") {
		t.Fatalf("expected ret void, got:\n%s", out)
	}
}

func TestLowerProgramIfWithReturnsOnBothBranches(t *testing.T) {
	prog := &typedast.Program{Items: []typedast.TopLevelStmt{
		{FuncDef: &typedast.FunctionDef{
			Name:       "f",
			Params:     []typedast.TypeBinding{{Name: "cond", Type: boolTy()}},
			ReturnType: i32(),
			Body: typedast.BlockStmt{Stmts: []typedast.Stmt{
				{Kind: typedast.StmtIf, If: &typedast.IfStmt{
					Condition: typedast.Expr{Kind: typedast.ExprIdent, Ty: boolTy(), Ident: "cond"},
					Body:      typedast.BlockStmt{Stmts: []typedast.Stmt{retStmt(litI32(1))}},
					ElseBlock: &typedast.BlockStmt{Stmts: []typedast.Stmt{retStmt(litI32(0))}},
				}},
			}},
		}},
	}}

	mod, err := NewGenerator().LowerProgram(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := mod.String()
	if !strings.Contains(out, "ret i32 1") || !strings.Contains(out, "ret i32 0") {
		t.Fatalf("expected both branch returns present, got:\n%s", out)
	}
}

func TestLowerProgramIfMissingElseFallsThroughRequiresFollowupReturn(t *testing.T) {
	prog := &typedast.Program{Items: []typedast.TopLevelStmt{
		{FuncDef: &typedast.FunctionDef{
			Name:       "f",
			Params:     []typedast.TypeBinding{{Name: "cond", Type: boolTy()}},
			ReturnType: i32(),
			Body: typedast.BlockStmt{Stmts: []typedast.Stmt{
				{Kind: typedast.StmtIf, If: &typedast.IfStmt{
					Condition: typedast.Expr{Kind: typedast.ExprIdent, Ty: boolTy(), Ident: "cond"},
					Body:      typedast.BlockStmt{Stmts: []typedast.Stmt{retStmt(litI32(1))}},
				}},
				retStmt(litI32(0)),
			}},
		}},
	}}

	mod, err := NewGenerator().LowerProgram(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := mod.String()
	if !strings.Contains(out, "ret i32 1") || !strings.Contains(out, "ret i32 0") {
		t.Fatalf("expected both the branch return and the trailing return, got:\n%s", out)
	}
}

func TestLowerProgramWhileLoopWiresBackEdge(t *testing.T) {
	prog := &typedast.Program{Items: []typedast.TopLevelStmt{
		{FuncDef: &typedast.FunctionDef{
			Name:       "f",
			Params:     []typedast.TypeBinding{{Name: "cond", Type: boolTy()}},
			ReturnType: typedast.Type{Kind: typedast.TyNoneType},
			Body: typedast.BlockStmt{Stmts: []typedast.Stmt{
				{Kind: typedast.StmtWhile, While: &typedast.WhileStmt{
					Condition: typedast.Expr{Kind: typedast.ExprIdent, Ty: boolTy(), Ident: "cond"},
					Body:      typedast.BlockStmt{},
				}},
			}},
		}},
	}}

	mod, err := NewGenerator().LowerProgram(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := mod.String()
	if !strings.Contains(out, "br label") {
		t.Fatalf("expected at least one unconditional branch wiring the loop, got:\n%s", out)
	}
	if !strings.Contains(out, "br i1") {
		t.Fatalf("expected the loop's conditional branch, got:\n%s", out)
	}
}

func TestLowerProgramClassFieldAccess(t *testing.T) {
	prog := &typedast.Program{Items: []typedast.TopLevelStmt{
		{ClassDef: &typedast.ClassDef{Name: "Point", Fields: []typedast.FieldDecl{
			{Name: "x", Type: i32(), Index: 0},
			{Name: "y", Type: i32(), Index: 1},
		}}},
		{FuncDef: &typedast.FunctionDef{
			Name:       "getX",
			ReturnType: i32(),
			Body: typedast.BlockStmt{Stmts: []typedast.Stmt{
				{Kind: typedast.StmtConst, Bind: &typedast.BindStmt{
					Binding: typedast.TypeBinding{Name: "p", Type: typedast.Type{Kind: typedast.TyClass, ClassName: "Point"}},
					Value: typedast.Expr{
						Kind: typedast.ExprClass,
						Ty:   typedast.Type{Kind: typedast.TyClass, ClassName: "Point"},
						Class: &typedast.ClassExpr{Name: "Point", Fields: []typedast.ClassFieldInit{
							{Name: "x", Index: 0, Value: litI32(1)},
							{Name: "y", Index: 1, Value: litI32(2)},
						}},
					},
				}},
				retStmt(typedast.Expr{
					Kind:       typedast.ExprField,
					Ty:         i32(),
					Object:     &typedast.Expr{Kind: typedast.ExprIdent, Ty: typedast.Type{Kind: typedast.TyClass, ClassName: "Point"}, Ident: "p"},
					Field:      "x",
					FieldIndex: 0,
				}),
			}},
		}},
	}}

	mod, err := NewGenerator().LowerProgram(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := mod.String()
	if !strings.Contains(out, "getelementptr") {
		t.Fatalf("expected a GEP for the field access, got:\n%s", out)
	}
}

func TestLowerProgramUnknownClassFails(t *testing.T) {
	prog := &typedast.Program{Items: []typedast.TopLevelStmt{
		{FuncDef: &typedast.FunctionDef{
			Name:       "f",
			ReturnType: typedast.Type{Kind: typedast.TyClass, ClassName: "Nope"},
			Body:       typedast.BlockStmt{},
		}},
	}}

	_, err := NewGenerator().LowerProgram(prog)
	assertCodegenKind(t, err, UnknownClass)
}

func assertCodegenKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %s, got nil", want)
	}
	e, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if e.Kind != want {
		t.Fatalf("expected error kind %s, got %s (%v)", want, e.Kind, err)
	}
}
