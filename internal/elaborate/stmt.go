package elaborate

import (
	"github.com/dshills/corec/internal/ast"
	"github.com/dshills/corec/internal/typedast"
)

func (e *Elaborator) elaborateStmt(s ast.Stmt) (typedast.Stmt, error) {
	switch s.Kind {
	case ast.StmtExpr:
		expr, err := e.elaborateExpr(*s.Expr)
		if err != nil {
			return typedast.Stmt{}, err
		}
		return typedast.Stmt{Kind: typedast.StmtExpr, Expr: &expr}, nil

	case ast.StmtBlock:
		block, err := e.elaborateBlock(*s.Block)
		if err != nil {
			return typedast.Stmt{}, err
		}
		return typedast.Stmt{Kind: typedast.StmtBlock, Block: &block}, nil

	case ast.StmtIf:
		ifStmt, err := e.elaborateIf(*s.If)
		if err != nil {
			return typedast.Stmt{}, err
		}
		return typedast.Stmt{Kind: typedast.StmtIf, If: ifStmt}, nil

	case ast.StmtWhile:
		whileStmt, err := e.elaborateWhile(*s.While)
		if err != nil {
			return typedast.Stmt{}, err
		}
		return typedast.Stmt{Kind: typedast.StmtWhile, While: whileStmt}, nil

	case ast.StmtConst, ast.StmtVar:
		bind, err := e.elaborateBind(*s.Bind)
		if err != nil {
			return typedast.Stmt{}, err
		}
		kind := typedast.StmtConst
		if s.Kind == ast.StmtVar {
			kind = typedast.StmtVar
		}
		return typedast.Stmt{Kind: kind, Bind: bind}, nil

	case ast.StmtReturn:
		return e.elaborateReturn(s)

	default:
		return typedast.Stmt{}, newErr(BadFieldAccess, "elaborate: unknown statement kind %q", s.Kind)
	}
}

func (e *Elaborator) elaborateIf(s ast.IfStmt) (*typedast.IfStmt, error) {
	cond, err := e.elaborateExpr(s.Condition)
	if err != nil {
		return nil, err
	}
	if cond.Ty.Kind != typedast.TyBool {
		return nil, newErr(NonBooleanLogicalOperand, "if condition must be bool, got %s", cond.Ty)
	}

	body, err := e.elaborateBlock(s.Body)
	if err != nil {
		return nil, err
	}

	out := &typedast.IfStmt{Condition: cond, Body: body}

	switch {
	case s.ElseIf != nil:
		elseIf, err := e.elaborateIf(*s.ElseIf)
		if err != nil {
			return nil, err
		}
		out.ElseIf = elseIf
	case s.ElseBlock != nil:
		elseBlock, err := e.elaborateBlock(*s.ElseBlock)
		if err != nil {
			return nil, err
		}
		out.ElseBlock = &elseBlock
	}

	return out, nil
}

func (e *Elaborator) elaborateWhile(s ast.WhileStmt) (*typedast.WhileStmt, error) {
	cond, err := e.elaborateExpr(s.Condition)
	if err != nil {
		return nil, err
	}
	if cond.Ty.Kind != typedast.TyBool {
		return nil, newErr(NonBooleanLogicalOperand, "while condition must be bool, got %s", cond.Ty)
	}

	body, err := e.elaborateBlock(s.Body)
	if err != nil {
		return nil, err
	}

	return &typedast.WhileStmt{Condition: cond, Body: body}, nil
}

func (e *Elaborator) elaborateBind(b ast.BindStmt) (*typedast.BindStmt, error) {
	declTy, err := e.resolveType(b.Binding.Type)
	if err != nil {
		return nil, err
	}
	value, err := e.elaborateExpr(b.Value)
	if err != nil {
		return nil, err
	}
	if err := e.names.Add(b.Binding.Name, declTy); err != nil {
		return nil, wrapErr(DuplicateSymbol, err, "binding "+b.Binding.Name)
	}
	return &typedast.BindStmt{
		Binding: typedast.TypeBinding{Name: b.Binding.Name, Type: declTy},
		Value:   value,
	}, nil
}

func (e *Elaborator) elaborateReturn(s ast.Stmt) (typedast.Stmt, error) {
	expected := e.returnStack[len(e.returnStack)-1]

	if s.Expr == nil {
		if expected.Kind != typedast.TyNoneType {
			return typedast.Stmt{}, newErr(ReturnMismatch, "bare return in function returning %s", expected)
		}
		return typedast.Stmt{Kind: typedast.StmtReturn}, nil
	}

	value, err := e.elaborateExpr(*s.Expr)
	if err != nil {
		return typedast.Stmt{}, err
	}
	if !value.Ty.Equal(expected) {
		return typedast.Stmt{}, newErr(ReturnMismatch, "returned %s, function declares %s", value.Ty, expected)
	}
	return typedast.Stmt{Kind: typedast.StmtReturn, Expr: &value}, nil
}
