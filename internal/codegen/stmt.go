package codegen

import (
	"github.com/dshills/corec/internal/typedast"
)

// lowerBlockInline lowers stmts into the current block WITHOUT pushing a new
// symbol scope; callers that already pushed one (function bodies reusing the
// parameter scope) use this directly. It reports whether control flow is
// terminated (a ret/unreachable was emitted on every reachable path through
// the block), so callers can decide whether to fall through or bail.
func (g *Generator) lowerBlockInline(block typedast.BlockStmt) (terminated bool, err error) {
	for _, stmt := range block.Stmts {
		terminated, err = g.lowerStmt(stmt)
		if err != nil {
			return false, err
		}
		if terminated {
			return true, nil
		}
	}
	return false, nil
}

// lowerBlock pushes a fresh symbol scope before lowering, used for nested
// blocks (if/else bodies, while bodies) whose locals must not leak out.
func (g *Generator) lowerBlock(block typedast.BlockStmt) (bool, error) {
	g.symbols.Push()
	defer g.symbols.Pop() //nolint:errcheck // scope we just pushed is always poppable
	return g.lowerBlockInline(block)
}

func (g *Generator) lowerStmt(stmt typedast.Stmt) (bool, error) {
	switch stmt.Kind {
	case typedast.StmtExpr:
		_, err := g.lowerExpr(*stmt.Expr)
		return false, err

	case typedast.StmtBlock:
		return g.lowerBlock(*stmt.Block)

	case typedast.StmtIf:
		return g.lowerIf(*stmt.If)

	case typedast.StmtWhile:
		return g.lowerWhile(*stmt.While)

	case typedast.StmtConst, typedast.StmtVar:
		return false, g.lowerBind(*stmt.Bind)

	case typedast.StmtReturn:
		return g.lowerReturn(stmt.Expr)

	default:
		return false, newErr(UnsupportedType, "codegen: unknown statement kind %q", stmt.Kind)
	}
}

func (g *Generator) lowerBind(bind typedast.BindStmt) error {
	value, err := g.lowerExpr(bind.Value)
	if err != nil {
		return err
	}

	ty, err := g.lowerType(bind.Binding.Type)
	if err != nil {
		return err
	}

	alloca := g.builder.NewAlloca(ty)
	alloca.SetName(bind.Binding.Name + ".addr")
	g.builder.NewStore(value, alloca)

	return g.symbols.Add(bind.Binding.Name, Symbol{Kind: SymVar, Value: alloca})
}

func (g *Generator) lowerReturn(expr *typedast.Expr) (bool, error) {
	if expr == nil {
		g.builder.NewRet(nil)
		return true, nil
	}
	value, err := g.lowerExpr(*expr)
	if err != nil {
		return false, err
	}
	g.builder.NewRet(value)
	return true, nil
}

// lowerIf lowers an if/else-if/else chain. Each branch gets its own block;
// a merge block is created only if at least one branch falls through to it,
// matching the source language's requirement that every reachable path through
// a non-void function terminate explicitly rather than via an implicit merge.
func (g *Generator) lowerIf(stmt typedast.IfStmt) (bool, error) {
	cond, err := g.lowerExpr(stmt.Condition)
	if err != nil {
		return false, err
	}

	fn := g.currentFunc()
	thenBlk := fn.NewBlock("")
	elseBlk := fn.NewBlock("")
	g.builder.NewCondBr(cond, thenBlk, elseBlk)

	g.builder = thenBlk
	thenTerminated, err := g.lowerBlock(stmt.Body)
	if err != nil {
		return false, err
	}
	thenEnd := g.builder

	g.builder = elseBlk
	var elseTerminated bool
	switch {
	case stmt.ElseIf != nil:
		elseTerminated, err = g.lowerIf(*stmt.ElseIf)
		if err != nil {
			return false, err
		}
	case stmt.ElseBlock != nil:
		elseTerminated, err = g.lowerBlock(*stmt.ElseBlock)
		if err != nil {
			return false, err
		}
	default:
		elseTerminated = false
	}

	if thenTerminated && elseTerminated {
		return true, nil
	}

	merge := fn.NewBlock("")
	if !thenTerminated {
		thenEnd.NewBr(merge)
	}
	if !elseTerminated {
		g.builder.NewBr(merge)
	}
	g.builder = merge
	return false, nil
}

// lowerWhile lowers a while loop: cond block re-evaluates the condition on
// every iteration, body runs when true, control resumes at exit when false.
// The while statement itself never reports as terminating its enclosing
// block — the cond-false edge always reaches exit — even though the body's
// own block may terminate early via its own return, in which case the
// loop-back branch to cond is simply never wired for that path.
func (g *Generator) lowerWhile(stmt typedast.WhileStmt) (bool, error) {
	fn := g.currentFunc()
	condBlk := fn.NewBlock("")
	bodyBlk := fn.NewBlock("")
	exitBlk := fn.NewBlock("")

	g.builder.NewBr(condBlk)

	g.builder = condBlk
	cond, err := g.lowerExpr(stmt.Condition)
	if err != nil {
		return false, err
	}
	g.builder.NewCondBr(cond, bodyBlk, exitBlk)

	g.builder = bodyBlk
	bodyTerminated, err := g.lowerBlock(stmt.Body)
	if err != nil {
		return false, err
	}
	if !bodyTerminated {
		g.builder.NewBr(condBlk)
	}

	g.builder = exitBlk
	return false, nil
}
