package codegen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/dshills/corec/internal/typedast"
)

func (g *Generator) lowerExpr(expr typedast.Expr) (value.Value, error) {
	switch expr.Kind {
	case typedast.ExprLiteral:
		return g.lowerLiteral(*expr.Literal)

	case typedast.ExprIdent:
		sym, ok := g.symbols.Get(expr.Ident)
		if !ok {
			return nil, newErr(BadPtrGen, "undeclared identifier %q reached codegen", expr.Ident)
		}
		if sym.Kind == SymFunc {
			return sym.Value, nil
		}
		elemTy, err := g.lowerType(expr.Ty)
		if err != nil {
			return nil, err
		}
		return g.builder.NewLoad(elemTy, sym.Value), nil

	case typedast.ExprCall:
		return g.lowerCall(*expr.Call)

	case typedast.ExprIndex:
		ptr, err := g.lowerIndexPtr(expr)
		if err != nil {
			return nil, err
		}
		elemTy, err := g.lowerType(expr.Ty)
		if err != nil {
			return nil, err
		}
		return g.builder.NewLoad(elemTy, ptr), nil

	case typedast.ExprField:
		ptr, err := g.lowerFieldPtr(expr)
		if err != nil {
			return nil, err
		}
		elemTy, err := g.lowerType(expr.Ty)
		if err != nil {
			return nil, err
		}
		return g.builder.NewLoad(elemTy, ptr), nil

	case typedast.ExprBinary:
		return g.lowerBinary(expr)

	case typedast.ExprUnary:
		return g.lowerUnary(expr)

	case typedast.ExprArray:
		return g.lowerArray(expr)

	case typedast.ExprCast:
		return g.lowerCast(expr)

	case typedast.ExprClass:
		return g.lowerClassExpr(*expr.Class)

	case typedast.ExprAssign:
		return g.lowerAssign(expr)

	default:
		return nil, newErr(UnsupportedType, "codegen: unknown expression kind %q", expr.Kind)
	}
}

// lowerLValue lowers expr to the pointer backing its storage, for use as an
// assignment target or as the operand of a reference-of (&) expression.
func (g *Generator) lowerLValue(expr typedast.Expr) (value.Value, error) {
	switch expr.Kind {
	case typedast.ExprIdent:
		sym, ok := g.symbols.Get(expr.Ident)
		if !ok {
			return nil, newErr(BadPtrGen, "undeclared identifier %q reached codegen", expr.Ident)
		}
		return sym.Value, nil
	case typedast.ExprIndex:
		return g.lowerIndexPtr(expr)
	case typedast.ExprField:
		return g.lowerFieldPtr(expr)
	case typedast.ExprUnary:
		if expr.UnaryOp == typedast.OpDeref {
			return g.lowerExpr(*expr.Operand)
		}
		return nil, newErr(BadPtrGen, "expression is not an lvalue")
	default:
		return nil, newErr(BadPtrGen, "expression is not an lvalue")
	}
}

func (g *Generator) lowerIndexPtr(expr typedast.Expr) (value.Value, error) {
	arrPtr, err := g.lowerLValue(*expr.Object)
	if err != nil {
		return nil, err
	}
	arrTy, err := g.lowerType(expr.Object.Ty)
	if err != nil {
		return nil, err
	}
	index, err := g.lowerExpr(*expr.Index)
	if err != nil {
		return nil, err
	}
	zero := constant.NewInt(types.I32, 0)
	return g.builder.NewGetElementPtr(arrTy, arrPtr, zero, index), nil
}

func (g *Generator) lowerFieldPtr(expr typedast.Expr) (value.Value, error) {
	objPtr, err := g.lowerLValue(*expr.Object)
	if err != nil {
		return nil, err
	}
	objTy, err := g.lowerType(expr.Object.Ty)
	if err != nil {
		return nil, err
	}
	zero := constant.NewInt(types.I32, 0)
	idx := constant.NewInt(types.I32, int64(expr.FieldIndex))
	return g.builder.NewGetElementPtr(objTy, objPtr, zero, idx), nil
}

func (g *Generator) lowerLiteral(lit typedast.Literal) (value.Value, error) {
	switch lit.Kind {
	case typedast.LitBool:
		if lit.Bool {
			return constant.NewInt(types.I1, 1), nil
		}
		return constant.NewInt(types.I1, 0), nil

	case typedast.LitCStr:
		return g.lowerCString(lit.Str)

	case typedast.LitStr:
		return nil, newErr(UnsupportedType, "str literals are not yet supported, use cstr")

	default:
		ty, err := g.lowerType(lit.Ty)
		if err != nil {
			return nil, err
		}
		intTy, ok := ty.(*types.IntType)
		if !ok {
			return nil, newErr(BadPtrGen, "literal has non-integer type")
		}
		if lit.Ty.IsSigned() {
			return constant.NewInt(intTy, lit.Int), nil
		}
		return constant.NewInt(intTy, int64(lit.UInt)), nil
	}
}

// lowerCString materializes a NUL-terminated string as a private global array
// and returns a pointer to its first element, the usual C calling convention
// for passing a string literal to an extern function.
func (g *Generator) lowerCString(s string) (value.Value, error) {
	data := constant.NewCharArrayFromString(s + "\x00")
	global := g.module.NewGlobalDef("", data)
	global.Immutable = true
	zero := constant.NewInt(types.I64, 0)
	return g.builder.NewGetElementPtr(data.Type(), global, zero, zero), nil
}

func (g *Generator) lowerBinary(expr typedast.Expr) (value.Value, error) {
	lhs, err := g.lowerExpr(*expr.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := g.lowerExpr(*expr.Right)
	if err != nil {
		return nil, err
	}

	operandTy := expr.Left.Ty
	signed := operandTy.IsSigned()

	switch expr.Op {
	case typedast.OpAdd:
		return g.builder.NewAdd(lhs, rhs), nil
	case typedast.OpSub:
		return g.builder.NewSub(lhs, rhs), nil
	case typedast.OpMul:
		return g.builder.NewMul(lhs, rhs), nil
	case typedast.OpDiv:
		if signed {
			return g.builder.NewSDiv(lhs, rhs), nil
		}
		return g.builder.NewUDiv(lhs, rhs), nil
	case typedast.OpAnd:
		return g.builder.NewAnd(lhs, rhs), nil
	case typedast.OpOr:
		return g.builder.NewOr(lhs, rhs), nil
	case typedast.OpEq:
		return g.builder.NewICmp(enum.IPredEQ, lhs, rhs), nil
	case typedast.OpNe:
		return g.builder.NewICmp(enum.IPredNE, lhs, rhs), nil
	case typedast.OpGt:
		if signed {
			return g.builder.NewICmp(enum.IPredSGT, lhs, rhs), nil
		}
		return g.builder.NewICmp(enum.IPredUGT, lhs, rhs), nil
	case typedast.OpGe:
		if signed {
			return g.builder.NewICmp(enum.IPredSGE, lhs, rhs), nil
		}
		return g.builder.NewICmp(enum.IPredUGE, lhs, rhs), nil
	case typedast.OpLt:
		if signed {
			return g.builder.NewICmp(enum.IPredSLT, lhs, rhs), nil
		}
		return g.builder.NewICmp(enum.IPredULT, lhs, rhs), nil
	case typedast.OpLe:
		if signed {
			return g.builder.NewICmp(enum.IPredSLE, lhs, rhs), nil
		}
		return g.builder.NewICmp(enum.IPredULE, lhs, rhs), nil
	default:
		return nil, newErr(UnsupportedType, "codegen: unknown binary operator %q", expr.Op)
	}
}

func (g *Generator) lowerUnary(expr typedast.Expr) (value.Value, error) {
	switch expr.UnaryOp {
	case typedast.OpRef:
		return g.lowerLValue(*expr.Operand)
	case typedast.OpDeref:
		ptr, err := g.lowerExpr(*expr.Operand)
		if err != nil {
			return nil, err
		}
		elemTy, err := g.lowerType(expr.Ty)
		if err != nil {
			return nil, err
		}
		return g.builder.NewLoad(elemTy, ptr), nil
	case typedast.OpNeg:
		operand, err := g.lowerExpr(*expr.Operand)
		if err != nil {
			return nil, err
		}
		zero := constant.NewInt(operand.Type().(*types.IntType), 0)
		return g.builder.NewSub(zero, operand), nil
	case typedast.OpNot:
		operand, err := g.lowerExpr(*expr.Operand)
		if err != nil {
			return nil, err
		}
		one := constant.NewInt(types.I1, 1)
		return g.builder.NewXor(operand, one), nil
	default:
		return nil, newErr(UnsupportedType, "codegen: unknown unary operator %q", expr.UnaryOp)
	}
}

func (g *Generator) lowerArray(expr typedast.Expr) (value.Value, error) {
	arrTy, err := g.lowerType(expr.Ty)
	if err != nil {
		return nil, err
	}

	alloca := g.builder.NewAlloca(arrTy)
	zero := constant.NewInt(types.I32, 0)
	for i, item := range expr.Items {
		v, err := g.lowerExpr(item)
		if err != nil {
			return nil, err
		}
		idx := constant.NewInt(types.I32, int64(i))
		ptr := g.builder.NewGetElementPtr(arrTy, alloca, zero, idx)
		g.builder.NewStore(v, ptr)
	}

	return g.builder.NewLoad(arrTy, alloca), nil
}

func (g *Generator) lowerClassExpr(class typedast.ClassExpr) (value.Value, error) {
	info, ok := g.classes[class.Name]
	if !ok {
		return nil, newErr(UnknownClass, "unknown class %q", class.Name)
	}

	alloca := g.builder.NewAlloca(info.structType)
	zero := constant.NewInt(types.I32, 0)

	for i, field := range info.fields {
		fieldTy, err := g.lowerType(field.Type)
		if err != nil {
			return nil, err
		}
		idx := constant.NewInt(types.I32, int64(i))
		ptr := g.builder.NewGetElementPtr(info.structType, alloca, zero, idx)
		g.builder.NewStore(g.zeroValue(fieldTy), ptr)
	}

	for _, init := range class.Fields {
		v, err := g.lowerExpr(init.Value)
		if err != nil {
			return nil, err
		}
		idx := constant.NewInt(types.I32, int64(init.Index))
		ptr := g.builder.NewGetElementPtr(info.structType, alloca, zero, idx)
		g.builder.NewStore(v, ptr)
	}

	return g.builder.NewLoad(info.structType, alloca), nil
}

func (g *Generator) lowerAssign(expr typedast.Expr) (value.Value, error) {
	ptr, err := g.lowerLValue(*expr.Left)
	if err != nil {
		return nil, err
	}
	v, err := g.lowerExpr(*expr.Right)
	if err != nil {
		return nil, err
	}
	g.builder.NewStore(v, ptr)
	return v, nil
}

func (g *Generator) lowerCall(call typedast.CallExpr) (value.Value, error) {
	callee, err := g.lowerExpr(call.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]value.Value, len(call.Args))
	for i, a := range call.Args {
		v, err := g.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	return g.builder.NewCall(callee, args...), nil
}

// lowerCast dispatches on the source/destination type pair. Integer-to-integer
// casts truncate or (sign-)extend depending on width and signedness; integer-to-
// pointer and pointer-to-integer reinterpret bits; pointer-to-pointer is a
// bitcast; a cast to the identical type is a no-op; anything else (arrays,
// classes) is rejected with UnsupportedCast.
func (g *Generator) lowerCast(expr typedast.Expr) (value.Value, error) {
	operand, err := g.lowerExpr(*expr.Operand)
	if err != nil {
		return nil, err
	}

	fromTy, err := g.lowerType(expr.CastFrom)
	if err != nil {
		return nil, err
	}
	toTy, err := g.lowerType(expr.CastTo)
	if err != nil {
		return nil, err
	}

	fromInt, fromIsInt := fromTy.(*types.IntType)
	toInt, toIsInt := toTy.(*types.IntType)

	switch {
	case fromIsInt && toIsInt:
		switch {
		case toInt.BitSize > fromInt.BitSize:
			if expr.CastFrom.IsSigned() {
				return g.builder.NewSExt(operand, toInt), nil
			}
			return g.builder.NewZExt(operand, toInt), nil
		case toInt.BitSize < fromInt.BitSize:
			return g.builder.NewTrunc(operand, toInt), nil
		default:
			return operand, nil
		}

	case fromIsInt && !toIsInt:
		if _, ok := toTy.(*types.PointerType); ok {
			return g.builder.NewIntToPtr(operand, toTy.(*types.PointerType)), nil
		}
		return nil, newErr(UnsupportedCast, "cannot cast %s to %s", expr.CastFrom, expr.CastTo)

	case !fromIsInt && toIsInt:
		if _, ok := fromTy.(*types.PointerType); ok {
			return g.builder.NewPtrToInt(operand, toInt), nil
		}
		return nil, newErr(UnsupportedCast, "cannot cast %s to %s", expr.CastFrom, expr.CastTo)

	default:
		_, fromIsPtr := fromTy.(*types.PointerType)
		_, toIsPtr := toTy.(*types.PointerType)
		if fromIsPtr && toIsPtr {
			return g.builder.NewBitCast(operand, toTy), nil
		}
		if expr.CastFrom.Equal(expr.CastTo) {
			return operand, nil
		}
		return nil, newErr(UnsupportedCast, "cannot cast %s to %s", expr.CastFrom, expr.CastTo)
	}
}
