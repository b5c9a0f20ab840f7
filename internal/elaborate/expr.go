package elaborate

import (
	"github.com/dshills/corec/internal/ast"
	"github.com/dshills/corec/internal/typedast"
)

func (e *Elaborator) elaborateExpr(expr ast.Expr) (typedast.Expr, error) {
	switch expr.Kind {
	case ast.ExprLiteral:
		lit, err := e.elaborateLiteral(*expr.Literal)
		if err != nil {
			return typedast.Expr{}, err
		}
		return typedast.Expr{Kind: typedast.ExprLiteral, Ty: lit.Ty, Literal: &lit}, nil

	case ast.ExprIdent:
		ty, ok := e.names.Get(expr.Ident)
		if !ok {
			return typedast.Expr{}, newErr(Undeclared, "undeclared identifier %q", expr.Ident)
		}
		return typedast.Expr{Kind: typedast.ExprIdent, Ty: ty, Ident: expr.Ident}, nil

	case ast.ExprCall:
		return e.elaborateCall(*expr.Call)

	case ast.ExprIndex:
		return e.elaborateIndex(expr)

	case ast.ExprField:
		return e.elaborateField(expr)

	case ast.ExprBinary:
		return e.elaborateBinary(expr)

	case ast.ExprUnary:
		return e.elaborateUnary(expr)

	case ast.ExprArray:
		return e.elaborateArray(expr)

	case ast.ExprCast:
		return e.elaborateCast(expr)

	case ast.ExprClass:
		return e.elaborateClassExpr(*expr.Class)

	case ast.ExprAssign:
		return e.elaborateAssign(expr)

	default:
		return typedast.Expr{}, newErr(BadFieldAccess, "elaborate: unknown expression kind %q", expr.Kind)
	}
}

func (e *Elaborator) elaborateLiteral(lit ast.Literal) (typedast.Literal, error) {
	kind := typedast.LiteralKind(lit.Kind)
	var ty typedast.Type
	switch lit.Kind {
	case ast.LitInt:
		ty = typedast.Type{Kind: typedast.TyInt}
	case ast.LitInt8:
		ty = typedast.Type{Kind: typedast.TyInt8}
	case ast.LitInt16:
		ty = typedast.Type{Kind: typedast.TyInt16}
	case ast.LitInt32:
		ty = typedast.Type{Kind: typedast.TyInt32}
	case ast.LitInt64:
		ty = typedast.Type{Kind: typedast.TyInt64}
	case ast.LitUInt:
		ty = typedast.Type{Kind: typedast.TyUInt}
	case ast.LitUInt8:
		ty = typedast.Type{Kind: typedast.TyUInt8}
	case ast.LitUInt16:
		ty = typedast.Type{Kind: typedast.TyUInt16}
	case ast.LitUInt32:
		ty = typedast.Type{Kind: typedast.TyUInt32}
	case ast.LitUInt64:
		ty = typedast.Type{Kind: typedast.TyUInt64}
	case ast.LitStr:
		ty = typedast.Type{Kind: typedast.TyStr}
	case ast.LitCStr:
		ty = typedast.Type{Kind: typedast.TyCStr}
	case ast.LitBool:
		ty = typedast.Type{Kind: typedast.TyBool}
	default:
		return typedast.Literal{}, newErr(BadFieldAccess, "elaborate: unknown literal kind %q", lit.Kind)
	}

	return typedast.Literal{
		Ty:   ty,
		Kind: kind,
		Int:  lit.Int,
		UInt: lit.UInt,
		Str:  lit.Str,
		Bool: lit.Bool,
	}, nil
}

func (e *Elaborator) elaborateCall(call ast.CallExpr) (typedast.Expr, error) {
	callee, err := e.elaborateExpr(call.Callee)
	if err != nil {
		return typedast.Expr{}, err
	}

	args := make([]typedast.Expr, len(call.Args))
	for i, a := range call.Args {
		typed, err := e.elaborateExpr(a)
		if err != nil {
			return typedast.Expr{}, err
		}
		args[i] = typed
	}

	return typedast.Expr{
		Kind: typedast.ExprCall,
		Ty:   callee.Ty,
		Call: &typedast.CallExpr{Callee: callee, Args: args},
	}, nil
}

func (e *Elaborator) elaborateIndex(expr ast.Expr) (typedast.Expr, error) {
	object, err := e.elaborateExpr(*expr.Object)
	if err != nil {
		return typedast.Expr{}, err
	}
	if object.Ty.Kind != typedast.TyArray {
		return typedast.Expr{}, newErr(BadIndex, "cannot index into non-array type %s", object.Ty)
	}

	index, err := e.elaborateExpr(*expr.Index)
	if err != nil {
		return typedast.Expr{}, err
	}

	return typedast.Expr{
		Kind:   typedast.ExprIndex,
		Ty:     *object.Ty.Elem,
		Object: &object,
		Index:  &index,
	}, nil
}

func (e *Elaborator) elaborateField(expr ast.Expr) (typedast.Expr, error) {
	object, err := e.elaborateExpr(*expr.Object)
	if err != nil {
		return typedast.Expr{}, err
	}
	if object.Ty.Kind != typedast.TyClass {
		return typedast.Expr{}, newErr(BadFieldAccess, "cannot access field %q on non-class type %s", expr.Field, object.Ty)
	}

	class, ok := e.classes[object.Ty.ClassName]
	if !ok {
		return typedast.Expr{}, newErr(UnknownClass, "unknown class %q", object.Ty.ClassName)
	}

	field, ok := findField(class, expr.Field)
	if !ok {
		return typedast.Expr{}, newErr(UnknownField, "class %q has no field %q", class.Name, expr.Field)
	}

	return typedast.Expr{
		Kind:       typedast.ExprField,
		Ty:         field.Type,
		Object:     &object,
		Field:      expr.Field,
		FieldIndex: field.Index,
	}, nil
}

func findField(class *typedast.ClassDef, name string) (typedast.FieldDecl, bool) {
	for _, f := range class.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return typedast.FieldDecl{}, false
}

func (e *Elaborator) elaborateBinary(expr ast.Expr) (typedast.Expr, error) {
	lhs, err := e.elaborateExpr(*expr.Left)
	if err != nil {
		return typedast.Expr{}, err
	}
	rhs, err := e.elaborateExpr(*expr.Right)
	if err != nil {
		return typedast.Expr{}, err
	}

	op := typedast.BinOp(expr.Op)
	if op == typedast.OpAnd || op == typedast.OpOr {
		if lhs.Ty.Kind != typedast.TyBool || rhs.Ty.Kind != typedast.TyBool {
			return typedast.Expr{}, newErr(NonBooleanLogicalOperand, "%s requires bool operands, got %s and %s", op, lhs.Ty, rhs.Ty)
		}
	} else if !lhs.Ty.Equal(rhs.Ty) {
		return typedast.Expr{}, newErr(MixedOperandTypes, "mismatched operand types %s and %s for %s (cast one explicitly)", lhs.Ty, rhs.Ty, op)
	}

	switch op {
	case typedast.OpEq, typedast.OpNe, typedast.OpGt, typedast.OpGe, typedast.OpLt, typedast.OpLe:
		return typedast.Expr{
			Kind:  typedast.ExprBinary,
			Ty:    typedast.Type{Kind: typedast.TyBool},
			Op:    op,
			Left:  &lhs,
			Right: &rhs,
		}, nil
	default:
		return typedast.Expr{
			Kind:  typedast.ExprBinary,
			Ty:    lhs.Ty,
			Op:    op,
			Left:  &lhs,
			Right: &rhs,
		}, nil
	}
}

func (e *Elaborator) elaborateUnary(expr ast.Expr) (typedast.Expr, error) {
	operand, err := e.elaborateExpr(*expr.Operand)
	if err != nil {
		return typedast.Expr{}, err
	}

	op := typedast.UnaryOp(expr.UnaryOp)
	var ty typedast.Type
	switch op {
	case typedast.OpRef:
		ty = typedast.Type{Kind: typedast.TyRef, Elem: &operand.Ty}
	case typedast.OpDeref:
		if operand.Ty.Kind != typedast.TyRef {
			return typedast.Expr{}, newErr(DerefNonRef, "cannot dereference non-reference type %s", operand.Ty)
		}
		ty = *operand.Ty.Elem
	default: // Minus, Not
		ty = operand.Ty
	}

	return typedast.Expr{
		Kind:    typedast.ExprUnary,
		Ty:      ty,
		UnaryOp: op,
		Operand: &operand,
	}, nil
}

func (e *Elaborator) elaborateArray(expr ast.Expr) (typedast.Expr, error) {
	if len(expr.Items) == 0 {
		return typedast.Expr{}, newErr(EmptyArray, "array literal must have at least one element")
	}

	items := make([]typedast.Expr, len(expr.Items))
	for i, it := range expr.Items {
		typed, err := e.elaborateExpr(it)
		if err != nil {
			return typedast.Expr{}, err
		}
		if i > 0 && !typed.Ty.Equal(items[0].Ty) {
			return typedast.Expr{}, newErr(MixedOperandTypes, "array element %d has type %s, expected %s", i, typed.Ty, items[0].Ty)
		}
		items[i] = typed
	}

	elem := items[0].Ty
	return typedast.Expr{
		Kind:  typedast.ExprArray,
		Ty:    typedast.Type{Kind: typedast.TyArray, Elem: &elem, Len: len(items)},
		Items: items,
	}, nil
}

func (e *Elaborator) elaborateCast(expr ast.Expr) (typedast.Expr, error) {
	operand, err := e.elaborateExpr(*expr.Operand)
	if err != nil {
		return typedast.Expr{}, err
	}
	target, err := e.resolveType(*expr.CastTo)
	if err != nil {
		return typedast.Expr{}, err
	}

	return typedast.Expr{
		Kind:     typedast.ExprCast,
		Ty:       target,
		Operand:  &operand,
		CastFrom: operand.Ty,
		CastTo:   target,
	}, nil
}

func (e *Elaborator) elaborateClassExpr(class ast.ClassExpr) (typedast.Expr, error) {
	def, ok := e.classes[class.Name]
	if !ok {
		return typedast.Expr{}, newErr(UnknownClass, "unknown class %q", class.Name)
	}

	fields := make([]typedast.ClassFieldInit, len(class.Fields))
	for i, f := range class.Fields {
		decl, ok := findField(def, f.Name)
		if !ok {
			return typedast.Expr{}, newErr(UnknownField, "class %q has no field %q", def.Name, f.Name)
		}
		value, err := e.elaborateExpr(f.Value)
		if err != nil {
			return typedast.Expr{}, err
		}
		if !value.Ty.Equal(decl.Type) {
			return typedast.Expr{}, newErr(FieldTypeMismatch, "field %q.%s expects %s, got %s", def.Name, f.Name, decl.Type, value.Ty)
		}
		fields[i] = typedast.ClassFieldInit{Name: f.Name, Index: decl.Index, Value: value}
	}

	return typedast.Expr{
		Kind:  typedast.ExprClass,
		Ty:    typedast.Type{Kind: typedast.TyClass, ClassName: class.Name},
		Class: &typedast.ClassExpr{Name: class.Name, Fields: fields},
	}, nil
}

func (e *Elaborator) elaborateAssign(expr ast.Expr) (typedast.Expr, error) {
	target, err := e.elaborateExpr(*expr.Left)
	if err != nil {
		return typedast.Expr{}, err
	}
	switch target.Kind {
	case typedast.ExprIdent, typedast.ExprIndex, typedast.ExprField:
	case typedast.ExprUnary:
		if target.UnaryOp != typedast.OpDeref {
			return typedast.Expr{}, newErr(InvalidAssignTarget, "cannot assign to this expression")
		}
	default:
		return typedast.Expr{}, newErr(InvalidAssignTarget, "cannot assign to this expression")
	}

	value, err := e.elaborateExpr(*expr.Right)
	if err != nil {
		return typedast.Expr{}, err
	}
	if !value.Ty.Equal(target.Ty) {
		return typedast.Expr{}, newErr(MixedOperandTypes, "cannot assign %s to target of type %s", value.Ty, target.Ty)
	}

	return typedast.Expr{
		Kind:  typedast.ExprAssign,
		Ty:    target.Ty,
		Left:  &target,
		Right: &value,
	}, nil
}
