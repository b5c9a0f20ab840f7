// Package typedast defines the elaborated AST: the output of name resolution and type
// assignment. Every expression carries the type of its own result, not the type of its
// operands, and every class field access carries the resolved field index rather than a
// field name to re-look-up at lowering time.
package typedast

// Program is an ordered sequence of elaborated top-level items.
type Program struct {
	Items []TopLevelStmt
}

// TopLevelStmt is one top-level item: exactly one field is set.
type TopLevelStmt struct {
	ClassDef  *ClassDef
	FuncDef   *FunctionDef
	ExternDef *ExternDef
	ConstDef  *GlobalConstDef
}

// ClassDef declares a named aggregate type; Fields is the struct layout in declaration order.
type ClassDef struct {
	Name   string
	Fields []FieldDecl
}

// FieldDecl is one field of a class, in declaration order. Index is its position in
// that order, the same index codegen uses for struct GEPs.
type FieldDecl struct {
	Name  string
	Type  Type
	Index int
}

// FunctionDef is a fully elaborated function. ReturnType is never nil: a function with
// no declared return type elaborates to NoneType.
type FunctionDef struct {
	Name       string
	Params     []TypeBinding
	ReturnType Type
	Body       BlockStmt
}

// ExternDef declares a function signature with no body.
type ExternDef struct {
	Name       string
	Params     []TypeBinding
	ReturnType Type
}

// GlobalConstDef binds a name to a literal value at module scope.
type GlobalConstDef struct {
	Binding TypeBinding
	Value   Literal
}

// TypeBinding is a name with an elaborated type.
type TypeBinding struct {
	Name string
	Type Type
}

// STATEMENTS

// StmtKind discriminates Stmt's payload.
type StmtKind string

const (
	StmtExpr   StmtKind = "expr"
	StmtBlock  StmtKind = "block"
	StmtIf     StmtKind = "if"
	StmtWhile  StmtKind = "while"
	StmtConst  StmtKind = "const"
	StmtVar    StmtKind = "var"
	StmtReturn StmtKind = "return"
)

// Stmt is one elaborated statement.
type Stmt struct {
	Kind StmtKind

	Expr  *Expr      // StmtExpr, StmtReturn (nil means bare `return`)
	Block *BlockStmt // StmtBlock
	If    *IfStmt    // StmtIf
	While *WhileStmt // StmtWhile
	Bind  *BindStmt  // StmtConst, StmtVar
}

// BlockStmt is a sequence of statements sharing one lexical scope.
type BlockStmt struct {
	Stmts []Stmt
}

// IfStmt is `if (condition) body [else tail]`.
type IfStmt struct {
	Condition Expr
	Body      BlockStmt
	ElseIf    *IfStmt
	ElseBlock *BlockStmt
}

// WhileStmt is `while (condition) body`.
type WhileStmt struct {
	Condition Expr
	Body      BlockStmt
}

// BindStmt is a const/var binding; StmtKind on the enclosing Stmt says which.
type BindStmt struct {
	Binding TypeBinding
	Value   Expr
}

// EXPRESSIONS

// ExprKind discriminates Expr's payload.
type ExprKind string

const (
	ExprLiteral ExprKind = "literal"
	ExprIdent   ExprKind = "ident"
	ExprCall    ExprKind = "call"
	ExprIndex   ExprKind = "index"
	ExprField   ExprKind = "field"
	ExprBinary  ExprKind = "binary"
	ExprUnary   ExprKind = "unary"
	ExprArray   ExprKind = "array"
	ExprCast    ExprKind = "cast"
	ExprClass   ExprKind = "class"
	ExprAssign  ExprKind = "assign"
)

// Expr is an elaborated expression. Ty is the result type of the expression itself,
// never the type of an operand — e.g. a comparison's Ty is Bool even though its
// operands are Int.
type Expr struct {
	Kind ExprKind
	Ty   Type

	Literal *Literal
	Ident   string

	Call *CallExpr

	Object *Expr // ExprIndex, ExprField receiver
	Index  *Expr // ExprIndex

	// Field holds the resolved field: FieldIndex is its position in the class's
	// declaration-order layout, ready for a struct GEP with no name lookup.
	Field      string
	FieldIndex int

	Op    BinOp
	Left  *Expr
	Right *Expr

	UnaryOp UnaryOp
	Operand *Expr

	Items []Expr

	CastFrom Type // ExprCast: the operand's type, needed to pick the lowering opcode
	CastTo   Type

	Class *ClassExpr
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Callee Expr
	Args   []Expr
}

// ClassExpr is `Name { field: value, ... }`. Fields keep the constructor's order;
// each carries its resolved Index so codegen can store positionally with no
// further lookup.
type ClassExpr struct {
	Name   string
	Fields []ClassFieldInit
}

// ClassFieldInit is one field initializer, its Index resolved to the class's layout.
type ClassFieldInit struct {
	Name  string
	Index int
	Value Expr
}

// BinOp enumerates binary operators.
type BinOp string

const (
	OpAdd BinOp = "+"
	OpSub BinOp = "-"
	OpMul BinOp = "*"
	OpDiv BinOp = "/"
	OpAnd BinOp = "&&"
	OpOr  BinOp = "||"
	OpEq  BinOp = "=="
	OpNe  BinOp = "!="
	OpGt  BinOp = ">"
	OpGe  BinOp = ">="
	OpLt  BinOp = "<"
	OpLe  BinOp = "<="
)

// UnaryOp enumerates unary operators.
type UnaryOp string

const (
	OpNeg   UnaryOp = "-"
	OpNot   UnaryOp = "!"
	OpRef   UnaryOp = "&"
	OpDeref UnaryOp = "*"
)

// LITERALS

// LiteralKind discriminates Literal's payload.
type LiteralKind string

const (
	LitInt    LiteralKind = "int"
	LitInt8   LiteralKind = "int8"
	LitInt16  LiteralKind = "int16"
	LitInt32  LiteralKind = "int32"
	LitInt64  LiteralKind = "int64"
	LitUInt   LiteralKind = "uint"
	LitUInt8  LiteralKind = "uint8"
	LitUInt16 LiteralKind = "uint16"
	LitUInt32 LiteralKind = "uint32"
	LitUInt64 LiteralKind = "uint64"
	LitStr    LiteralKind = "str"
	LitCStr   LiteralKind = "cstr"
	LitBool   LiteralKind = "bool"
)

// Literal is a literal value, now carrying its elaborated Type alongside the raw value.
type Literal struct {
	Ty   Type
	Kind LiteralKind
	Int  int64
	UInt uint64
	Str  string
	Bool bool
}

// TYPES

// TypeKind discriminates Type's payload.
type TypeKind string

const (
	TyInt8     TypeKind = "int8"
	TyInt16    TypeKind = "int16"
	TyInt32    TypeKind = "int32"
	TyInt64    TypeKind = "int64"
	TyInt      TypeKind = "int"
	TyUInt8    TypeKind = "uint8"
	TyUInt16   TypeKind = "uint16"
	TyUInt32   TypeKind = "uint32"
	TyUInt64   TypeKind = "uint64"
	TyUInt     TypeKind = "uint"
	TyBool     TypeKind = "bool"
	TyChar     TypeKind = "char"
	TyStr      TypeKind = "str"
	TyCStr     TypeKind = "cstr"
	TyRef      TypeKind = "ref"
	TyArray    TypeKind = "array"
	TyClass    TypeKind = "class"
	TyNoneType TypeKind = "none" // the type of a function with no declared return value
)

// Type is a closed sum of the language's elaborated type variants.
type Type struct {
	Kind TypeKind

	Elem *Type // TyRef, TyArray
	Len  int   // TyArray

	ClassName string // TyClass
}

// Equal reports whether two types are structurally identical.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TyRef:
		return t.Elem.Equal(*other.Elem)
	case TyArray:
		return t.Len == other.Len && t.Elem.Equal(*other.Elem)
	case TyClass:
		return t.ClassName == other.ClassName
	default:
		return true
	}
}

// IsInteger reports whether t is one of the fixed-width signed or unsigned integer types.
func (t Type) IsInteger() bool {
	switch t.Kind {
	case TyInt8, TyInt16, TyInt32, TyInt64, TyInt,
		TyUInt8, TyUInt16, TyUInt32, TyUInt64, TyUInt:
		return true
	default:
		return false
	}
}

// IsSigned reports whether t is one of the signed integer types. Only meaningful when
// IsInteger is true.
func (t Type) IsSigned() bool {
	switch t.Kind {
	case TyInt8, TyInt16, TyInt32, TyInt64, TyInt:
		return true
	default:
		return false
	}
}

// String renders a Type for diagnostics, close to source syntax; array types
// omit their length.
func (t Type) String() string {
	switch t.Kind {
	case TyRef:
		return "&" + t.Elem.String()
	case TyArray:
		return "[" + t.Elem.String() + "]"
	case TyClass:
		return t.ClassName
	case TyNoneType:
		return "void"
	default:
		return string(t.Kind)
	}
}
