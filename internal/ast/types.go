// Package ast defines the parse-level abstract syntax tree: the shape an external
// lexer/parser stage hands to this compiler's core. It is a plain, JSON-serializable
// data model with no resolved names and no concrete types beyond what the source text
// spelled out explicitly.
package ast

// Program is an ordered sequence of top-level items, source order preserved.
type Program struct {
	Items []TopLevelStmt `json:"items"`
}

// TopLevelStmt is one top-level item: exactly one of the pointer fields is set.
type TopLevelStmt struct {
	ClassDef  *ClassDef       `json:"class_def,omitempty"`
	FuncDef   *FunctionDef    `json:"func_def,omitempty"`
	ExternDef *ExternDef      `json:"extern_def,omitempty"`
	ConstDef  *GlobalConstDef `json:"const_def,omitempty"`
}

// ClassDef declares a named aggregate type with ordered fields.
type ClassDef struct {
	Name   string      `json:"name"`
	Fields []FieldDecl `json:"fields"`
}

// FieldDecl is one field of a class, in declaration order.
type FieldDecl struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// FunctionDef is a function with a body.
type FunctionDef struct {
	Name       string        `json:"name"`
	Params     []TypeBinding `json:"params"`
	ReturnType *Type         `json:"return_type,omitempty"`
	Body       BlockStmt     `json:"body"`
}

// ExternDef declares a function signature with no body, resolved by the linker.
type ExternDef struct {
	Name       string        `json:"name"`
	Params     []TypeBinding `json:"params"`
	ReturnType *Type         `json:"return_type,omitempty"`
}

// GlobalConstDef binds a name to a literal value at module scope.
type GlobalConstDef struct {
	Binding TypeBinding `json:"binding"`
	Value   Literal     `json:"value"`
}

// TypeBinding is a name with a declared type, used for parameters and const/var bindings.
type TypeBinding struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
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

// Stmt is one statement; Kind selects which payload field is populated.
type Stmt struct {
	Kind StmtKind `json:"kind"`

	Expr  *Expr      `json:"expr,omitempty"`  // StmtExpr, StmtReturn (nil means bare `return`)
	Block *BlockStmt `json:"block,omitempty"` // StmtBlock
	If    *IfStmt    `json:"if,omitempty"`    // StmtIf
	While *WhileStmt `json:"while,omitempty"` // StmtWhile
	Bind  *BindStmt  `json:"bind,omitempty"`  // StmtConst, StmtVar
}

// BlockStmt is a sequence of statements sharing one lexical scope.
type BlockStmt struct {
	Stmts []Stmt `json:"stmts"`
}

// IfStmt is `if (condition) body [else tail]`. Tail is either another IfStmt
// (an `else if`) or a terminal BlockStmt (a plain `else`); both nil means no else.
type IfStmt struct {
	Condition Expr       `json:"condition"`
	Body      BlockStmt  `json:"body"`
	ElseIf    *IfStmt    `json:"else_if,omitempty"`
	ElseBlock *BlockStmt `json:"else_block,omitempty"`
}

// WhileStmt is `while (condition) body`.
type WhileStmt struct {
	Condition Expr      `json:"condition"`
	Body      BlockStmt `json:"body"`
}

// BindStmt is a const/var binding; StmtKind on the enclosing Stmt says which.
type BindStmt struct {
	Binding TypeBinding `json:"binding"`
	Value   Expr        `json:"value"`
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

// Expr is one expression node; Kind selects which payload fields are populated.
type Expr struct {
	Kind ExprKind `json:"kind"`

	Literal *Literal `json:"literal,omitempty"` // ExprLiteral
	Ident   string   `json:"ident,omitempty"`   // ExprIdent

	Call *CallExpr `json:"call,omitempty"` // ExprCall

	Object *Expr  `json:"object,omitempty"` // ExprIndex, ExprField (receiver)
	Index  *Expr  `json:"index,omitempty"`  // ExprIndex
	Field  string `json:"field,omitempty"`  // ExprField

	Op    BinOp `json:"op,omitempty"`
	Left  *Expr `json:"left,omitempty"`  // ExprBinary, ExprAssign (target)
	Right *Expr `json:"right,omitempty"` // ExprBinary, ExprAssign (value)

	UnaryOp UnaryOp `json:"unary_op,omitempty"` // ExprUnary
	Operand *Expr   `json:"operand,omitempty"`  // ExprUnary

	Items []Expr `json:"items,omitempty"` // ExprArray

	CastTo *Type `json:"cast_to,omitempty"` // ExprCast

	Class *ClassExpr `json:"class,omitempty"` // ExprClass
}

// CallExpr is `callee(args...)`; callee is itself an expression (usually an identifier).
type CallExpr struct {
	Callee Expr   `json:"callee"`
	Args   []Expr `json:"args"`
}

// ClassExpr is `Name { field: value, ... }`.
type ClassExpr struct {
	Name   string           `json:"name"`
	Fields []ClassFieldInit `json:"fields"`
}

// ClassFieldInit is one named field initializer inside a class constructor.
type ClassFieldInit struct {
	Name  string `json:"name"`
	Value Expr   `json:"value"`
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
	LitInt    LiteralKind = "int" // unsuffixed integer literal -> Int
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

// Literal is a literal value carrying its own width/signedness suffix, if any.
type Literal struct {
	Kind LiteralKind `json:"kind"`
	Int  int64       `json:"int,omitempty"`
	UInt uint64      `json:"uint,omitempty"`
	Str  string      `json:"str,omitempty"`
	Bool bool        `json:"bool,omitempty"`
}

// TYPES

// TypeKind discriminates Type's payload.
type TypeKind string

const (
	TyInt8   TypeKind = "int8"
	TyInt16  TypeKind = "int16"
	TyInt32  TypeKind = "int32"
	TyInt64  TypeKind = "int64"
	TyInt    TypeKind = "int"
	TyUInt8  TypeKind = "uint8"
	TyUInt16 TypeKind = "uint16"
	TyUInt32 TypeKind = "uint32"
	TyUInt64 TypeKind = "uint64"
	TyUInt   TypeKind = "uint"
	TyBool   TypeKind = "bool"
	TyChar   TypeKind = "char"
	TyStr    TypeKind = "str"
	TyCStr   TypeKind = "cstr"
	TyRef    TypeKind = "ref"
	TyArray  TypeKind = "array"
	TyClass  TypeKind = "class"
)

// Type is a closed sum of the source language's type variants.
type Type struct {
	Kind TypeKind `json:"kind"`

	Elem *Type `json:"elem,omitempty"` // TyRef, TyArray
	Len  int   `json:"len,omitempty"`  // TyArray

	ClassName string `json:"class_name,omitempty"` // TyClass
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
	default:
		return string(t.Kind)
	}
}
